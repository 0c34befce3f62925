package planner

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/probe"
)

// BuildPlan produces a complete ConversionPlan from config and probe data.
// This is the decision matrix the pipeline calls for every file.
//
// Flow:
//  1. Aspect: crop to the 4:3 preset only when requested AND the source is
//     strictly wider than 4:3; everything else takes the wide preset whole.
//  2. Subtitles: resolve the burn-in source (internal track strict,
//     external sidecar best-effort).
//  3. Destination: same basename under outDir with the device extension.
//
// The only error is ErrSubtitleTrack for an internal burn request naming a
// track the container does not have.
func BuildPlan(cfg *config.Config, info *probe.MediaInfo, outDir string) (*ConversionPlan, error) {
	plan := &ConversionPlan{
		SourcePath:   info.Path,
		DestPath:     OutputPath(outDir, info.Path),
		SourceWidth:  info.Width,
		SourceHeight: info.Height,
		Duration:     info.Duration,
		OutputWidth:  WidescreenWidth,
		OutputHeight: PresetHeight,
	}

	// Crop never pads: sources already at or narrower than 4:3 keep their
	// full frame even when cropping was requested.
	if cfg.CropToStandard && info.WiderThanStandard() {
		plan.OutputWidth = StandardWidth
		plan.Crop = centeredStandardCrop(info.Width, info.Height)
	}

	burn, err := decideSubtitle(cfg, info)
	if err != nil {
		return nil, err
	}
	plan.Subtitle = burn

	return plan, nil
}

// centeredStandardCrop computes the largest 4:3 window of a frame that is
// strictly wider than 4:3: full height, width floor(h*4/3), centered
// horizontally with the odd pixel (if any) going to the right edge.
func centeredStandardCrop(w, h int) *CropRect {
	cw := h * 4 / 3
	return &CropRect{
		Width:  cw,
		Height: h,
		X:      (w - cw) / 2,
		Y:      0,
	}
}

// OutputPath maps a source file into outDir, swapping its extension for the
// device container's.
func OutputPath(outDir, sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+OutputExt)
}
