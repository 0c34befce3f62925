package planner

import "fmt"

// Device output profile. The target hardware decodes XviD-tagged MPEG-4 in
// an AVI container and tops out at 480 lines; the output width depends on
// whether the source was cropped to the 4:3 preset.
const (
	StandardWidth   = 640 // 4:3 preset width.
	WidescreenWidth = 854 // Wide preset width.
	PresetHeight    = 480 // Shared by both presets.

	AudioBitrateKbps = 192 // MP3 audio, constant for the profile.

	OutputExt = ".avi"
)

// BurnSource selects where burned-in subtitles come from.
type BurnSource int

const (
	BurnNone     BurnSource = iota // No burn-in.
	BurnInternal                   // An embedded subtitle track of the source.
	BurnExternal                   // A sidecar subtitle file.
)

// SubtitleBurn describes the resolved subtitle burn-in for one file. The
// zero value means no burn-in. TrackIndex is the 0-based index into the
// container's subtitle streams (internal source); Path is the sidecar file
// (external source).
type SubtitleBurn struct {
	Source     BurnSource
	TrackIndex int
	Path       string
}

// String renders the burn decision for logs.
func (s SubtitleBurn) String() string {
	switch s.Source {
	case BurnInternal:
		return fmt.Sprintf("internal track %d", s.TrackIndex)
	case BurnExternal:
		return fmt.Sprintf("external %s", s.Path)
	default:
		return "none"
	}
}

// CropRect is a centered 4:3 crop window in source pixels, positioned by
// its top-left corner.
type CropRect struct {
	Width  int
	Height int
	X      int
	Y      int
}

// String renders the rectangle in the w:h:x:y order the crop filter takes.
func (c CropRect) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

// ConversionPlan holds every decision for converting a single file. It is
// produced by BuildPlan and consumed by the ffmpeg package to construct
// command arguments. One plan per file per run; plans are never reused.
type ConversionPlan struct {
	SourcePath string
	DestPath   string

	// Source geometry and duration, carried for filter bounds checks,
	// progress totals, and display.
	SourceWidth  int
	SourceHeight int
	Duration     float64 // Seconds; 0 when the container did not report it.

	// Output geometry.
	OutputWidth  int
	OutputHeight int
	Crop         *CropRect // nil when the frame is used whole.

	Subtitle SubtitleBurn
}

// NeedsCrop reports whether the plan crops before scaling.
func (p *ConversionPlan) NeedsCrop() bool {
	return p.Crop != nil
}

// OutputResolution returns "WxH" for the planned output.
func (p *ConversionPlan) OutputResolution() string {
	return fmt.Sprintf("%dx%d", p.OutputWidth, p.OutputHeight)
}
