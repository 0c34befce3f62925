package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/backmassage/retrograde/internal/planner"
)

// ErrCropOutOfBounds reports a plan whose crop window does not fit inside
// the source frame. Plans produced by the planner never trip this; it guards
// against hand-built plans.
var ErrCropOutOfBounds = errors.New("crop window outside source frame")

// BuildArgs constructs the complete ffmpeg argument slice for one
// conversion (binary name excluded; the Executor supplies it).
//
// The command is fully determined by the plan and the bitrate: identical
// inputs yield identical slices, and two calls differing only in bitrate
// differ only in the -b:v value. The requested bitrate is clamped to the
// device profile's range before use.
//
// Layout:
//
//	-hide_banner -nostdin -y -loglevel info -stats -stats_period 1
//	-i <source>
//	-c:v mpeg4 -vtag xvid -b:v <kbps>k
//	-c:a libmp3lame -b:a 192k
//	-vf [crop,]scale[,subtitles]
//	<dest>
//
// -y keeps overwrite-on-retry working when a previous attempt left a
// partial destination file. -loglevel info (not error) is required: the
// progress monitor reads the Duration header and the stats line from
// stderr.
func BuildArgs(plan *planner.ConversionPlan, bitrateKbps int) ([]string, error) {
	if err := checkCrop(plan); err != nil {
		return nil, err
	}

	args := make([]string, 0, 24)

	// --- Preamble ---
	args = append(args,
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "info",
		"-stats", "-stats_period", "1",
	)

	// --- Input ---
	args = append(args, "-i", plan.SourcePath)

	// --- Video codec: XviD-tagged MPEG-4 at the clamped target bitrate ---
	args = append(args,
		"-c:v", "mpeg4",
		"-vtag", "xvid",
		"-b:v", fmt.Sprintf("%dk", planner.ClampBitrate(bitrateKbps)),
	)

	// --- Audio codec: constant-rate MP3 ---
	args = append(args,
		"-c:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", planner.AudioBitrateKbps),
	)

	// --- Filter chain: crop, then scale, then burn ---
	args = append(args, "-vf", buildFilterChain(plan))

	// --- Output ---
	args = append(args, plan.DestPath)

	return args, nil
}

// buildFilterChain renders the plan's video filters in the fixed
// crop → scale → subtitles order.
func buildFilterChain(plan *planner.ConversionPlan) string {
	fb := NewFilterBuilder()

	if plan.Crop != nil {
		fb.Crop(plan.Crop.Width, plan.Crop.Height, plan.Crop.X, plan.Crop.Y)
	}

	fb.Scale(plan.OutputWidth, plan.OutputHeight)

	switch plan.Subtitle.Source {
	case planner.BurnInternal:
		fb.BurnInternal(plan.SourcePath, plan.Subtitle.TrackIndex)
	case planner.BurnExternal:
		fb.BurnExternal(plan.Subtitle.Path)
	}

	return fb.Build()
}

// checkCrop validates that the crop window lies inside the source frame
// when the plan carries one and the source geometry is known.
func checkCrop(plan *planner.ConversionPlan) error {
	c := plan.Crop
	if c == nil {
		return nil
	}
	if c.Width <= 0 || c.Height <= 0 || c.X < 0 || c.Y < 0 {
		return fmt.Errorf("%w: %s", ErrCropOutOfBounds, c)
	}
	if plan.SourceWidth > 0 && c.X+c.Width > plan.SourceWidth {
		return fmt.Errorf("%w: %s in %dx%d", ErrCropOutOfBounds, c, plan.SourceWidth, plan.SourceHeight)
	}
	if plan.SourceHeight > 0 && c.Y+c.Height > plan.SourceHeight {
		return fmt.Errorf("%w: %s in %dx%d", ErrCropOutOfBounds, c, plan.SourceWidth, plan.SourceHeight)
	}
	return nil
}
