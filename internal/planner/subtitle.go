package planner

import (
	"errors"
	"fmt"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/probe"
	"github.com/backmassage/retrograde/internal/subtitles"
)

// ErrSubtitleTrack reports an internal burn-in request naming a subtitle
// track the container does not carry.
var ErrSubtitleTrack = errors.New("subtitle track not found")

// decideSubtitle resolves the burn-in source for one file.
//
// Internal mode is strict: the requested track index must exist in the
// probed container, otherwise the file cannot honor the user's choice and
// planning fails. External mode is best-effort: sidecar files legitimately
// cover only part of a batch, so a missing or unusable sidecar degrades to
// no burn-in instead of failing the file. A fixed subtitle_file path takes
// precedence over the per-file sidecar lookup.
func decideSubtitle(cfg *config.Config, info *probe.MediaInfo) (SubtitleBurn, error) {
	switch cfg.SubtitleMode {
	case config.SubInternal:
		if !info.HasSubtitleTrack(cfg.SubtitleTrack) {
			return SubtitleBurn{}, fmt.Errorf("%q: track %d: %w (container has %d)",
				info.Path, cfg.SubtitleTrack, ErrSubtitleTrack, len(info.SubtitleTracks))
		}
		return SubtitleBurn{Source: BurnInternal, TrackIndex: cfg.SubtitleTrack}, nil

	case config.SubExternal:
		path := cfg.SubtitleFile
		if path == "" {
			path = subtitles.FindSidecar(info.Path)
		}
		if !subtitles.Usable(path) {
			return SubtitleBurn{}, nil
		}
		return SubtitleBurn{Source: BurnExternal, Path: path}, nil
	}

	return SubtitleBurn{}, nil
}
