package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned when a container holds no usable video stream
// (cover art does not count). Such files cannot be planned.
var ErrNoVideoStream = errors.New("no video stream found")

// Probe runs a single ffprobe JSON call against path and returns the parsed
// result. ffprobePath is the binary to invoke (usually just "ffprobe").
func Probe(ctx context.Context, ffprobePath, path string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a MediaInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*MediaInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildInfo(&raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
}

// --- Conversion from wire types to domain types ---

func buildInfo(raw *ffprobeOutput) (*MediaInfo, error) {
	info := &MediaInfo{
		Path:       raw.Format.Filename,
		FormatName: raw.Format.FormatName,
		Duration:   parseFloat(raw.Format.Duration),
		Size:       parseInt64(raw.Format.Size),
	}

	haveVideo := false
	subIndex := 0
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			// The first real video stream wins; embedded cover art is skipped.
			if s.Disposition["attached_pic"] == 1 {
				continue
			}
			if !haveVideo {
				info.Width = s.Width
				info.Height = s.Height
				haveVideo = true
			}
		case "subtitle":
			info.SubtitleTracks = append(info.SubtitleTracks, SubtitleTrack{
				Index:       subIndex,
				StreamIndex: s.Index,
				Codec:       s.CodecName,
				Language:    s.Tags["language"],
				Title:       s.Tags["title"],
			})
			subIndex++
		}
	}

	if !haveVideo || info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%q: %w", raw.Format.Filename, ErrNoVideoStream)
	}
	return info, nil
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
