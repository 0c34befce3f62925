package probe

import "fmt"

// SubtitleTrack is one subtitle stream in container order. Index counts
// subtitle streams only (0-based) and is what the burn-in filter's stream
// selector consumes; StreamIndex is the absolute stream index in the
// container, kept for display.
type SubtitleTrack struct {
	Index       int
	StreamIndex int
	Codec       string
	Language    string
	Title       string
}

// MediaInfo is the fully parsed output of a single ffprobe JSON call: the
// primary video geometry, container duration, and the ordered subtitle track
// list. Produced once per input file and discarded after planning.
type MediaInfo struct {
	Path           string
	FormatName     string
	Width          int
	Height         int
	Duration       float64 // Seconds; 0 when the container does not report it.
	Size           int64
	SubtitleTracks []SubtitleTrack
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (m *MediaInfo) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// HasSubtitleTrack reports whether a subtitle track with the given 0-based
// index exists in the container.
func (m *MediaInfo) HasSubtitleTrack(index int) bool {
	_, ok := m.FindSubtitleTrack(index)
	return ok
}

// FindSubtitleTrack returns the subtitle track with the given 0-based index.
func (m *MediaInfo) FindSubtitleTrack(index int) (SubtitleTrack, bool) {
	for _, t := range m.SubtitleTracks {
		if t.Index == index {
			return t, true
		}
	}
	return SubtitleTrack{}, false
}

// Label returns a short human-readable description of the track, preferring
// language over title (e.g. "2: eng").
func (t SubtitleTrack) Label() string {
	switch {
	case t.Language != "" && t.Title != "":
		return fmt.Sprintf("%d: %s (%s)", t.Index, t.Language, t.Title)
	case t.Language != "":
		return fmt.Sprintf("%d: %s", t.Index, t.Language)
	case t.Title != "":
		return fmt.Sprintf("%d: %s", t.Index, t.Title)
	default:
		return fmt.Sprintf("%d: %s", t.Index, t.Codec)
	}
}
