package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder assembles the -vf filter chain. Filters are applied in the
// order they are added; the converter relies on crop running before scale so
// the scaler always sees the trimmed frame.
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates an empty filter builder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{filters: make([]string, 0, 3)}
}

// Crop adds a crop filter. Zero or negative dimensions are ignored so
// chaining can continue.
func (fb *FilterBuilder) Crop(width, height, x, y int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("crop=%d:%d:%d:%d", width, height, x, y))
	return fb
}

// Scale adds a scale filter.
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// BurnInternal adds a subtitles filter reading track si (0-based among the
// input's subtitle streams) from the source container itself.
func (fb *FilterBuilder) BurnInternal(sourcePath string, si int) *FilterBuilder {
	fb.filters = append(fb.filters, fmt.Sprintf("subtitles=%s:si=%d", escapeFilterPath(sourcePath), si))
	return fb
}

// BurnExternal adds a subtitles filter reading a sidecar file.
func (fb *FilterBuilder) BurnExternal(subtitlePath string) *FilterBuilder {
	fb.filters = append(fb.filters, "subtitles="+escapeFilterPath(subtitlePath))
	return fb
}

// Build returns the comma-joined filter chain, or "" when empty.
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

// escapeFilterPath escapes a path for use as a filter argument. The filter
// graph parser treats  \ ' : , ; [ ]  specially (argument and graph level),
// so each gets a backslash.
func escapeFilterPath(p string) string {
	var b strings.Builder
	b.Grow(len(p) + 8)
	for _, r := range p {
		switch r {
		case '\\', '\'', ':', ',', ';', '[', ']':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
