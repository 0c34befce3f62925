package probe

// WiderThanStandard returns true if the primary video frame is strictly
// wider than 4:3. Integer cross-multiplication avoids float comparison:
// w/h > 4/3 exactly when 3w > 4h. Mirrors the legacy aspect check that
// decided between the 4:3 and widescreen device presets.
func (m *MediaInfo) WiderThanStandard() bool {
	if m.Width <= 0 || m.Height <= 0 {
		return false
	}
	return 3*m.Width > 4*m.Height
}

// AspectRatio returns width/height, or 0 when the geometry is unknown.
func (m *MediaInfo) AspectRatio() float64 {
	if m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}
