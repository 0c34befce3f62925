package planner

// EstimateOutputBytes predicts the output file size for one conversion:
// clamped video bitrate plus the profile's constant audio bitrate over the
// source duration. Container overhead is ignored; the figure feeds the
// pre-run summary and the end-of-run size comparison, not accounting.
// Returns 0 when the duration is unknown.
func EstimateOutputBytes(videoKbps int, durationSeconds float64) int64 {
	if durationSeconds <= 0 {
		return 0
	}
	totalKbps := ClampBitrate(videoKbps) + AudioBitrateKbps
	return int64(float64(totalKbps) * 1000 / 8 * durationSeconds)
}
