package planner

import "github.com/backmassage/retrograde/internal/config"

// ClampBitrate forces a requested video bitrate into the device profile's
// accepted range. Command construction clamps rather than rejects so that a
// plan built from an out-of-range request still encodes something the
// hardware can play.
func ClampBitrate(kbps int) int {
	return clamp(kbps, config.MinVideoBitrate, config.MaxVideoBitrate)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
