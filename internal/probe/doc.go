// Package probe provides ffprobe-based media inspection and the typed
// MediaInfo record the planner consumes. A single JSON call per file yields
// the primary video geometry, the container duration, and the ordered
// subtitle track list.
//
// Types:
//   - MediaInfo, SubtitleTrack
//
// Functions:
//   - Probe(ctx, ffprobePath, path) → *MediaInfo
//     Runs ffprobe -print_format json -show_format -show_streams.
//   - ParseJSON(data) → *MediaInfo
//     Wire-to-domain conversion, exported for binary-free tests.
//
// Aspect-ratio helpers (WiderThanStandard, AspectRatio) live in aspect.go.
package probe
