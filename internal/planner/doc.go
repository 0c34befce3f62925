// Package planner turns probe results and user options into a
// ConversionPlan that the ffmpeg package consumes.
//
// Planning is pure decision-making per file: aspect handling (crop to the
// 4:3 preset or keep the wide frame), subtitle burn-in source, destination
// path, and the output size estimate. The only filesystem touch is the
// read-only sidecar lookup for external subtitles; nothing is written and
// no subprocess runs here.
package planner
