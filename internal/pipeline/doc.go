// Package pipeline orchestrates the batch: input discovery, the strictly
// sequential per-file conversion loop, and aggregate reporting.
//
// The Runner contains every per-file error to a failed outcome and keeps
// going; a batch always finishes with one outcome per attempted file.
// Inspect is the read-only variant that prints what a run would do.
// Split across discover.go, runner.go, stats.go, and inspect.go.
package pipeline
