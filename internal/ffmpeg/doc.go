// Package ffmpeg turns a ConversionPlan into a runnable transcode: argument
// construction, subprocess execution, live progress parsing, and failure
// classification.
//
// BuildArgs is deterministic and side-effect free; the Executor owns the
// subprocess and drains its stderr through the progress Tracker so the pipe
// never fills. Split across builder.go, filters.go, executor.go,
// progress.go, and errors.go.
package ffmpeg
