package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/display"
	"github.com/backmassage/retrograde/internal/ffmpeg"
	"github.com/backmassage/retrograde/internal/planner"
	"github.com/backmassage/retrograde/internal/probe"
	"github.com/backmassage/retrograde/internal/subtitles"
)

// Files smaller than this cannot hold a playable video stream; they are
// failed without wasting a probe call.
const minFileSize = 1000

// Runner drives the sequential batch loop: overwrite policy, probe, plan,
// build, execute with live progress, one terminal outcome per file. The
// probe and transcode functions are fields so tests can substitute them;
// NewRunner wires the real ones.
type Runner struct {
	cfg   *config.Config
	log   zerolog.Logger
	rec   Recorder
	hooks Hooks

	probeFile func(ctx context.Context, path string) (*probe.MediaInfo, error)
	transcode func(ctx context.Context, args []string, totalSeconds float64, onProgress func(int)) (ffmpeg.Result, error)
}

// NewRunner creates a batch runner over cfg. rec may be nil to disable
// history recording.
func NewRunner(cfg *config.Config, log zerolog.Logger, rec Recorder, hooks Hooks) *Runner {
	executor := ffmpeg.NewExecutor(log, cfg.FfmpegPath)
	return &Runner{
		cfg:   cfg,
		log:   log.With().Str("component", "pipeline").Logger(),
		rec:   rec,
		hooks: hooks,
		probeFile: func(ctx context.Context, path string) (*probe.MediaInfo, error) {
			return probe.Probe(ctx, cfg.FfprobePath, path)
		},
		transcode: executor.Run,
	}
}

// Run processes files in discovery order and returns the ordered outcomes
// with aggregate stats. Every per-file error becomes a failed outcome for
// that file only; the batch always moves on. Cancellation stops between
// files, and the file being converted is killed through the context and
// recorded as failed.
func (r *Runner) Run(ctx context.Context, files []string) (*BatchResult, RunStats) {
	stats := RunStats{Total: len(files)}
	start := time.Now()

	result := &BatchResult{Outcomes: make([]Outcome, 0, len(files))}

	for i, path := range files {
		if ctx.Err() != nil {
			r.log.Warn().Msg("interrupted, stopping batch")
			break
		}
		stats.Current = i + 1

		outcome := r.processFile(ctx, i+1, stats.Total, path, &stats)
		result.Outcomes = append(result.Outcomes, outcome)
		stats.count(outcome)

		if r.rec != nil {
			if err := r.rec.RecordOutcome(outcome); err != nil {
				r.log.Warn().Err(err).Msg("history record failed")
			}
		}
		if r.hooks.FileDone != nil {
			r.hooks.FileDone(i+1, stats.Total, outcome)
		}
	}

	stats.Elapsed = time.Since(start)
	if r.rec != nil {
		if err := r.rec.FinishRun(stats); err != nil {
			r.log.Warn().Err(err).Msg("history finalize failed")
		}
	}
	return result, stats
}

// processFile takes one file through the full pipeline and returns its
// terminal outcome.
func (r *Runner) processFile(ctx context.Context, index, total int, path string, stats *RunStats) Outcome {
	base := filepath.Base(path)
	if r.hooks.FileStart != nil {
		r.hooks.FileStart(index, total, path)
	}
	r.log.Info().Int("n", index).Int("of", total).Str("file", base).Msg("processing")

	// --- Overwrite policy ---
	dest := planner.OutputPath(r.cfg.OutputDir, path)
	if !r.cfg.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			r.log.Info().Str("file", base).Msg("skip, destination exists")
			return Outcome{Path: path, Status: StatusSkipped, Reason: "destination exists"}
		}
	}

	// --- Validate ---
	fi, err := os.Stat(path)
	if err != nil {
		r.log.Error().Str("file", base).Msg("file not found")
		return failed(path, StageProbe, "file not found")
	}
	if fi.Size() < minFileSize {
		r.log.Error().Str("file", base).Msg("file too small, possibly corrupt")
		return failed(path, StageProbe, "file too small")
	}

	// --- Probe ---
	info, err := r.probeFile(ctx, path)
	if err != nil {
		r.log.Error().Err(err).Str("file", base).Msg("probe failed")
		return failed(path, StageProbe, err.Error())
	}

	// --- Plan ---
	plan, err := planner.BuildPlan(r.cfg, info, r.cfg.OutputDir)
	if err != nil {
		r.log.Error().Err(err).Str("file", base).Msg("planning failed")
		return failed(path, StagePlan, err.Error())
	}

	// A sidecar in a legacy codepage is decoded to a UTF-8 temp copy for the
	// burn-in filter; an unreadable sidecar degrades to no burn, same as a
	// missing one.
	if plan.Subtitle.Source == planner.BurnExternal {
		usePath, cleanup, err := subtitles.EnsureUTF8(plan.Subtitle.Path)
		if err != nil {
			r.log.Warn().Err(err).Str("file", base).Msg("sidecar unusable, converting without subtitles")
			plan.Subtitle = planner.SubtitleBurn{}
		} else {
			defer cleanup()
			plan.Subtitle.Path = usePath
		}
	}

	// --- Build ---
	args, err := ffmpeg.BuildArgs(plan, r.cfg.VideoBitrate)
	if err != nil {
		r.log.Error().Err(err).Str("file", base).Msg("command build failed")
		return failed(path, StageBuild, err.Error())
	}

	r.log.Debug().
		Str("file", base).
		Str("output", plan.OutputResolution()).
		Bool("crop", plan.NeedsCrop()).
		Str("subtitles", plan.Subtitle.String()).
		Msg("plan ready")

	// --- Dry run ---
	if r.cfg.DryRun {
		r.log.Info().Str("file", base).Str("dest", filepath.Base(plan.DestPath)).Msg("dry run, would convert")
		return Outcome{Path: path, Status: StatusCompleted, Reason: "dry run"}
	}

	// --- Execute ---
	onProgress := func(pct int) {
		if r.hooks.Progress != nil {
			r.hooks.Progress(index, total, path, pct)
		}
	}
	res, err := r.transcode(ctx, args, plan.Duration, onProgress)
	if err != nil {
		// Best effort: a truncated destination would otherwise look done.
		os.Remove(plan.DestPath)

		if ctx.Err() != nil {
			r.log.Warn().Str("file", base).Msg("interrupted mid-transcode")
			return failed(path, StageExecute, "interrupted")
		}

		reason := ffmpeg.ClassifyFailure(res.Tail)
		if reason == "" {
			reason = err.Error()
		}
		ev := r.log.Error().Str("file", base).Int("exit", res.ExitCode).Str("reason", reason)
		if n := len(res.Tail); n > 0 {
			start := n - 5
			if start < 0 {
				start = 0
			}
			ev = ev.Strs("stderr", res.Tail[start:])
		}
		ev.Msg("transcode failed")
		return failed(path, StageExecute, reason)
	}

	// --- Finalize ---
	var outBytes int64
	if outInfo, err := os.Stat(plan.DestPath); err == nil {
		outBytes = outInfo.Size()
	}
	stats.TotalInputBytes += fi.Size()

	r.log.Info().
		Str("file", base).
		Str("size", display.FormatBytes(outBytes)).
		Msg("completed")
	return Outcome{Path: path, Status: StatusCompleted, OutputBytes: outBytes}
}

func failed(path, stage, reason string) Outcome {
	return Outcome{Path: path, Status: StatusFailed, Stage: stage, Reason: reason}
}
