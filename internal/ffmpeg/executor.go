package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// Result holds the outcome of a single transcode attempt.
type Result struct {
	ExitCode int
	Tail     []string // Trailing stderr lines, for failure reports.
}

// Executor runs transcode commands and streams their progress.
type Executor struct {
	log        zerolog.Logger
	ffmpegPath string
}

// NewExecutor creates an executor invoking the given ffmpeg binary.
func NewExecutor(log zerolog.Logger, ffmpegPath string) *Executor {
	return &Executor{
		log:        log.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath: ffmpegPath,
	}
}

// Run executes one transcode. Stderr is consumed for the whole life of the
// subprocess: progress updates go to onProgress (may be nil) and the tail is
// kept for failure reports. totalSeconds sizes the percent computation; pass
// 0 when unknown and the stream's own Duration header takes over.
//
// Cancelling ctx kills the subprocess; the returned error is then the
// context's. A non-zero exit comes back as an error alongside the exit code
// in the Result.
func (e *Executor) Run(ctx context.Context, args []string, totalSeconds float64, onProgress func(percent int)) (Result, error) {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stderr pipe: %w", err)
	}

	e.log.Debug().Strs("args", args).Msg("starting ffmpeg")

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start ffmpeg: %w", err)
	}

	// Drain to EOF before Wait; the pipe closes when the process exits.
	tracker := NewTracker(totalSeconds)
	tail := MonitorStream(stderr, tracker, onProgress)

	res := Result{Tail: tail}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("ffmpeg exited with code %d", res.ExitCode)
		}
		return res, fmt.Errorf("ffmpeg: %w", err)
	}

	e.log.Debug().Msg("ffmpeg completed")
	return res, nil
}
