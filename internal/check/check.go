// Package check provides system diagnostics (the check subcommand) and
// pre-run dependency validation (CheckDeps) for ffmpeg, ffprobe, and the
// MPEG-4/MP3 encoders the output profile requires.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/retrograde/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound   = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound  = errors.New("ffprobe not found on PATH")
	ErrMpeg4Unavailable = errors.New("mpeg4 test encode failed (encoder missing from the ffmpeg build)")
	ErrMp3Unavailable   = errors.New("libmp3lame test encode failed (encoder missing from the ffmpeg build)")
)

// RunCheck reports availability of ffmpeg, ffprobe, and the encoders the
// output profile needs. It runs every check even after a failure and returns
// false if anything required is missing.
func RunCheck(cfg *config.Config, log zerolog.Logger) bool {
	ok := checkTool(cfg.FfmpegPath, "ffmpeg", log)
	ok = checkTool(cfg.FfprobePath, "ffprobe", log) && ok
	listEncoders(cfg.FfmpegPath, log)

	if runSilent(cfg.FfmpegPath, mpeg4TestArgs()...) {
		log.Info().Msg("mpeg4 encoder works")
	} else {
		log.Error().Msg("mpeg4 test encode failed")
		ok = false
	}
	if runSilent(cfg.FfmpegPath, mp3TestArgs()...) {
		log.Info().Msg("libmp3lame encoder works")
	} else {
		log.Error().Msg("libmp3lame test encode failed")
		ok = false
	}
	return ok
}

// checkTool verifies the tool resolves on PATH and logs its version line.
func checkTool(path, name string, log zerolog.Logger) bool {
	if _, err := exec.LookPath(path); err != nil {
		log.Error().Str("tool", name).Msg("not found on PATH")
		return false
	}
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		log.Warn().Str("tool", name).Err(err).Msg("found but -version failed")
		return true
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Info().Str("tool", name).Msg(firstLine)
	return true
}

// listEncoders logs the MPEG-4 and MP3 encoder lines reported by ffmpeg.
func listEncoders(ffmpegPath string, log zerolog.Logger) {
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn().Err(err).Msg("could not list encoders")
		return
	}
	for _, line := range strings.Split(string(out), "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "mpeg4") || strings.Contains(lower, "mp3") {
			log.Info().Str("encoder", strings.TrimSpace(line)).Msg("available")
		}
	}
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe must resolve on
// PATH and both target encoders must pass a short lavfi test encode.
// Returns a sentinel error on the first failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FfmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FfprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent(cfg.FfmpegPath, mpeg4TestArgs()...) {
		return ErrMpeg4Unavailable
	}
	if !runSilent(cfg.FfmpegPath, mp3TestArgs()...) {
		return ErrMp3Unavailable
	}
	return nil
}

// mpeg4TestArgs returns arguments for a minimal mpeg4 test encode.
// Shared by RunCheck and CheckDeps so both exercise the same encoder path.
func mpeg4TestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-c:v", "mpeg4",
		"-f", "null", "-",
	}
}

// mp3TestArgs returns arguments for a minimal libmp3lame test encode.
func mp3TestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "libmp3lame",
		"-f", "null", "-",
	}
}

// runSilent runs a command and reports whether it exited with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
