// Package config holds runtime configuration: defaults, YAML config file
// loading, and validation. All defaults match the legacy converter script for
// parity with outputs produced by earlier versions.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Video bitrate bounds accepted by the target device profile, in kbps.
const (
	MinVideoBitrate = 1000
	MaxVideoBitrate = 9000
)

// --- Enum types for validated string fields ---

// SubtitleMode selects the subtitle burn-in source.
type SubtitleMode string

const (
	SubNone     SubtitleMode = "none"     // No burn-in (default).
	SubInternal SubtitleMode = "internal" // Burn an embedded subtitle track.
	SubExternal SubtitleMode = "external" // Burn a sidecar .srt/.ass file.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [Default], optionally
// overlaid by a YAML config file via [Load], then mutated by CLI flag binding
// before being passed (by pointer) to packages that need it. Fields are
// grouped by concern with inline documentation of defaults.
type Config struct {
	// Paths (set from positional args; a config file may preset them).
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	// Video encoding.
	VideoBitrate   int  `yaml:"video_bitrate"`    // Target kbps. Default: 3000. Valid: 1000-9000.
	CropToStandard bool `yaml:"crop_to_standard"` // Crop wide sources to the 4:3 preset.

	// Subtitle burn-in.
	SubtitleMode  SubtitleMode `yaml:"subtitle_mode"`  // none | internal | external. Default: none.
	SubtitleTrack int          `yaml:"subtitle_track"` // Internal mode: index into the probed subtitle list.
	SubtitleFile  string       `yaml:"subtitle_file"`  // External mode: fixed sidecar path. Empty = per-file lookup.

	// Behavior flags.
	Overwrite bool `yaml:"overwrite"` // Replace existing outputs instead of skipping them.
	DryRun    bool `yaml:"dry_run"`

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`    // Default: "auto".
	LogFile   string    `yaml:"log_file"` // Optional log file path.

	// Run history ledger.
	History   bool   `yaml:"history"`    // Default: true. Cleared by --no-history.
	HistoryDB string `yaml:"history_db"` // Default: "" (resolved to ~/.retrograde/history.db).

	// External tools.
	FfmpegPath  string `yaml:"ffmpeg_path"`  // Default: "ffmpeg" (resolved on PATH).
	FfprobePath string `yaml:"ffprobe_path"` // Default: "ffprobe".
}

// Default returns a Config with all defaults matching the legacy converter
// behavior. Used as the base before [Load] and flag binding apply overrides.
func Default() Config {
	return Config{
		VideoBitrate:   3000,
		CropToStandard: false,
		SubtitleMode:   SubNone,
		SubtitleTrack:  0,
		Overwrite:      false,
		DryRun:         false,
		Verbose:        false,
		ColorMode:      ColorAuto,
		History:        true,
		FfmpegPath:     "ffmpeg",
		FfprobePath:    "ffprobe",
	}
}

// Load returns [Default] overlaid with values from a YAML config file.
// When path is empty the usual candidate locations are tried; a missing file
// is not an error and simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML. Used by "config init" to produce a
// starting file the user can edit.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// findConfigFile returns the first existing candidate config path, or "".
func findConfigFile() string {
	candidates := []string{"retrograde.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "retrograde", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and value ranges. requirePaths additionally
// demands non-empty input and output directories (false for subcommands like
// check and history that run without them).
func (c *Config) Validate(requirePaths bool) error {
	switch c.SubtitleMode {
	case SubNone, SubInternal, SubExternal:
		// valid
	default:
		return errors.New("invalid subtitle mode (use 'none', 'internal' or 'external')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.VideoBitrate < MinVideoBitrate || c.VideoBitrate > MaxVideoBitrate {
		return fmt.Errorf("invalid video bitrate %d (use %d-%d kbps)",
			c.VideoBitrate, MinVideoBitrate, MaxVideoBitrate)
	}

	if c.SubtitleMode == SubInternal && c.SubtitleTrack < 0 {
		return errors.New("subtitle track must not be negative")
	}

	if !requirePaths {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents the pipeline from
// recursively discovering its own output files. Both arguments must be
// absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}

// ResolveHistoryDB returns the history database path: the configured value if
// set, otherwise ~/.retrograde/history.db, falling back to the working
// directory when the home directory cannot be determined.
func (c *Config) ResolveHistoryDB() string {
	if c.HistoryDB != "" {
		return c.HistoryDB
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".retrograde", "history.db")
	}
	return "retrograde-history.db"
}

// --- Context plumbing for command handlers ---

type contextKey string

const configKey contextKey = "config"

// WithConfig stores cfg in ctx for retrieval by command RunE handlers.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves the config stored by [WithConfig], or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey).(*Config)
	return cfg
}
