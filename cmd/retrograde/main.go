// Command retrograde is the CLI entrypoint for the retrograde batch video
// converter. It loads configuration, validates paths and tooling, and runs
// the conversion pipeline; the check, inspect, history and config
// subcommands expose diagnostics, dry planning, and the run ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/backmassage/retrograde/internal/check"
	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/display"
	"github.com/backmassage/retrograde/internal/history"
	"github.com/backmassage/retrograde/internal/logging"
	"github.com/backmassage/retrograde/internal/pipeline"
	"github.com/backmassage/retrograde/internal/term"
)

// version and commit are injected at build time via -ldflags. When built
// with plain "go build" they retain these defaults.
var (
	version = "2.0.0"
	commit  = "unknown"
)

// Flag holders. Values are only copied into the config when the flag was
// actually set, so the config file keeps authority over untouched settings.
var (
	cfgFile           string
	flagBitrate       int
	flagCrop          bool
	flagSubtitles     string
	flagSubtitleTrack int
	flagSubtitleFile  string
	flagOverwrite     bool
	flagDryRun        bool
	flagVerbose       bool
	flagColor         string
	flagLogFile       string
	flagNoHistory     bool
	flagHistoryDB     string
	flagFfmpeg        string
	flagFfprobe       string
	historyLimit      int
)

// logCloser owns the optional log file sink; main closes it on the way out.
var logCloser func() error

func main() {
	code := run()
	if logCloser != nil {
		logCloser()
	}
	os.Exit(code)
}

func run() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:   "retrograde [input] [output]",
	Short: "Batch video converter for legacy media players",
	Long: `Retrograde batch-converts videos to XviD-tagged MPEG-4 AVI files at 480p
with MP3 audio, the profile old hardware players accept. Input is a single
video file or a directory scanned for known video extensions; each source
becomes <name>.avi in the output directory. Optional center-crop to 4:3 and
subtitle burn-in (embedded track or sidecar .srt/.ass) happen in the same
encoding pass.`,
	Version:      version + " (" + commit + ")",
	Args:         cobra.RangeArgs(0, 2),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		closer, err := logging.Setup(&cfg)
		if err != nil {
			return err
		}
		logCloser = closer
		cmd.SetContext(config.WithConfig(cmd.Context(), &cfg))
		return nil
	},
	RunE: runConvert,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: retrograde.yaml, then ~/.config/retrograde/config.yaml)")
	pf.IntVarP(&flagBitrate, "bitrate", "b", 3000, "video bitrate in kbps (1000-9000)")
	pf.BoolVar(&flagCrop, "crop", false, "center-crop widescreen sources to 4:3")
	pf.StringVar(&flagSubtitles, "subtitles", "none", "subtitle burn-in: none, internal or external")
	pf.IntVar(&flagSubtitleTrack, "subtitle-track", 0, "subtitle track index for internal burn-in")
	pf.StringVar(&flagSubtitleFile, "subtitle-file", "", "fixed subtitle file for external burn-in")
	pf.BoolVarP(&flagOverwrite, "overwrite", "y", false, "replace existing output files")
	pf.BoolVarP(&flagDryRun, "dry-run", "n", false, "plan every file but do not convert")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&flagColor, "color", "auto", "color output: auto, always or never")
	pf.StringVar(&flagLogFile, "log-file", "", "append logs to a file")
	pf.BoolVar(&flagNoHistory, "no-history", false, "do not record this run in the history ledger")
	pf.StringVar(&flagHistoryDB, "history-db", "", "history database path (default: ~/.retrograde/history.db)")
	pf.StringVar(&flagFfmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary path")
	pf.StringVar(&flagFfprobe, "ffprobe", "ffprobe", "ffprobe binary path")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")

	rootCmd.AddCommand(checkCmd, inspectCmd, historyCmd, configCmd)
	configCmd.AddCommand(configInitCmd)
}

// applyFlags copies explicitly-set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("bitrate") {
		cfg.VideoBitrate = flagBitrate
	}
	if f.Changed("crop") {
		cfg.CropToStandard = flagCrop
	}
	if f.Changed("subtitles") {
		cfg.SubtitleMode = config.SubtitleMode(flagSubtitles)
	}
	if f.Changed("subtitle-track") {
		cfg.SubtitleTrack = flagSubtitleTrack
	}
	if f.Changed("subtitle-file") {
		cfg.SubtitleFile = flagSubtitleFile
	}
	if f.Changed("overwrite") {
		cfg.Overwrite = flagOverwrite
	}
	if f.Changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
	if f.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if f.Changed("color") {
		cfg.ColorMode = config.ColorMode(flagColor)
	}
	if f.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if f.Changed("no-history") {
		cfg.History = !flagNoHistory
	}
	if f.Changed("history-db") {
		cfg.HistoryDB = flagHistoryDB
	}
	if f.Changed("ffmpeg") {
		cfg.FfmpegPath = flagFfmpeg
	}
	if f.Changed("ffprobe") {
		cfg.FfprobePath = flagFfprobe
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	if len(args) > 0 {
		cfg.InputDir = config.NormalizeDirArg(args[0])
	}
	if len(args) > 1 {
		cfg.OutputDir = config.NormalizeDirArg(args[1])
	}
	if err := cfg.Validate(true); err != nil {
		return err
	}

	display.PrintBanner()

	// Input must exist, output is created if needed, and output must not be
	// inside input so the scanner never picks up its own results.
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("input not found: %s", cfg.InputDir)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("cannot resolve output path: %w", err)
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		return err
	}

	log.Info().Msgf("retrograde v%s (%s)", version, commit)
	log.Info().
		Str("in", cfg.InputDir).
		Str("out", cfg.OutputDir).
		Int("bitrate_kbps", cfg.VideoBitrate).
		Bool("crop", cfg.CropToStandard).
		Str("subtitles", string(cfg.SubtitleMode)).
		Msg("batch settings")
	if cfg.DryRun {
		log.Warn().Msg("dry run, no files will be written")
	}

	if err := check.CheckDeps(cfg); err != nil {
		return err
	}

	files, err := pipeline.Discover(cfg.InputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn().Str("path", cfg.InputDir).Msg("no video found in the given path")
		return nil
	}

	// Cancel between files (and mid-transcode) on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Warn().Msg("interrupt received, stopping")
		cancel()
	}()

	var rec pipeline.Recorder
	if cfg.History && !cfg.DryRun {
		store, err := history.Open(cfg.ResolveHistoryDB())
		if err != nil {
			log.Warn().Err(err).Msg("history disabled, could not open ledger")
		} else {
			defer store.Close()
			rr, err := store.StartRun(cfg, len(files))
			if err != nil {
				log.Warn().Err(err).Msg("history disabled, could not start run")
			} else {
				rec = rr
				log.Debug().Str("run_id", rr.ID()).Msg("recording run")
			}
		}
	}

	line := display.NewProgressLine(os.Stdout, term.IsTerminal(os.Stdout))
	hooks := pipeline.Hooks{
		FileStart: func(index, total int, path string) {
			line.Start(index, total, filepath.Base(path))
		},
		Progress: func(index, total int, path string, percent int) {
			line.Percent(percent)
		},
		FileDone: func(index, total int, o pipeline.Outcome) {
			line.Finish(statusPhrase(cfg.DryRun, o))
		},
	}

	runner := pipeline.NewRunner(cfg, log.Logger, rec, hooks)
	_, stats := runner.Run(ctx, files)

	log.Info().
		Int("completed", stats.Completed).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("elapsed", stats.Elapsed).
		Str("output_total", display.FormatBytes(stats.TotalOutputBytes)).
		Str("space_saved", display.FormatBytesWithSign(stats.SpaceSaved())).
		Msg("batch finished")

	if ctx.Err() != nil {
		return errors.New("interrupted")
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", stats.Failed, stats.Total)
	}
	return nil
}

// statusPhrase maps an outcome to the text that ends its console line.
func statusPhrase(dryRun bool, o pipeline.Outcome) string {
	switch o.Status {
	case pipeline.StatusCompleted:
		if dryRun {
			return term.Cyan + "Planned (dry run)" + term.NC
		}
		return term.Green + "Completed" + term.NC
	case pipeline.StatusSkipped:
		return term.Yellow + "Skipped, file already existed!" + term.NC
	default:
		return term.Red + "Failed: " + o.Reason + term.NC
	}
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify ffmpeg, ffprobe and the required encoders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if !check.RunCheck(cfg, log.Logger) {
			return errors.New("system check failed")
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [input]",
	Short: "Probe sources and show the conversion plan without converting",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if len(args) > 0 {
			cfg.InputDir = config.NormalizeDirArg(args[0])
		}
		if cfg.InputDir == "" {
			return errors.New("need an input path")
		}
		if err := cfg.Validate(false); err != nil {
			return err
		}
		files, err := pipeline.Discover(cfg.InputDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			log.Warn().Str("path", cfg.InputDir).Msg("no video found in the given path")
			return nil
		}
		return pipeline.Inspect(cmd.Context(), cfg, log.Logger, files)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent conversion runs from the ledger",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		store, err := history.Open(cfg.ResolveHistoryDB())
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 0 {
			runs, err := store.RecentRuns(historyLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				log.Info().Msg("no recorded runs")
				return nil
			}
			printRuns(os.Stdout, runs)
			return nil
		}

		id, err := store.ResolveRunID(args[0])
		if err != nil {
			return err
		}
		files, err := store.RunFiles(id)
		if err != nil {
			return err
		}
		printRunFiles(os.Stdout, id, files)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config file commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file with defaults",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "retrograde.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		cfg := config.Default()
		if err := cfg.Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func printRuns(w io.Writer, runs []history.Run) {
	fmt.Fprintf(w, "%-10s  %-16s  %5s  %4s  %4s  %4s  %10s\n",
		"RUN", "STARTED", "FILES", "OK", "SKIP", "FAIL", "OUTPUT")
	unfinished := false
	for _, r := range runs {
		mark := ""
		if !r.Finished() {
			mark = " *"
			unfinished = true
		}
		fmt.Fprintf(w, "%-10s  %-16s  %5d  %4d  %4d  %4d  %10s%s\n",
			shortID(r.ID), r.StartedAt.Format("2006-01-02 15:04"), r.Total,
			r.Completed, r.Skipped, r.Failed, display.FormatBytes(r.OutputBytes), mark)
	}
	if unfinished {
		fmt.Fprintln(w, "* run did not finish")
	}
}

func printRunFiles(w io.Writer, id string, files []history.FileRecord) {
	if len(files) == 0 {
		fmt.Fprintf(w, "run %s has no recorded files\n", shortID(id))
		return
	}
	fmt.Fprintf(w, "%-4s  %-9s  %-40s  %s\n", "#", "STATUS", "FILE", "DETAIL")
	for _, f := range files {
		detail := f.Reason
		switch {
		case f.Status == "failed" && f.Stage != "":
			detail = f.Stage + ": " + f.Reason
		case f.Status == "completed" && f.OutputBytes > 0:
			detail = display.FormatBytes(f.OutputBytes)
		}
		fmt.Fprintf(w, "%-4d  %-9s  %-40s  %s\n",
			f.Position, f.Status, truncateName(filepath.Base(f.Path), 40), detail)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateName(name string, max int) string {
	if len(name) > max {
		return name[:max-1] + "…"
	}
	return name
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
