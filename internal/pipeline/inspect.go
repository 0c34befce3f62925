package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/display"
	"github.com/backmassage/retrograde/internal/planner"
	"github.com/backmassage/retrograde/internal/probe"
	"github.com/backmassage/retrograde/internal/term"
)

// planRow holds one probed file's planned conversion for the report table.
type planRow struct {
	Name     string
	Source   string // "1920x1080"
	Length   string // "1:51:40"
	Output   string // "640x480 crop" or "854x480"
	Burn     string // resolved burn-in source
	EstBytes int64
}

// Inspect probes every file, plans it, and prints the would-be conversion
// table without touching the output directory. Files that cannot be probed
// or planned are listed with the reason instead of a plan.
func Inspect(ctx context.Context, cfg *config.Config, log zerolog.Logger, files []string) error {
	if len(files) == 0 {
		log.Warn().Str("input", cfg.InputDir).Msg("no video files found")
		return nil
	}

	total := len(files)
	log.Info().Int("files", total).Str("input", cfg.InputDir).Msg("inspecting")

	isTTY := term.IsTerminal(os.Stdout)
	var rows []planRow
	var broken []string
	var estTotal int64

	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProbeProgress()
			}
			log.Warn().Msg("interrupted")
			return ctx.Err()
		}

		printProbeProgress(isTTY, i+1, total, filepath.Base(path))

		info, err := probe.Probe(ctx, cfg.FfprobePath, path)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: probe failed", filepath.Base(path)))
			continue
		}

		plan, err := planner.BuildPlan(cfg, info, cfg.OutputDir)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}

		est := planner.EstimateOutputBytes(cfg.VideoBitrate, plan.Duration)
		estTotal += est

		output := plan.OutputResolution()
		if plan.NeedsCrop() {
			output += " crop"
		}

		// Surface embedded tracks even when nothing will burn, so the user
		// can see what --subtitles internal would have to work with.
		burn := plan.Subtitle.String()
		if plan.Subtitle.Source == planner.BurnNone && len(info.SubtitleTracks) > 0 {
			burn = fmt.Sprintf("none (%d embedded)", len(info.SubtitleTracks))
		}

		rows = append(rows, planRow{
			Name:     filepath.Base(path),
			Source:   info.Resolution(),
			Length:   display.FormatClock(info.Duration),
			Output:   output,
			Burn:     burn,
			EstBytes: est,
		})
	}

	if isTTY {
		clearProbeProgress()
	}

	if len(rows) > 0 {
		printPlanTable(os.Stdout, rows)
	}
	for _, b := range broken {
		log.Warn().Msg(b)
	}

	log.Info().
		Int("planned", len(rows)).
		Int("unreadable", len(broken)).
		Str("estimated_output", "~"+display.FormatBytes(estTotal)).
		Int("bitrate_kbps", cfg.VideoBitrate).
		Msg("inspection done")
	return nil
}

func printPlanTable(w io.Writer, rows []planRow) {
	nameW := len("File")
	srcW := len("Source")
	lenW := len("Length")
	outW := len("Output")
	burnW := len("Subtitles")

	for _, r := range rows {
		nameW = maxInt(nameW, len(r.Name))
		srcW = maxInt(srcW, len(r.Source))
		lenW = maxInt(lenW, len(r.Length))
		outW = maxInt(outW, len(r.Output))
		burnW = maxInt(burnW, len(r.Burn))
	}
	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %-*s  %s",
		nameW, "File",
		srcW, "Source",
		lenW, "Length",
		outW, "Output",
		burnW, "Subtitles",
		"Est. size",
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
			nameW, name,
			srcW, r.Source,
			lenW, r.Length,
			outW, r.Output,
			burnW, r.Burn,
			display.FormatBytes(r.EstBytes),
		)
	}
	fmt.Fprintln(w)
}

// printProbeProgress shows a live probe counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op.
func printProbeProgress(isTTY bool, current, total int, name string) {
	if !isTTY {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] ", current, total)

	maxName := 40
	if len(name) > maxName {
		name = name[:maxName-1] + "…"
	}
	status += name

	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(os.Stdout, "\r%s", status)
}

// clearProbeProgress erases the inline progress line on a TTY.
func clearProbeProgress() {
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
