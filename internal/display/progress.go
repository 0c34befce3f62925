package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ProgressLine renders the per-file conversion status line. On a terminal the
// line is redrawn in place as percentages arrive; off-terminal nothing is
// drawn until [ProgressLine.Finish], which prints one complete line per file
// so piped output and log captures stay readable.
type ProgressLine struct {
	w      io.Writer
	tty    bool
	prefix string
}

// NewProgressLine returns a progress line writing to w. tty selects between
// in-place redraw and line-per-file output.
func NewProgressLine(w io.Writer, tty bool) *ProgressLine {
	return &ProgressLine{w: w, tty: tty}
}

// Start begins the line for file index of total (1-based). The index column
// is right-aligned to the width of total so a long batch stays lined up.
func (p *ProgressLine) Start(index, total int, name string) {
	width := len(strconv.Itoa(total))
	if len(name) > 46 {
		name = name[:45] + "…"
	}
	p.prefix = fmt.Sprintf(" %*d/%d: Converting %s...", width, index, total, name)
	if p.tty {
		p.redraw("")
	}
}

// Percent redraws the line with the current percentage.
func (p *ProgressLine) Percent(pct int) {
	if !p.tty {
		return
	}
	p.redraw(fmt.Sprintf(" %d%%", pct))
}

// Finish completes the line with a status phrase and a trailing newline.
func (p *ProgressLine) Finish(status string) {
	if p.tty {
		p.redraw(" " + status)
		fmt.Fprintln(p.w)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.prefix, status)
}

// redraw rewrites the whole line, padded so a shorter redraw fully covers
// the previous one.
func (p *ProgressLine) redraw(suffix string) {
	line := p.prefix + suffix
	if len(line) < 80 {
		line += strings.Repeat(" ", 80-len(line))
	}
	fmt.Fprintf(p.w, "\r%s", line)
}
