package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressLineTTY(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressLine(&buf, true)

	p.Start(1, 3, "movie.mkv")
	if !strings.Contains(buf.String(), "\r 1/3: Converting movie.mkv...") {
		t.Errorf("start line missing, got %q", buf.String())
	}

	p.Percent(50)
	if !strings.Contains(buf.String(), "Converting movie.mkv... 50%") {
		t.Errorf("percent redraw missing, got %q", buf.String())
	}

	p.Finish("Completed")
	out := buf.String()
	if !strings.Contains(out, "Converting movie.mkv... Completed") {
		t.Errorf("finish status missing, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("finished line not terminated")
	}
}

func TestProgressLineTTYRedrawCoversPrevious(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressLine(&buf, true)

	p.Start(1, 2, "a.mkv")
	p.Percent(100)
	buf.Reset()
	p.Percent(7)

	// Every redraw is padded to a fixed width so a shorter line fully
	// overwrites a longer one.
	line := strings.TrimPrefix(buf.String(), "\r")
	if len(line) < 80 {
		t.Errorf("redraw width %d, want at least 80", len(line))
	}
}

func TestProgressLineNonTTY(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressLine(&buf, false)

	p.Start(2, 10, "b.avi")
	p.Percent(25)
	p.Percent(80)
	if buf.Len() != 0 {
		t.Errorf("non-tty wrote during progress: %q", buf.String())
	}

	p.Finish("Skipped, file already existed!")
	want := "  2/10: Converting b.avi... Skipped, file already existed!\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestProgressLineIndexAlignment(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressLine(&buf, false)

	p.Start(3, 120, "c.mp4")
	p.Finish("Completed")
	if !strings.HasPrefix(buf.String(), "   3/120: ") {
		t.Errorf("index not right-aligned, got %q", buf.String())
	}
}

func TestProgressLineTruncatesLongName(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressLine(&buf, false)

	long := strings.Repeat("x", 80) + ".mkv"
	p.Start(1, 1, long)
	p.Finish("Completed")
	out := buf.String()
	if !strings.Contains(out, "…") {
		t.Errorf("long name not truncated: %q", out)
	}
	if strings.Contains(out, long) {
		t.Error("full name printed despite truncation")
	}
}
