package ffmpeg

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"regexp"
	"strconv"
)

// Stderr patterns of a running transcode: the input header's total duration
// and the periodically rewritten stats line's elapsed time.
var (
	reDuration = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	reElapsed  = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
)

// Tracker turns transcode stderr lines into a monotonic percent-complete
// signal. The total duration usually comes from the probe; when the probe
// could not report one, the Duration header the transcoder prints for its
// input serves as fallback.
type Tracker struct {
	total   float64
	percent int
}

// NewTracker creates a tracker for a source of totalSeconds length. Zero
// means unknown; the tracker then waits for the stream's Duration header
// before it can compute percentages.
func NewTracker(totalSeconds float64) *Tracker {
	return &Tracker{total: totalSeconds}
}

// Feed consumes one stderr line. It returns (percent, true) when the line
// advanced the progress signal, and (0, false) for every other line, which
// is ignored rather than treated as an error. Percent never decreases, even
// when the underlying stream reports a regression.
func (t *Tracker) Feed(line string) (int, bool) {
	if t.total <= 0 {
		if m := reDuration.FindStringSubmatch(line); m != nil {
			t.total = clockSeconds(m[1], m[2], m[3])
		}
	}

	m := reElapsed.FindStringSubmatch(line)
	if m == nil || t.total <= 0 {
		return 0, false
	}

	elapsed := clockSeconds(m[1], m[2], m[3])
	pct := int(math.Round(100 * elapsed / t.total))
	if pct > 100 {
		pct = 100
	}
	if pct > t.percent {
		t.percent = pct
	}
	return t.percent, true
}

// Percent returns the highest percent seen so far.
func (t *Tracker) Percent() int {
	return t.percent
}

// tailLines is how many trailing stderr lines are kept for failure reports.
const tailLines = 40

// MonitorStream drains r until EOF, feeding every line to the tracker and
// reporting each progress update through onProgress (which may be nil). The
// stream must be consumed continuously or the transcoder blocks on a full
// pipe, so this runs for the whole life of the subprocess. The return value
// is the tail of non-empty lines, kept for failure classification.
func MonitorStream(r io.Reader, tracker *Tracker, onProgress func(percent int)) []string {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanCROrLF)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var tail []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if len(tail) == tailLines {
			copy(tail, tail[1:])
			tail = tail[:tailLines-1]
		}
		tail = append(tail, line)

		if pct, ok := tracker.Feed(line); ok && onProgress != nil {
			onProgress(pct)
		}
	}
	return tail
}

// scanCROrLF is a bufio.SplitFunc that terminates tokens on \r as well as
// \n, since the transcoder rewrites its stats line in place with bare
// carriage returns. \r\n counts as a single terminator.
func scanCROrLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// clockSeconds converts a parsed HH:MM:SS.ss clock into seconds.
func clockSeconds(h, m, s string) float64 {
	hours, _ := strconv.ParseFloat(h, 64)
	minutes, _ := strconv.ParseFloat(m, 64)
	seconds, _ := strconv.ParseFloat(s, 64)
	return hours*3600 + minutes*60 + seconds
}
