package pipeline

import "time"

// Status is the terminal state of one file's conversion.
type Status int

const (
	StatusCompleted Status = iota
	StatusSkipped
	StatusFailed
)

// String returns the lowercase label stored in run history.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pipeline stage labels, recorded on failed outcomes so reports show where
// a file fell out.
const (
	StageProbe   = "probe"
	StagePlan    = "plan"
	StageBuild   = "build"
	StageExecute = "execute"
)

// Outcome is the terminal record for one input file. Stage and Reason are
// filled only for failures and skips.
type Outcome struct {
	Path        string
	Status      Status
	Stage       string
	Reason      string
	OutputBytes int64
}

// BatchResult is the ordered outcome list of a batch, one entry per
// attempted file in discovery order. It is complete only after the last
// file; an interrupted batch carries outcomes for the files reached.
type BatchResult struct {
	Outcomes []Outcome
}

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int
	Current          int
	Completed        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
	Elapsed          time.Duration
}

// SpaceSaved returns the aggregate byte difference between inputs and
// outputs. Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// count folds one outcome into the aggregate counters.
func (s *RunStats) count(o Outcome) {
	switch o.Status {
	case StatusCompleted:
		s.Completed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.TotalOutputBytes += o.OutputBytes
}

// Recorder receives finalized outcomes as the batch progresses. The history
// store implements it; a nil Recorder disables recording.
type Recorder interface {
	RecordOutcome(o Outcome) error
	FinishRun(stats RunStats) error
}

// Hooks are the runner's optional observation points for live display.
// Index is 1-based. Any hook may be nil.
type Hooks struct {
	FileStart func(index, total int, path string)
	Progress  func(index, total int, path string, percent int)
	FileDone  func(index, total int, outcome Outcome)
}
