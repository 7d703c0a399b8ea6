package pipeline

import (
	"fmt"
	"time"
)

// State is the orchestrator's lifecycle position. Transitions are strictly
// forward: idle, extracting, transforming, loading, completed. Any stage
// failure moves to failed, which absorbs; a failed pipeline cannot run again.
type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateTransforming State = "transforming"
	StateLoading      State = "loading"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// StageResult captures one stage's row movement and timing.
type StageResult struct {
	Name    string
	RowsIn  int
	RowsOut int
	Elapsed time.Duration
	OK      bool
}

// RunResult is the full accounting of one pipeline run.
type RunResult struct {
	Pipeline    string
	Source      string
	Destination string

	Extract   StageResult
	Transform StageResult
	Load      StageResult

	Status      State
	FailedStage string
	Started     time.Time
	Finished    time.Time
}

// RowsLoaded is the number of rows written to the destination; zero unless
// the run completed.
func (r *RunResult) RowsLoaded() int {
	return r.Load.RowsOut
}

// Summary renders a one-line, log-friendly account of the run.
func (r *RunResult) Summary() string {
	if r.Status == StateCompleted {
		return fmt.Sprintf(
			"pipeline=%s status=%s extracted=%d transformed=%d loaded=%d elapsed=%s",
			r.Pipeline, r.Status,
			r.Extract.RowsOut, r.Transform.RowsOut, r.Load.RowsOut,
			r.Finished.Sub(r.Started).Truncate(time.Millisecond),
		)
	}
	return fmt.Sprintf(
		"pipeline=%s status=%s failed_stage=%s elapsed=%s",
		r.Pipeline, r.Status, r.FailedStage,
		r.Finished.Sub(r.Started).Truncate(time.Millisecond),
	)
}
