package metrics

import (
	"errors"
	"testing"
	"time"
)

// captureBackend records every call for assertions.
type captureBackend struct {
	counters  map[string]float64
	durations map[string]float64
	labels    map[string]Labels
	flushed   int
}

func newCapture() *captureBackend {
	return &captureBackend{
		counters:  map[string]float64{},
		durations: map[string]float64{},
		labels:    map[string]Labels{},
	}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
	c.labels[name] = labels
}

func (c *captureBackend) ObserveDuration(name string, value float64, labels Labels) {
	c.durations[name] = value
	c.labels[name] = labels
}

func (c *captureBackend) Flush() error {
	c.flushed++
	return nil
}

func TestRecordStage(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	RecordStage("job1", "extract", nil, 250*time.Millisecond)

	if got := cap.counters["pipeline_stage_total"]; got != 1 {
		t.Fatalf("stage counter = %v, want 1", got)
	}
	if got := cap.labels["pipeline_stage_total"]["status"]; got != "success" {
		t.Fatalf("status label = %q, want success", got)
	}
	if got := cap.durations["pipeline_stage_duration_seconds"]; got != 0.25 {
		t.Fatalf("duration = %v, want 0.25", got)
	}

	RecordStage("job1", "load", errors.New("boom"), time.Second)
	if got := cap.labels["pipeline_stage_total"]["status"]; got != "failure" {
		t.Fatalf("status label = %q, want failure", got)
	}
}

func TestRecordRows(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	RecordRows("job1", "loaded", 42)
	RecordRows("job1", "loaded", 0)
	RecordRows("job1", "loaded", -5)

	if got := cap.counters["pipeline_rows_total"]; got != 42 {
		t.Fatalf("row counter = %v, want 42", got)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if cap.flushed != 1 {
		t.Fatalf("flushed = %d, want 1", cap.flushed)
	}
}
