// Package metrics records per-stage timing and row counts for pipeline runs.
// Two recorders are provided: an expvar-backed recorder for process-local
// inspection without external dependencies, and a Prometheus recorder with
// optional HTTP exposition for batch runs long enough to scrape.
package metrics

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder accepts stage outcomes.
type Recorder interface {
	// ObserveStage records one completed stage invocation.
	ObserveStage(stage string, success bool, rowsOut int, duration time.Duration)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveStage(string, bool, int, time.Duration) {}

var expvarSeq uint64

// ExpvarRecorder publishes aggregate stage timings, row counts and result
// counters via expvar.
type ExpvarRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	rows      map[string]int64
	results   map[string]map[string]int64
}

// ExpvarSnapshot captures a read-only view of the recorded metrics.
type ExpvarSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Rows        map[string]int64            `json:"rows_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder constructs an expvar-backed recorder published under the
// supplied name. When name is empty, a unique identifier is generated.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("pipeline_stage_metrics_%d", id)
	}
	rec := &ExpvarRecorder{
		name:      name,
		durations: make(map[string]float64),
		rows:      make(map[string]int64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for stage, total := range r.durations {
		durations[stage] = total
	}
	rows := make(map[string]int64, len(r.rows))
	for stage, total := range r.rows {
		rows[stage] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for stage, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[stage] = cpy
	}
	return ExpvarSnapshot{
		DurationsMS: durations,
		Rows:        rows,
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

// ObserveStage records one stage outcome.
func (r *ExpvarRecorder) ObserveStage(stage string, success bool, rowsOut int, duration time.Duration) {
	if stage == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	ms := float64(duration) / float64(time.Millisecond)

	r.mu.Lock()
	r.durations[stage] += ms
	r.rows[stage] += int64(rowsOut)
	if _, ok := r.results[stage]; !ok {
		r.results[stage] = make(map[string]int64, 2)
	}
	r.results[stage][status]++
	r.mu.Unlock()
}
