// Package events provides per-run observability for analysis
// pipelines. A Recorder is created for each scan and passed into every
// component; it keeps an append-only event log, counts search
// operations, and optionally forwards events to a streaming sink.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Type classifies a pipeline event.
type Type string

const (
	TypeInfo       Type = "info"
	TypeStep       Type = "step"
	TypeSearch     Type = "search"
	TypeClaimStart Type = "claim_start"
	TypeClaim      Type = "claim"
	TypeSource     Type = "source"
	TypeBias       Type = "bias"
	TypeMedia      Type = "media"
	TypeVerdict    Type = "verdict"
	TypeResult     Type = "result"
	TypeError      Type = "error"
)

// Event is one typed entry in the run's event stream.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      Type           `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink receives events as they are recorded. Implementations must be
// safe for concurrent calls; verification tasks emit in parallel.
type Sink interface {
	Send(Event)
}

// SearchSummary aggregates the run's search operations.
type SearchSummary struct {
	Total      int `json:"total_searches"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Recorder is the run-scoped observability context. It is the only
// mutable state shared across concurrent verification tasks; all
// access is guarded by its mutex.
type Recorder struct {
	log  *zap.Logger
	sink Sink

	mu         sync.Mutex
	events     []Event
	searches   int
	searchFail int
}

// NewRecorder creates a recorder for one analysis run. log may not be
// nil; sink may be nil when no transport is observing progress.
func NewRecorder(log *zap.Logger, sink Sink) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{log: log, sink: sink}
}

// Logger returns the run's structured logger.
func (r *Recorder) Logger() *zap.Logger { return r.log }

func (r *Recorder) record(typ Type, msg string, data map[string]any) Event {
	ev := Event{
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Message:   msg,
		Data:      data,
	}

	r.mu.Lock()
	r.events = append(r.events, ev)
	if typ == TypeSearch {
		r.searches++
		if ok, _ := data["success"].(bool); !ok {
			r.searchFail++
		}
	}
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		sink.Send(ev)
	}
	return ev
}

// Info records a free-form progress message.
func (r *Recorder) Info(msg string, fields ...zap.Field) {
	r.log.Info(msg, fields...)
	r.record(TypeInfo, msg, nil)
}

// Step records a numbered pipeline stage transition.
func (r *Recorder) Step(step, total int, name, status string) {
	r.log.Info("pipeline step",
		zap.Int("step", step), zap.Int("total", total),
		zap.String("name", name), zap.String("status", status))
	r.record(TypeStep, name, map[string]any{
		"step":   step,
		"total":  total,
		"name":   name,
		"status": status,
	})
}

// Search records one evidence-search operation.
func (r *Recorder) Search(query string, success bool, resultPreview string) {
	r.log.Debug("evidence search",
		zap.String("query", query), zap.Bool("success", success))
	r.record(TypeSearch, query, map[string]any{
		"query":          query,
		"success":        success,
		"result_preview": resultPreview,
	})
}

// ClaimStart records that verification of a claim has begun.
func (r *Recorder) ClaimStart(id, text string) {
	r.log.Info("claim verification started", zap.String("id", id))
	r.record(TypeClaimStart, id, map[string]any{
		"id":   id,
		"text": text,
	})
}

// Claim records the outcome of one claim verification.
func (r *Recorder) Claim(id, text, status string, confidence float64, note string) {
	r.log.Info("claim verified",
		zap.String("id", id), zap.String("status", status),
		zap.Float64("confidence", confidence))
	r.record(TypeClaim, id+": "+status, map[string]any{
		"id":         id,
		"text":       text,
		"status":     status,
		"confidence": confidence,
		"note":       note,
	})
}

// Stage records the completion of a non-claim analysis stage
// (source, bias, media, verdict).
func (r *Recorder) Stage(typ Type, msg string, data map[string]any) {
	r.log.Info(msg, zap.String("stage", string(typ)))
	r.record(typ, msg, data)
}

// Result records the terminal success event carrying the full report.
func (r *Recorder) Result(report any) {
	r.log.Info("analysis complete")
	r.record(TypeResult, "Analysis complete", map[string]any{"result": report})
}

// Error records the terminal failure event.
func (r *Recorder) Error(msg string) {
	r.log.Error(msg)
	r.record(TypeError, msg, map[string]any{"message": msg})
}

// Events returns a copy of all recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// SearchSummary returns aggregate search counts for the run.
func (r *Recorder) SearchSummary() SearchSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SearchSummary{
		Total:      r.searches,
		Successful: r.searches - r.searchFail,
		Failed:     r.searchFail,
	}
}
