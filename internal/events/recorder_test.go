package events

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestRecorder_EventOrder(t *testing.T) {
	rec := NewRecorder(zap.NewNop(), nil)

	rec.Info("starting")
	rec.Step(1, 6, "Extracting factual statements", "running")
	rec.ClaimStart("CLAIM_A1", "some claim")
	rec.Claim("CLAIM_A1", "some claim", "VERIFIED", 0.9, "")
	rec.Result(map[string]any{"ok": true})

	got := rec.Events()
	wantTypes := []Type{TypeInfo, TypeStep, TypeClaimStart, TypeClaim, TypeResult}
	if len(got) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(got))
	}
	for i, ev := range got {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d: expected %s, got %s", i, wantTypes[i], ev.Type)
		}
	}
}

func TestRecorder_SinkForwarding(t *testing.T) {
	sink := &captureSink{}
	rec := NewRecorder(zap.NewNop(), sink)

	rec.Info("hello")
	rec.Error("boom")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 forwarded events, got %d", len(sink.events))
	}
	if sink.events[1].Type != TypeError {
		t.Errorf("expected error event, got %s", sink.events[1].Type)
	}
	if sink.events[1].Data["message"] != "boom" {
		t.Errorf("unexpected error payload: %v", sink.events[1].Data)
	}
}

func TestRecorder_SearchSummary(t *testing.T) {
	rec := NewRecorder(zap.NewNop(), nil)

	rec.Search("query one", true, "result")
	rec.Search("query two", false, "")
	rec.Search("query three", true, "result")

	sum := rec.SearchSummary()
	if sum.Total != 3 || sum.Successful != 2 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRecorder_ConcurrentAppend(t *testing.T) {
	rec := NewRecorder(zap.NewNop(), &captureSink{})

	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Claim("CLAIM_A1", "text", "VERIFIED", 0.5, "")
		}()
	}
	wg.Wait()

	if len(rec.Events()) != n {
		t.Errorf("expected %d events, got %d", n, len(rec.Events()))
	}
}

func TestRecorder_NilLogger(t *testing.T) {
	rec := NewRecorder(nil, nil)
	rec.Info("should not panic")
	if rec.Logger() == nil {
		t.Error("expected non-nil fallback logger")
	}
}
