package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedProvider returns canned responses/errors in order.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Respond(ctx context.Context, req Request) (string, error) {
	i := p.calls
	p.calls++
	if i >= len(p.errs) {
		i = len(p.errs) - 1
	}
	return p.responses[i], p.errs[i]
}

func noSleep(t *testing.T) func() {
	orig := retrySleepFunc
	retrySleepFunc = func(ctx context.Context, d time.Duration) error { return nil }
	return func() { retrySleepFunc = orig }
}

func TestRespondWithRetry_SuccessFirstTry(t *testing.T) {
	defer noSleep(t)()

	p := &scriptedProvider{responses: []string{"ok"}, errs: []error{nil}}
	out, err := RespondWithRetry(context.Background(), p, Request{Prompt: "q"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" || p.calls != 1 {
		t.Errorf("out=%q calls=%d", out, p.calls)
	}
}

func TestRespondWithRetry_RecoversFromRateLimit(t *testing.T) {
	defer noSleep(t)()

	rl := &RateLimitError{Provider: "scripted", Message: "429"}
	p := &scriptedProvider{
		responses: []string{"", "ok"},
		errs:      []error{rl, nil},
	}
	out, err := RespondWithRetry(context.Background(), p, Request{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" || p.calls != 2 {
		t.Errorf("out=%q calls=%d", out, p.calls)
	}
}

func TestRespondWithRetry_ExhaustsRetries(t *testing.T) {
	defer noSleep(t)()

	rl := &RateLimitError{Provider: "scripted", Message: "429"}
	p := &scriptedProvider{
		responses: []string{"", "", ""},
		errs:      []error{rl, rl, rl},
	}
	_, err := RespondWithRetry(context.Background(), p, Request{}, nil)

	var got *RateLimitError
	if !errors.As(err, &got) {
		t.Fatalf("expected RateLimitError after exhaustion, got %v", err)
	}
	if p.calls != rateLimitMaxRetries {
		t.Errorf("expected %d calls, got %d", rateLimitMaxRetries, p.calls)
	}
}

func TestRespondWithRetry_NonRateLimitErrorImmediate(t *testing.T) {
	defer noSleep(t)()

	boom := errors.New("connection refused")
	p := &scriptedProvider{responses: []string{""}, errs: []error{boom}}
	_, err := RespondWithRetry(context.Background(), p, Request{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 call, got %d", p.calls)
	}
}

func TestRespondWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	orig := retrySleepFunc
	retrySleepFunc = sleepWithContext
	defer func() { retrySleepFunc = orig }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rl := &RateLimitError{Provider: "scripted", Message: "429"}
	p := &scriptedProvider{responses: []string{""}, errs: []error{rl}}
	_, err := RespondWithRetry(ctx, p, Request{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
