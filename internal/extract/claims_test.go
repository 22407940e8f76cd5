package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/llm"
)

type fakeProvider struct {
	output string
	err    error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Respond(ctx context.Context, req llm.Request) (string, error) {
	return f.output, f.err
}

func TestExtractStringArray(t *testing.T) {
	p := &fakeProvider{output: `Here you go: ["The sky is blue", "Water boils at 100C"]`}
	e := NewClaimExtractor(p, 0)

	got := e.Extract(context.Background(), "irrelevant", 5, events.NewRecorder(nil, nil))
	want := []string{"The sky is blue", "Water boils at 100C"}
	if len(got) != len(want) {
		t.Fatalf("got %d statements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractObjectArray(t *testing.T) {
	p := &fakeProvider{output: `[{"statement": "A"}, {"text": "B"}, {"other": "ignored"}]`}
	e := NewClaimExtractor(p, 0)

	got := e.Extract(context.Background(), "irrelevant", 5, events.NewRecorder(nil, nil))
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("got %v, want [A B]", got)
	}
}

func TestExtractNestedArrayFlattened(t *testing.T) {
	p := &fakeProvider{output: `[["first claim", "second claim"], "third claim"]`}
	e := NewClaimExtractor(p, 0)

	got := e.Extract(context.Background(), "irrelevant", 5, events.NewRecorder(nil, nil))
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 statements", got)
	}
	if got[0] != "first claim" || got[2] != "third claim" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestExtractCapsAtMaxClaims(t *testing.T) {
	p := &fakeProvider{output: `["a1a1a1a1a1a1", "b2b2b2b2b2b2", "c3c3c3c3c3c3", "d4d4d4d4d4d4"]`}
	e := NewClaimExtractor(p, 0)

	got := e.Extract(context.Background(), "irrelevant", 2, events.NewRecorder(nil, nil))
	if len(got) != 2 {
		t.Fatalf("got %d statements, want 2", len(got))
	}
}

func TestExtractFallbackOnProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	e := NewClaimExtractor(p, 0)

	content := "The first statement is here. Second statement follows! Tiny. A third statement?"
	got := e.Extract(context.Background(), content, 5, events.NewRecorder(nil, nil))
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 sentences", got)
	}
	if got[0] != "The first statement is here" {
		t.Errorf("first sentence = %q", got[0])
	}
}

func TestExtractFallbackOnUnparsableOutput(t *testing.T) {
	p := &fakeProvider{output: "I cannot comply with that request."}
	e := NewClaimExtractor(p, 0)

	content := "Alpha statement number one. Beta statement number two."
	got := e.Extract(context.Background(), content, 5, events.NewRecorder(nil, nil))
	if len(got) != 2 {
		t.Fatalf("got %v, want sentence fallback", got)
	}
}

func TestExtractNilProviderSegments(t *testing.T) {
	e := NewClaimExtractor(nil, 0)

	got := e.Extract(context.Background(), "One full sentence here. And another one there.", 5, events.NewRecorder(nil, nil))
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 sentences", got)
	}
}

func TestSegmentSentencesDropsShortFragments(t *testing.T) {
	got := segmentSentences("Ok. No! A proper sentence survives here.", 10)
	if len(got) != 1 || !strings.Contains(got[0], "proper sentence") {
		t.Fatalf("got %v", got)
	}
}

func TestExtractTruncatesLongContent(t *testing.T) {
	var seen string
	p := &capturingProvider{output: `["captured statement"]`, seen: &seen}
	e := NewClaimExtractor(p, 100)

	long := strings.Repeat("x", 500)
	e.Extract(context.Background(), long, 5, events.NewRecorder(nil, nil))
	if strings.Count(seen, "x") > 103 {
		t.Errorf("prompt not truncated: %d x's", strings.Count(seen, "x"))
	}
	if !strings.Contains(seen, "...") {
		t.Errorf("truncation marker missing")
	}
}

type capturingProvider struct {
	output string
	seen   *string
}

func (c *capturingProvider) Name() string { return "capturing" }

func (c *capturingProvider) Respond(ctx context.Context, req llm.Request) (string, error) {
	*c.seen = req.Prompt
	return c.output, nil
}
