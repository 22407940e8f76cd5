package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/model"
)

// fakeRunner records queries and can fail selectively by node label.
type fakeRunner struct {
	queries []string
	params  []map[string]any
	failOn  string
}

func (f *fakeRunner) Run(ctx context.Context, query string, params map[string]any) error {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return errors.New("write failed")
	}
	return nil
}

func (f *fakeRunner) Close(ctx context.Context) error { return nil }

func sampleReport() *model.Report {
	linked := "MEDIA_01"
	return &model.Report{
		Meta: model.Meta{
			ScanID:       "misinfo-scan-20250131-abc123",
			Timestamp:    time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC),
			URLScanned:   "https://example.com/story",
			AgentVersion: model.AgentVersion,
		},
		FinalVerdict: model.Verdict{
			Status: model.VerdictInaccurate,
			Label:  "Questionable Content",
			ContributingFactors: []model.ContributingFactor{
				{Module: "content_analysis", Severity: model.SeverityMedium, Message: "1 of 2 claims were debunked"},
			},
		},
		ContentAnalysis: model.ContentAnalysis{
			CredibilityScore: model.DefaultCredibilityScore(),
			SourceReputation: model.SourceReputation{PublisherName: "example.com"},
			PoliticalBias:    model.DefaultPoliticalBias(),
			ClaimsList: []model.Claim{
				{ID: "CLAIM_A1", Status: model.ClaimVerified},
				{ID: "CLAIM_A2", Status: model.ClaimDebunked, SupportedByMediaID: linked},
			},
		},
		MediaAnalysis: model.MediaAnalysis{
			Assets: []model.MediaAsset{{ID: "MEDIA_01", Type: "image", URL: "https://example.com/a.png"}},
		},
		CrossReferences: []model.CrossReference{
			{Type: model.CrossRefEvidenceFabrication, PrimaryElementID: "CLAIM_A2", SecondaryElementID: linked},
		},
	}
}

func TestPersistWriteOrder(t *testing.T) {
	runner := &fakeRunner{}
	p := NewPersister(runner)

	if err := p.Persist(context.Background(), events.NewRecorder(nil, nil), sampleReport()); err != nil {
		t.Fatalf("persist: %v", err)
	}

	wantOrder := []string{
		"MERGE (s:Scan",
		"CREATE (v:Verdict",
		"CREATE (f:ContributingFactor",
		"CREATE (c:ContentAnalysis",
		"CREATE (r:SourceReputation",
		"CREATE (b:PoliticalBias",
		"CREATE (cl:Claim", // CLAIM_A1
		"CREATE (cl:Claim", // CLAIM_A2
		"CREATE (m:MediaAnalysis",
		"CREATE (a:MediaAsset",
		"CROSS_REFERENCE",
	}
	if len(runner.queries) != len(wantOrder) {
		t.Fatalf("got %d writes, want %d", len(runner.queries), len(wantOrder))
	}
	for i, fragment := range wantOrder {
		if !strings.Contains(runner.queries[i], fragment) {
			t.Errorf("write %d does not contain %q:\n%s", i, fragment, runner.queries[i])
		}
	}
}

func TestPersistFailureDoesNotStopLaterWrites(t *testing.T) {
	runner := &fakeRunner{failOn: "MediaAsset"}
	p := NewPersister(runner)

	if err := p.Persist(context.Background(), events.NewRecorder(nil, nil), sampleReport()); err != nil {
		t.Fatalf("persist surfaced a write failure: %v", err)
	}

	var sawCrossRef bool
	for _, q := range runner.queries {
		if strings.Contains(q, "CROSS_REFERENCE") {
			sawCrossRef = true
		}
	}
	if !sawCrossRef {
		t.Error("cross-reference write skipped after asset failure")
	}
}

func TestPersistCrossReferenceParams(t *testing.T) {
	runner := &fakeRunner{}
	p := NewPersister(runner)
	_ = p.Persist(context.Background(), events.NewRecorder(nil, nil), sampleReport())

	last := runner.params[len(runner.params)-1]
	if last["claim_id"] != "CLAIM_A2" || last["asset_id"] != "MEDIA_01" {
		t.Errorf("cross-reference params = %+v", last)
	}
	if last["scan_id"] != "misinfo-scan-20250131-abc123" {
		t.Errorf("cross-reference not scoped to scan: %+v", last)
	}
}
