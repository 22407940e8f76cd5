package verdict

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
)

type stubProvider struct {
	output string
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Respond(ctx context.Context, req llm.Request) (string, error) {
	return s.output, s.err
}

func claimsWith(statuses ...model.ClaimStatus) []model.Claim {
	claims := make([]model.Claim, len(statuses))
	for i, st := range statuses {
		claims[i] = model.Claim{ID: "CLAIM_A1", Status: st}
	}
	return claims
}

func sourceWithCredibility(value float64) model.SourceReport {
	s := model.DefaultSourceReport("test")
	s.CredibilityScore.Value = value
	return s
}

func TestFallbackScenario(t *testing.T) {
	claims := claimsWith(model.ClaimVerified, model.ClaimVerified,
		model.ClaimDebunked, model.ClaimUnverifiable)

	v := Fallback(claims, sourceWithCredibility(70))

	if v.OverallScore != 61 {
		t.Errorf("score = %v, want 61", v.OverallScore)
	}
	if v.Status != model.VerdictAccurate {
		t.Errorf("status = %s, want ACCURATE", v.Status)
	}
	if v.Label != "Mostly Accurate" {
		t.Errorf("label = %q", v.Label)
	}
	if v.ConfidenceScore != 0.70 {
		t.Errorf("confidence = %v, want 0.70", v.ConfidenceScore)
	}
}

func TestFallbackEmptyClaims(t *testing.T) {
	v := Fallback(nil, sourceWithCredibility(90))

	if v.Status != model.VerdictUnverifiable {
		t.Errorf("status = %s, want UNVERIFIABLE", v.Status)
	}
	if v.OverallScore != 50 {
		t.Errorf("score = %v, want 50", v.OverallScore)
	}
	if v.ConfidenceScore != 0.3 {
		t.Errorf("confidence = %v, want 0.3", v.ConfidenceScore)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	claims := claimsWith(model.ClaimVerified, model.ClaimDebunked, model.ClaimMisleading)
	src := sourceWithCredibility(42)

	first := Fallback(claims, src)
	for i := 0; i < 10; i++ {
		again := Fallback(claims, src)
		if again.OverallScore != first.OverallScore || again.Status != first.Status {
			t.Fatalf("non-deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestFallbackBounds(t *testing.T) {
	statuses := []model.ClaimStatus{
		model.ClaimVerified, model.ClaimDebunked, model.ClaimUnverifiable,
	}
	for _, cred := range []float64{0, 50, 100} {
		for nVerified := 0; nVerified <= 5; nVerified++ {
			for nDebunked := 0; nDebunked+nVerified <= 5; nDebunked++ {
				var claims []model.Claim
				for i := 0; i < nVerified; i++ {
					claims = append(claims, model.Claim{Status: statuses[0]})
				}
				for i := 0; i < nDebunked; i++ {
					claims = append(claims, model.Claim{Status: statuses[1]})
				}
				claims = append(claims, model.Claim{Status: statuses[2]})

				v := Fallback(claims, sourceWithCredibility(cred))
				if v.OverallScore < 0 || v.OverallScore > 100 {
					t.Errorf("score %v out of range (v=%d d=%d cred=%v)",
						v.OverallScore, nVerified, nDebunked, cred)
				}
				if v.ConfidenceScore < 0 || v.ConfidenceScore > 1 {
					t.Errorf("confidence %v out of range", v.ConfidenceScore)
				}
			}
		}
	}
}

func TestFallbackConfidenceCapped(t *testing.T) {
	var claims []model.Claim
	for i := 0; i < 20; i++ {
		claims = append(claims, model.Claim{Status: model.ClaimVerified})
	}
	v := Fallback(claims, sourceWithCredibility(50))
	if v.ConfidenceScore != 1 {
		t.Errorf("confidence = %v, want capped at 1", v.ConfidenceScore)
	}
}

func TestFallbackFactorSeverity(t *testing.T) {
	// 1 of 4 debunked: ratio 0.25 stays MEDIUM.
	v := Fallback(claimsWith(model.ClaimVerified, model.ClaimVerified,
		model.ClaimVerified, model.ClaimDebunked), sourceWithCredibility(50))
	if len(v.ContributingFactors) != 1 {
		t.Fatalf("factors = %+v", v.ContributingFactors)
	}
	if v.ContributingFactors[0].Severity != model.SeverityMedium {
		t.Errorf("severity = %s, want MEDIUM", v.ContributingFactors[0].Severity)
	}
	if v.ContributingFactors[0].Module != "content_analysis" {
		t.Errorf("module = %q", v.ContributingFactors[0].Module)
	}

	// 3 of 4 debunked: ratio 0.75 escalates to HIGH.
	v = Fallback(claimsWith(model.ClaimDebunked, model.ClaimDebunked,
		model.ClaimDebunked, model.ClaimVerified), sourceWithCredibility(50))
	if v.ContributingFactors[0].Severity != model.SeverityHigh {
		t.Errorf("severity = %s, want HIGH", v.ContributingFactors[0].Severity)
	}
}

func TestFallbackNoFactorWithoutDebunked(t *testing.T) {
	v := Fallback(claimsWith(model.ClaimVerified, model.ClaimUnverifiable), sourceWithCredibility(50))
	if len(v.ContributingFactors) != 0 {
		t.Errorf("factors = %+v, want none", v.ContributingFactors)
	}
}

func TestFallbackLabels(t *testing.T) {
	// All debunked, zero credibility: far below 30.
	v := Fallback(claimsWith(model.ClaimDebunked, model.ClaimDebunked), sourceWithCredibility(0))
	if v.Label != "High Risk: Multiple Issues" || v.Status != model.VerdictInaccurate {
		t.Errorf("verdict = %+v", v)
	}

	// Mixed midrange: 30-59 band.
	v = Fallback(claimsWith(model.ClaimDebunked, model.ClaimUnverifiable), sourceWithCredibility(50))
	if v.Label != "Questionable Content" {
		t.Errorf("label = %q, score = %v", v.Label, v.OverallScore)
	}
}

func TestFallbackThresholdsUnroundedBlend(t *testing.T) {
	// 1 unverifiable claim, credibility 81.7: blend 59.51 sits below
	// 60 but rounds up to it. Status must come from the blend, not
	// the rounded score.
	v := Fallback(claimsWith(model.ClaimUnverifiable), sourceWithCredibility(81.7))
	if v.Status != model.VerdictInaccurate {
		t.Errorf("status = %s, want INACCURATE", v.Status)
	}
	if v.Label != "Questionable Content" {
		t.Errorf("label = %q, want Questionable Content", v.Label)
	}
	if v.OverallScore != 60 {
		t.Errorf("score = %v, want 60", v.OverallScore)
	}

	// All debunked, credibility 99: blend 29.7 rounds to 30 but the
	// label band is decided at 29.7.
	v = Fallback(claimsWith(model.ClaimDebunked), sourceWithCredibility(99))
	if v.Label != "High Risk: Multiple Issues" {
		t.Errorf("label = %q, want High Risk: Multiple Issues", v.Label)
	}
	if v.OverallScore != 30 {
		t.Errorf("score = %v, want 30", v.OverallScore)
	}
}

func TestSynthesizePrimaryPath(t *testing.T) {
	p := &stubProvider{output: `{
		"status": "INACCURATE",
		"label": "Fabricated",
		"overall_score": 12,
		"confidence_score": 0.9,
		"summary_statement": "Core claims are fabricated.",
		"contributing_factors": []
	}`}
	s := NewSynthesizer(p)

	v := s.Synthesize(context.Background(), events.NewRecorder(nil, nil),
		claimsWith(model.ClaimDebunked), sourceWithCredibility(50),
		model.DefaultPoliticalBias(), model.DefaultMediaAnalysis())

	if v.Status != model.VerdictInaccurate || v.OverallScore != 12 {
		t.Errorf("verdict = %+v", v)
	}
}

func TestSynthesizeFallsBackOnError(t *testing.T) {
	s := NewSynthesizer(&stubProvider{err: errors.New("down")})

	claims := claimsWith(model.ClaimVerified, model.ClaimVerified,
		model.ClaimDebunked, model.ClaimUnverifiable)
	v := s.Synthesize(context.Background(), events.NewRecorder(nil, nil),
		claims, sourceWithCredibility(70),
		model.DefaultPoliticalBias(), model.DefaultMediaAnalysis())

	if v.OverallScore != 61 || v.Status != model.VerdictAccurate {
		t.Errorf("fallback not applied: %+v", v)
	}
}

func TestSynthesizeFallsBackOnBadStatus(t *testing.T) {
	s := NewSynthesizer(&stubProvider{output: `{"status": "MAYBE", "overall_score": 75}`})

	v := s.Synthesize(context.Background(), events.NewRecorder(nil, nil),
		nil, sourceWithCredibility(50),
		model.DefaultPoliticalBias(), model.DefaultMediaAnalysis())

	if v.Status != model.VerdictUnverifiable || v.OverallScore != 50 {
		t.Errorf("verdict = %+v, want empty-claims fallback", v)
	}
}
