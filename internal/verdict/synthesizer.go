// Package verdict synthesizes the final judgment from all sub-reports.
package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
)

const synthesizerSystemPrompt = `You synthesize a final misinformation verdict from sub-reports.
Respond ONLY with a JSON object:
{
  "status": "ACCURATE|INACCURATE|UNVERIFIABLE",
  "label": "",
  "overall_score": 50,
  "confidence_score": 0.5,
  "summary_statement": "",
  "contributing_factors": [
    {"module": "", "severity": "LOW|MEDIUM|HIGH|CRITICAL", "message": "", "details_link": null}
  ]
}`

// Synthesizer combines claim, source, bias, and media results into the
// final verdict, falling back to deterministic scoring when the
// reasoning service output cannot be used.
type Synthesizer struct {
	provider llm.Provider
}

// NewSynthesizer creates a synthesizer. provider may be nil, which
// forces the deterministic fallback.
func NewSynthesizer(provider llm.Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize produces the final verdict. It never returns an error:
// any failure on the primary path degrades to Fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, rec *events.Recorder,
	claims []model.Claim, source model.SourceReport,
	bias model.PoliticalBias, media model.MediaAnalysis) model.Verdict {

	if s.provider == nil {
		return Fallback(claims, source)
	}

	sub := map[string]any{
		"claims":            claims,
		"source_reputation": source,
		"political_bias":    bias,
		"media_analysis":    media,
	}
	serialized, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return Fallback(claims, source)
	}

	prompt := fmt.Sprintf("Synthesize a final verdict from these sub-reports:\n\n%s", serialized)
	out, err := llm.RespondWithRetry(ctx, s.provider, llm.Request{
		System: synthesizerSystemPrompt,
		Prompt: prompt,
	}, rec.Logger())
	if err != nil {
		rec.Info(fmt.Sprintf("verdict synthesis failed (%v), using deterministic fallback", err))
		return Fallback(claims, source)
	}

	var v model.Verdict
	if perr := jsonx.ExtractObject(out, &v); perr != nil {
		rec.Info("verdict synthesis output unparsable, using deterministic fallback")
		return Fallback(claims, source)
	}

	switch v.Status {
	case model.VerdictAccurate, model.VerdictInaccurate, model.VerdictUnverifiable:
	default:
		return Fallback(claims, source)
	}
	v.OverallScore = model.Clamp100(v.OverallScore)
	v.ConfidenceScore = model.Clamp01(v.ConfidenceScore)
	if v.ContributingFactors == nil {
		v.ContributingFactors = []model.ContributingFactor{}
	}
	return v
}

// Fallback computes the deterministic verdict from claim statuses and
// source credibility. The formula is a compatibility contract: claim
// score 50 + 40*verifiedRatio - 50*debunkedRatio clamped to [0,100],
// blended 70/30 with source credibility, thresholds 60/30.
func Fallback(claims []model.Claim, source model.SourceReport) model.Verdict {
	if len(claims) == 0 {
		return model.Verdict{
			Status:              model.VerdictUnverifiable,
			Label:               "Unverifiable",
			OverallScore:        50,
			ConfidenceScore:     0.3,
			SummaryStatement:    "No verifiable claims were found in the content.",
			ContributingFactors: []model.ContributingFactor{},
		}
	}

	total := len(claims)
	verified, debunked := 0, 0
	for _, c := range claims {
		switch c.Status {
		case model.ClaimVerified:
			verified++
		case model.ClaimDebunked:
			debunked++
		}
	}
	verifiedRatio := float64(verified) / float64(total)
	debunkedRatio := float64(debunked) / float64(total)

	rawScore := model.Clamp100(50 + 40*verifiedRatio - 50*debunkedRatio)
	// Status and label threshold the unrounded blend; only the
	// reported score is rounded.
	blended := 0.7*rawScore + 0.3*source.CredibilityScore.Value

	status := model.VerdictInaccurate
	if blended >= 60 {
		status = model.VerdictAccurate
	}
	label := "High Risk: Multiple Issues"
	switch {
	case blended >= 60:
		label = "Mostly Accurate"
	case blended >= 30:
		label = "Questionable Content"
	}

	confidence := math.Min(1, 0.5+0.05*float64(total))
	confidence = math.Round(confidence*100) / 100

	var factors []model.ContributingFactor
	if debunked > 0 {
		severity := model.SeverityMedium
		if debunkedRatio > 0.5 {
			severity = model.SeverityHigh
		}
		factors = append(factors, model.ContributingFactor{
			Module:   "content_analysis",
			Severity: severity,
			Message:  fmt.Sprintf("%d of %d claims were debunked", debunked, total),
		})
	}
	if factors == nil {
		factors = []model.ContributingFactor{}
	}

	return model.Verdict{
		Status:          status,
		Label:           label,
		OverallScore:    math.Round(blended),
		ConfidenceScore: confidence,
		SummaryStatement: fmt.Sprintf(
			"%d of %d claims verified, %d debunked; source credibility %.0f.",
			verified, total, debunked, source.CredibilityScore.Value),
		ContributingFactors: factors,
	}
}
