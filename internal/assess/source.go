// Package assess holds the non-claim analysis stages: source
// reputation, political bias, and media forensics. Each assessor
// degrades to a neutral default when the reasoning service fails or
// returns unparsable output.
package assess

import (
	"context"
	"fmt"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/search"
)

const sourceSystemPrompt = `You assess the reputation of a content publisher.
Respond ONLY with a JSON object:
{
  "publisher_name": "",
  "domain_rating_score": 50,
  "trust_history_flags": 0,
  "ownership_structure": "",
  "bias_source": null,
  "credibility_score": {"value": 50, "rating_text": "Medium", "color_code": "#F59E0B"}
}`

// SourceAssessor rates publisher reputation and derives a credibility
// score from it.
type SourceAssessor struct {
	provider llm.Provider
	search   search.Source
}

// NewSourceAssessor creates a source assessor. provider may be nil.
func NewSourceAssessor(provider llm.Provider, searchSrc search.Source) *SourceAssessor {
	return &SourceAssessor{provider: provider, search: searchSrc}
}

// Analyze assesses the publisher behind the content. It never returns
// an error: every failure path yields the neutral default report.
func (a *SourceAssessor) Analyze(ctx context.Context, rec *events.Recorder, publisher, content string) model.SourceReport {
	if a.provider == nil {
		return model.DefaultSourceReport(publisher)
	}

	var searchFn llm.SearchFunc
	if a.search != nil {
		searchFn = a.search(rec)
	}

	prompt := fmt.Sprintf("Publisher: %s\n\nContent excerpt:\n%s\n\nAssess this publisher's reputation.",
		publisher, excerpt(content, 2000))
	out, err := llm.RespondWithRetry(ctx, a.provider, llm.Request{
		System: sourceSystemPrompt,
		Prompt: prompt,
		Search: searchFn,
	}, rec.Logger())
	if err != nil {
		rec.Info(fmt.Sprintf("source assessment failed (%v), using neutral default", err))
		return model.DefaultSourceReport(publisher)
	}

	var report model.SourceReport
	if perr := jsonx.ExtractObject(out, &report); perr != nil {
		rec.Info("source assessment output unparsable, using neutral default")
		return model.DefaultSourceReport(publisher)
	}

	if report.PublisherName == "" {
		report.PublisherName = publisher
		if report.PublisherName == "" {
			report.PublisherName = "Unknown Source"
		}
	}
	report.DomainRatingScore = model.Clamp100(report.DomainRatingScore)
	report.CredibilityScore = sanitizeCredibility(report.CredibilityScore)
	return report
}

func sanitizeCredibility(cs model.CredibilityScore) model.CredibilityScore {
	cs.Value = model.Clamp100(cs.Value)
	if cs.RatingText == "" {
		cs.RatingText = ratingText(cs.Value)
	}
	if cs.ColorCode == "" {
		cs.ColorCode = ratingColor(cs.Value)
	}
	return cs
}

func ratingText(value float64) string {
	switch {
	case value >= 70:
		return "High"
	case value >= 40:
		return "Medium"
	default:
		return "Low"
	}
}

func ratingColor(value float64) string {
	switch {
	case value >= 70:
		return "#10B981"
	case value >= 40:
		return "#F59E0B"
	default:
		return "#EF4444"
	}
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return jsonx.TruncateRunes(s, max) + "..."
}
