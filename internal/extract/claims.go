// Package extract turns raw content into an ordered, bounded list of
// self-contained factual statements.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
)

const extractorSystemPrompt = `You extract verifiable factual statements from text.
Return ONLY a JSON array of short, self-contained claim strings.
Skip opinions, questions, and rhetorical statements.`

// minSentenceChars drops fragments too short to be verifiable claims.
const minSentenceChars = 10

// ClaimExtractor extracts factual statements via the reasoning
// service, degrading to naive sentence segmentation when the service
// output cannot be parsed (or no provider is configured).
type ClaimExtractor struct {
	provider       llm.Provider
	maxPromptChars int
}

// NewClaimExtractor creates a claim extractor. provider may be nil.
func NewClaimExtractor(provider llm.Provider, maxPromptChars int) *ClaimExtractor {
	if maxPromptChars <= 0 {
		maxPromptChars = 5000
	}
	return &ClaimExtractor{
		provider:       provider,
		maxPromptChars: maxPromptChars,
	}
}

// Extract returns at most maxClaims statement texts in extraction
// order. The order becomes each claim's index downstream.
func (e *ClaimExtractor) Extract(ctx context.Context, content string, maxClaims int, rec *events.Recorder) []string {
	if maxClaims <= 0 {
		maxClaims = 5
	}

	if e.provider == nil {
		return segmentSentences(content, maxClaims)
	}

	// Truncate long content before submission to bound token cost.
	truncated := content
	if len(truncated) > e.maxPromptChars {
		truncated = jsonx.TruncateRunes(truncated, e.maxPromptChars) + "..."
	}

	prompt := fmt.Sprintf("Extract up to %d key factual statements from:\n\n%s", maxClaims, truncated)
	out, err := llm.RespondWithRetry(ctx, e.provider, llm.Request{
		System: extractorSystemPrompt,
		Prompt: prompt,
	}, rec.Logger())
	if err != nil {
		rec.Info(fmt.Sprintf("statement extraction failed (%v), falling back to sentence segmentation", err))
		return segmentSentences(content, maxClaims)
	}

	statements, ok := parseStatements(out)
	if !ok {
		rec.Info("statement extraction output unparsable, falling back to sentence segmentation")
		return segmentSentences(content, maxClaims)
	}

	if len(statements) > maxClaims {
		statements = statements[:maxClaims]
	}
	return statements
}

// parseStatements accepts a JSON array whose elements are plain
// strings, objects carrying a statement/text field, or one level of
// nested string arrays (flattened).
func parseStatements(raw string) ([]string, bool) {
	var arr []any
	if err := jsonx.ExtractArray(raw, &arr); err != nil {
		return nil, false
	}

	var statements []string
	for _, item := range arr {
		switch v := item.(type) {
		case string:
			statements = append(statements, v)
		case map[string]any:
			if s, ok := v["statement"].(string); ok {
				statements = append(statements, s)
			} else if s, ok := v["text"].(string); ok {
				statements = append(statements, s)
			}
		case []any:
			for _, sub := range v {
				if s, ok := sub.(string); ok {
					statements = append(statements, s)
				}
			}
		}
	}

	if len(statements) == 0 {
		return nil, false
	}
	return statements, true
}

// segmentSentences is the deterministic fallback: split on terminal
// punctuation and drop short fragments.
func segmentSentences(text string, maxClaims int) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if len(s) > minSentenceChars {
			sentences = append(sentences, s)
		}
	}

	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	if len(sentences) > maxClaims {
		sentences = sentences[:maxClaims]
	}
	return sentences
}
