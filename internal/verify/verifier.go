// Package verify checks extracted claims against evidence using the
// reasoning service, running claims concurrently under a bounded pool
// while preserving extraction order in the results.
package verify

import (
	"context"
	"fmt"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/search"
)

const verifierSystemPrompt = `You are a rigorous fact-checker. Verify the claim using available evidence.
Respond ONLY with a JSON object:
{
  "id": "<claim id>",
  "text": "<claim text>",
  "status": "VERIFIED|DEBUNKED|MISLEADING|MISSING_CONTEXT|UNVERIFIABLE",
  "confidence": 0.0,
  "verification_source": {"name": "", "url": ""},
  "note": "<one-sentence reasoning>",
  "positive_count": 0,
  "negative_count": 0,
  "supported_by_media_id": ""
}`

// claimPayload mirrors the JSON shape the verifier expects from the
// reasoning service.
type claimPayload struct {
	ID                 string                    `json:"id"`
	Text               string                    `json:"text"`
	Status             string                    `json:"status"`
	Confidence         float64                   `json:"confidence"`
	VerificationSource *model.VerificationSource `json:"verification_source"`
	Note               string                    `json:"note"`
	PositiveCount      int                       `json:"positive_count"`
	NegativeCount      int                       `json:"negative_count"`
	SupportedByMediaID string                    `json:"supported_by_media_id"`
}

// ClaimVerifier verifies one claim at a time against evidence.
type ClaimVerifier struct {
	provider llm.Provider
	search   search.Source
}

// NewClaimVerifier creates a verifier. provider may be nil, in which
// case every claim comes back UNVERIFIABLE; searchSrc may be nil.
func NewClaimVerifier(provider llm.Provider, searchSrc search.Source) *ClaimVerifier {
	return &ClaimVerifier{provider: provider, search: searchSrc}
}

// Verify checks a single claim. Unparsable model output degrades to an
// UNVERIFIABLE claim rather than an error; the error return is
// reserved for transport failures.
func (v *ClaimVerifier) Verify(ctx context.Context, rec *events.Recorder, claimID, text string) (model.Claim, error) {
	if v.provider == nil {
		return model.Claim{
			ID:         claimID,
			Text:       text,
			Status:     model.ClaimUnverifiable,
			Confidence: 0,
			Note:       "no reasoning provider configured",
		}, nil
	}

	var searchFn llm.SearchFunc
	if v.search != nil {
		searchFn = v.search(rec)
	}

	prompt := fmt.Sprintf("Claim ID: %s\nClaim: %s\n\nVerify this claim.", claimID, text)
	out, err := llm.RespondWithRetry(ctx, v.provider, llm.Request{
		System: verifierSystemPrompt,
		Prompt: prompt,
		Search: searchFn,
	}, rec.Logger())
	if err != nil {
		return model.Claim{}, fmt.Errorf("verify %s: %w", claimID, err)
	}

	var payload claimPayload
	if perr := jsonx.ExtractObject(out, &payload); perr != nil {
		// Parse failures are recorded, not fatal. The raw preview
		// goes into the note for later inspection.
		return model.Claim{
			ID:         claimID,
			Text:       text,
			Status:     model.ClaimUnverifiable,
			Confidence: 0.5,
			Note:       jsonx.Preview(out),
		}, nil
	}

	claim := model.Claim{
		ID:                 payload.ID,
		Text:               payload.Text,
		Status:             normalizeStatus(payload.Status),
		Confidence:         model.Clamp01(payload.Confidence),
		VerificationSource: payload.VerificationSource,
		Note:               payload.Note,
		PositiveCount:      payload.PositiveCount,
		NegativeCount:      payload.NegativeCount,
		SupportedByMediaID: payload.SupportedByMediaID,
	}
	// Fill the assigned id only when the model left it blank.
	if claim.ID == "" {
		claim.ID = claimID
	}
	if claim.Text == "" {
		claim.Text = text
	}
	return claim, nil
}

func normalizeStatus(s string) model.ClaimStatus {
	switch model.ClaimStatus(s) {
	case model.ClaimVerified, model.ClaimDebunked, model.ClaimMisleading,
		model.ClaimMissingContext, model.ClaimUnverifiable:
		return model.ClaimStatus(s)
	default:
		return model.ClaimUnverifiable
	}
}
