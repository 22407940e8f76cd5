package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/model"
)

// ClaimID returns the stable identifier for the claim at the given
// 1-based extraction position.
func ClaimID(position int) string {
	return fmt.Sprintf("CLAIM_A%d", position)
}

// Coordinator runs claim verification concurrently with a bounded
// worker pool. Results come back in extraction order regardless of
// completion order: each task writes only its own slot in a
// pre-sized results slice.
type Coordinator struct {
	verifier *ClaimVerifier
	poolSize int
}

// NewCoordinator creates a coordinator with the given pool size.
func NewCoordinator(verifier *ClaimVerifier, poolSize int) *Coordinator {
	if poolSize <= 0 {
		poolSize = 3
	}
	return &Coordinator{verifier: verifier, poolSize: poolSize}
}

// VerifyAll verifies every statement and returns claims positionally
// aligned with the input. A failed verification yields an
// UNVERIFIABLE claim in its slot; it never disturbs the others.
func (c *Coordinator) VerifyAll(ctx context.Context, rec *events.Recorder, statements []string) []model.Claim {
	results := make([]model.Claim, len(statements))
	sem := make(chan struct{}, c.poolSize)
	var wg sync.WaitGroup

	for i, text := range statements {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = cancelledClaim(ClaimID(idx+1), text)
				return
			}

			id := ClaimID(idx + 1)
			rec.ClaimStart(id, text)

			claim, err := c.verifier.Verify(ctx, rec, id, text)
			if err != nil {
				claim = model.Claim{
					ID:         id,
					Text:       text,
					Status:     model.ClaimUnverifiable,
					Confidence: 0,
					Note:       err.Error(),
				}
			}
			results[idx] = claim
			rec.Claim(claim.ID, claim.Text, string(claim.Status), claim.Confidence, claim.Note)
		}(i, text)
	}

	wg.Wait()
	return results
}

func cancelledClaim(id, text string) model.Claim {
	return model.Claim{
		ID:         id,
		Text:       text,
		Status:     model.ClaimUnverifiable,
		Confidence: 0,
		Note:       "context cancelled",
	}
}
