package assess

import (
	"context"
	"fmt"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
)

const biasSystemPrompt = `You classify the political lean of content on a 7-point scale:
Far Left, Left, Center-Left, Center, Center-Right, Right, Far Right.
Respond ONLY with a JSON object:
{
  "rating": "Center",
  "confidence": 0.5,
  "score_distribution": [
    {"label": "Left", "value": 33},
    {"label": "Center", "value": 34},
    {"label": "Right", "value": 33}
  ],
  "indicators": []
}`

// BiasAssessor classifies the political lean of content.
type BiasAssessor struct {
	provider llm.Provider
}

// NewBiasAssessor creates a bias assessor. provider may be nil.
func NewBiasAssessor(provider llm.Provider) *BiasAssessor {
	return &BiasAssessor{provider: provider}
}

// Analyze classifies political bias. It never returns an error: every
// failure path yields the neutral Center default.
func (a *BiasAssessor) Analyze(ctx context.Context, rec *events.Recorder, content string) model.PoliticalBias {
	if a.provider == nil {
		return model.DefaultPoliticalBias()
	}

	prompt := fmt.Sprintf("Classify the political lean of this content:\n\n%s", excerpt(content, 3000))
	out, err := llm.RespondWithRetry(ctx, a.provider, llm.Request{
		System: biasSystemPrompt,
		Prompt: prompt,
	}, rec.Logger())
	if err != nil {
		rec.Info(fmt.Sprintf("bias assessment failed (%v), using neutral default", err))
		return model.DefaultPoliticalBias()
	}

	var bias model.PoliticalBias
	if perr := jsonx.ExtractObject(out, &bias); perr != nil {
		rec.Info("bias assessment output unparsable, using neutral default")
		return model.DefaultPoliticalBias()
	}

	if bias.Rating == "" {
		bias.Rating = "Center"
	}
	bias.Confidence = model.Clamp01(bias.Confidence)
	bias.ScoreDistribution = sanitizeDistribution(bias.ScoreDistribution)
	return bias
}

// sanitizeDistribution enforces the 3-bucket invariant: anything other
// than exactly three entries falls back to the even split, and values
// are clamped into [0,100].
func sanitizeDistribution(dist []model.BiasBucket) []model.BiasBucket {
	if len(dist) != 3 {
		return model.DefaultBiasDistribution()
	}
	for i := range dist {
		dist[i].Value = model.Clamp100(dist[i].Value)
	}
	return dist
}
