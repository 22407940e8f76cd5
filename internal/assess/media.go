package assess

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/search"
)

const mediaSystemPrompt = `You assess media assets for manipulation and AI generation.
Respond ONLY with a JSON object:
{
  "deepfake_probability_avg": 0.0,
  "assets": [
    {
      "id": "MEDIA_01",
      "type": "image",
      "url": "",
      "ai_probability": 0.0,
      "is_deepfake": false,
      "forensics": {
        "artifact_flag": false,
        "audio_sync_status": "",
        "reverse_search_matches": 0,
        "metadata_signature": "",
        "copy_paste_detection": false
      }
    }
  ]
}`

// mediaURLPattern matches direct links to media files by extension.
var mediaURLPattern = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+\.(?:jpg|jpeg|png|gif|mp4|webm|mov|avi|mp3|wav)\b`)

// MediaAssessor finds media asset URLs in content and assesses them
// for manipulation.
type MediaAssessor struct {
	provider llm.Provider
	search   search.Source
}

// NewMediaAssessor creates a media assessor. provider may be nil.
func NewMediaAssessor(provider llm.Provider, searchSrc search.Source) *MediaAssessor {
	return &MediaAssessor{provider: provider, search: searchSrc}
}

// ExtractMediaURLs returns the deduplicated media file URLs found in
// the content, in first-occurrence order.
func ExtractMediaURLs(content string) []string {
	matches := mediaURLPattern.FindAllString(content, -1)
	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, u := range matches {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// Analyze assesses the media assets referenced by the content. With no
// media URLs present, or on any failure, it returns the empty default
// report.
func (a *MediaAssessor) Analyze(ctx context.Context, rec *events.Recorder, content string) model.MediaAnalysis {
	urls := ExtractMediaURLs(content)
	if len(urls) == 0 || a.provider == nil {
		return model.DefaultMediaAnalysis()
	}

	var searchFn llm.SearchFunc
	if a.search != nil {
		searchFn = a.search(rec)
	}

	prompt := fmt.Sprintf("Assess these media assets for manipulation:\n%s", strings.Join(urls, "\n"))
	out, err := llm.RespondWithRetry(ctx, a.provider, llm.Request{
		System: mediaSystemPrompt,
		Prompt: prompt,
		Search: searchFn,
	}, rec.Logger())
	if err != nil {
		rec.Info(fmt.Sprintf("media assessment failed (%v), using empty default", err))
		return model.DefaultMediaAnalysis()
	}

	var analysis model.MediaAnalysis
	if perr := jsonx.ExtractObject(out, &analysis); perr != nil {
		rec.Info("media assessment output unparsable, using empty default")
		return model.DefaultMediaAnalysis()
	}

	analysis.DeepfakeProbabilityAvg = model.Clamp01(analysis.DeepfakeProbabilityAvg)
	if analysis.Assets == nil {
		analysis.Assets = []model.MediaAsset{}
	}
	for i := range analysis.Assets {
		if analysis.Assets[i].ID == "" {
			analysis.Assets[i].ID = fmt.Sprintf("MEDIA_%02d", i+1)
		}
		analysis.Assets[i].AIProbability = model.Clamp01(analysis.Assets[i].AIProbability)
	}
	return analysis
}
