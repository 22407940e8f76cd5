package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/veridex/internal/assess"
	"github.com/ppiankov/veridex/internal/cache"
	"github.com/ppiankov/veridex/internal/extract"
	"github.com/ppiankov/veridex/internal/graph"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/pipeline"
	"github.com/ppiankov/veridex/internal/search"
	"github.com/ppiankov/veridex/internal/verdict"
	"github.com/ppiankov/veridex/internal/verify"
)

// loadConfig merges defaults with the config file and VERIDEX_*
// environment variables. API keys also come from the conventional
// provider variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("PERPLEXITY_API_KEY")
	}
	return cfg, nil
}

// newLogger builds the process logger; verbose switches to the
// human-readable development encoder at debug level.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildPipeline wires all scan stages from configuration. The
// returned cleanup releases the graph connection and must be called
// when the process is done scanning.
func buildPipeline(ctx context.Context, cfg *model.Config, log *zap.Logger) (*pipeline.Pipeline, func(context.Context), error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, nil, fmt.Errorf("configure reasoning provider: %w", err)
	}
	if provider == nil {
		log.Warn("no reasoning provider configured, scans will use deterministic fallbacks only")
	}

	searchClient := search.NewClient(cfg.Search)
	if searchClient == nil {
		log.Info("evidence search disabled (no PERPLEXITY_API_KEY)")
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
	}

	var persister pipeline.Persister
	cleanup := func(context.Context) {}
	if cfg.Neo4j.Enabled {
		client, err := graph.NewClient(ctx, cfg.Neo4j)
		if err != nil {
			// Persistence is best-effort even at startup.
			log.Warn("neo4j unavailable, persistence disabled", zap.Error(err))
		} else {
			persister = graph.NewPersister(client)
			cleanup = func(ctx context.Context) { _ = client.Close(ctx) }
		}
	}

	p := pipeline.New(pipeline.Options{
		Config:      cfg,
		Fetcher:     pipeline.NewFetcher(cfg.HTTP, store, cfg.Cache.TTL),
		Extractor:   extract.NewClaimExtractor(provider, cfg.LLM.MaxPromptChars),
		Coordinator: verify.NewCoordinator(verify.NewClaimVerifier(provider, searchClient.Source(search.KindFactCheck)), cfg.Concurrency.MaxParallelClaims),
		Source:      assess.NewSourceAssessor(provider, searchClient.Source(search.KindReputation)),
		Bias:        assess.NewBiasAssessor(provider),
		Media:       assess.NewMediaAssessor(provider, searchClient.Source(search.KindMedia)),
		Synthesizer: verdict.NewSynthesizer(provider),
		Persister:   persister,
	})
	return p, cleanup, nil
}
