package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/model"
)

var (
	outJSON     string
	scanTimeout time.Duration
	noCache     bool
	noPersist   bool
	llmProvider string
	llmModel    string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url-or-text>",
	Short: "Analyze a URL or literal text for misinformation",
	Long: `Scan runs the full analysis pipeline over one input:
- Fetches the page when the input is a URL, otherwise analyzes the text as-is
- Extracts key factual claims and verifies them in parallel
- Assesses source reputation, political bias, and embedded media
- Synthesizes a final verdict and writes the full report as JSON

Example:
  veridex scan https://example.com/article
  veridex scan "The new policy was signed into law last week." --llm-provider openai
  veridex scan https://example.com/article --json report.json --persist`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "", "write the report JSON to this path (default: stdout)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Minute, "overall analysis timeout")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fetch cache (force fresh fetch)")
	scanCmd.Flags().BoolVar(&noPersist, "no-persist", false, "skip graph persistence even when neo4j is configured")
	scanCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "reasoning provider (openai, anthropic, ollama)")
	scanCmd.Flags().StringVar(&llmModel, "llm-model", "", "reasoning model name")
}

func runScan(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanFlags(cfg)
	cfg.Concurrency.AnalysisTimeout = scanTimeout

	log, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Concurrency.AnalysisTimeout)
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup(context.Background())

	rec := events.NewRecorder(log, nil)
	result, err := p.Analyze(ctx, rec, input, cfg.Neo4j.Enabled && !noPersist)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		summary := result.SearchSummary
		fmt.Fprintf(os.Stderr, "✓ Verified %d claims\n", len(result.Report.ContentAnalysis.ClaimsList))
		fmt.Fprintf(os.Stderr, "✓ Searches: %d total, %d failed\n", summary.Total, summary.Failed)
		fmt.Fprintf(os.Stderr, "✓ Verdict: %s (%s, score %.0f)\n",
			result.Report.FinalVerdict.Status, result.Report.FinalVerdict.Label,
			result.Report.FinalVerdict.OverallScore)
	}

	return writeReportJSON(result.Report, outJSON)
}

func applyScanFlags(cfg *model.Config) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

func writeReportJSON(report any, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", path)
	}
	return nil
}
