package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/pipeline"
	"github.com/ppiankov/veridex/internal/worker"
	"go.uber.org/zap"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple inputs from a file in parallel",
	Long: `Batch reads inputs from a file (one URL or text line per input,
# starts a comment) and analyzes them concurrently. Each input gets
its own report file in the output directory, named by scan id.

Example:
  veridex batch targets.txt
  veridex batch targets.txt --concurrency 5 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "number of concurrent scans")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./veridex-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&noPersist, "no-persist", false, "skip graph persistence even when neo4j is configured")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "reasoning provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "reasoning model name")
}

// batchAnalyzer adapts the pipeline to the worker.Analyzer interface,
// creating a fresh recorder per input so event streams do not mix.
type batchAnalyzer struct {
	pipeline *pipeline.Pipeline
	log      *zap.Logger
	persist  bool
}

func (b *batchAnalyzer) Scan(ctx context.Context, input string) (any, error) {
	rec := events.NewRecorder(b.log, nil)
	result, err := b.pipeline.Analyze(ctx, rec, input, b.persist)
	if err != nil {
		return nil, err
	}
	return result.Report, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanFlags(cfg)

	log, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup(context.Background())

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	analyzer := &batchAnalyzer{
		pipeline: p,
		log:      log,
		persist:  cfg.Neo4j.Enabled && !noPersist,
	}
	processor := worker.NewBatchProcessor(analyzer, batchConcurrency)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Input, r.Err)
			continue
		}
		report := r.Report.(*model.Report)
		path := filepath.Join(batchOutputDir, report.Meta.ScanID+".json")
		if err := writeReportJSON(report, path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Input, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", r.Input, path)
	}

	fmt.Fprintf(os.Stderr, "\nProcessed %d inputs, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(results))
	}
	return nil
}
