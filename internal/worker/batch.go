package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Analyzer runs one scan over a single input (text or URL).
type Analyzer interface {
	Scan(ctx context.Context, input string) (any, error)
}

// BatchResult pairs one input with its scan outcome.
type BatchResult struct {
	Input  string
	Report any
	Err    error
}

// BatchProcessor scans multiple inputs concurrently under a bounded
// pool. Results are ordered by input position, not completion order.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &BatchProcessor{analyzer: analyzer, concurrency: concurrency}
}

// Process scans every input. Per-input failures land in the matching
// result slot; they never abort the batch.
func (b *BatchProcessor) Process(ctx context.Context, inputs []string) []BatchResult {
	results := make([]BatchResult, len(inputs))
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, input string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = BatchResult{Input: input, Err: ctx.Err()}
				return
			}

			report, err := b.analyzer.Scan(ctx, input)
			results[idx] = BatchResult{Input: input, Report: report, Err: err}
		}(i, input)
	}

	wg.Wait()
	return results
}

// ProcessFile scans every input listed in the file.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]BatchResult, error) {
	inputs, err := ReadInputsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}
	return b.Process(ctx, inputs), nil
}

// ReadInputsFromFile reads one input per line, skipping blanks,
// comments, and duplicates.
func ReadInputsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return inputs, nil
}
