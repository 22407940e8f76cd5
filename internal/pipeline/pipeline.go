// Package pipeline orchestrates a full misinformation scan: content
// acquisition, claim extraction, parallel verification, the assessor
// stages, verdict synthesis, report assembly, and best-effort graph
// persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/veridex/internal/assess"
	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/extract"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/verdict"
	"github.com/ppiankov/veridex/internal/verify"
)

// ErrEmptyInput is returned when the scan input is blank. It is the
// only hard failure the pipeline surfaces; everything downstream
// degrades to defaults.
var ErrEmptyInput = errors.New("input is empty")

const totalSteps = 6

var urlPattern = regexp.MustCompile(`^https?://\S+$`)

// IsURL reports whether the input should be fetched rather than
// analyzed as literal text.
func IsURL(input string) bool {
	return urlPattern.MatchString(strings.TrimSpace(input))
}

// NewScanID generates a scan identifier of the form
// misinfo-scan-20250131-a1b2c3.
func NewScanID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("misinfo-scan-%s-%s", now.Format("20060102"), suffix)
}

// PublisherFromURL derives a publisher name from the scanned URL's
// host. Literal-text scans have no publisher.
func PublisherFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// Persister writes a finished report to the graph store.
type Persister interface {
	Persist(ctx context.Context, rec *events.Recorder, report *model.Report) error
}

// ScanResult is one completed analysis run: the report plus the event
// stream and search counters accumulated while producing it.
type ScanResult struct {
	Report        *model.Report        `json:"report"`
	Events        []events.Event       `json:"events,omitempty"`
	SearchSummary events.SearchSummary `json:"search_summary"`
}

// Pipeline wires the scan stages together. Construct once, call
// Analyze per scan; all per-run state lives in the Recorder.
type Pipeline struct {
	cfg         *model.Config
	fetcher     *Fetcher
	extractor   *extract.ClaimExtractor
	coordinator *verify.Coordinator
	source      *assess.SourceAssessor
	bias        *assess.BiasAssessor
	media       *assess.MediaAssessor
	synthesizer *verdict.Synthesizer
	persister   Persister
	now         func() time.Time
}

// Options carries the pipeline's collaborators.
type Options struct {
	Config      *model.Config
	Fetcher     *Fetcher
	Extractor   *extract.ClaimExtractor
	Coordinator *verify.Coordinator
	Source      *assess.SourceAssessor
	Bias        *assess.BiasAssessor
	Media       *assess.MediaAssessor
	Synthesizer *verdict.Synthesizer

	// Persister may be nil when graph persistence is disabled.
	Persister Persister
}

// New creates a pipeline from the given collaborators.
func New(opts Options) *Pipeline {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Pipeline{
		cfg:         cfg,
		fetcher:     opts.Fetcher,
		extractor:   opts.Extractor,
		coordinator: opts.Coordinator,
		source:      opts.Source,
		bias:        opts.Bias,
		media:       opts.Media,
		synthesizer: opts.Synthesizer,
		persister:   opts.Persister,
		now:         time.Now,
	}
}

// Analyze runs a full scan over the input, which is fetched when it
// looks like a URL and analyzed literally otherwise. The returned
// result is always structurally complete on success; the only error
// other than context failure is ErrEmptyInput. Exactly one terminal
// result or error event is recorded per run.
func (p *Pipeline) Analyze(ctx context.Context, rec *events.Recorder, input string, persist bool) (*ScanResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		rec.Error(ErrEmptyInput.Error())
		return nil, ErrEmptyInput
	}

	start := p.now()
	scanID := NewScanID(start)
	rec.Info(fmt.Sprintf("scan %s started", scanID))

	// Step 1: acquire content.
	rec.Step(1, totalSteps, "Acquire content", "running")
	content := input
	urlScanned := model.DirectInput
	publisher := ""
	if IsURL(input) {
		urlScanned = input
		publisher = PublisherFromURL(input)
		fetched, err := p.fetcher.Fetch(ctx, input)
		if err != nil {
			// A failed fetch degrades to analyzing the URL string
			// itself rather than aborting the scan.
			rec.Info(fmt.Sprintf("fetch failed (%v), analyzing input literally", err))
		} else {
			content = fetched
		}
	}
	rec.Step(1, totalSteps, "Acquire content", "done")

	// Step 2: extract claims.
	rec.Step(2, totalSteps, "Extract claims", "running")
	statements := p.extractor.Extract(ctx, content, p.cfg.Concurrency.MaxClaims, rec)
	rec.Step(2, totalSteps, "Extract claims", "done")

	// Step 3: verify claims in parallel.
	rec.Step(3, totalSteps, "Verify claims", "running")
	claims := p.coordinator.VerifyAll(ctx, rec, statements)
	rec.Step(3, totalSteps, "Verify claims", "done")

	// Step 4: assess source, bias, and media.
	rec.Step(4, totalSteps, "Assess source, bias, media", "running")
	sourceReport := p.source.Analyze(ctx, rec, publisher, content)
	rec.Stage(events.TypeSource, "Source reputation assessed", map[string]any{
		"publisher":   sourceReport.PublisherName,
		"credibility": sourceReport.CredibilityScore.Value,
	})
	biasReport := p.bias.Analyze(ctx, rec, content)
	rec.Stage(events.TypeBias, "Political bias assessed", map[string]any{
		"rating":     biasReport.Rating,
		"confidence": biasReport.Confidence,
	})
	mediaReport := p.media.Analyze(ctx, rec, content)
	rec.Stage(events.TypeMedia, "Media assessed", map[string]any{
		"assets": len(mediaReport.Assets),
	})
	rec.Step(4, totalSteps, "Assess source, bias, media", "done")

	// Step 5: synthesize the verdict.
	rec.Step(5, totalSteps, "Synthesize verdict", "running")
	finalVerdict := p.synthesizer.Synthesize(ctx, rec, claims, sourceReport, biasReport, mediaReport)
	rec.Stage(events.TypeVerdict, string(finalVerdict.Status), map[string]any{
		"status": string(finalVerdict.Status),
		"label":  finalVerdict.Label,
		"score":  finalVerdict.OverallScore,
	})
	rec.Step(5, totalSteps, "Synthesize verdict", "done")

	// Step 6: assemble the report and persist best-effort.
	rec.Step(6, totalSteps, "Assemble report", "running")
	report := BuildReport(ReportInputs{
		ScanID:     scanID,
		Timestamp:  start.UTC(),
		URLScanned: urlScanned,
		Duration:   p.now().Sub(start),
		Verdict:    finalVerdict,
		Claims:     claims,
		Source:     sourceReport,
		Bias:       biasReport,
		Media:      mediaReport,
	})
	if persist && p.persister != nil {
		if err := p.persister.Persist(ctx, rec, report); err != nil {
			rec.Logger().Warn("graph persistence failed", zap.Error(err))
		}
	}
	rec.Step(6, totalSteps, "Assemble report", "done")

	rec.Result(report)
	return &ScanResult{
		Report:        report,
		Events:        rec.Events(),
		SearchSummary: rec.SearchSummary(),
	}, nil
}
