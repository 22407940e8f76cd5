package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/model"
)

// Persister maps a report onto the graph schema and writes it node by
// node. Writes happen in a fixed order, but each one is independent: a
// later failure never rolls back earlier nodes.
type Persister struct {
	runner QueryRunner
}

// NewPersister creates a persister over the given runner.
func NewPersister(runner QueryRunner) *Persister {
	return &Persister{runner: runner}
}

// Persist writes the report to the graph. Failed writes are logged
// and skipped; the returned error is always nil for a usable runner
// so callers never treat persistence as a scan failure.
func (p *Persister) Persist(ctx context.Context, rec *events.Recorder, report *model.Report) error {
	log := rec.Logger()
	scanID := report.Meta.ScanID

	run := func(name, query string, params map[string]any) {
		if err := p.runner.Run(ctx, query, params); err != nil {
			log.Warn("graph write failed",
				zap.String("node", name), zap.String("scan_id", scanID), zap.Error(err))
		}
	}

	// Scan is merged so re-persisting the same scan id is idempotent
	// at the root; children are plain creates.
	run("Scan", `
		MERGE (s:Scan {scan_id: $scan_id})
		SET s.timestamp = $timestamp,
		    s.url_scanned = $url_scanned,
		    s.agent_version = $agent_version,
		    s.scan_duration_ms = $scan_duration_ms`,
		map[string]any{
			"scan_id":          scanID,
			"timestamp":        report.Meta.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			"url_scanned":      report.Meta.URLScanned,
			"agent_version":    report.Meta.AgentVersion,
			"scan_duration_ms": report.Meta.ScanDurationMS,
		})

	v := report.FinalVerdict
	run("Verdict", `
		MATCH (s:Scan {scan_id: $scan_id})
		CREATE (v:Verdict {
			status: $status, label: $label, overall_score: $overall_score,
			confidence_score: $confidence_score, summary_statement: $summary_statement
		})
		CREATE (s)-[:HAS_VERDICT]->(v)`,
		map[string]any{
			"scan_id":           scanID,
			"status":            string(v.Status),
			"label":             v.Label,
			"overall_score":     v.OverallScore,
			"confidence_score":  v.ConfidenceScore,
			"summary_statement": v.SummaryStatement,
		})

	for _, f := range v.ContributingFactors {
		run("ContributingFactor", `
			MATCH (s:Scan {scan_id: $scan_id})-[:HAS_VERDICT]->(v:Verdict)
			CREATE (f:ContributingFactor {module: $module, severity: $severity, message: $message})
			CREATE (v)-[:HAS_FACTOR]->(f)`,
			map[string]any{
				"scan_id":  scanID,
				"module":   f.Module,
				"severity": string(f.Severity),
				"message":  f.Message,
			})
	}

	ca := report.ContentAnalysis
	run("ContentAnalysis", `
		MATCH (s:Scan {scan_id: $scan_id})
		CREATE (c:ContentAnalysis {
			credibility_value: $credibility_value,
			credibility_rating: $credibility_rating
		})
		CREATE (s)-[:HAS_CONTENT_ANALYSIS]->(c)`,
		map[string]any{
			"scan_id":            scanID,
			"credibility_value":  ca.CredibilityScore.Value,
			"credibility_rating": ca.CredibilityScore.RatingText,
		})

	run("SourceReputation", `
		MATCH (s:Scan {scan_id: $scan_id})-[:HAS_CONTENT_ANALYSIS]->(c:ContentAnalysis)
		CREATE (r:SourceReputation {
			publisher_name: $publisher_name, domain_rating_score: $domain_rating_score,
			trust_history_flags: $trust_history_flags, ownership_structure: $ownership_structure
		})
		CREATE (c)-[:HAS_SOURCE_REPUTATION]->(r)`,
		map[string]any{
			"scan_id":             scanID,
			"publisher_name":      ca.SourceReputation.PublisherName,
			"domain_rating_score": ca.SourceReputation.DomainRatingScore,
			"trust_history_flags": ca.SourceReputation.TrustHistoryFlags,
			"ownership_structure": ca.SourceReputation.OwnershipStructure,
		})

	run("PoliticalBias", `
		MATCH (s:Scan {scan_id: $scan_id})-[:HAS_CONTENT_ANALYSIS]->(c:ContentAnalysis)
		CREATE (b:PoliticalBias {rating: $rating, confidence: $confidence})
		CREATE (c)-[:HAS_POLITICAL_BIAS]->(b)`,
		map[string]any{
			"scan_id":    scanID,
			"rating":     ca.PoliticalBias.Rating,
			"confidence": ca.PoliticalBias.Confidence,
		})

	for _, claim := range ca.ClaimsList {
		run("Claim", `
			MATCH (s:Scan {scan_id: $scan_id})-[:HAS_CONTENT_ANALYSIS]->(c:ContentAnalysis)
			CREATE (cl:Claim {
				scan_id: $scan_id, claim_id: $claim_id, text: $text,
				status: $status, confidence: $confidence, note: $note
			})
			CREATE (c)-[:HAS_CLAIM]->(cl)`,
			map[string]any{
				"scan_id":    scanID,
				"claim_id":   claim.ID,
				"text":       claim.Text,
				"status":     string(claim.Status),
				"confidence": claim.Confidence,
				"note":       claim.Note,
			})
	}

	run("MediaAnalysis", `
		MATCH (s:Scan {scan_id: $scan_id})
		CREATE (m:MediaAnalysis {deepfake_probability_avg: $deepfake_probability_avg})
		CREATE (s)-[:HAS_MEDIA_ANALYSIS]->(m)`,
		map[string]any{
			"scan_id":                  scanID,
			"deepfake_probability_avg": report.MediaAnalysis.DeepfakeProbabilityAvg,
		})

	for _, asset := range report.MediaAnalysis.Assets {
		run("MediaAsset", `
			MATCH (s:Scan {scan_id: $scan_id})-[:HAS_MEDIA_ANALYSIS]->(m:MediaAnalysis)
			CREATE (a:MediaAsset {
				scan_id: $scan_id, asset_id: $asset_id, type: $type, url: $url,
				ai_probability: $ai_probability, is_deepfake: $is_deepfake
			})
			CREATE (m)-[:HAS_ASSET]->(a)`,
			map[string]any{
				"scan_id":        scanID,
				"asset_id":       asset.ID,
				"type":           asset.Type,
				"url":            asset.URL,
				"ai_probability": asset.AIProbability,
				"is_deepfake":    asset.IsDeepfake,
			})
	}

	for _, ref := range report.CrossReferences {
		run("CrossReference", `
			MATCH (cl:Claim {scan_id: $scan_id, claim_id: $claim_id})
			MATCH (a:MediaAsset {scan_id: $scan_id, asset_id: $asset_id})
			CREATE (cl)-[:CROSS_REFERENCE {type: $type, description: $description}]->(a)`,
			map[string]any{
				"scan_id":     scanID,
				"claim_id":    ref.PrimaryElementID,
				"asset_id":    ref.SecondaryElementID,
				"type":        string(ref.Type),
				"description": ref.Description,
			})
	}

	return nil
}
