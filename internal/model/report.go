package model

import "time"

// AgentVersion is recorded in every report's meta block. The version
// tracks the analysis schema, not the binary release.
const AgentVersion = "v3.1.0"

// DirectInput is the url_scanned sentinel used when the analyzed
// content was pasted directly instead of fetched from a URL.
const DirectInput = "direct-input"

// Report is the canonical nested analysis report. Field names form a
// compatibility contract with downstream consumers.
type Report struct {
	Meta            Meta             `json:"meta"`
	FinalVerdict    Verdict          `json:"final_verdict"`
	ContentAnalysis ContentAnalysis  `json:"content_analysis"`
	MediaAnalysis   MediaAnalysis    `json:"media_analysis"`
	CrossReferences []CrossReference `json:"cross_references"`
}

// Meta contains scan identity and timing.
type Meta struct {
	ScanID         string    `json:"scan_id"`
	Timestamp      time.Time `json:"timestamp"`
	URLScanned     string    `json:"url_scanned"`
	AgentVersion   string    `json:"agent_version"`
	ScanDurationMS int64     `json:"scan_duration_ms"`
}

// VerdictStatus is the final accuracy classification of a scan.
type VerdictStatus string

const (
	VerdictAccurate     VerdictStatus = "ACCURATE"
	VerdictInaccurate   VerdictStatus = "INACCURATE"
	VerdictUnverifiable VerdictStatus = "UNVERIFIABLE"
)

// Verdict is the synthesized final judgment over all sub-reports.
type Verdict struct {
	Status              VerdictStatus        `json:"status"`
	Label               string               `json:"label"`
	OverallScore        float64              `json:"overall_score"`
	ConfidenceScore     float64              `json:"confidence_score"`
	SummaryStatement    string               `json:"summary_statement"`
	ContributingFactors []ContributingFactor `json:"contributing_factors"`
}

// FactorSeverity grades a contributing factor.
type FactorSeverity string

const (
	SeverityLow      FactorSeverity = "LOW"
	SeverityMedium   FactorSeverity = "MEDIUM"
	SeverityHigh     FactorSeverity = "HIGH"
	SeverityCritical FactorSeverity = "CRITICAL"
)

// ContributingFactor names one module-level issue that influenced the
// verdict.
type ContributingFactor struct {
	Module      string         `json:"module"`
	Severity    FactorSeverity `json:"severity"`
	Message     string         `json:"message"`
	DetailsLink *string        `json:"details_link"`
}

// ContentAnalysis groups the text-level sub-reports.
type ContentAnalysis struct {
	CredibilityScore CredibilityScore `json:"credibility_score"`
	SourceReputation SourceReputation `json:"source_reputation"`
	PoliticalBias    PoliticalBias    `json:"political_bias"`
	ClaimsList       []Claim          `json:"claims_list"`
}

// CredibilityScore is a 0-100 source credibility value with a display
// label and color token.
type CredibilityScore struct {
	Value      float64 `json:"value"`
	RatingText string  `json:"rating_text"`
	ColorCode  string  `json:"color_code"`
}

// SourceReputation describes the publisher behind the content.
type SourceReputation struct {
	PublisherName      string  `json:"publisher_name"`
	DomainRatingScore  float64 `json:"domain_rating_score"`
	TrustHistoryFlags  int     `json:"trust_history_flags"`
	OwnershipStructure string  `json:"ownership_structure"`
	BiasSource         *string `json:"bias_source"`
}

// SourceReport is the full output of source reputation assessment:
// the reputation record plus the derived credibility score.
type SourceReport struct {
	PublisherName      string           `json:"publisher_name"`
	DomainRatingScore  float64          `json:"domain_rating_score"`
	TrustHistoryFlags  int              `json:"trust_history_flags"`
	OwnershipStructure string           `json:"ownership_structure"`
	BiasSource         *string          `json:"bias_source"`
	CredibilityScore   CredibilityScore `json:"credibility_score"`
}

// PoliticalBias is a 7-point left-right classification with a 3-bucket
// score distribution. The distribution always has exactly 3 entries
// (Left, Center, Right) with values in [0,100].
type PoliticalBias struct {
	Rating            string       `json:"rating"`
	Confidence        float64      `json:"confidence"`
	ScoreDistribution []BiasBucket `json:"score_distribution"`
	Indicators        []string     `json:"indicators,omitempty"`
}

// BiasBucket is one entry of the bias score distribution.
type BiasBucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ClaimStatus is the verification outcome of a single claim.
type ClaimStatus string

const (
	ClaimVerified       ClaimStatus = "VERIFIED"
	ClaimDebunked       ClaimStatus = "DEBUNKED"
	ClaimMisleading     ClaimStatus = "MISLEADING"
	ClaimMissingContext ClaimStatus = "MISSING_CONTEXT"
	ClaimUnverifiable   ClaimStatus = "UNVERIFIABLE"
)

// Claim is one verified factual statement. The ID is assigned at
// extraction time (CLAIM_A<index>) and preserved regardless of
// verification completion order.
type Claim struct {
	ID                 string              `json:"id"`
	Text               string              `json:"text"`
	Status             ClaimStatus         `json:"status"`
	Confidence         float64             `json:"confidence"`
	VerificationSource *VerificationSource `json:"verification_source"`
	Note               string              `json:"note,omitempty"`
	PositiveCount      int                 `json:"positive_count"`
	NegativeCount      int                 `json:"negative_count"`
	SupportedByMediaID string              `json:"supported_by_media_id,omitempty"`
}

// VerificationSource names where a claim's verdict came from.
type VerificationSource struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// MediaAnalysis holds per-asset manipulation findings.
type MediaAnalysis struct {
	DeepfakeProbabilityAvg float64      `json:"deepfake_probability_avg"`
	Assets                 []MediaAsset `json:"assets"`
}

// MediaAsset is one image/video/audio asset found in the content.
type MediaAsset struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	URL           string         `json:"url"`
	AIProbability float64        `json:"ai_probability"`
	IsDeepfake    bool           `json:"is_deepfake"`
	Forensics     AssetForensics `json:"forensics"`
}

// AssetForensics is the forensic sub-record of a media asset.
type AssetForensics struct {
	ArtifactFlag         bool   `json:"artifact_flag"`
	AudioSyncStatus      string `json:"audio_sync_status,omitempty"`
	ReverseSearchMatches int    `json:"reverse_search_matches"`
	MetadataSignature    string `json:"metadata_signature,omitempty"`
	CopyPasteDetection   bool   `json:"copy_paste_detection"`
}

// CrossReferenceType classifies a claim-to-media link.
type CrossReferenceType string

const (
	CrossRefEvidenceSupport     CrossReferenceType = "EVIDENCE_SUPPORT"
	CrossRefEvidenceFabrication CrossReferenceType = "EVIDENCE_FABRICATION"
)

// CrossReference links a claim to a media asset that purportedly
// supports or fabricates evidence for it. Only created when both ids
// exist in the same scan's report.
type CrossReference struct {
	Type               CrossReferenceType `json:"type"`
	PrimaryElementID   string             `json:"primary_element_id"`
	SecondaryElementID string             `json:"secondary_element_id"`
	Description        string             `json:"description"`
}

// Clamp01 bounds a confidence-like value into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp100 bounds a score-like value into [0,100].
func Clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
