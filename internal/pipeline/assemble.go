package pipeline

import (
	"fmt"
	"time"

	"github.com/ppiankov/veridex/internal/model"
)

// ReportInputs carries everything the assembler merges into the
// canonical report.
type ReportInputs struct {
	ScanID     string
	Timestamp  time.Time
	URLScanned string
	Duration   time.Duration
	Verdict    model.Verdict
	Claims     []model.Claim
	Source     model.SourceReport
	Bias       model.PoliticalBias
	Media      model.MediaAnalysis
}

// BuildReport assembles the canonical nested report. Every field
// missing from an upstream sub-report is filled with its neutral
// default so the result is never partially null.
func BuildReport(in ReportInputs) *model.Report {
	if in.Claims == nil {
		in.Claims = []model.Claim{}
	}
	if in.Source.PublisherName == "" {
		in.Source = model.DefaultSourceReport("")
	}
	if in.Source.CredibilityScore.RatingText == "" {
		in.Source.CredibilityScore = model.DefaultCredibilityScore()
	}
	if len(in.Bias.ScoreDistribution) != 3 {
		in.Bias = model.DefaultPoliticalBias()
	}
	if in.Media.Assets == nil {
		in.Media.Assets = []model.MediaAsset{}
	}
	if in.Verdict.ContributingFactors == nil {
		in.Verdict.ContributingFactors = []model.ContributingFactor{}
	}

	return &model.Report{
		Meta: model.Meta{
			ScanID:         in.ScanID,
			Timestamp:      in.Timestamp,
			URLScanned:     in.URLScanned,
			AgentVersion:   model.AgentVersion,
			ScanDurationMS: in.Duration.Milliseconds(),
		},
		FinalVerdict: in.Verdict,
		ContentAnalysis: model.ContentAnalysis{
			CredibilityScore: in.Source.CredibilityScore,
			SourceReputation: model.SourceReputation{
				PublisherName:      in.Source.PublisherName,
				DomainRatingScore:  in.Source.DomainRatingScore,
				TrustHistoryFlags:  in.Source.TrustHistoryFlags,
				OwnershipStructure: in.Source.OwnershipStructure,
				BiasSource:         in.Source.BiasSource,
			},
			PoliticalBias: in.Bias,
			ClaimsList:    in.Claims,
		},
		MediaAnalysis:   in.Media,
		CrossReferences: deriveCrossReferences(in.Claims),
	}
}

// deriveCrossReferences links each claim that names a supporting media
// asset. A DEBUNKED claim marks its asset as fabricated evidence.
func deriveCrossReferences(claims []model.Claim) []model.CrossReference {
	refs := []model.CrossReference{}
	for _, c := range claims {
		if c.SupportedByMediaID == "" {
			continue
		}
		refType := model.CrossRefEvidenceSupport
		if c.Status == model.ClaimDebunked {
			refType = model.CrossRefEvidenceFabrication
		}
		refs = append(refs, model.CrossReference{
			Type:               refType,
			PrimaryElementID:   c.ID,
			SecondaryElementID: c.SupportedByMediaID,
			Description:        fmt.Sprintf("Claim '%s' is linked to media '%s'", c.ID, c.SupportedByMediaID),
		})
	}
	return refs
}
