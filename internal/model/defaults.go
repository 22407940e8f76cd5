package model

// Neutral defaults substituted when a reasoning-service response cannot
// be parsed. Every sub-report has a named default so an assembled
// report is always fully populated.

// DefaultCredibilityScore returns the neutral 50/"Medium" credibility.
func DefaultCredibilityScore() CredibilityScore {
	return CredibilityScore{
		Value:      50,
		RatingText: "Medium",
		ColorCode:  "#F59E0B",
	}
}

// DefaultSourceReport returns the neutral source reputation for the
// given publisher.
func DefaultSourceReport(publisher string) SourceReport {
	if publisher == "" {
		publisher = "Unknown Source"
	}
	return SourceReport{
		PublisherName:      publisher,
		DomainRatingScore:  50,
		TrustHistoryFlags:  0,
		OwnershipStructure: "Unknown",
		BiasSource:         nil,
		CredibilityScore:   DefaultCredibilityScore(),
	}
}

// DefaultPoliticalBias returns the neutral Center rating with an even
// 33/34/33 split.
func DefaultPoliticalBias() PoliticalBias {
	return PoliticalBias{
		Rating:            "Center",
		Confidence:        0.5,
		ScoreDistribution: DefaultBiasDistribution(),
	}
}

// DefaultBiasDistribution returns the even 3-bucket split.
func DefaultBiasDistribution() []BiasBucket {
	return []BiasBucket{
		{Label: "Left", Value: 33},
		{Label: "Center", Value: 34},
		{Label: "Right", Value: 33},
	}
}

// DefaultMediaAnalysis returns an empty media report.
func DefaultMediaAnalysis() MediaAnalysis {
	return MediaAnalysis{
		DeepfakeProbabilityAvg: 0,
		Assets:                 []MediaAsset{},
	}
}
