package domain

import "time"

// Sentiment holds positive/negative percentages that always sum to 100.
type Sentiment struct {
	PositiveRatio int `json:"positiveRatio"`
	NegativeRatio int `json:"negativeRatio"`
}

// NeutralSentiment is used when no signal is available.
func NeutralSentiment() Sentiment {
	return Sentiment{PositiveRatio: 50, NegativeRatio: 50}
}

// Normalize clamps the positive share to [0,100] and derives the negative share.
func (s Sentiment) Normalize() Sentiment {
	pos := s.PositiveRatio
	if pos < 0 {
		pos = 0
	}
	if pos > 100 {
		pos = 100
	}
	return Sentiment{PositiveRatio: pos, NegativeRatio: 100 - pos}
}

// Provider tags reported with every summary.
const (
	ProviderOverride       = "override"
	ProviderAI             = "ai"
	ProviderAICached       = "ai-cached"
	ProviderInsightsCached = "insights-cached"
	ProviderKeyword        = "keyword"
	ProviderNone           = "none"
)

// Summary is the consumer-facing result of the resolution chain.
type Summary struct {
	Summary     string    `json:"summary"`
	Headline    string    `json:"headline,omitempty"`
	Hashtags    []string  `json:"hashtags"`
	Sentiment   Sentiment `json:"sentiment"`
	ReviewCount int       `json:"reviewCount"`
	Provider    string    `json:"provider"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}

// EmptySummary is the neutral payload returned when nothing can be said.
func EmptySummary(now time.Time) Summary {
	return Summary{
		Hashtags:   []string{},
		Sentiment:  NeutralSentiment(),
		Provider:   ProviderNone,
		AnalyzedAt: now,
	}
}

// ProductInsight is the accumulated, versioned AI analysis of a product.
type ProductInsight struct {
	ProductCode     string    `json:"productCode"`
	Narrative       string    `json:"narrative"`
	Summary         string    `json:"summary"`
	Hashtags        []string  `json:"hashtags"`
	Sentiment       Sentiment `json:"sentiment"`
	SourceReviewIDs []string  `json:"sourceReviewIds"`
	LastAnalyzedAt  time.Time `json:"lastAnalyzedAt"`
	Version         int       `json:"version"`
}

// FeedbackRecord is an operator correction of a generated summary.
type FeedbackRecord struct {
	ID               string    `json:"id"`
	ProductCode      string    `json:"productCode"`
	OriginalSummary  string    `json:"originalSummary"`
	CorrectedSummary string    `json:"correctedSummary"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AnalysisCacheEntry memoizes an AI result for a given approved-review set.
type AnalysisCacheEntry struct {
	ProductCode string
	Fingerprint string
	Payload     Summary
	Timestamp   time.Time
}

// Fresh reports whether the entry still applies to fingerprint at now.
func (e AnalysisCacheEntry) Fresh(fingerprint string, ttl time.Duration, now time.Time) bool {
	if e.Fingerprint != fingerprint {
		return false
	}
	return ttl <= 0 || now.Sub(e.Timestamp) < ttl
}

// Override is an operator-fixed summary that always wins.
type Override struct {
	ProductCode string    `json:"productCode"`
	Summary     string    `json:"summary"`
	Hashtags    []string  `json:"hashtags"`
	Sentiment   Sentiment `json:"sentiment"`
	// Direction is free text injected into AI prompts.
	Direction string    `json:"direction,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntityKind names what a save hook invocation refers to.
type EntityKind string

const (
	EntityReview   EntityKind = "review"
	EntityInsight  EntityKind = "insight"
	EntityFeedback EntityKind = "feedback"
	EntityOverride EntityKind = "override"
)
