package keywords

import (
	"math"

	"ReviewScout/internal/domain"
)

// SentimentTotals sums weighted sentiment occurrences by polarity.
func SentimentTotals(a Analysis) (positive, negative float64) {
	for _, hit := range a.Category(CategorySentiment).Hits {
		switch hit.Entry.Polarity {
		case PolarityPositive:
			positive += hit.Score
		case PolarityNegative:
			negative += hit.Score
		}
	}
	return positive, negative
}

// ScoreSentiment converts the batch's sentiment signal into ratios.
func ScoreSentiment(a Analysis) domain.Sentiment {
	return SentimentFromTotals(SentimentTotals(a))
}

// SentimentFromTotals is 50/50 when there is no signal.
func SentimentFromTotals(positive, negative float64) domain.Sentiment {
	total := positive + negative
	if total <= 0 {
		return domain.NeutralSentiment()
	}
	pos := int(math.Round(positive / total * 100))
	return domain.Sentiment{PositiveRatio: pos, NegativeRatio: 100 - pos}
}
