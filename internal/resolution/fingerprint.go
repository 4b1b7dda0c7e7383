package resolution

import (
	"sort"
	"strings"

	"ReviewScout/internal/domain"
)

// ReviewIDs returns the sorted ids of reviews.
func ReviewIDs(reviews []domain.SocialReview) []string {
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

// Fingerprint identifies an approved-review set independent of order.
func Fingerprint(reviews []domain.SocialReview) string {
	return strings.Join(ReviewIDs(reviews), ",")
}
