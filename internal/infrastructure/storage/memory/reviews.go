// Package memory keeps every repository in process, guarded by RWMutexes.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Reviews is an in-memory ReviewRepository with an O(1) dedup index.
type Reviews struct {
	mu    sync.RWMutex
	byID  map[string]domain.SocialReview
	byKey map[domain.ReviewKey]string
	order []string
}

var _ ports.ReviewRepository = (*Reviews)(nil)

// NewReviews creates an empty review store.
func NewReviews() *Reviews {
	return &Reviews{
		byID:  make(map[string]domain.SocialReview),
		byKey: make(map[domain.ReviewKey]string),
	}
}

// Exists implements ports.ReviewRepository.
func (r *Reviews) Exists(_ context.Context, key domain.ReviewKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byKey[key]
	return ok, nil
}

// Insert rejects a second review with the same id or (platform, externalId).
func (r *Reviews) Insert(_ context.Context, review domain.SocialReview) error {
	if review.ID == "" || review.ExternalID == "" {
		return fmt.Errorf("%w: review id and external id are required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[review.Key()]; ok {
		return fmt.Errorf("%w: review %s", domain.ErrDuplicate, review.Key())
	}
	if _, ok := r.byID[review.ID]; ok {
		return fmt.Errorf("%w: review id %s", domain.ErrDuplicate, review.ID)
	}
	r.byID[review.ID] = copyReview(review)
	r.byKey[review.Key()] = review.ID
	r.order = append(r.order, review.ID)
	return nil
}

// Get implements ports.ReviewRepository.
func (r *Reviews) Get(_ context.Context, id string) (domain.SocialReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.byID[id]
	if !ok {
		return domain.SocialReview{}, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return copyReview(review), nil
}

// ListByStatus returns matches in insertion order. An empty status means any.
func (r *Reviews) ListByStatus(_ context.Context, productCode string, status domain.ReviewStatus) ([]domain.SocialReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.SocialReview
	for _, id := range r.order {
		review := r.byID[id]
		if status != "" && review.Status != status {
			continue
		}
		if productCode != "" && !review.Matches(productCode) {
			continue
		}
		out = append(out, copyReview(review))
	}
	return out, nil
}

// UpdateStatus implements ports.ReviewRepository.
func (r *Reviews) UpdateStatus(_ context.Context, id string, status domain.ReviewStatus, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	review.Status = status
	review.UpdatedAt = at
	r.byID[id] = review
	return nil
}

// CountByStatus implements ports.ReviewRepository.
func (r *Reviews) CountByStatus(_ context.Context) (map[domain.ReviewStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.ReviewStatus]int, 3)
	for _, review := range r.byID {
		counts[review.Status]++
	}
	return counts, nil
}

// Len returns the number of stored reviews.
func (r *Reviews) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Reviews) all() []domain.SocialReview {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SocialReview, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyReview(r.byID[id]))
	}
	return out
}

func copyReview(r domain.SocialReview) domain.SocialReview {
	r.MatchedProducts = append([]domain.ProductMatch(nil), r.MatchedProducts...)
	return r
}
