package scanner

import (
	"context"
	"fmt"
	"sort"

	"ReviewScout/internal/domain"
)

// Query carries one search request against a platform.
type Query struct {
	Text       string
	MaxResults int
}

// Scanner searches one platform for candidate review posts.
type Scanner interface {
	Platform() domain.Platform
	Search(ctx context.Context, q Query) ([]domain.Candidate, error)
}

// DetailFetcher is implemented by scanners that can look up engagement
// counters the search call does not return.
type DetailFetcher interface {
	Details(ctx context.Context, externalIDs []string) (map[string]domain.Engagement, error)
}

// Registry keeps a mapping from platforms to their scanners.
type Registry struct {
	scanners map[domain.Platform]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[domain.Platform]Scanner{}}
}

// Register adds or replaces the scanner of its platform.
func (r *Registry) Register(s Scanner) {
	if r.scanners == nil {
		r.scanners = map[domain.Platform]Scanner{}
	}
	r.scanners[s.Platform()] = s
}

// Resolve returns the scanner of platform.
func (r *Registry) Resolve(platform domain.Platform) (Scanner, error) {
	if s, ok := r.scanners[platform]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: no scanner registered for %s", domain.ErrUnknownPlatform, platform)
}

// Platforms lists registered platforms in a stable order.
func (r *Registry) Platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(r.scanners))
	for p := range r.scanners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
