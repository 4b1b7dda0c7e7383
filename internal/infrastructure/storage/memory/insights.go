package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Insights is an in-memory InsightRepository.
type Insights struct {
	mu    sync.RWMutex
	items map[string]domain.ProductInsight
}

var _ ports.InsightRepository = (*Insights)(nil)

// NewInsights creates an empty insight store.
func NewInsights() *Insights {
	return &Insights{items: make(map[string]domain.ProductInsight)}
}

// Get implements ports.InsightRepository.
func (s *Insights) Get(_ context.Context, productCode string) (domain.ProductInsight, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	insight, ok := s.items[productCode]
	return copyInsight(insight), ok, nil
}

// Upsert implements ports.InsightRepository.
func (s *Insights) Upsert(_ context.Context, insight domain.ProductInsight) error {
	if insight.ProductCode == "" {
		return fmt.Errorf("%w: insight product code is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[insight.ProductCode] = copyInsight(insight)
	return nil
}

// Count implements ports.InsightRepository.
func (s *Insights) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *Insights) all() []domain.ProductInsight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProductInsight, 0, len(s.items))
	for _, insight := range s.items {
		out = append(out, copyInsight(insight))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductCode < out[j].ProductCode })
	return out
}

func copyInsight(in domain.ProductInsight) domain.ProductInsight {
	in.Hashtags = append([]string(nil), in.Hashtags...)
	in.SourceReviewIDs = append([]string(nil), in.SourceReviewIDs...)
	return in
}

// Feedback is an in-memory FeedbackRepository. Records are kept oldest first.
type Feedback struct {
	mu      sync.RWMutex
	records map[string][]domain.FeedbackRecord
}

var _ ports.FeedbackRepository = (*Feedback)(nil)

// NewFeedback creates an empty feedback store.
func NewFeedback() *Feedback {
	return &Feedback{records: make(map[string][]domain.FeedbackRecord)}
}

// Append implements ports.FeedbackRepository.
func (s *Feedback) Append(_ context.Context, record domain.FeedbackRecord) error {
	if record.ProductCode == "" {
		return fmt.Errorf("%w: feedback product code is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ProductCode] = append(s.records[record.ProductCode], record)
	return nil
}

// Recent implements ports.FeedbackRepository.
func (s *Feedback) Recent(_ context.Context, productCode string, limit int) ([]domain.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.records[productCode]
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	out := make([]domain.FeedbackRecord, 0, limit)
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

// Trim implements ports.FeedbackRepository.
func (s *Feedback) Trim(_ context.Context, productCode string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.records[productCode]
	if keep < 0 {
		keep = 0
	}
	if len(history) <= keep {
		return nil
	}
	s.records[productCode] = append([]domain.FeedbackRecord(nil), history[len(history)-keep:]...)
	return nil
}

func (s *Feedback) all() []domain.FeedbackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.records))
	for code := range s.records {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []domain.FeedbackRecord
	for _, code := range codes {
		out = append(out, s.records[code]...)
	}
	return out
}

// Overrides is an in-memory OverrideRepository.
type Overrides struct {
	mu    sync.RWMutex
	items map[string]domain.Override
}

var _ ports.OverrideRepository = (*Overrides)(nil)

// NewOverrides creates an empty override store.
func NewOverrides() *Overrides {
	return &Overrides{items: make(map[string]domain.Override)}
}

// Get implements ports.OverrideRepository.
func (s *Overrides) Get(_ context.Context, productCode string) (domain.Override, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.items[productCode]
	o.Hashtags = append([]string(nil), o.Hashtags...)
	return o, ok, nil
}

// Upsert implements ports.OverrideRepository.
func (s *Overrides) Upsert(_ context.Context, o domain.Override) error {
	if o.ProductCode == "" {
		return fmt.Errorf("%w: override product code is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o.Hashtags = append([]string(nil), o.Hashtags...)
	s.items[o.ProductCode] = o
	return nil
}

// Delete implements ports.OverrideRepository.
func (s *Overrides) Delete(_ context.Context, productCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[productCode]; !ok {
		return fmt.Errorf("override %s: %w", productCode, domain.ErrNotFound)
	}
	delete(s.items, productCode)
	return nil
}

// Count implements ports.OverrideRepository.
func (s *Overrides) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *Overrides) all() []domain.Override {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Override, 0, len(s.items))
	for _, o := range s.items {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductCode < out[j].ProductCode })
	return out
}
