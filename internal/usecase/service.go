package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/ports"
	"ReviewScout/internal/resolution"
)

// ServiceDeps wires the facade consumed by the surrounding shop layer.
type ServiceDeps struct {
	Collector *Collector
	Chain     *resolution.Chain
	Learner   *resolution.Learner
	Reviews   ports.ReviewRepository
	Insights  ports.InsightRepository
	Overrides ports.OverrideRepository
	Cache     ports.AnalysisCache
	Analyzer  ports.InsightAnalyzer
	SaveHook  ports.SaveHook
	Logger    *slog.Logger
	Now       func() time.Time
}

// Status is a point-in-time view of the engine.
type Status struct {
	CacheEntries    int                         `json:"cacheEntries"`
	AIProvider      string                      `json:"aiProvider"`
	AIAvailable     bool                        `json:"aiAvailable"`
	Reviews         map[domain.ReviewStatus]int `json:"reviews"`
	Insights        int                         `json:"insights"`
	Overrides       int                         `json:"overrides"`
	Platforms       []domain.Platform           `json:"platforms"`
	Collecting      []domain.Platform           `json:"collecting"`
	ResolutionTiers []string                    `json:"resolutionTiers"`
}

// Service is the entry point for collection, summaries and moderation.
type Service struct {
	collector *Collector
	chain     *resolution.Chain
	learner   *resolution.Learner
	reviews   ports.ReviewRepository
	insights  ports.InsightRepository
	overrides ports.OverrideRepository
	cache     ports.AnalysisCache
	analyzer  ports.InsightAnalyzer
	hook      ports.SaveHook
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs the facade.
func NewService(deps ServiceDeps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		collector: deps.Collector,
		chain:     deps.Chain,
		learner:   deps.Learner,
		reviews:   deps.Reviews,
		insights:  deps.Insights,
		overrides: deps.Overrides,
		cache:     deps.Cache,
		analyzer:  deps.Analyzer,
		hook:      deps.SaveHook,
		logger:    logging.OrDiscard(deps.Logger).With("component", "service"),
		now:       now,
	}
}

// TriggerCollection collects reviews from one platform.
func (s *Service) TriggerCollection(ctx context.Context, platform string) (CollectionResult, error) {
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return CollectionResult{Platform: domain.Platform(platform)}, err
	}
	if s.collector == nil {
		return CollectionResult{Platform: p}, fmt.Errorf("%w: collection is not configured", domain.ErrUnknownPlatform)
	}
	return s.collector.TriggerCollection(ctx, p)
}

// GetSummary resolves the summary of productCode over the given approved reviews.
func (s *Service) GetSummary(ctx context.Context, productCode string, approved []domain.SocialReview) domain.Summary {
	if s.chain == nil {
		return domain.EmptySummary(s.now())
	}
	return s.chain.GetSummary(ctx, productCode, approved)
}

// SummaryForProduct loads the approved reviews of productCode and resolves its summary.
// A repository failure degrades to a summary over no reviews.
func (s *Service) SummaryForProduct(ctx context.Context, productCode string) domain.Summary {
	var approved []domain.SocialReview
	if s.reviews != nil && strings.TrimSpace(productCode) != "" {
		var err error
		approved, err = s.reviews.ListByStatus(ctx, productCode, domain.StatusApproved)
		if err != nil {
			s.logger.Warn("load approved reviews", "product", productCode, "error", err)
			approved = nil
		}
	}
	return s.GetSummary(ctx, productCode, approved)
}

// RecordFeedback stores an operator correction of a generated summary.
func (s *Service) RecordFeedback(ctx context.Context, productCode, original, corrected string) (domain.FeedbackRecord, error) {
	if s.learner == nil {
		return domain.FeedbackRecord{}, fmt.Errorf("feedback learner is not configured")
	}
	return s.learner.RecordFeedback(ctx, productCode, original, corrected)
}

// ListReviews returns reviews for moderation. Empty productCode or status means any.
func (s *Service) ListReviews(ctx context.Context, productCode, status string) ([]domain.SocialReview, error) {
	st := domain.ReviewStatus(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}
	if s.reviews == nil {
		return nil, fmt.Errorf("review repository is not configured")
	}
	return s.reviews.ListByStatus(ctx, strings.TrimSpace(productCode), st)
}

// SetReviewStatus moves a review to another moderation state.
func (s *Service) SetReviewStatus(ctx context.Context, id string, status string) error {
	st := domain.ReviewStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !st.Valid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}
	if s.reviews == nil {
		return fmt.Errorf("review repository is not configured")
	}
	if err := s.reviews.UpdateStatus(ctx, id, st, s.now()); err != nil {
		return err
	}
	s.hook.Notify(domain.EntityReview, id)
	return nil
}

// SetOverride pins the summary of a product. An override without a summary
// only steers the AI tier through its direction.
func (s *Service) SetOverride(ctx context.Context, o domain.Override) (domain.Override, error) {
	o.ProductCode = strings.TrimSpace(o.ProductCode)
	if o.ProductCode == "" {
		return domain.Override{}, fmt.Errorf("%w: product code is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(o.Summary) == "" && strings.TrimSpace(o.Direction) == "" {
		return domain.Override{}, fmt.Errorf("%w: summary or direction is required", domain.ErrInvalidInput)
	}
	if s.overrides == nil {
		return domain.Override{}, fmt.Errorf("override repository is not configured")
	}
	if o.Hashtags == nil {
		o.Hashtags = []string{}
	}
	if o.Sentiment == (domain.Sentiment{}) {
		o.Sentiment = domain.NeutralSentiment()
	}
	o.Sentiment = o.Sentiment.Normalize()
	o.UpdatedAt = s.now()

	if err := s.overrides.Upsert(ctx, o); err != nil {
		return domain.Override{}, fmt.Errorf("save override: %w", err)
	}
	if s.cache != nil {
		s.cache.Delete(o.ProductCode)
	}
	s.hook.Notify(domain.EntityOverride, o.ProductCode)
	return o, nil
}

// ClearOverride removes the override of productCode.
func (s *Service) ClearOverride(ctx context.Context, productCode string) error {
	if s.overrides == nil {
		return fmt.Errorf("override repository is not configured")
	}
	if err := s.overrides.Delete(ctx, productCode); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(productCode)
	}
	s.hook.Notify(domain.EntityOverride, productCode)
	return nil
}

// GetStatus reports cache, provider, repository and collection state.
func (s *Service) GetStatus(ctx context.Context) (Status, error) {
	st := Status{
		AIProvider: domain.ProviderNone,
		Reviews:    map[domain.ReviewStatus]int{},
		Platforms:  []domain.Platform{},
		Collecting: []domain.Platform{},
	}
	if s.cache != nil {
		st.CacheEntries = s.cache.Len()
	}
	if s.analyzer != nil {
		st.AIProvider = s.analyzer.Name()
		st.AIAvailable = s.analyzer.Available()
	}
	if s.collector != nil {
		st.Platforms = s.collector.Platforms()
		st.Collecting = s.collector.Running()
	}
	if s.chain != nil {
		st.ResolutionTiers = s.chain.Tiers()
	}

	if s.reviews != nil {
		counts, err := s.reviews.CountByStatus(ctx)
		if err != nil {
			return st, fmt.Errorf("count reviews: %w", err)
		}
		st.Reviews = counts
	}
	if s.insights != nil {
		n, err := s.insights.Count(ctx)
		if err != nil {
			return st, fmt.Errorf("count insights: %w", err)
		}
		st.Insights = n
	}
	if s.overrides != nil {
		n, err := s.overrides.Count(ctx)
		if err != nil {
			return st, fmt.Errorf("count overrides: %w", err)
		}
		st.Overrides = n
	}
	return st, nil
}
