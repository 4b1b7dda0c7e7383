// Package resolution decides which summary a shopper sees for a product.
package resolution

import (
	"context"
	"log/slog"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/keywords"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/ports"
	"ReviewScout/internal/summary"
)

// Request is the input handed to every strategy.
type Request struct {
	ProductCode string
	// Reviews are the product's currently approved reviews.
	Reviews []domain.SocialReview
}

// Strategy is one tier of the chain. ok=false passes to the next tier.
type Strategy interface {
	Name() string
	Summarize(ctx context.Context, req Request) (domain.Summary, bool)
}

// Options tunes the AI tier.
type Options struct {
	CacheTTL         time.Duration
	AITimeout        time.Duration
	FeedbackExamples int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		CacheTTL:         6 * time.Hour,
		AITimeout:        30 * time.Second,
		FeedbackExamples: 5,
	}
}

// ChainDeps wires repositories and collaborators into the standard chain.
// Nil repositories disable the tiers that need them.
type ChainDeps struct {
	Overrides ports.OverrideRepository
	Insights  ports.InsightRepository
	Feedback  ports.FeedbackRepository
	Cache     ports.AnalysisCache
	Analyzer  ports.InsightAnalyzer
	Keywords  *keywords.Analyzer
	Composer  *summary.Composer
	SaveHook  ports.SaveHook
	Logger    *slog.Logger
	Options   Options
	Now       func() time.Time
}

// Chain tries its strategies in order and falls back to the empty payload.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
	now        func() time.Time
}

// NewChain builds override → ai → insights-cached → keyword.
func NewChain(deps ChainDeps) *Chain {
	logger := logging.OrDiscard(deps.Logger).With("component", "resolution")
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	opts := deps.Options
	defaults := DefaultOptions()
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaults.CacheTTL
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = defaults.AITimeout
	}
	if opts.FeedbackExamples <= 0 {
		opts.FeedbackExamples = defaults.FeedbackExamples
	}

	var strategies []Strategy
	if deps.Overrides != nil {
		strategies = append(strategies, &overrideStrategy{repo: deps.Overrides, logger: logger})
	}
	if deps.Analyzer != nil && deps.Cache != nil && deps.Insights != nil {
		strategies = append(strategies, &aiStrategy{
			analyzer:  deps.Analyzer,
			cache:     deps.Cache,
			insights:  deps.Insights,
			feedback:  deps.Feedback,
			overrides: deps.Overrides,
			hook:      deps.SaveHook,
			opts:      opts,
			logger:    logger,
			now:       now,
		})
	}
	if deps.Insights != nil {
		strategies = append(strategies, &insightStrategy{repo: deps.Insights, logger: logger})
	}
	analyzer := deps.Keywords
	if analyzer == nil {
		analyzer = keywords.NewAnalyzer(nil)
	}
	composer := deps.Composer
	if composer == nil {
		composer = summary.NewComposer(nil)
	}
	strategies = append(strategies, &keywordStrategy{analyzer: analyzer, composer: composer, now: now})

	return &Chain{strategies: strategies, logger: logger, now: now}
}

// NewChainOf builds a chain over explicit strategies.
func NewChainOf(logger *slog.Logger, now func() time.Time, strategies ...Strategy) *Chain {
	if now == nil {
		now = time.Now
	}
	return &Chain{strategies: strategies, logger: logging.OrDiscard(logger), now: now}
}

// Tiers lists strategy names in evaluation order.
func (c *Chain) Tiers() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// GetSummary never fails; the worst case is the neutral empty payload.
func (c *Chain) GetSummary(ctx context.Context, productCode string, approved []domain.SocialReview) domain.Summary {
	req := Request{ProductCode: productCode, Reviews: approved}
	for _, s := range c.strategies {
		if result, ok := s.Summarize(ctx, req); ok {
			c.logger.Debug("summary resolved", "product", productCode, "tier", s.Name(), "provider", result.Provider)
			return result
		}
	}
	c.logger.Debug("summary resolved", "product", productCode, "tier", domain.ProviderNone)
	return domain.EmptySummary(c.now())
}
