package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/keywords"
	"ReviewScout/internal/ports"
	"ReviewScout/internal/summary"
)

type overrideStrategy struct {
	repo   ports.OverrideRepository
	logger *slog.Logger
}

func (s *overrideStrategy) Name() string { return domain.ProviderOverride }

func (s *overrideStrategy) Summarize(ctx context.Context, req Request) (domain.Summary, bool) {
	o, ok, err := s.repo.Get(ctx, req.ProductCode)
	if err != nil {
		s.logger.Warn("load override", "product", req.ProductCode, "err", err)
		return domain.Summary{}, false
	}
	// A direction-only override steers the AI tier instead of replacing output.
	if !ok || strings.TrimSpace(o.Summary) == "" {
		return domain.Summary{}, false
	}
	return domain.Summary{
		Summary:     o.Summary,
		Hashtags:    nonNil(o.Hashtags),
		Sentiment:   o.Sentiment,
		ReviewCount: len(req.Reviews),
		Provider:    domain.ProviderOverride,
		AnalyzedAt:  o.UpdatedAt,
	}, true
}

type aiStrategy struct {
	analyzer  ports.InsightAnalyzer
	cache     ports.AnalysisCache
	insights  ports.InsightRepository
	feedback  ports.FeedbackRepository
	overrides ports.OverrideRepository
	hook      ports.SaveHook
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func (s *aiStrategy) Name() string { return domain.ProviderAI }

func (s *aiStrategy) Summarize(ctx context.Context, req Request) (domain.Summary, bool) {
	if len(req.Reviews) == 0 || !s.analyzer.Available() {
		return domain.Summary{}, false
	}

	fingerprint := Fingerprint(req.Reviews)
	now := s.now()
	if entry, ok := s.cache.Get(req.ProductCode); ok {
		if entry.Fresh(fingerprint, s.opts.CacheTTL, now) {
			cached := entry.Payload
			cached.Provider = domain.ProviderAICached
			cached.ReviewCount = len(req.Reviews)
			return cached, true
		}
		s.cache.Delete(req.ProductCode)
	}

	result, err := s.analyze(ctx, req, fingerprint, now)
	if err != nil {
		s.logger.Warn("ai analysis failed", "product", req.ProductCode, "provider", s.analyzer.Name(), "err", err)
		return domain.Summary{}, false
	}
	return result, true
}

func (s *aiStrategy) analyze(ctx context.Context, req Request, fingerprint string, now time.Time) (domain.Summary, error) {
	prev, hasPrev, err := s.insights.Get(ctx, req.ProductCode)
	if err != nil {
		s.logger.Warn("load insight", "product", req.ProductCode, "err", err)
		hasPrev = false
	}

	input := PromptInput{ProductCode: req.ProductCode, Reviews: req.Reviews}
	if hasPrev {
		input.PreviousNarrative = prev.Narrative
	}
	if s.overrides != nil {
		if o, ok, err := s.overrides.Get(ctx, req.ProductCode); err != nil {
			s.logger.Warn("load override direction", "product", req.ProductCode, "err", err)
		} else if ok {
			input.Direction = o.Direction
		}
	}
	if s.feedback != nil {
		records, err := s.feedback.Recent(ctx, req.ProductCode, s.opts.FeedbackExamples)
		if err != nil {
			s.logger.Warn("load feedback", "product", req.ProductCode, "err", err)
		} else {
			input.Feedback = records
		}
	}
	system, user := BuildPrompt(input)

	callCtx, cancel := context.WithTimeout(ctx, s.opts.AITimeout)
	defer cancel()
	raw, err := s.analyzer.Analyze(callCtx, system, user)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("analyze: %w", err)
	}
	reply, err := parseReply(raw)
	if err != nil {
		return domain.Summary{}, err
	}

	insight := domain.ProductInsight{
		ProductCode:     req.ProductCode,
		Narrative:       reply.Narrative,
		Summary:         reply.Summary,
		Hashtags:        reply.Hashtags,
		Sentiment:       reply.sentiment(),
		SourceReviewIDs: ReviewIDs(req.Reviews),
		LastAnalyzedAt:  now,
		Version:         1,
	}
	if hasPrev {
		insight.Version = prev.Version + 1
	}
	if err := s.insights.Upsert(ctx, insight); err != nil {
		return domain.Summary{}, fmt.Errorf("store insight: %w", err)
	}
	s.hook.Notify(domain.EntityInsight, req.ProductCode)

	result := domain.Summary{
		Summary:     insight.Summary,
		Headline:    reply.Headline,
		Hashtags:    insight.Hashtags,
		Sentiment:   insight.Sentiment,
		ReviewCount: len(req.Reviews),
		Provider:    domain.ProviderAI,
		AnalyzedAt:  now,
	}
	s.cache.Put(domain.AnalysisCacheEntry{
		ProductCode: req.ProductCode,
		Fingerprint: fingerprint,
		Payload:     result,
		Timestamp:   now,
	})
	return result, nil
}

type insightStrategy struct {
	repo   ports.InsightRepository
	logger *slog.Logger
}

func (s *insightStrategy) Name() string { return domain.ProviderInsightsCached }

func (s *insightStrategy) Summarize(ctx context.Context, req Request) (domain.Summary, bool) {
	insight, ok, err := s.repo.Get(ctx, req.ProductCode)
	if err != nil {
		s.logger.Warn("load insight", "product", req.ProductCode, "err", err)
		return domain.Summary{}, false
	}
	if !ok {
		return domain.Summary{}, false
	}
	text := insight.Summary
	if text == "" {
		text = insight.Narrative
	}
	return domain.Summary{
		Summary:     text,
		Hashtags:    nonNil(insight.Hashtags),
		Sentiment:   insight.Sentiment,
		ReviewCount: len(req.Reviews),
		Provider:    domain.ProviderInsightsCached,
		AnalyzedAt:  insight.LastAnalyzedAt,
	}, true
}

type keywordStrategy struct {
	analyzer *keywords.Analyzer
	composer *summary.Composer
	now      func() time.Time
}

func (s *keywordStrategy) Name() string { return domain.ProviderKeyword }

func (s *keywordStrategy) Summarize(_ context.Context, req Request) (domain.Summary, bool) {
	if len(req.Reviews) == 0 {
		return domain.Summary{}, false
	}
	analysis := s.analyzer.Analyze(req.Reviews)
	sentiment := keywords.ScoreSentiment(analysis)
	comp := s.composer.Compose(analysis, sentiment)
	return domain.Summary{
		Summary:     comp.Narrative,
		Headline:    comp.Headline,
		Hashtags:    nonNil(s.analyzer.Hashtags(analysis)),
		Sentiment:   sentiment,
		ReviewCount: len(req.Reviews),
		Provider:    domain.ProviderKeyword,
		AnalyzedAt:  s.now(),
	}, true
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
