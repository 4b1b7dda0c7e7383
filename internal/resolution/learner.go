package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/ports"
)

// FeedbackHistory is how many corrections are kept per product.
const FeedbackHistory = 10

// LearnerDeps wires the feedback learner.
type LearnerDeps struct {
	Feedback ports.FeedbackRepository
	Cache    ports.AnalysisCache
	SaveHook ports.SaveHook
	Logger   *slog.Logger
	Now      func() time.Time
}

// Learner records operator corrections for later prompts.
type Learner struct {
	feedback ports.FeedbackRepository
	cache    ports.AnalysisCache
	hook     ports.SaveHook
	logger   *slog.Logger
	now      func() time.Time
}

// NewLearner constructs the learner.
func NewLearner(deps LearnerDeps) *Learner {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Learner{
		feedback: deps.Feedback,
		cache:    deps.Cache,
		hook:     deps.SaveHook,
		logger:   logging.OrDiscard(deps.Logger).With("component", "feedback"),
		now:      now,
	}
}

// RecordFeedback appends a correction and trims history to FeedbackHistory.
// The product's cached AI result is dropped so the next run sees the correction.
func (l *Learner) RecordFeedback(ctx context.Context, productCode, original, corrected string) (domain.FeedbackRecord, error) {
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return domain.FeedbackRecord{}, fmt.Errorf("%w: product code is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(corrected) == "" {
		return domain.FeedbackRecord{}, fmt.Errorf("%w: corrected summary is required", domain.ErrInvalidInput)
	}
	if l.feedback == nil {
		return domain.FeedbackRecord{}, fmt.Errorf("feedback repository is not configured")
	}

	record := domain.FeedbackRecord{
		ID:               domain.NewID(),
		ProductCode:      productCode,
		OriginalSummary:  original,
		CorrectedSummary: corrected,
		CreatedAt:        l.now(),
	}
	if err := l.feedback.Append(ctx, record); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("append feedback: %w", err)
	}
	if err := l.feedback.Trim(ctx, productCode, FeedbackHistory); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("trim feedback: %w", err)
	}
	l.hook.Notify(domain.EntityFeedback, productCode)

	if l.cache != nil {
		l.cache.Delete(productCode)
	}
	l.logger.Info("feedback recorded", "product", productCode, "id", record.ID)
	return record, nil
}
