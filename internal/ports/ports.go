package ports

import (
	"context"
	"time"

	"ReviewScout/internal/domain"
)

// ProductCatalog exposes the live, read-only product listing.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// ReviewRepository stores collected posts; (platform, externalId) is unique.
type ReviewRepository interface {
	Exists(ctx context.Context, key domain.ReviewKey) (bool, error)
	Insert(ctx context.Context, review domain.SocialReview) error
	Get(ctx context.Context, id string) (domain.SocialReview, error)
	// ListByStatus returns reviews matched to productCode; an empty code means all products.
	ListByStatus(ctx context.Context, productCode string, status domain.ReviewStatus) ([]domain.SocialReview, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus, at time.Time) error
	CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int, error)
}

// InsightRepository keeps the last successful AI analysis per product.
type InsightRepository interface {
	Get(ctx context.Context, productCode string) (domain.ProductInsight, bool, error)
	Upsert(ctx context.Context, insight domain.ProductInsight) error
	Count(ctx context.Context) (int, error)
}

// FeedbackRepository keeps operator corrections.
type FeedbackRepository interface {
	Append(ctx context.Context, record domain.FeedbackRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, productCode string, limit int) ([]domain.FeedbackRecord, error)
	// Trim drops everything but the keep most recent records of productCode.
	Trim(ctx context.Context, productCode string, keep int) error
}

// OverrideRepository keeps operator-fixed summaries.
type OverrideRepository interface {
	Get(ctx context.Context, productCode string) (domain.Override, bool, error)
	Upsert(ctx context.Context, override domain.Override) error
	Delete(ctx context.Context, productCode string) error
	Count(ctx context.Context) (int, error)
}

// AnalysisCache memoizes AI results keyed by product.
type AnalysisCache interface {
	Get(productCode string) (domain.AnalysisCacheEntry, bool)
	Put(entry domain.AnalysisCacheEntry)
	Delete(productCode string)
	Len() int
}

// InsightAnalyzer is the optional AI collaborator: prompt in, JSON text out.
type InsightAnalyzer interface {
	Name() string
	Available() bool
	Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Notifier streams moderation digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when collection runs.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// SaveHook is invoked after every accepted mutation. It reports nothing back.
type SaveHook func(kind domain.EntityKind, key string)

// Notify calls the hook when one is configured.
func (h SaveHook) Notify(kind domain.EntityKind, key string) {
	if h != nil {
		h(kind, key)
	}
}
