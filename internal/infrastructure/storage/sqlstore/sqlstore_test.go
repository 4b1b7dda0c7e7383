package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScout/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReview(id, externalID, product string, created time.Time) domain.SocialReview {
	return domain.SocialReview{
		ID:          id,
		Platform:    domain.PlatformVideo,
		ExternalID:  externalID,
		Title:       "review " + externalID,
		URL:         "https://example.com/" + externalID,
		PublishedAt: created.Add(-time.Hour),
		Engagement:  domain.Engagement{Views: 120, Likes: 7},
		Status:      domain.StatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
		MatchedProducts: []domain.ProductMatch{
			{ProductCode: product, MatchScore: 80},
		},
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	require.Error(t, err)
}

func TestReviewsInsertDedupAndList(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Reviews()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, sampleReview("r1", "x1", "P1", base)))
	require.NoError(t, repo.Insert(ctx, sampleReview("r2", "x2", "P2", base.Add(time.Minute))))

	err := repo.Insert(ctx, sampleReview("r3", "x1", "P1", base.Add(2*time.Minute)))
	require.ErrorIs(t, err, domain.ErrDuplicate)

	exists, err := repo.Exists(ctx, domain.ReviewKey{Platform: domain.PlatformVideo, ExternalID: "x1"})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, domain.ReviewKey{Platform: domain.PlatformBlog, ExternalID: "x1"})
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := repo.ListByStatus(ctx, "", domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r1", all[0].ID)
	assert.Equal(t, "r2", all[1].ID)

	p1, err := repo.ListByStatus(ctx, "P1", "")
	require.NoError(t, err)
	require.Len(t, p1, 1)
	got := p1[0]
	assert.Equal(t, "x1", got.ExternalID)
	assert.Equal(t, int64(120), got.Engagement.Views)
	assert.Equal(t, []domain.ProductMatch{{ProductCode: "P1", MatchScore: 80}}, got.MatchedProducts)
	assert.True(t, base.Equal(got.CreatedAt))
}

func TestReviewsUpdateStatusAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Reviews()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, sampleReview("r1", "x1", "P1", base)))
	require.NoError(t, repo.Insert(ctx, sampleReview("r2", "x2", "P1", base)))

	at := base.Add(24 * time.Hour)
	require.NoError(t, repo.UpdateStatus(ctx, "r1", domain.StatusApproved, at))
	require.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.StatusApproved, at), domain.ErrNotFound)
	require.ErrorIs(t, repo.UpdateStatus(ctx, "r1", "LOST", at), domain.ErrInvalidInput)

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.True(t, at.Equal(got.UpdatedAt))

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	approved, err := repo.ListByStatus(ctx, "P1", domain.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "r1", approved[0].ID)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusApproved])
	assert.Equal(t, 1, counts[domain.StatusPending])
}

func TestInsightsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Insights()

	_, ok, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	in := domain.ProductInsight{
		ProductCode:     "P1",
		Narrative:       "long form",
		Summary:         "short",
		Hashtags:        []string{"hydrating", "serum"},
		Sentiment:       domain.Sentiment{PositiveRatio: 80, NegativeRatio: 20},
		SourceReviewIDs: []string{"r1", "r2"},
		LastAnalyzedAt:  at,
		Version:         1,
	}
	require.NoError(t, repo.Upsert(ctx, in))

	in.Summary = "shorter"
	in.Version = 2
	in.Hashtags = nil
	require.NoError(t, repo.Upsert(ctx, in))

	got, ok, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shorter", got.Summary)
	assert.Equal(t, 2, got.Version)
	assert.Empty(t, got.Hashtags)
	assert.Equal(t, []string{"r1", "r2"}, got.SourceReviewIDs)
	assert.Equal(t, 80, got.Sentiment.PositiveRatio)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.ErrorIs(t, repo.Upsert(ctx, domain.ProductInsight{}), domain.ErrInvalidInput)
}

func TestFeedbackRecentAndTrim(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Feedback()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, domain.FeedbackRecord{
			ID:               fmt.Sprintf("f%d", i),
			ProductCode:      "P1",
			OriginalSummary:  "old",
			CorrectedSummary: fmt.Sprintf("fixed %d", i),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Append(ctx, domain.FeedbackRecord{ID: "other", ProductCode: "P2", CreatedAt: base}))

	recent, err := repo.Recent(ctx, "P1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "f4", recent[0].ID)
	assert.Equal(t, "f3", recent[1].ID)

	require.NoError(t, repo.Trim(ctx, "P1", 3))
	left, err := repo.Recent(ctx, "P1", 0)
	require.NoError(t, err)
	require.Len(t, left, 3)
	assert.Equal(t, "f2", left[2].ID)

	other, err := repo.Recent(ctx, "P2", 0)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestOverridesLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Overrides()

	o := domain.Override{
		ProductCode: "P1",
		Summary:     "Editor pick",
		Hashtags:    []string{"pick"},
		Sentiment:   domain.Sentiment{PositiveRatio: 90, NegativeRatio: 10},
		Direction:   "mention the scent",
		UpdatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, o))
	o.Summary = "Editor pick, revised"
	require.NoError(t, repo.Upsert(ctx, o))

	got, ok, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Editor pick, revised", got.Summary)
	assert.Equal(t, "mention the scent", got.Direction)
	assert.Equal(t, []string{"pick"}, got.Hashtags)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, "P1"))
	require.ErrorIs(t, repo.Delete(ctx, "P1"), domain.ErrNotFound)

	_, ok, err = repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogUpsertAndList(t *testing.T) {
	ctx := context.Background()
	catalog := openTestStore(t).Catalog()

	require.NoError(t, catalog.UpsertProducts(ctx, []domain.Product{
		{Code: "P2", Name: "Calming Cream", SaleActive: false},
		{Code: "P1", Name: "Hydra Serum", SaleActive: true, Category: "serum"},
	}))
	require.NoError(t, catalog.UpsertProducts(ctx, []domain.Product{
		{Code: "P2", Name: "Calming Cream", SaleActive: true},
	}))

	products, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].Code)
	assert.Equal(t, "serum", products[0].Category)
	assert.True(t, products[1].SaleActive)

	require.ErrorIs(t, catalog.UpsertProducts(ctx, []domain.Product{{Name: "nameless"}}), domain.ErrInvalidInput)
}
