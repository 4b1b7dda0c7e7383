package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Reviews is the SQL ReviewRepository; (platform, external_id) is a unique key.
type Reviews struct {
	s *Store
}

var _ ports.ReviewRepository = (*Reviews)(nil)

var reviewColumns = []string{
	"r.id", "r.platform", "r.external_id", "r.title", "r.description", "r.author", "r.url",
	"r.thumbnail_url", "r.published_at", "r.views", "r.likes", "r.comments", "r.status",
	"r.created_at", "r.updated_at",
}

// Exists implements ports.ReviewRepository.
func (r *Reviews) Exists(ctx context.Context, key domain.ReviewKey) (bool, error) {
	query, args, err := r.s.sb.Select("1").From("reviews").
		Where(sq.Eq{"platform": string(key.Platform), "external_id": key.ExternalID}).
		Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = r.s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// Insert stores the review and its product matches in one transaction.
func (r *Reviews) Insert(ctx context.Context, review domain.SocialReview) error {
	if review.ID == "" || review.ExternalID == "" {
		return fmt.Errorf("%w: review id and external id are required", domain.ErrInvalidInput)
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert review: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := r.s.sb.Insert("reviews").
		Columns("id", "platform", "external_id", "title", "description", "author", "url",
			"thumbnail_url", "published_at", "views", "likes", "comments", "status",
			"created_at", "updated_at").
		Values(review.ID, string(review.Platform), review.ExternalID, review.Title, review.Description,
			review.Author, review.URL, review.ThumbnailURL, review.PublishedAt.UTC(),
			review.Engagement.Views, review.Engagement.Likes, review.Engagement.Comments,
			string(review.Status), review.CreatedAt.UTC(), review.UpdatedAt.UTC()).
		Suffix("ON CONFLICT (platform, external_id) DO NOTHING").
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return wrapWrite(err, "insert review "+review.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: review %s", domain.ErrDuplicate, review.Key())
	}

	if len(review.MatchedProducts) > 0 {
		ins := r.s.sb.Insert("review_matches").Columns("review_id", "product_code", "match_score")
		for _, m := range review.MatchedProducts {
			ins = ins.Values(review.ID, m.ProductCode, m.MatchScore)
		}
		if _, err := ins.RunWith(tx).ExecContext(ctx); err != nil {
			return wrapWrite(err, "insert review matches "+review.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review %s: %w", review.ID, err)
	}
	return nil
}

// Get implements ports.ReviewRepository.
func (r *Reviews) Get(ctx context.Context, id string) (domain.SocialReview, error) {
	reviews, err := r.query(ctx, r.s.sb.Select(reviewColumns...).From("reviews r").Where(sq.Eq{"r.id": id}))
	if err != nil {
		return domain.SocialReview{}, err
	}
	if len(reviews) == 0 {
		return domain.SocialReview{}, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return reviews[0], nil
}

// ListByStatus orders by creation. Empty productCode or status means any.
func (r *Reviews) ListByStatus(ctx context.Context, productCode string, status domain.ReviewStatus) ([]domain.SocialReview, error) {
	q := r.s.sb.Select(reviewColumns...).From("reviews r").OrderBy("r.created_at", "r.id")
	if status != "" {
		q = q.Where(sq.Eq{"r.status": string(status)})
	}
	if productCode != "" {
		q = q.Join("review_matches m ON m.review_id = r.id").Where(sq.Eq{"m.product_code": productCode})
	}
	return r.query(ctx, q)
}

// UpdateStatus implements ports.ReviewRepository.
func (r *Reviews) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}

	res, err := r.s.sb.Update("reviews").
		Set("status", string(status)).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id}).
		RunWith(r.s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountByStatus implements ports.ReviewRepository.
func (r *Reviews) CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int, error) {
	rows, err := r.s.sb.Select("status", "COUNT(*)").From("reviews").GroupBy("status").
		RunWith(r.s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ReviewStatus]int, 3)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan review count: %w", err)
		}
		counts[domain.ReviewStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

func (r *Reviews) query(ctx context.Context, q sq.SelectBuilder) ([]domain.SocialReview, error) {
	rows, err := q.RunWith(r.s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}

	var (
		reviews []domain.SocialReview
		ids     []string
	)
	for rows.Next() {
		var (
			rv       domain.SocialReview
			platform string
			status   string
		)
		if err := rows.Scan(&rv.ID, &platform, &rv.ExternalID, &rv.Title, &rv.Description, &rv.Author,
			&rv.URL, &rv.ThumbnailURL, &rv.PublishedAt, &rv.Engagement.Views, &rv.Engagement.Likes,
			&rv.Engagement.Comments, &status, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan review: %w", err)
		}
		rv.Platform = domain.Platform(platform)
		rv.Status = domain.ReviewStatus(status)
		reviews = append(reviews, rv)
		ids = append(ids, rv.ID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}

	if len(ids) == 0 {
		return reviews, nil
	}
	matches, err := r.matches(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		reviews[i].MatchedProducts = matches[reviews[i].ID]
	}
	return reviews, nil
}

func (r *Reviews) matches(ctx context.Context, ids []string) (map[string][]domain.ProductMatch, error) {
	rows, err := r.s.sb.Select("review_id", "product_code", "match_score").From("review_matches").
		Where(sq.Eq{"review_id": ids}).OrderBy("review_id", "product_code").
		RunWith(r.s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query review matches: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.ProductMatch, len(ids))
	for rows.Next() {
		var (
			id string
			m  domain.ProductMatch
		)
		if err := rows.Scan(&id, &m.ProductCode, &m.MatchScore); err != nil {
			return nil, fmt.Errorf("scan review match: %w", err)
		}
		out[id] = append(out[id], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
