package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Insights is the SQL InsightRepository.
type Insights struct {
	s *Store
}

// Feedback is the SQL FeedbackRepository.
type Feedback struct {
	s *Store
}

// Overrides is the SQL OverrideRepository.
type Overrides struct {
	s *Store
}

var (
	_ ports.InsightRepository  = (*Insights)(nil)
	_ ports.FeedbackRepository = (*Feedback)(nil)
	_ ports.OverrideRepository = (*Overrides)(nil)
)

// Get implements ports.InsightRepository.
func (r *Insights) Get(ctx context.Context, productCode string) (domain.ProductInsight, bool, error) {
	row := r.s.sb.Select("product_code", "narrative", "summary", "hashtags", "positive_ratio",
		"negative_ratio", "source_review_ids", "last_analyzed_at", "version").
		From("insights").
		Where(sq.Eq{"product_code": productCode}).
		RunWith(r.s.db).QueryRowContext(ctx)

	var (
		in      domain.ProductInsight
		tags    string
		sources string
	)
	err := row.Scan(&in.ProductCode, &in.Narrative, &in.Summary, &tags, &in.Sentiment.PositiveRatio,
		&in.Sentiment.NegativeRatio, &sources, &in.LastAnalyzedAt, &in.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductInsight{}, false, nil
	}
	if err != nil {
		return domain.ProductInsight{}, false, fmt.Errorf("query insight %s: %w", productCode, err)
	}
	if in.Hashtags, err = decodeList(tags); err != nil {
		return domain.ProductInsight{}, false, fmt.Errorf("insight %s hashtags: %w", productCode, err)
	}
	if in.SourceReviewIDs, err = decodeList(sources); err != nil {
		return domain.ProductInsight{}, false, fmt.Errorf("insight %s sources: %w", productCode, err)
	}
	return in, true, nil
}

// Upsert implements ports.InsightRepository.
func (r *Insights) Upsert(ctx context.Context, in domain.ProductInsight) error {
	if in.ProductCode == "" {
		return fmt.Errorf("%w: insight product code is required", domain.ErrInvalidInput)
	}
	tags, err := encodeList(in.Hashtags)
	if err != nil {
		return err
	}
	sources, err := encodeList(in.SourceReviewIDs)
	if err != nil {
		return err
	}

	_, err = r.s.sb.Insert("insights").
		Columns("product_code", "narrative", "summary", "hashtags", "positive_ratio",
			"negative_ratio", "source_review_ids", "last_analyzed_at", "version").
		Values(in.ProductCode, in.Narrative, in.Summary, tags, in.Sentiment.PositiveRatio,
			in.Sentiment.NegativeRatio, sources, in.LastAnalyzedAt.UTC(), in.Version).
		Suffix(`ON CONFLICT (product_code) DO UPDATE SET
	narrative = EXCLUDED.narrative,
	summary = EXCLUDED.summary,
	hashtags = EXCLUDED.hashtags,
	positive_ratio = EXCLUDED.positive_ratio,
	negative_ratio = EXCLUDED.negative_ratio,
	source_review_ids = EXCLUDED.source_review_ids,
	last_analyzed_at = EXCLUDED.last_analyzed_at,
	version = EXCLUDED.version`).
		RunWith(r.s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert insight %s: %w", in.ProductCode, err)
	}
	return nil
}

// Count implements ports.InsightRepository.
func (r *Insights) Count(ctx context.Context) (int, error) {
	return count(ctx, r.s, "insights")
}

// Append implements ports.FeedbackRepository.
func (r *Feedback) Append(ctx context.Context, rec domain.FeedbackRecord) error {
	_, err := r.s.sb.Insert("feedback").
		Columns("id", "product_code", "original_summary", "corrected_summary", "created_at").
		Values(rec.ID, rec.ProductCode, rec.OriginalSummary, rec.CorrectedSummary, rec.CreatedAt.UTC()).
		RunWith(r.s.db).ExecContext(ctx)
	if err != nil {
		return wrapWrite(err, "append feedback "+rec.ID)
	}
	return nil
}

// Recent implements ports.FeedbackRepository.
func (r *Feedback) Recent(ctx context.Context, productCode string, limit int) ([]domain.FeedbackRecord, error) {
	q := r.s.sb.Select("id", "product_code", "original_summary", "corrected_summary", "created_at").
		From("feedback").
		Where(sq.Eq{"product_code": productCode}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(r.s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.FeedbackRecord
	for rows.Next() {
		var rec domain.FeedbackRecord
		if err := rows.Scan(&rec.ID, &rec.ProductCode, &rec.OriginalSummary, &rec.CorrectedSummary, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Trim implements ports.FeedbackRepository.
func (r *Feedback) Trim(ctx context.Context, productCode string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	// Built with plain placeholders; the outer builder rewrites them for postgres.
	sub, subArgs, err := sq.Select("id").From("feedback").
		Where(sq.Eq{"product_code": productCode}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(keep)).ToSql()
	if err != nil {
		return fmt.Errorf("build trim: %w", err)
	}

	_, err = r.s.sb.Delete("feedback").
		Where(sq.Eq{"product_code": productCode}).
		Where("id NOT IN ("+sub+")", subArgs...).
		RunWith(r.s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("trim feedback %s: %w", productCode, err)
	}
	return nil
}

// Get implements ports.OverrideRepository.
func (r *Overrides) Get(ctx context.Context, productCode string) (domain.Override, bool, error) {
	row := r.s.sb.Select("product_code", "summary", "hashtags", "positive_ratio", "negative_ratio",
		"direction", "updated_at").
		From("overrides").
		Where(sq.Eq{"product_code": productCode}).
		RunWith(r.s.db).QueryRowContext(ctx)

	var (
		o    domain.Override
		tags string
	)
	err := row.Scan(&o.ProductCode, &o.Summary, &tags, &o.Sentiment.PositiveRatio,
		&o.Sentiment.NegativeRatio, &o.Direction, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Override{}, false, nil
	}
	if err != nil {
		return domain.Override{}, false, fmt.Errorf("query override %s: %w", productCode, err)
	}
	if o.Hashtags, err = decodeList(tags); err != nil {
		return domain.Override{}, false, fmt.Errorf("override %s hashtags: %w", productCode, err)
	}
	return o, true, nil
}

// Upsert implements ports.OverrideRepository.
func (r *Overrides) Upsert(ctx context.Context, o domain.Override) error {
	if o.ProductCode == "" {
		return fmt.Errorf("%w: override product code is required", domain.ErrInvalidInput)
	}
	tags, err := encodeList(o.Hashtags)
	if err != nil {
		return err
	}

	_, err = r.s.sb.Insert("overrides").
		Columns("product_code", "summary", "hashtags", "positive_ratio", "negative_ratio", "direction", "updated_at").
		Values(o.ProductCode, o.Summary, tags, o.Sentiment.PositiveRatio, o.Sentiment.NegativeRatio,
			o.Direction, o.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT (product_code) DO UPDATE SET
	summary = EXCLUDED.summary,
	hashtags = EXCLUDED.hashtags,
	positive_ratio = EXCLUDED.positive_ratio,
	negative_ratio = EXCLUDED.negative_ratio,
	direction = EXCLUDED.direction,
	updated_at = EXCLUDED.updated_at`).
		RunWith(r.s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert override %s: %w", o.ProductCode, err)
	}
	return nil
}

// Delete implements ports.OverrideRepository.
func (r *Overrides) Delete(ctx context.Context, productCode string) error {
	res, err := r.s.sb.Delete("overrides").Where(sq.Eq{"product_code": productCode}).
		RunWith(r.s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete override %s: %w", productCode, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("override %s: %w", productCode, domain.ErrNotFound)
	}
	return nil
}

// Count implements ports.OverrideRepository.
func (r *Overrides) Count(ctx context.Context) (int, error) {
	return count(ctx, r.s, "overrides")
}

func count(ctx context.Context, s *Store, table string) (int, error) {
	var n int
	err := s.sb.Select("COUNT(*)").From(table).RunWith(s.db).QueryRowContext(ctx).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

func decodeList(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
