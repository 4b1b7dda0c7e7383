package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/ports"
)

// Store bundles the persisted repositories.
type Store struct {
	Reviews   *Reviews
	Insights  *Insights
	Feedback  *Feedback
	Overrides *Overrides
}

// NewStore creates empty repositories.
func NewStore() *Store {
	return &Store{
		Reviews:   NewReviews(),
		Insights:  NewInsights(),
		Feedback:  NewFeedback(),
		Overrides: NewOverrides(),
	}
}

type snapshot struct {
	Reviews   []domain.SocialReview   `json:"reviews"`
	Insights  []domain.ProductInsight `json:"insights"`
	Feedback  []domain.FeedbackRecord `json:"feedback"`
	Overrides []domain.Override       `json:"overrides"`
}

// WriteFile stores a JSON snapshot, replacing path atomically.
func (s *Store) WriteFile(path string) error {
	snap := snapshot{
		Reviews:   s.Reviews.all(),
		Insights:  s.Insights.all(),
		Feedback:  s.Feedback.all(),
		Overrides: s.Overrides.all(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LoadFile restores a snapshot. A missing file yields an empty store.
func LoadFile(path string) (*Store, error) {
	store := NewStore()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	ctx := context.Background()
	for _, r := range snap.Reviews {
		if err := store.Reviews.Insert(ctx, r); err != nil {
			return nil, fmt.Errorf("restore review %s: %w", r.ID, err)
		}
	}
	for _, in := range snap.Insights {
		if err := store.Insights.Upsert(ctx, in); err != nil {
			return nil, fmt.Errorf("restore insight %s: %w", in.ProductCode, err)
		}
	}
	for _, fb := range snap.Feedback {
		if err := store.Feedback.Append(ctx, fb); err != nil {
			return nil, fmt.Errorf("restore feedback %s: %w", fb.ID, err)
		}
	}
	for _, o := range snap.Overrides {
		if err := store.Overrides.Upsert(ctx, o); err != nil {
			return nil, fmt.Errorf("restore override %s: %w", o.ProductCode, err)
		}
	}
	return store, nil
}

// SnapshotHook returns a save hook that rewrites path after every mutation.
// Write failures are logged; the caller never sees them.
func (s *Store) SnapshotHook(path string, logger *slog.Logger) ports.SaveHook {
	logger = logging.OrDiscard(logger).With("component", "snapshot")
	var mu sync.Mutex
	return func(kind domain.EntityKind, key string) {
		mu.Lock()
		defer mu.Unlock()
		if err := s.WriteFile(path); err != nil {
			logger.Warn("snapshot write failed", "kind", kind, "key", key, "err", err)
			return
		}
		logger.Debug("snapshot written", "kind", kind, "key", key)
	}
}
