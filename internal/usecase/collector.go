package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/hashtag"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/matching"
	"ReviewScout/internal/ports"
	"ReviewScout/internal/query"
	"ReviewScout/internal/scanner"
)

// PolicySource maps a platform to its match policy.
type PolicySource interface {
	Policy(platform domain.Platform) matching.Policy
}

// CollectorOptions bounds the external traffic of one run.
type CollectorOptions struct {
	MaxQueries      int
	ResultsPerQuery int
	RequestDelay    time.Duration
	CallTimeout     time.Duration
}

// DefaultCollectorOptions returns the production defaults.
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		MaxQueries:      5,
		ResultsPerQuery: 10,
		RequestDelay:    time.Second,
		CallTimeout:     15 * time.Second,
	}
}

// CollectorDeps wires the driven adapters into the collection workflow.
type CollectorDeps struct {
	Catalog  ports.ProductCatalog
	Reviews  ports.ReviewRepository
	Scanners *scanner.Registry
	Policies PolicySource
	Planner  *query.Planner
	Scorer   *matching.Scorer
	Notifier ports.Notifier
	SaveHook ports.SaveHook
	Logger   *slog.Logger
	Options  CollectorOptions
	Now      func() time.Time
}

// CollectionResult reports one platform run.
type CollectionResult struct {
	RunID           string          `json:"runId"`
	Platform        domain.Platform `json:"platform"`
	Success         bool            `json:"success"`
	CollectedCount  int             `json:"collectedCount"`
	SkippedCount    int             `json:"skippedCount"`
	ProductsScanned int             `json:"productsScanned"`
	ProductsFailed  int             `json:"productsFailed"`
	StartedAt       time.Time       `json:"startedAt"`
	FinishedAt      time.Time       `json:"finishedAt"`
}

// Collector implements the review-collection workflow.
type Collector struct {
	catalog  ports.ProductCatalog
	reviews  ports.ReviewRepository
	scanners *scanner.Registry
	policies PolicySource
	planner  *query.Planner
	scorer   *matching.Scorer
	notifier ports.Notifier
	hook     ports.SaveHook
	logger   *slog.Logger
	opts     CollectorOptions
	now      func() time.Time

	mu      sync.Mutex
	running map[domain.Platform]bool
}

// NewCollector constructs the collection component.
func NewCollector(deps CollectorDeps) *Collector {
	opts := deps.Options
	defaults := DefaultCollectorOptions()
	if opts.MaxQueries <= 0 {
		opts.MaxQueries = defaults.MaxQueries
	}
	if opts.ResultsPerQuery <= 0 {
		opts.ResultsPerQuery = defaults.ResultsPerQuery
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaults.CallTimeout
	}
	if opts.RequestDelay < 0 {
		opts.RequestDelay = 0
	}

	planner := deps.Planner
	if planner == nil {
		planner = query.NewPlanner()
	}
	scorer := deps.Scorer
	if scorer == nil {
		scorer = matching.NewScorer(matching.DefaultThresholds(), nil)
	}
	scanners := deps.Scanners
	if scanners == nil {
		scanners = scanner.NewRegistry()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Collector{
		catalog:  deps.Catalog,
		reviews:  deps.Reviews,
		scanners: scanners,
		policies: deps.Policies,
		planner:  planner,
		scorer:   scorer,
		notifier: deps.Notifier,
		hook:     deps.SaveHook,
		logger:   logging.OrDiscard(deps.Logger).With("component", "collector"),
		opts:     opts,
		now:      now,
		running:  map[domain.Platform]bool{},
	}
}

// Platforms lists the platforms that can be collected.
func (c *Collector) Platforms() []domain.Platform {
	return c.scanners.Platforms()
}

// Running lists the platforms with a run in flight.
func (c *Collector) Running() []domain.Platform {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Platform, 0, len(c.running))
	for _, p := range c.scanners.Platforms() {
		if c.running[p] {
			out = append(out, p)
		}
	}
	return out
}

// TriggerCollection searches platform for reviews of every active product.
// A second trigger for a platform that is still running is rejected.
func (c *Collector) TriggerCollection(ctx context.Context, platform domain.Platform) (CollectionResult, error) {
	result := CollectionResult{
		RunID:     uuid.NewString(),
		Platform:  platform,
		StartedAt: c.now(),
	}

	if !c.acquire(platform) {
		result.FinishedAt = c.now()
		return result, fmt.Errorf("platform %s: %w", platform, domain.ErrCollectionInProgress)
	}
	defer c.release(platform)

	s, err := c.scanners.Resolve(platform)
	if err != nil {
		result.FinishedAt = c.now()
		return result, err
	}
	if c.catalog == nil || c.reviews == nil {
		result.FinishedAt = c.now()
		return result, errors.New("collector is missing its catalog or review repository")
	}

	products, err := c.catalog.ListProducts(ctx)
	if err != nil {
		result.FinishedAt = c.now()
		return result, fmt.Errorf("list products: %w", err)
	}

	log := c.logger.With("platform", platform, "run", result.RunID)
	log.Info("collection started", "products", len(products))

	policy := matching.DefaultPolicy(platform)
	if c.policies != nil {
		policy = c.policies.Policy(platform)
	}

	run := &collectRun{
		scanner: s,
		policy:  policy,
		pace:    pacer{delay: c.opts.RequestDelay},
	}
	for _, product := range products {
		if !product.SaleActive {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		result.ProductsScanned++
		if err := c.collectProduct(ctx, run, product); err != nil {
			result.ProductsFailed++
			log.Warn("product collection failed", "product", product.Code, "error", err)
		}
	}

	result.CollectedCount = len(run.accepted)
	result.SkippedCount = run.skipped
	result.Success = ctx.Err() == nil
	result.FinishedAt = c.now()
	log.Info("collection finished",
		"collected", result.CollectedCount,
		"skipped", result.SkippedCount,
		"scanned", result.ProductsScanned,
		"failed", result.ProductsFailed)

	if len(run.accepted) > 0 && c.notifier != nil {
		message := buildDigestMessage(platform, run.accepted)
		if err := c.notifier.PublishDigest(ctx, message); err != nil {
			log.Warn("digest delivery failed", "error", err)
		}
	}

	if !result.Success {
		return result, fmt.Errorf("collection %s interrupted: %w", platform, ctx.Err())
	}
	return result, nil
}

// TriggerAll runs every registered platform one after another.
func (c *Collector) TriggerAll(ctx context.Context) ([]CollectionResult, error) {
	var (
		results []CollectionResult
		errs    []error
	)
	for _, platform := range c.scanners.Platforms() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := c.TriggerCollection(ctx, platform)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

type collectRun struct {
	scanner  scanner.Scanner
	policy   matching.Policy
	pace     pacer
	accepted []domain.SocialReview
	skipped  int
}

func (c *Collector) collectProduct(ctx context.Context, run *collectRun, product domain.Product) error {
	tags := hashtag.Extract(product.DetailBlob)
	queries := c.planner.PlanN(tags, product.Name, c.opts.MaxQueries)

	var (
		candidates []domain.Candidate
		seen       = map[string]struct{}{}
	)
	for _, text := range queries {
		found, err := c.search(ctx, run, text)
		if err != nil {
			return fmt.Errorf("search %q: %w", text, err)
		}
		for _, cand := range found {
			if cand.ExternalID == "" {
				continue
			}
			if _, dup := seen[cand.ExternalID]; dup {
				continue
			}
			seen[cand.ExternalID] = struct{}{}
			if cand.Platform == "" {
				cand.Platform = run.scanner.Platform()
			}
			candidates = append(candidates, cand)
		}
	}

	if err := c.enrich(ctx, run, candidates); err != nil {
		return fmt.Errorf("details: %w", err)
	}

	for _, cand := range candidates {
		score, ok := c.scorer.Score(run.policy, product, tags, cand)
		if !ok {
			continue
		}

		key := domain.ReviewKey{Platform: cand.Platform, ExternalID: cand.ExternalID}
		exists, err := c.reviews.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("check %s: %w", key, err)
		}
		if exists {
			run.skipped++
			continue
		}

		review := c.newReview(cand, product.Code, score)
		if err := c.reviews.Insert(ctx, review); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				run.skipped++
				continue
			}
			return fmt.Errorf("store %s: %w", key, err)
		}
		c.hook.Notify(domain.EntityReview, review.ID)
		run.accepted = append(run.accepted, review)
	}
	return nil
}

func (c *Collector) search(ctx context.Context, run *collectRun, text string) ([]domain.Candidate, error) {
	if err := run.pace.wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()
	return run.scanner.Search(callCtx, scanner.Query{Text: text, MaxResults: c.opts.ResultsPerQuery})
}

func (c *Collector) enrich(ctx context.Context, run *collectRun, candidates []domain.Candidate) error {
	fetcher, ok := run.scanner.(scanner.DetailFetcher)
	if !ok || len(candidates) == 0 {
		return nil
	}
	ids := make([]string, len(candidates))
	for i, cand := range candidates {
		ids[i] = cand.ExternalID
	}

	if err := run.pace.wait(ctx); err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()
	details, err := fetcher.Details(callCtx, ids)
	if err != nil {
		return err
	}
	for i := range candidates {
		if e, ok := details[candidates[i].ExternalID]; ok {
			candidates[i].Engagement = e
		}
	}
	return nil
}

func (c *Collector) newReview(cand domain.Candidate, productCode string, score int) domain.SocialReview {
	now := c.now()
	return domain.SocialReview{
		ID:              domain.NewID(),
		Platform:        cand.Platform,
		ExternalID:      cand.ExternalID,
		Title:           cand.Title,
		Description:     cand.Description,
		Author:          cand.Author,
		URL:             cand.URL,
		ThumbnailURL:    cand.ThumbnailURL,
		PublishedAt:     cand.PublishedAt,
		Engagement:      cand.Engagement,
		MatchedProducts: []domain.ProductMatch{{ProductCode: productCode, MatchScore: score}},
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (c *Collector) acquire(platform domain.Platform) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running[platform] {
		return false
	}
	c.running[platform] = true
	return true
}

func (c *Collector) release(platform domain.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.running, platform)
}

// pacer spaces consecutive external calls of one run.
type pacer struct {
	delay time.Duration
	calls int
}

func (p *pacer) wait(ctx context.Context) error {
	defer func() { p.calls++ }()
	if p.calls == 0 || p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func buildDigestMessage(platform domain.Platform, reviews []domain.SocialReview) string {
	if len(reviews) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d new %s review(s) awaiting moderation\n\n", len(reviews), platform)
	for _, review := range reviews {
		score := 0
		product := ""
		if len(review.MatchedProducts) > 0 {
			product = review.MatchedProducts[0].ProductCode
			score = review.MatchedProducts[0].MatchScore
		}
		fmt.Fprintf(&b, "- %s\nProduct: %s · Score: %d\n%s\n\n",
			review.Title,
			product,
			score,
			review.URL)
	}
	return b.String()
}
