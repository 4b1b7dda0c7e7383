package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ReviewScout/internal/config"
	"ReviewScout/internal/domain"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/ports"
)

// BreakerState is the circuit position.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker trips after Threshold consecutive failures and lets one probe
// through once ResetAfter has passed.
type Breaker struct {
	mu          sync.Mutex
	fails       int
	threshold   int
	resetAfter  time.Duration
	lastFailure time.Time
	state       BreakerState
	now         func() time.Time
}

// NewBreaker applies defaults of 5 failures and 30s.
func NewBreaker(cfg config.BreakerConfig) *Breaker {
	b := &Breaker{threshold: cfg.Threshold, resetAfter: cfg.ResetAfter, now: time.Now}
	if b.threshold <= 0 {
		b.threshold = 5
	}
	if b.resetAfter <= 0 {
		b.resetAfter = 30 * time.Second
	}
	return b
}

// Allow reserves a call. An open circuit past its cooldown admits one probe.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) >= b.resetAfter {
			b.state = BreakerHalfOpen
			return nil
		}
		return fmt.Errorf("%w: circuit open after %d failures", domain.ErrProviderUnavailable, b.fails)
	default:
		return fmt.Errorf("%w: recovery probe in flight", domain.ErrProviderUnavailable)
	}
}

// Ready reports whether Allow would currently succeed, without reserving.
func (b *Breaker) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		return b.now().Sub(b.lastFailure) >= b.resetAfter
	default:
		return false
	}
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails = 0
	b.state = BreakerClosed
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fails++
	b.lastFailure = b.now()
	if b.state == BreakerHalfOpen || b.fails >= b.threshold {
		b.state = BreakerOpen
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// GuardedAnalyzer puts a Breaker in front of another analyzer.
type GuardedAnalyzer struct {
	inner   ports.InsightAnalyzer
	breaker *Breaker
	logger  *slog.Logger
}

var _ ports.InsightAnalyzer = (*GuardedAnalyzer)(nil)

// NewGuardedAnalyzer wraps inner.
func NewGuardedAnalyzer(inner ports.InsightAnalyzer, breaker *Breaker, logger *slog.Logger) *GuardedAnalyzer {
	return &GuardedAnalyzer{
		inner:   inner,
		breaker: breaker,
		logger:  logging.OrDiscard(logger).With("component", "llm", "provider", inner.Name()),
	}
}

func (g *GuardedAnalyzer) Name() string { return g.inner.Name() }

// Available is false while the circuit is open.
func (g *GuardedAnalyzer) Available() bool {
	return g.inner.Available() && g.breaker.Ready()
}

func (g *GuardedAnalyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := g.breaker.Allow(); err != nil {
		return "", err
	}

	reply, err := g.inner.Analyze(ctx, systemPrompt, userPrompt)
	if err != nil {
		g.breaker.RecordFailure()
		if g.breaker.State() == BreakerOpen {
			g.logger.Warn("analysis provider circuit open", "err", err)
		}
		return "", err
	}
	g.breaker.RecordSuccess()
	return reply, nil
}

// NewAnalyzer builds the configured provider behind a breaker. It returns
// nil when the provider is "none".
func NewAnalyzer(cfg config.Config, logger *slog.Logger) (ports.InsightAnalyzer, error) {
	var inner ports.InsightAnalyzer
	switch cfg.Analysis.Provider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderOpenAI:
		inner = NewOpenAIAnalyzer(cfg.OpenAI)
	case config.ProviderAnthropic:
		inner = NewAnthropicAnalyzer(cfg.Anthropic)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Analysis.Provider)
	}
	return NewGuardedAnalyzer(inner, NewBreaker(cfg.Breaker), logger), nil
}
