package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ReviewScout/internal/config"
	"ReviewScout/internal/domain"
)

func TestOpenAIAnalyze(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "gpt-test" || len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("unexpected request %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a := NewOpenAIAnalyzer(config.OpenAIConfig{BaseURL: srv.URL, Model: "gpt-test", APIKey: "sk-test", MaxTokens: 100})
	if !a.Available() {
		t.Fatalf("expected analyzer to be available")
	}
	reply, err := a.Analyze(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if reply != `{"summary":"ok"}` {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestOpenAIUnavailableWithoutKey(t *testing.T) {
	t.Parallel()

	a := NewOpenAIAnalyzer(config.OpenAIConfig{Model: "gpt-test"})
	if a.Available() {
		t.Fatalf("expected analyzer without key to be unavailable")
	}
	if _, err := a.Analyze(context.Background(), "s", "u"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAnthropicAnalyze(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "ak-test" {
			t.Errorf("unexpected api key header %q", got)
		}
		var body struct {
			System string `json:"system"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.System != "sys" {
			t.Errorf("unexpected system prompt %q", body.System)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"{\"summary\":\"ok\"}"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	a := NewAnthropicAnalyzer(config.AnthropicConfig{BaseURL: srv.URL, Model: "claude-test", APIKey: "ak-test"})
	reply, err := a.Analyze(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if reply != `{"summary":"ok"}` {
		t.Fatalf("unexpected reply %q", reply)
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestBreakerTransitions(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(config.BreakerConfig{Threshold: 2, ResetAfter: time.Minute})
	b.now = c.now

	b.RecordFailure()
	if b.State() != BreakerClosed || !b.Ready() {
		t.Fatalf("one failure should not trip the breaker")
	}
	b.RecordFailure()
	if b.State() != BreakerOpen || b.Ready() {
		t.Fatalf("threshold reached, breaker should be open")
	}
	if err := b.Allow(); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	c.t = c.t.Add(2 * time.Minute)
	if !b.Ready() {
		t.Fatalf("cooldown elapsed, breaker should admit a probe")
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("probe should be allowed: %v", err)
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("expected half-open, got %s", b.State())
	}
	if err := b.Allow(); err == nil {
		t.Fatalf("second probe should be rejected")
	}

	b.RecordFailure()
	if b.State() != BreakerOpen {
		t.Fatalf("failed probe should reopen, got %s", b.State())
	}

	c.t = c.t.Add(2 * time.Minute)
	_ = b.Allow()
	b.RecordSuccess()
	if b.State() != BreakerClosed {
		t.Fatalf("successful probe should close, got %s", b.State())
	}
}

type scriptedAnalyzer struct {
	errs  []error
	calls int
}

func (s *scriptedAnalyzer) Name() string    { return "scripted" }
func (s *scriptedAnalyzer) Available() bool { return true }

func (s *scriptedAnalyzer) Analyze(context.Context, string, string) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return "", err
	}
	return "{}", nil
}

func TestGuardedAnalyzerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	inner := &scriptedAnalyzer{errs: []error{boom, boom}}
	g := NewGuardedAnalyzer(inner, NewBreaker(config.BreakerConfig{Threshold: 2, ResetAfter: time.Hour}), nil)

	for i := 0; i < 2; i++ {
		if _, err := g.Analyze(context.Background(), "s", "u"); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v", i, err)
		}
	}
	if g.Available() {
		t.Fatalf("analyzer should be unavailable while the circuit is open")
	}
	if _, err := g.Analyze(context.Background(), "s", "u"); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("open circuit must not reach the provider, calls=%d", inner.calls)
	}
}

func TestNewAnalyzerFromConfig(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(config.Config{Analysis: config.AnalysisConfig{Provider: config.ProviderNone}}, nil)
	if err != nil || a != nil {
		t.Fatalf("provider none should yield no analyzer, got %v, %v", a, err)
	}

	a, err = NewAnalyzer(config.Config{
		Analysis:  config.AnalysisConfig{Provider: config.ProviderAnthropic},
		Anthropic: config.AnthropicConfig{Model: "m", APIKey: "k"},
	}, nil)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}
	if a.Name() != "anthropic" || !a.Available() {
		t.Fatalf("unexpected analyzer %s available=%v", a.Name(), a.Available())
	}

	if _, err := NewAnalyzer(config.Config{Analysis: config.AnalysisConfig{Provider: "magic"}}, nil); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
