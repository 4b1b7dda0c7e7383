package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"ReviewScout/internal/config"
	"ReviewScout/internal/ports"
)

// AnthropicAnalyzer implements ports.InsightAnalyzer with the Messages API.
type AnthropicAnalyzer struct {
	client     *anthropic.Client
	model      string
	maxTokens  int
	configured bool
}

var _ ports.InsightAnalyzer = (*AnthropicAnalyzer)(nil)

// NewAnthropicAnalyzer builds a client from configuration.
func NewAnthropicAnalyzer(cfg config.AnthropicConfig) *AnthropicAnalyzer {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	return &AnthropicAnalyzer{
		client:     anthropic.NewClient(cfg.APIKey, opts...),
		model:      cfg.Model,
		maxTokens:  maxTokens,
		configured: cfg.APIKey != "" && cfg.Model != "",
	}
}

func (a *AnthropicAnalyzer) Name() string { return "anthropic" }

func (a *AnthropicAnalyzer) Available() bool {
	return a != nil && a.configured
}

// Analyze sends one user turn and returns the first text block.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !a.Available() {
		return "", fmt.Errorf("anthropic analyzer misconfigured")
	}

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &userPrompt},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic returned no text block")
}
