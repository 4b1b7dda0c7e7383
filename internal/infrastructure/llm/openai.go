package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"ReviewScout/internal/config"
	"ReviewScout/internal/ports"
)

// OpenAIAnalyzer implements ports.InsightAnalyzer with chat completions.
// BaseURL lets it talk to any OpenAI-compatible endpoint.
type OpenAIAnalyzer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	configured  bool
}

var _ ports.InsightAnalyzer = (*OpenAIAnalyzer)(nil)

// NewOpenAIAnalyzer builds a client from configuration.
func NewOpenAIAnalyzer(cfg config.OpenAIConfig) *OpenAIAnalyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &OpenAIAnalyzer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		configured:  cfg.APIKey != "" && cfg.Model != "",
	}
}

func (a *OpenAIAnalyzer) Name() string { return "openai" }

// Available reports whether credentials and a model are configured.
func (a *OpenAIAnalyzer) Available() bool {
	return a != nil && a.configured
}

// Analyze asks for a JSON object and returns the raw reply text.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !a.Available() {
		return "", fmt.Errorf("openai analyzer misconfigured")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxCompletionTokens: a.maxTokens,
		Temperature:         a.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
