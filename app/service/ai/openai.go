package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aria/app/config"

	"github.com/sashabaranov/go-openai"
)

// openAIProvider talks to any OpenAI-compatible endpoint (OpenRouter, a local
// gateway, OpenAI itself) and acts as the last-resort fallback in the chain.
type openAIProvider struct {
	client *openai.Client
	model  string
}

func newOpenAIProvider(cfg config.ModelConfig) *openAIProvider {
	clientConfig := openai.DefaultConfig(cfg.Token)

	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return &openAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
