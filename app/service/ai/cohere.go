package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/cohere"
)

type cohereProvider struct {
	llm llms.Model
}

func newCohereProvider(token, model string) (*cohereProvider, error) {
	llm, err := cohere.New(
		cohere.WithToken(token),
		cohere.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cohere client: %w", err)
	}

	return &cohereProvider{llm: llm}, nil
}

func (p *cohereProvider) Name() string {
	return "cohere"
}

func (p *cohereProvider) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("cohere completion failed: %w", err)
	}

	return strings.TrimSpace(result), nil
}
