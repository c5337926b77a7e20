package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// geminiProvider cycles through multiple API keys: a single quota-exhausted
// key does not take the provider down. Only a full rotation failure is
// reported to the router.
type geminiProvider struct {
	clients []llms.Model

	mu      sync.Mutex
	current int
}

func newGeminiProvider(ctx context.Context, keys []string, model string) (*geminiProvider, error) {
	clients := make([]llms.Model, 0, len(keys))

	for i, key := range keys {
		client, err := googleai.New(ctx,
			googleai.WithAPIKey(key),
			googleai.WithDefaultModel(model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client for key %d: %w", i, err)
		}

		clients = append(clients, client)
	}

	return &geminiProvider{clients: clients}, nil
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	start := p.current
	p.mu.Unlock()

	for i := range p.clients {
		idx := (start + i) % len(p.clients)

		result, err := llms.GenerateFromSinglePrompt(ctx, p.clients[idx], prompt)
		if err != nil {
			slog.Warn("Gemini API key failed, rotating", "key_index", idx, "error", err)
			continue
		}

		p.mu.Lock()
		p.current = idx
		p.mu.Unlock()

		return strings.TrimSpace(result), nil
	}

	return "", fmt.Errorf("all %d gemini api keys failed", len(p.clients))
}
