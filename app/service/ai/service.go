// Package ai routes prompts through an ordered list of text-generation
// providers with per-provider failure cooldowns. Response generation,
// summarization and generative intent extraction all share the same health
// state, so a failing provider is skipped uniformly.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"aria/app/config"
	"aria/app/service/nlu"
	"aria/app/util/timeparse"

	_ "embed"

	"github.com/samber/do"
)

// UnavailableMessage is the only generation failure text ever shown to a
// user. Raw provider errors stay in the logs.
const UnavailableMessage = "All AI providers are currently unavailable. Please try again later."

//go:embed summary_prompt.txt
var summaryPromptTemplate string

//go:embed intent_prompt.txt
var intentPromptTemplate string

type Service struct {
	providers []Provider
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	failures map[string]time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	var providers []Provider

	gemini, err := newGeminiProvider(appCtx, cfg.AI.GeminiKeys, cfg.AI.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to init gemini provider: %w", err)
	}
	providers = append(providers, gemini)

	if cfg.AI.CohereToken != "" {
		cohere, err := newCohereProvider(cfg.AI.CohereToken, cfg.AI.CohereModel)
		if err != nil {
			return nil, fmt.Errorf("failed to init cohere provider: %w", err)
		}
		providers = append(providers, cohere)
	}

	if cfg.AI.OpenAI.Token != "" {
		providers = append(providers, newOpenAIProvider(cfg.AI.OpenAI))
	}

	return newService(providers, cfg.AI.Cooldown), nil
}

func newService(providers []Provider, cooldown time.Duration) *Service {
	return &Service{
		providers: providers,
		cooldown:  cooldown,
		now:       time.Now,
		failures:  make(map[string]time.Time),
	}
}

// Generate runs the prompt through the first healthy provider. It never
// returns an error: when every provider is in cooldown or fails, the fixed
// unavailability message is returned instead.
func (s *Service) Generate(ctx context.Context, prompt string) string {
	for _, provider := range s.providers {
		if !s.IsAvailable(provider.Name()) {
			slog.Warn("Provider in cooldown, skipping", "provider", provider.Name())
			continue
		}

		result, err := provider.Generate(ctx, prompt)
		if err != nil {
			slog.Error("Provider failed", "provider", provider.Name(), "error", err)
			s.markFailed(provider.Name())
			continue
		}

		s.clearFailure(provider.Name())

		return result
	}

	return UnavailableMessage
}

// IsAvailable reports whether a provider is outside its failure cooldown.
func (s *Service) IsAvailable(name string) bool {
	s.mu.RLock()
	failedAt, failed := s.failures[name]
	s.mu.RUnlock()

	return !failed || s.now().Sub(failedAt) >= s.cooldown
}

func (s *Service) markFailed(name string) {
	s.mu.Lock()
	s.failures[name] = s.now()
	s.mu.Unlock()
}

func (s *Service) clearFailure(name string) {
	s.mu.Lock()
	delete(s.failures, name)
	s.mu.Unlock()
}

// Summarize produces a short third-person summary of a conversation.
func (s *Service) Summarize(ctx context.Context, text string) string {
	prompt := strings.ReplaceAll(summaryPromptTemplate, "{text}", text)

	return s.Generate(ctx, prompt)
}

// ExtractIntent is the generative classification path: it asks a model for
// structured JSON instead of running the rule cascade. Any failure, from
// provider exhaustion to unparsable output, degrades to general chat.
func (s *Service) ExtractIntent(ctx context.Context, message string) nlu.Intent {
	prompt := strings.ReplaceAll(intentPromptTemplate, "{message}", message)
	prompt = strings.ReplaceAll(prompt, "{now}", s.now().In(timeparse.Location).Format(timeparse.Layout))

	raw := s.Generate(ctx, prompt)

	intent, err := parseIntentJSON(raw)
	if err != nil {
		slog.Warn("Generative intent extraction failed", "error", err)
		return nlu.Intent{Action: nlu.ActionGeneralChat}
	}

	return intent
}

func parseIntentJSON(raw string) (nlu.Intent, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "json"))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end < start {
		return nlu.Intent{}, fmt.Errorf("no JSON object in response")
	}

	var intent nlu.Intent
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &intent); err != nil {
		return nlu.Intent{}, fmt.Errorf("failed to unmarshal intent: %w", err)
	}

	if intent.Action == "" {
		return nlu.Intent{}, fmt.Errorf("response has no action")
	}

	return intent, nil
}
