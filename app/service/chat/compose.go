package chat

import (
	"context"
	"fmt"
	"strings"

	"aria/app/client/neograph"
	"aria/app/client/postgres"
	"aria/app/client/semantic"
	"aria/app/util/timeparse"

	_ "embed"
)

//go:embed system_prompt.txt
var systemPromptTemplate string

const (
	noFactsPlaceholder   = "No personalized data available."
	noContextPlaceholder = "No similar conversations found."
	noHistoryPlaceholder = "This is the beginning of the conversation."
)

// Respond is the response composer. Deterministic date and time questions
// are answered from the local clock; everything else goes through the
// provider router with facts, semantic context and history in the prompt.
func (s *Service) Respond(ctx context.Context, text, history, semanticContext, facts string) string {
	if reply, ok := quickAnswer(strings.ToLower(text), s.now().In(timeparse.Location)); ok {
		return reply
	}

	return s.ai.Generate(ctx, composePrompt(text, history, semanticContext, facts))
}

func composePrompt(message, history, semanticContext, facts string) string {
	if facts == "" {
		facts = noFactsPlaceholder
	}
	if semanticContext == "" {
		semanticContext = noContextPlaceholder
	}
	if history == "" {
		history = noHistoryPlaceholder
	}

	prompt := strings.ReplaceAll(systemPromptTemplate, "{facts}", facts)
	prompt = strings.ReplaceAll(prompt, "{semantic_context}", semanticContext)
	prompt = strings.ReplaceAll(prompt, "{history}", history)
	prompt = strings.ReplaceAll(prompt, "{message}", message)

	return prompt
}

func formatMessages(messages []postgres.ChatMessage) string {
	var sb strings.Builder

	for _, msg := range messages {
		role := "Assistant"
		if msg.Sender == "user" {
			role = "Human"
		}

		fmt.Fprintf(&sb, "%s: %s\n", role, msg.Content)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatEntries(entries []postgres.ChatEntry) string {
	var sb strings.Builder

	for _, entry := range entries {
		fmt.Fprintf(&sb, "Human: %s\nAssistant: %s\n", entry.UserQuery, entry.AIResponse)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatFacts(facts []neograph.Fact) string {
	lines := make([]string, 0, len(facts))

	for _, fact := range facts {
		lines = append(lines, fmt.Sprintf("%s: %s", fact.Key, fact.Value))
	}

	return strings.Join(lines, "\n")
}

func formatMatches(matches []semantic.Match) string {
	lines := make([]string, 0, len(matches))

	for _, match := range matches {
		lines = append(lines, "- "+match.Text)
	}

	return strings.Join(lines, "\n")
}
