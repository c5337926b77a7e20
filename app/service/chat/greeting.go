package chat

import (
	"regexp"
	"strings"
)

// greetingRe is the single definition of what counts as a leading greeting.
// It covers the greeting word plus up to three short trailing tokens, so
// "good morning dear assistant," is recognized as a whole. Both greeting
// detection on user input and greeting stripping on model output use it.
var greetingRe = regexp.MustCompile(`(?i)^\s*(?:hi|hello|hey|greetings|good morning|good afternoon|good evening)\b(?:\s+\S{1,30}){0,3}[,!.\-]*\s*`)

// IsGreeting reports whether the message opens with a greeting phrase.
func IsGreeting(s string) bool {
	return greetingRe.MatchString(s)
}

// StripLeadingGreeting removes a leading greeting from generated text. When
// the greeting is the entire text the original is kept, so a continuing
// conversation never gets an empty reply.
func StripLeadingGreeting(s string) string {
	stripped := greetingRe.ReplaceAllString(s, "")
	if strings.TrimSpace(stripped) == "" {
		return s
	}

	return stripped
}
