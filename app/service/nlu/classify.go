// Package nlu turns free-text user messages into structured intents using an
// ordered, first-match-wins rule cascade. Classification is pure: the same
// normalized message always yields the same intent.
package nlu

import (
	"regexp"
	"strings"

	"aria/app/util/timeparse"
)

var politePrefixRe = regexp.MustCompile(`^(please\s+|please,\s+|can you\s+|could you\s+|would you\s+)`)

// rule order defines precedence: explicit fact save beats the generic
// "remember X is Y" form, task rules beat keyword rules, external app
// dispatch comes last before the general chat fallback.
type rule struct {
	name  string
	match func(msg string) (Intent, bool)
}

var rules = []rule{
	{"save_fact_explicit", matchExplicitFact},
	{"save_fact_generic", matchGenericFact},
	{"create_task_due", matchTaskDue},
	{"remind_me", matchRemindMe},
	{"create_task_flex", matchTaskFlex},
	{"fetch_tasks", matchFetchTasks},
	{"get_chat_history", matchChatHistory},
	{"open_youtube", externalMatcher(youtubeRules)},
	{"open_maps", externalMatcher(mapsRules)},
	{"open_whatsapp", externalMatcher(whatsappRules)},
	{"open_spotify", externalMatcher(spotifyRules)},
	{"open_instagram", externalMatcher(instagramRules)},
}

// Classify parses a user message into a structured intent. Unmatched input
// falls back to general chat; there is no error path.
func Classify(message string) Intent {
	msg := Normalize(message)

	for _, r := range rules {
		if intent, ok := r.match(msg); ok {
			return intent
		}
	}

	return Intent{Action: ActionGeneralChat}
}

// Normalize lower-cases the message and strips leading polite phrases so the
// rule patterns stay simple.
func Normalize(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))

	return politePrefixRe.ReplaceAllString(msg, "")
}

var (
	explicitFactRe = regexp.MustCompile(`^(save|remember) fact (.+?) as (.+)$`)
	genericFactRe  = regexp.MustCompile(`^(remember|my) (.+?) is (.+)$`)
	taskDueRe      = regexp.MustCompile(`^(?:create|add) task (.+?) due (.+)$`)
	remindMeRe     = regexp.MustCompile(`^remind me to (.+?)(?: at (.+))?$`)
	taskFlexRe     = regexp.MustCompile(`^(?:add|create)(?: me)?(?: a)?(?: task| reminder)?(?: to)? (.+?)(?: at (.+))?$`)
)

var (
	fetchTasksKeywords  = []string{"show tasks", "list tasks", "my tasks"}
	chatHistoryKeywords = []string{"show chat history", "last chats", "previous messages"}
)

func matchExplicitFact(msg string) (Intent, bool) {
	m := explicitFactRe.FindStringSubmatch(msg)
	if m == nil {
		return Intent{}, false
	}

	return Intent{
		Action: ActionSaveFact,
		SaveFact: &SaveFactData{
			Key:   strings.TrimSpace(m[2]),
			Value: strings.TrimSpace(m[3]),
		},
	}, true
}

func matchGenericFact(msg string) (Intent, bool) {
	m := genericFactRe.FindStringSubmatch(msg)
	if m == nil {
		return Intent{}, false
	}

	return Intent{
		Action: ActionSaveFact,
		SaveFact: &SaveFactData{
			Key:   strings.TrimSpace(m[2]),
			Value: strings.TrimSpace(m[3]),
		},
	}, true
}

func matchTaskDue(msg string) (Intent, bool) {
	m := taskDueRe.FindStringSubmatch(msg)
	if m == nil {
		return Intent{}, false
	}

	return taskIntent(strings.TrimSpace(m[1]), strings.TrimSpace(m[2])), true
}

func matchRemindMe(msg string) (Intent, bool) {
	m := remindMeRe.FindStringSubmatch(msg)
	if m == nil {
		return Intent{}, false
	}

	return taskIntent(strings.TrimSpace(m[1]), strings.TrimSpace(m[2])), true
}

func matchTaskFlex(msg string) (Intent, bool) {
	m := taskFlexRe.FindStringSubmatch(msg)
	if m == nil {
		return Intent{}, false
	}

	return taskIntent(strings.TrimSpace(m[1]), strings.TrimSpace(m[2])), true
}

// taskIntent builds a create_task intent. When no explicit time clause was
// captured, the title itself is searched for an embedded time token, which is
// removed from the title before parsing. An unresolved time is not an error:
// Datetime stays nil and the orchestrator asks a follow-up.
func taskIntent(title, timePart string) Intent {
	if timePart == "" {
		if token, ok := timeparse.FindToken(title); ok {
			timePart = token
			title = strings.TrimSpace(strings.ReplaceAll(title, token, ""))
		}
	}

	data := &CreateTaskData{
		Title:    title,
		Priority: PriorityMedium,
		Category: "personal",
	}

	if timePart != "" {
		if ts, ok := timeparse.Parse(timePart); ok {
			data.Datetime = &Timestamp{ts}
		}
	}

	return Intent{Action: ActionCreateTask, CreateTask: data}
}

func matchFetchTasks(msg string) (Intent, bool) {
	for _, keyword := range fetchTasksKeywords {
		if strings.Contains(msg, keyword) {
			return Intent{Action: ActionFetchTasks}, true
		}
	}

	return Intent{}, false
}

func matchChatHistory(msg string) (Intent, bool) {
	for _, keyword := range chatHistoryKeywords {
		if strings.Contains(msg, keyword) {
			return Intent{Action: ActionGetChatHistory}, true
		}
	}

	return Intent{}, false
}
