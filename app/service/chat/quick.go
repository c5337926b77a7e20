package chat

import (
	"fmt"
	"strings"
	"time"
)

// Deterministic questions answered locally, without spending a model call.

var dateQueries = []string{
	"what is the date",
	"what's the date",
	"today's date",
	"what day is it",
	"current date",
	"date today",
}

var timeQueries = []string{
	"what is the time",
	"what's the time",
	"what time is it",
	"current time",
	"time now",
}

var nameQueries = []string{
	"what is my name",
	"what's my name",
	"who am i",
	"do you know my name",
	"my name",
}

var emailQueries = []string{
	"what is my email",
	"what's my email",
	"what is my e-mail",
	"my email",
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	return false
}

// quickAnswer answers date and time questions from the local clock. The text
// must already be normalized to lowercase.
func quickAnswer(text string, now time.Time) (string, bool) {
	switch {
	case containsAny(text, dateQueries):
		return fmt.Sprintf("Today is %s.", now.Format("Monday, January 02, 2006")), true
	case containsAny(text, timeQueries):
		return fmt.Sprintf("The current time is %s.", now.Format("3:04 PM")), true
	}

	return "", false
}
