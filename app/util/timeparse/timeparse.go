// Package timeparse resolves free-text time phrases like "8pm", "7:30 PM tomorrow"
// or "in 2 hours" into absolute timestamps in the assistant's reference timezone.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical sortable form used for stored and displayed timestamps.
const Layout = "2006-01-02 15:04:05"

// Location is the fixed civil timezone all relative phrases resolve against.
var Location = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}

	return loc
}

var (
	ampmSuffixRe = regexp.MustCompile(`\s(am|pm)$`)
	// longest alternative first, otherwise "minutes" matches as "minute"+"s"
	relativeRe = regexp.MustCompile(`in\s+(\d+)\s+(minutes|minute|hours|hour)`)
	tokenRe    = regexp.MustCompile(`(\d{1,2}(?::\d{2})?\s?(?:am|pm)|\b(?:today|tomorrow)\b|in\s+\d+\s+(?:minutes|minute|hours|hour))`)
)

var clockLayouts = []string{"3:04 pm", "3 pm"}

// Parse converts a time phrase into an absolute timestamp in Location.
// The second return value is false when the phrase is not recognized;
// unparsable input is not an error.
func Parse(s string) (time.Time, bool) {
	return parseAt(s, time.Now().In(Location))
}

func parseAt(s string, now time.Time) (time.Time, bool) {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ".", "")))
	if s == "" {
		return time.Time{}, false
	}

	dayOffset := 0
	if strings.Contains(s, "tomorrow") {
		dayOffset = 1
		s = strings.TrimSpace(strings.ReplaceAll(s, "tomorrow", ""))
	} else if strings.Contains(s, "today") {
		s = strings.TrimSpace(strings.ReplaceAll(s, "today", ""))
	}

	// "8pm" -> "8 pm" so the fixed layouts match
	if (strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm")) && !ampmSuffixRe.MatchString(s) {
		s = s[:len(s)-2] + " " + s[len(s)-2:]
	}

	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		anchor := now.AddDate(0, 0, dayOffset)

		return time.Date(anchor.Year(), anchor.Month(), anchor.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), true
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}

		if strings.Contains(m[2], "hour") {
			return now.Add(time.Duration(amount) * time.Hour), true
		}

		return now.Add(time.Duration(amount) * time.Minute), true
	}

	return time.Time{}, false
}

// FindToken returns the first embedded time phrase inside free text,
// e.g. the "in 2 hours" part of "call mom in 2 hours".
func FindToken(s string) (string, bool) {
	token := tokenRe.FindString(strings.ToLower(s))
	if token == "" {
		return "", false
	}

	return token, true
}
