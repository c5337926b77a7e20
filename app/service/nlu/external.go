package nlu

import (
	"net/url"
	"regexp"
	"strings"
)

// externalRuleset describes how one external app is recognized. Guards
// suppress dispatch when the user is asking about the app itself ("what is
// youtube used for?"); patterns capture a query; actionOnly matches bare
// "open <app>" phrasings with an empty query.
type externalRuleset struct {
	target     Target
	guards     []string
	patterns   []*regexp.Regexp
	actionOnly *regexp.Regexp
}

var youtubeRules = externalRuleset{
	target: TargetYouTube,
	guards: []string{"what is youtube", "tell me about youtube", "about youtube"},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`^(?:search|find|play) (.+) on youtube\b`),
		regexp.MustCompile(`^open youtube (?:and )?(?:search(?: for)?)? (.+)`),
		regexp.MustCompile(`^(?:search|find) youtube (?:for )?(.+)`),
		regexp.MustCompile(`^youtube[:\-\s]+(.+)`),
	},
	actionOnly: regexp.MustCompile(`^(?:open|launch|go to) youtube\b`),
}

var mapsRules = externalRuleset{
	target: TargetMaps,
	guards: []string{"what is maps", "tell me about maps", "about maps"},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`^(?:open|search) (?:maps|google maps) (?:for )?(.+)`),
		regexp.MustCompile(`^(?:find|navigate to|navigate me to|take me to|go to) (.+)`),
		regexp.MustCompile(`^maps[:\-\s]+(.+)`),
	},
	actionOnly: regexp.MustCompile(`^(?:open|launch|go to) (?:maps|google maps)\b`),
}

var whatsappRules = externalRuleset{
	target: TargetWhatsApp,
	guards: []string{"what is whatsapp", "tell me about whatsapp", "about whatsapp"},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`^(?:open |send on )?whatsapp(?: to)? (.+)`),
		regexp.MustCompile(`^whatsapp[:\-\s]+(.+)`),
	},
	actionOnly: regexp.MustCompile(`^(?:open|launch|go to) whatsapp\b`),
}

var spotifyRules = externalRuleset{
	target: TargetSpotify,
	guards: []string{"what is spotify", "tell me about spotify", "about spotify"},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`^(?:play|find) (.+) on spotify\b`),
		regexp.MustCompile(`^open spotify (?:and )?(?:search(?: for)?)? (.+)`),
		regexp.MustCompile(`^spotify[:\-\s]+(.+)`),
	},
	actionOnly: regexp.MustCompile(`^(?:open|launch|go to) spotify\b`),
}

var instagramRules = externalRuleset{
	target: TargetInstagram,
	guards: []string{"what is instagram", "tell me about instagram", "about instagram"},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`^(?:open|search|show|find) instagram (?:and )?(?:search(?: for)?)? (.+)`),
		regexp.MustCompile(`^instagram[:\-\s]+(.+)`),
	},
	actionOnly: regexp.MustCompile(`^(?:open|launch|go to) instagram\b`),
}

func externalMatcher(rs externalRuleset) func(msg string) (Intent, bool) {
	return func(msg string) (Intent, bool) {
		for _, guard := range rs.guards {
			if strings.Contains(msg, guard) {
				return Intent{}, false
			}
		}

		for _, pattern := range rs.patterns {
			m := pattern.FindStringSubmatch(msg)
			if m == nil {
				continue
			}

			return Intent{
				Action:       ActionOpenExternal,
				OpenExternal: &OpenExternalData{Target: rs.target, Query: strings.TrimSpace(m[1])},
			}, true
		}

		if rs.actionOnly.MatchString(msg) {
			return Intent{
				Action:       ActionOpenExternal,
				OpenExternal: &OpenExternalData{Target: rs.target, Query: ""},
			}, true
		}

		return Intent{}, false
	}
}

// BuildOpenURL converts an open_external intent into the link the frontend
// should open. The backend never performs the navigation itself.
func BuildOpenURL(target Target, query string) string {
	q := url.QueryEscape(query)

	switch target {
	case TargetYouTube:
		if q == "" {
			return "https://www.youtube.com/"
		}
		return "https://www.youtube.com/results?search_query=" + q
	case TargetMaps:
		if q == "" {
			return "https://www.google.com/maps"
		}
		return "https://www.google.com/maps/search/" + q
	case TargetWhatsApp:
		if q == "" {
			return "https://web.whatsapp.com/"
		}
		return "https://wa.me/?text=" + q
	case TargetSpotify:
		if q == "" {
			return "https://open.spotify.com/"
		}
		return "https://open.spotify.com/search/" + q
	case TargetInstagram:
		if q == "" {
			return "https://www.instagram.com/"
		}
		// hashtag-style lookup, spaces become %20
		return "https://www.instagram.com/explore/tags/" + strings.ReplaceAll(q, "+", "%20") + "/"
	}

	return ""
}
