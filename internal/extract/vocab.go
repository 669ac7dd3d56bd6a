package extract

import (
	"regexp"
	"strings"
	"time"
)

// Fixed vocabularies shared by the detectors and extractors. They are
// built once at package init and never mutated.

var indicatorWords = []string{
	"meeting", "event", "chat", "webinar", "conference", "workshop",
	"seminar", "presentation", "fireside", "welcome", "orientation",
	"session", "gathering", "get-together", "reception", "ceremony",
	"celebration", "party", "social", "call", "discussion", "review",
	"planning", "standup", "sync", "catch-up",
}

var timezoneAbbreviations = []string{
	"est", "edt", "cst", "cdt", "mst", "mdt", "pst", "pdt", "utc", "gmt",
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// monthPrefixes maps the three-letter month abbreviation to its month.
// Longer spellings are normalised to their first three letters.
var monthPrefixes = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// fillerWords never make a usable event name on their own.
var fillerWords = wordSet(
	"we", "have", "a", "the", "our", "will", "be", "going", "to",
)

// capitalStopWords are capitalised greeting and sign-off words that
// must not be mistaken for an event name.
var capitalStopWords = wordSet(
	"hello", "hi", "dear", "best", "regards", "thanks", "thank", "please",
	"come", "join", "we", "have", "a", "the", "our", "will", "be",
	"going", "to",
)

var locationNouns = []string{
	"conference room", "meeting room", "office", "lounge", "hall",
	"auditorium", "cafeteria", "library", "lab", "studio", "gym", "park",
	"restaurant",
}

// locationNounPattern matches a location noun as a whole word, so "lab"
// does not fire inside "available".
var locationNounPattern = regexp.MustCompile(`\b(?:` + alternation(locationNouns) + `)\b`)

var (
	weekdayAlternation  = "monday|tuesday|wednesday|thursday|friday|saturday|sunday"
	timezoneAlternation = strings.Join(timezoneAbbreviations, "|")
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
