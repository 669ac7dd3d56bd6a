package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	floorPattern = regexp.MustCompile(
		`\b((?:\d{1,2}(?:st|nd|rd|th)?|first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|ground|top)[- ]floor\b[^.!?\n]*)`)
	roomPattern = regexp.MustCompile(`\b((?:conference\s+)?room\s+[a-z0-9][a-z0-9-]*)`)

	locationAnchorPattern = regexp.MustCompile(`\b(?:at|in)\s+|\blocation\s*:\s*`)
	venueAnchorPattern    = regexp.MustCompile(`\b(?:venue|place)\s*:?\s*`)

	// locationStopPattern marks where a location phrase ends and the
	// date or time clause begins.
	locationStopPattern = regexp.MustCompile(
		`\s+(?:at|on|from|by|tomorrow|today|this|next)\b|\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b|\b\d{1,2}:\d{2}\b|\b\d{1,2}/\d{1,2}\b|[,;()]`)

	// locationRejectPattern flags captures that swallowed the time clause.
	locationRejectPattern = regexp.MustCompile(`\b(?:tomorrow|today|at|on|pm|am)\b`)
)

var locationRules = cascade[string, string]{
	{name: "floor", apply: locationFromFloor},
	{name: "room", apply: locationFromRoom},
	{name: "anchor", apply: anchoredLocation(locationAnchorPattern)},
	{name: "venue", apply: anchoredLocation(venueAnchorPattern)},
	{name: "noun", apply: locationFromNoun},
}

// ExtractLocation returns the first plausible place mentioned in the
// lower-cased body, or "" when nothing usable is found.
func ExtractLocation(t Text) string {
	loc, _, _ := locationRules.first(t.LowerBody)
	return loc
}

func locationFromFloor(text string) (string, bool) {
	for _, m := range floorPattern.FindAllStringSubmatch(text, -1) {
		if loc, ok := acceptLocation(cutLocation(m[1])); ok {
			return loc, true
		}
	}
	return "", false
}

func locationFromRoom(text string) (string, bool) {
	for _, m := range roomPattern.FindAllStringSubmatch(text, -1) {
		if loc, ok := acceptLocation(m[1]); ok {
			return loc, true
		}
	}
	return "", false
}

// anchoredLocation captures the rest of the sentence after each anchor
// match, cut at the next date or time marker.
func anchoredLocation(anchor *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		for _, loc := range anchor.FindAllStringIndex(text, -1) {
			rest := text[loc[1]:]
			if end := strings.IndexAny(rest, ".!?\n"); end >= 0 {
				rest = rest[:end]
			}
			if candidate, ok := acceptLocation(cutLocation(rest)); ok {
				return candidate, true
			}
		}
		return "", false
	}
}

func locationFromNoun(text string) (string, bool) {
	for _, loc := range locationNounPattern.FindAllStringIndex(text, -1) {
		fragment := strings.TrimSpace(sentenceAround(text, loc[0]))
		if len(fragment) > loc[1]-loc[0]+5 {
			return fragment, true
		}
	}
	return "", false
}

func cutLocation(s string) string {
	if loc := locationStopPattern.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return s
}

func acceptLocation(s string) (string, bool) {
	s = strings.TrimRightFunc(strings.TrimSpace(s), unicode.IsPunct)
	if len(s) <= 3 || locationRejectPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// sentenceAround returns the sentence of text containing byte offset idx.
func sentenceAround(text string, idx int) string {
	start := strings.LastIndexAny(text[:idx], ".!?\n") + 1
	end := len(text)
	if off := strings.IndexAny(text[idx:], ".!?\n"); off >= 0 {
		end = idx + off
	}
	return text[start:end]
}
