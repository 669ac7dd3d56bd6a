package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	replyPrefixPattern = regexp.MustCompile(`(?i)^\s*(?:re|fwd?)\s*:\s*`)
	bareReplyPattern   = regexp.MustCompile(`(?i)^(?:re|fwd?)\s*:?$`)

	nameWord = `[a-z][a-z0-9'&-]*`

	eventPhrasePattern = regexp.MustCompile(
		`\bwe have (?:a|an|our|the) ((?:` + nameWord + `\s+){0,3}` + nameWord + `)\s+(?:meeting|event|session|call)\b`)
	eventAnchorPattern = regexp.MustCompile(
		`\b((?:` + nameWord + `[ \t]+){0,4}` + nameWord + `)[ \t]+(?:at|on)[ \t]+(?:\d{1,2}(?::\d{2})?\s*(?:am|pm)?|noon|tomorrow|today|` + weekdayAlternation + `)\b`)
	capitalRunPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9'&-]*(?:[ \t]+[A-Z][A-Za-z0-9'&-]*)*`)

	genericEventNouns = wordSet("meeting", "event", "session", "call")
)

// defaultEventName is used when no extractor produced anything better.
const defaultEventName = "Meeting"

type nameInput struct {
	text Text
}

var nameRules = cascade[nameInput, string]{
	{name: "subject", apply: nameFromSubject},
	{name: "we-have-phrase", apply: nameFromPhrase},
	{name: "anchored-phrase", apply: nameFromAnchor},
	{name: "capitalized-run", apply: nameFromCapitals},
}

// ExtractEventName picks an event name. It never returns "": the raw
// subject, and failing that "Meeting", is the last resort.
func ExtractEventName(t Text) string {
	if name, _, ok := nameRules.first(nameInput{text: t}); ok {
		return name
	}
	if s := strings.TrimSpace(t.Subject); s != "" {
		return s
	}
	return defaultEventName
}

// CleanSubject strips one leading reply/forward marker and one trailing
// punctuation character.
func CleanSubject(subject string) string {
	s := replyPrefixPattern.ReplaceAllString(subject, "")
	s = strings.TrimSpace(s)
	if r, size := utf8.DecodeLastRuneInString(s); size > 0 && unicode.IsPunct(r) {
		s = strings.TrimSpace(s[:len(s)-size])
	}
	return s
}

func nameFromSubject(in nameInput) (string, bool) {
	s := CleanSubject(in.text.Subject)
	if len(s) <= 2 || bareReplyPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

func nameFromPhrase(in nameInput) (string, bool) {
	for _, m := range eventPhrasePattern.FindAllStringSubmatch(in.text.LowerBody, -1) {
		if name, ok := usableName(m[1]); ok {
			return name, true
		}
	}
	return "", false
}

func nameFromAnchor(in nameInput) (string, bool) {
	for _, sentence := range sentences(in.text.LowerBody) {
		m := eventAnchorPattern.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}
		if name := stripLeadingFiller(m[1]); name != "" {
			return name, true
		}
	}
	return "", false
}

func nameFromCapitals(in nameInput) (string, bool) {
	for _, run := range capitalRunPattern.FindAllString(in.text.Body, -1) {
		words := strings.Fields(run)
		for len(words) > 0 && capitalStopWords[strings.ToLower(words[0])] {
			words = words[1:]
		}
		if name := strings.Join(words, " "); len(name) > 2 {
			return name, true
		}
	}
	return "", false
}

// usableName rejects phrase captures that are only filler or that swallowed
// another event noun.
func usableName(capture string) (string, bool) {
	name := stripLeadingFiller(capture)
	if name == "" {
		return "", false
	}
	for _, w := range strings.Fields(name) {
		if genericEventNouns[w] {
			return "", false
		}
	}
	return name, true
}

func stripLeadingFiller(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && fillerWords[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// sentences splits text on terminal punctuation and newlines, dropping
// empty pieces.
func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
