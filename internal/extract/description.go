package extract

import (
	"regexp"
	"strings"
)

var descriptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:meeting|event|session)\s+will\s+be\s+held\b[^.!?\n]*[.!?]?`),
	regexp.MustCompile(`(?i)[^.!?\n]*\bis\s+scheduled\b[^.!?\n]*[.!?]?`),
	regexp.MustCompile(`(?i)[^.!?\n]*\bon\s+[^.!?\n]*[.!?]?`),
}

// ExtractDescription returns the first descriptive sentence of the raw
// body as written, falling back to the subject.
func ExtractDescription(t Text) string {
	for _, p := range descriptionPatterns {
		if m := strings.TrimSpace(p.FindString(t.Body)); m != "" {
			return m
		}
	}
	return t.Subject
}
