package extract

import "regexp"

var (
	indicatorPattern   = regexp.MustCompile(`\b(?:` + alternation(indicatorWords) + `)`)
	clockSignalPattern = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:am|pm|` + timezoneAlternation + `)`)
	daySignalPattern   = regexp.MustCompile(`tomorrow|today|` + weekdayAlternation + `|\d{1,2}/\d{1,2}`)
)

// HasEventSignal reports whether the subject or body mentions anything
// event-like: an indicator word, a clock time with a meridiem or zone,
// or a day reference.
func HasEventSignal(t Text) bool {
	for _, s := range []string{t.LowerSubject, t.LowerBody} {
		if indicatorPattern.MatchString(s) ||
			clockSignalPattern.MatchString(s) ||
			daySignalPattern.MatchString(s) {
			return true
		}
	}
	return false
}
