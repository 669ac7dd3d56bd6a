// Package extract turns free-form email text into structured event
// candidates. The pattern-matching path is a pure function of one message
// and the current date; the model-backed path wraps an external
// text-generation service and falls back to pattern matching on any failure.
package extract

import (
	"strings"

	"github.com/nhle/agendify/internal/model"
)

// Text exposes both the raw and lower-cased views of a message's subject
// and body. Case-sensitive matchers read the raw fields; everything else
// reads the lower-cased ones.
type Text struct {
	Subject      string
	Body         string
	LowerSubject string
	LowerBody    string
}

// Normalize builds the Text view of msg.
func Normalize(msg model.EmailMessage) Text {
	return Text{
		Subject:      msg.Subject,
		Body:         msg.BodyText,
		LowerSubject: strings.ToLower(msg.Subject),
		LowerBody:    strings.ToLower(msg.BodyText),
	}
}

// lowerSources returns the lower-cased body followed by the lower-cased
// subject, the order in which field resolvers search.
func (t Text) lowerSources() []string {
	return []string{t.LowerBody, t.LowerSubject}
}
