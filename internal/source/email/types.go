package email

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string // "Name <addr>" or bare addr
	Date      time.Time
	UID       uint32
}

// ParsedMessage holds the full parsed content of an email message.
type ParsedMessage struct {
	Envelope Envelope
	TextBody string
	HTMLBody string
}

// BodyText returns the plain-text body, falling back to a tag-stripped
// rendering of the HTML body.
func (m *ParsedMessage) BodyText() string {
	if m.TextBody != "" {
		return m.TextBody
	}
	return stripHTML(m.HTMLBody)
}
