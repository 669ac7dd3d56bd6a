package model

import "time"

// EmailMessage is a single inbox message as handed to the extraction
// pipeline by a mail source.
type EmailMessage struct {
	// ID is the message identifier within its mailbox (e.g., an IMAP UID).
	ID string `json:"id"`

	// Subject is the message subject line. May be empty.
	Subject string `json:"subject"`

	// From is the sender, rendered as "Name <addr>" when a display name
	// is present.
	From string `json:"from"`

	// ReceivedAt is the best-effort delivery timestamp.
	ReceivedAt time.Time `json:"received_at"`

	// BodyText is the plain-text body. Empty when the message carried no
	// usable text part.
	BodyText string `json:"body_text"`
}
