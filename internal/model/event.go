package model

import (
	"strings"
	"time"
)

// Confidence is a coarse estimate of how reliable an extraction is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
	ConfidenceNone   Confidence = "None"
)

// ParseConfidence maps a case-insensitive label onto a Confidence.
// Unknown labels report false.
func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ConfidenceHigh, true
	case "medium":
		return ConfidenceMedium, true
	case "low":
		return ConfidenceLow, true
	case "none":
		return ConfidenceNone, true
	default:
		return "", false
	}
}

// ExtractionSource records which extractor produced an event.
type ExtractionSource string

const (
	SourceAI              ExtractionSource = "AI"
	SourcePatternMatching ExtractionSource = "Pattern Matching"
)

// ExtractedEvent is the structured result of running the extraction
// pipeline over one EmailMessage. Optional fields are nil when the
// corresponding extractor found nothing.
//
// Confidence is None exactly when EventName is empty.
type ExtractedEvent struct {
	EventName   string           `json:"event_name,omitempty"`
	Date        *string          `json:"date"`     // YYYY-MM-DD
	Time        *string          `json:"time"`     // "H:MM am" or "HH:MM"
	Timezone    *string          `json:"timezone"` // upper-case abbreviation
	Location    *string          `json:"location"`
	Description string           `json:"description"`
	Confidence  Confidence       `json:"confidence"`
	Source      ExtractionSource `json:"source"`

	SourceMessageID string    `json:"source_message_id"`
	SourceSubject   string    `json:"source_subject"`
	SourceFrom      string    `json:"source_from"`
	SourceDate      time.Time `json:"source_date"`
}

// HasEvent reports whether the extraction found an event.
func (e ExtractedEvent) HasEvent() bool {
	return e.EventName != "" && e.Confidence != ConfidenceNone
}

// NoEvent returns the "no event" result for msg: every structured field
// is empty and Confidence is None. Provenance is still recorded.
func NoEvent(msg EmailMessage, src ExtractionSource) ExtractedEvent {
	ev := ExtractedEvent{
		Confidence: ConfidenceNone,
		Source:     src,
	}
	ev.SetProvenance(msg)
	return ev
}

// SetProvenance copies the originating message's identity onto e.
func (e *ExtractedEvent) SetProvenance(msg EmailMessage) {
	e.SourceMessageID = msg.ID
	e.SourceSubject = msg.Subject
	e.SourceFrom = msg.From
	e.SourceDate = msg.ReceivedAt
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
