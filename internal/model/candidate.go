package model

import "time"

// ReviewState is the position of a candidate in the review workflow.
// A candidate only ever moves out of ReviewPending.
type ReviewState string

const (
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewDenied   ReviewState = "denied"
)

// Candidate is an extracted event awaiting (or past) user review.
type Candidate struct {
	ExtractedEvent

	State ReviewState `json:"state"`

	// CalendarEventID is set once the event has been created in the
	// user's calendar. Only approved candidates carry one.
	CalendarEventID string `json:"calendar_event_id,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}
