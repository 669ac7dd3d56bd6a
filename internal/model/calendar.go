package model

// EventTime is a calendar start or end. Exactly one of DateTime (wall
// clock, "2006-01-02T15:04:05", interpreted in TimeZone) or Date
// (all-day, "2006-01-02") is set.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// AllDay reports whether t describes a whole day rather than an instant.
func (t EventTime) AllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// CalendarEventRequest is what the review workflow asks a calendar
// backend to create.
type CalendarEventRequest struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// CreatedCalendarEvent is the calendar backend's answer to a create.
type CreatedCalendarEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink,omitempty"`
}
