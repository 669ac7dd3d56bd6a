package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/agendify/internal/model"
)

// ErrMissingDate is returned when an event cannot be placed on a calendar
// because it has no date.
var ErrMissingDate = errors.New("event has no date")

const (
	dateLayout = "2006-01-02"
	wallLayout = "2006-01-02T15:04:05"

	// EventDuration is the fixed length of timed events.
	EventDuration = time.Hour
)

// BuildRequest turns an extracted event into a calendar create request.
// Events without a time become all-day events; timed events last
// EventDuration in the zone named by the event (or defaultZone).
func BuildRequest(ev model.ExtractedEvent, defaultZone string) (model.CalendarEventRequest, error) {
	date := model.Deref(ev.Date)
	if date == "" {
		return model.CalendarEventRequest{}, ErrMissingDate
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return model.CalendarEventRequest{}, fmt.Errorf("parsing event date %q: %w", date, err)
	}

	req := model.CalendarEventRequest{
		Summary:     ev.EventName,
		Description: describe(ev),
		Location:    model.Deref(ev.Location),
	}

	clock := model.Deref(ev.Time)
	if clock == "" {
		req.Start = model.EventTime{Date: date}
		req.End = model.EventTime{Date: day.AddDate(0, 0, 1).Format(dateLayout)}
		return req, nil
	}

	hour, minute, err := ParseClock(clock)
	if err != nil {
		return model.CalendarEventRequest{}, err
	}

	zone := ZoneName(model.Deref(ev.Timezone), defaultZone)
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	end := start.Add(EventDuration)

	req.Start = model.EventTime{DateTime: start.Format(wallLayout), TimeZone: zone}
	req.End = model.EventTime{DateTime: end.Format(wallLayout), TimeZone: zone}
	return req, nil
}

// ParseClock reads "H:MM am", "H:MM pm" or "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, layout := range []string{"3:04 pm", "3:04pm", "15:04"} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("unrecognised time %q", s)
}

// StartEnd resolves a request's start and end to instants. All-day
// requests resolve to midnight in loc.
func StartEnd(req model.CalendarEventRequest, loc *time.Location) (start, end time.Time, err error) {
	if start, err = resolve(req.Start, loc); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = resolve(req.End, loc); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func resolve(t model.EventTime, loc *time.Location) (time.Time, error) {
	if t.AllDay() {
		return time.ParseInLocation(dateLayout, t.Date, loc)
	}
	if t.TimeZone != "" {
		loc = LoadZone(t.TimeZone)
	}
	return time.ParseInLocation(wallLayout, t.DateTime, loc)
}

func describe(ev model.ExtractedEvent) string {
	return fmt.Sprintf("%s\n\nExtracted from email: %s\nSource: %s",
		ev.Description, ev.SourceSubject, ev.SourceFrom)
}
