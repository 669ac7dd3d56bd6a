package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/source"
)

// Google creates events through the Google Calendar v3 API.
type Google struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogle creates a Google Calendar client. httpClient must already
// carry OAuth credentials (see GoogleHTTPClient).
func NewGoogle(
	ctx context.Context,
	httpClient *http.Client,
	calendarID string,
	opts ...option.ClientOption,
) (*Google, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Google Calendar service: %w", err)
	}

	return &Google{svc: svc, calendarID: calendarID}, nil
}

// CreateEvent inserts req into the configured calendar.
func (g *Google) CreateEvent(ctx context.Context, req model.CalendarEventRequest) (model.CreatedCalendarEvent, error) {
	event := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       toEventDateTime(req.Start),
		End:         toEventDateTime(req.End),
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return model.CreatedCalendarEvent{}, &source.AuthError{
				SourceType: source.SourceTypeGoogle,
				Message:    apiErr.Message,
			}
		}
		return model.CreatedCalendarEvent{}, fmt.Errorf("inserting Google Calendar event: %w", err)
	}

	return model.CreatedCalendarEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

func toEventDateTime(t model.EventTime) *gcal.EventDateTime {
	if t.AllDay() {
		return &gcal.EventDateTime{Date: t.Date}
	}
	return &gcal.EventDateTime{DateTime: t.DateTime, TimeZone: t.TimeZone}
}
