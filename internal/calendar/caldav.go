package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"github.com/nhle/agendify/internal/model"
)

const productID = "-//Agendify//CalDAV//EN"

// Info describes a calendar collection on the server.
type Info struct {
	Path string
	Name string
}

// CalDAV creates events on a CalDAV server using basic auth.
type CalDAV struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	httpClient   *http.Client
	now          func() time.Time

	mu     sync.Mutex
	client *caldav.Client
}

// NewCalDAV creates a CalDAV calendar. calendarPath may be empty, in which
// case the first calendar in the user's home set is used.
func NewCalDAV(baseURL, username, password, calendarPath string) *CalDAV {
	return &CalDAV{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
		now:          time.Now,
		httpClient: &http.Client{
			Transport: &basicAuthTransport{
				username: username,
				password: password,
			},
			Timeout: 30 * time.Second,
		},
	}
}

// basicAuthTransport adds Basic Auth to HTTP requests.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func (c *CalDAV) connect() (*caldav.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := caldav.NewClient(c.httpClient, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}
	c.client = client
	return client, nil
}

// Calendars lists the calendars in the user's home set.
func (c *CalDAV) Calendars(ctx context.Context) ([]Info, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	result := make([]Info, 0, len(cals))
	for _, cal := range cals {
		result = append(result, Info{Path: cal.Path, Name: cal.Name})
	}
	return result, nil
}

// CreateEvent stores req as a new VEVENT and returns its UID.
func (c *CalDAV) CreateEvent(ctx context.Context, req model.CalendarEventRequest) (model.CreatedCalendarEvent, error) {
	client, err := c.connect()
	if err != nil {
		return model.CreatedCalendarEvent{}, err
	}

	calendarPath, err := c.resolveCalendarPath(ctx)
	if err != nil {
		return model.CreatedCalendarEvent{}, err
	}

	uid := uuid.NewString()
	cal, err := c.eventToICS(uid, req)
	if err != nil {
		return model.CreatedCalendarEvent{}, err
	}

	eventPath := strings.TrimSuffix(calendarPath, "/") + "/" + uid + ".ics"
	obj, err := client.PutCalendarObject(ctx, eventPath, cal)
	if err != nil {
		return model.CreatedCalendarEvent{}, fmt.Errorf("create event: %w", err)
	}

	link := eventPath
	if obj != nil && obj.Path != "" {
		link = obj.Path
	}
	return model.CreatedCalendarEvent{ID: uid, HTMLLink: link}, nil
}

func (c *CalDAV) resolveCalendarPath(ctx context.Context) (string, error) {
	if c.calendarPath != "" {
		return c.calendarPath, nil
	}

	cals, err := c.Calendars(ctx)
	if err != nil {
		return "", err
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found for %s", c.username)
	}
	c.calendarPath = cals[0].Path
	return c.calendarPath, nil
}

// eventToICS converts a request to iCalendar format. Timed events are
// written in UTC.
func (c *CalDAV) eventToICS(uid string, req model.CalendarEventRequest) (*ical.Calendar, error) {
	start, end, err := StartEnd(req, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("resolving event times: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, req.Summary)

	if req.Description != "" {
		vevent.Props.SetText(ical.PropDescription, req.Description)
	}
	if req.Location != "" {
		vevent.Props.SetText(ical.PropLocation, req.Location)
	}

	if req.Start.AllDay() {
		vevent.Props.SetDate(ical.PropDateTimeStart, start)
		vevent.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	}

	vevent.Props.SetDateTime(ical.PropDateTimeStamp, c.now().UTC())

	cal.Children = append(cal.Children, vevent.Component)
	return cal, nil
}
