package calendar

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalDAV_EventToICS(t *testing.T) {
	c := NewCalDAV("https://dav.example.com", "ada", "secret", "/cal/")
	c.now = func() time.Time { return time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC) }

	req, err := BuildRequest(event("2025-08-21", "3:00 pm", "EDT", "room 204"), "")
	require.NoError(t, err)

	cal, err := c.eventToICS("uid-1", req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))
	out := buf.String()

	assert.Contains(t, out, "UID:uid-1")
	assert.Contains(t, out, "SUMMARY:Design Review")
	assert.Contains(t, out, "LOCATION:room 204")
	assert.Contains(t, out, "DTSTART:20250821T190000Z")
	assert.Contains(t, out, "DTEND:20250821T200000Z")
}

func TestCalDAV_EventToICS_AllDay(t *testing.T) {
	c := NewCalDAV("https://dav.example.com", "ada", "secret", "/cal/")

	req, err := BuildRequest(event("2025-08-21", "", "", ""), "")
	require.NoError(t, err)

	cal, err := c.eventToICS("uid-2", req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))
	assert.Contains(t, buf.String(), "DTSTART;VALUE=DATE:20250821")
	assert.Contains(t, buf.String(), "DTEND;VALUE=DATE:20250822")
}

func TestCalDAV_CreateEvent(t *testing.T) {
	var (
		gotPath string
		gotBody string
		gotUser string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("ETag", `"1"`)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewCalDAV(srv.URL, "ada", "secret", "/cal/work/")
	req, err := BuildRequest(event("2025-08-21", "3:00 pm", "EDT", ""), "")
	require.NoError(t, err)

	created, err := c.CreateEvent(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/cal/work/"+created.ID+".ics", gotPath)
	assert.Equal(t, "ada", gotUser)
	assert.True(t, strings.Contains(gotBody, "SUMMARY:Design Review"))
}

func TestCalDAV_CreateEventFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewCalDAV(srv.URL, "ada", "secret", "/cal/work/")
	req, err := BuildRequest(event("2025-08-21", "", "", ""), "")
	require.NoError(t, err)

	_, err = c.CreateEvent(context.Background(), req)
	assert.Error(t, err)
}
