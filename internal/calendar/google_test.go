package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/nhle/agendify/internal/source"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogle(context.Background(), srv.Client(), "", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return g
}

func TestGoogle_CreateEvent(t *testing.T) {
	var got map[string]any
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-1","htmlLink":"https://calendar.google.com/event?eid=evt-1"}`))
	})

	req, err := BuildRequest(event("2025-08-21", "3:00 pm", "PST", "room 204"), "")
	require.NoError(t, err)

	created, err := g.CreateEvent(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", created.ID)
	assert.Equal(t, "https://calendar.google.com/event?eid=evt-1", created.HTMLLink)
	assert.Equal(t, "Design Review", got["summary"])
	assert.Equal(t, "room 204", got["location"])
	start := got["start"].(map[string]any)
	assert.Equal(t, "2025-08-21T15:00:00", start["dateTime"])
	assert.Equal(t, "America/Los_Angeles", start["timeZone"])
}

func TestGoogle_CreateEventUnauthorized(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
	})

	req, err := BuildRequest(event("2025-08-21", "", "", ""), "")
	require.NoError(t, err)

	_, err = g.CreateEvent(context.Background(), req)
	require.Error(t, err)
	assert.True(t, source.IsAuthError(err))
}

type memoryTokenStore struct {
	tok   *oauth2.Token
	saves int
}

func (m *memoryTokenStore) LoadToken() (*oauth2.Token, error) {
	if m.tok == nil {
		return nil, errors.New("no token")
	}
	return m.tok, nil
}

func (m *memoryTokenStore) SaveToken(tok *oauth2.Token) error {
	m.tok = tok
	m.saves++
	return nil
}

type sequenceTokenSource struct {
	tokens []*oauth2.Token
}

func (s *sequenceTokenSource) Token() (*oauth2.Token, error) {
	tok := s.tokens[0]
	if len(s.tokens) > 1 {
		s.tokens = s.tokens[1:]
	}
	return tok, nil
}

func TestPersistingTokenSource_SavesOnlyNewTokens(t *testing.T) {
	store := &memoryTokenStore{}
	ts := &persistingTokenSource{
		base: &sequenceTokenSource{tokens: []*oauth2.Token{
			{AccessToken: "a"}, {AccessToken: "a"}, {AccessToken: "b"},
		}},
		store: store,
		last:  "a",
	}

	for range 3 {
		_, err := ts.Token()
		require.NoError(t, err)
	}

	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "b", store.tok.AccessToken)
}

func TestGoogleHTTPClient_NoToken(t *testing.T) {
	_, err := GoogleHTTPClient(context.Background(), OAuthConfig("id", "secret", ""), &memoryTokenStore{})
	require.Error(t, err)
	assert.True(t, source.IsAuthError(err))
}
