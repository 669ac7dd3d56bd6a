package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/agendify/internal/source"
)

func TestAnthropic_Complete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"event_name\":"},{"type":"text","text":"\"Demo\"}"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropic(Config{APIKey: "test-key", BaseURL: srv.URL})
	reply, err := c.Complete(context.Background(), "extract this")
	require.NoError(t, err)

	assert.Equal(t, `{"event_name":"Demo"}`, reply)
	assert.Equal(t, defaultAnthropicModel, got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "extract this", got.Messages[0].Content[0].Text)
}

func TestAnthropic_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewAnthropic(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestAnthropic_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c := NewAnthropic(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, source.IsAuthError(err))
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestOpenAI_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)

		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"no event here"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	reply, err := c.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "no event here", reply)
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), "x")
	assert.Error(t, err)
}

func TestComplete_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnthropic(Config{APIKey: "k", BaseURL: srv.URL, RequestsPerMinute: 60}).Complete(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCompleter(t *testing.T) {
	c, err := NewCompleter(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)

	c, err = NewCompleter(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, c)

	_, err = NewCompleter(Config{Provider: "llama", APIKey: "k"})
	assert.Error(t, err)

	_, err = NewCompleter(Config{Provider: ProviderAnthropic})
	assert.Error(t, err)
}
