package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nhle/agendify/internal/extract"
	"github.com/nhle/agendify/internal/source"
)

// Provider names a supported text-generation API.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Config holds the settings shared by every provider client.
type Config struct {
	Provider  Provider
	APIKey    string
	Model     string
	MaxTokens int

	// BaseURL overrides the provider endpoint (used by tests and proxies).
	BaseURL string

	// RequestsPerMinute throttles outgoing calls. Zero disables throttling.
	RequestsPerMinute int

	HTTPClient *http.Client
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// NewCompleter builds the Completer for cfg.Provider.
func NewCompleter(cfg Config) (extract.Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropic(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// transport is the HTTP plumbing shared by the provider clients.
type transport struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newTransport(cfg Config) transport {
	t := transport{client: cfg.HTTPClient}
	if t.client == nil {
		t.client = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.RequestsPerMinute > 0 {
		every := time.Minute / time.Duration(cfg.RequestsPerMinute)
		t.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
	return t
}

// postJSON sends body to url and decodes a 200 response into out. A 401
// becomes *source.AuthError; other non-200 responses are turned into
// *APIError, using errorMessage to pull the provider's message out of the
// body when possible.
func (t transport) postJSON(
	ctx context.Context,
	url string,
	headers map[string]string,
	body any,
	out any,
	errorMessage func([]byte) string,
) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(respBody)
		if msg == "" {
			msg = string(respBody)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return &source.AuthError{SourceType: source.SourceTypeModelAPI, Message: msg}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// apiErrorResponse is the error envelope both providers use.
type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorEnvelopeMessage(body []byte) string {
	var apiErr apiErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		return apiErr.Error.Message
	}
	return ""
}
