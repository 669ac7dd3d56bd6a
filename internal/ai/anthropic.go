package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultMaxTokens      = 500
	anthropicURL          = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
)

// Anthropic completes prompts with the Messages API.
type Anthropic struct {
	apiKey    string
	url       string
	model     string
	maxTokens int
	transport transport
}

// NewAnthropic creates a Messages API client.
func NewAnthropic(cfg Config) *Anthropic {
	a := &Anthropic{
		apiKey:    cfg.APIKey,
		url:       anthropicURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		transport: newTransport(cfg),
	}
	if cfg.BaseURL != "" {
		a.url = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	if a.model == "" {
		a.model = defaultAnthropicModel
	}
	if a.maxTokens <= 0 {
		a.maxTokens = defaultMaxTokens
	}
	return a
}

// Complete sends prompt as a single user turn and returns the joined text
// blocks of the reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: 0.1,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: prompt}},
			},
		},
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := a.transport.postJSON(ctx, a.url, headers, reqBody, &resp, errorEnvelopeMessage); err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text content in Claude API reply")
	}
	return strings.Join(parts, ""), nil
}

// --- Claude API types ---

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
}
