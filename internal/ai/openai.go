package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	openAIURL          = "https://api.openai.com/v1/chat/completions"
)

// OpenAI completes prompts with the Chat Completions API.
type OpenAI struct {
	apiKey    string
	url       string
	model     string
	maxTokens int
	transport transport
}

// NewOpenAI creates a Chat Completions client.
func NewOpenAI(cfg Config) *OpenAI {
	o := &OpenAI{
		apiKey:    cfg.APIKey,
		url:       openAIURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		transport: newTransport(cfg),
	}
	if cfg.BaseURL != "" {
		o.url = strings.TrimRight(cfg.BaseURL, "/") + "/v1/chat/completions"
	}
	if o.model == "" {
		o.model = defaultOpenAIModel
	}
	if o.maxTokens <= 0 {
		o.maxTokens = defaultMaxTokens
	}
	return o
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: 0.1,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}

	var resp chatResponse
	if err := o.transport.postJSON(ctx, o.url, headers, reqBody, &resp, errorEnvelopeMessage); err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in OpenAI API reply")
	}
	return resp.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}
