package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/agendify/internal/model"
)

// ErrNoJSON is returned when a model reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model reply")

// Completer is a text-generation service: one prompt in, free text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const systemInstruction = "You are an expert at extracting event information from emails. " +
	"Extract event details in a structured format."

const promptTemplate = `Please extract event information from this email. Return ONLY a JSON object with the following structure:

{
  "event_name": "Name of the event",
  "date": "Event date in YYYY-MM-DD format",
  "time": "Event time in HH:MM format (24-hour)",
  "timezone": "Timezone (e.g., EST, PST, UTC)",
  "location": "Event location if mentioned",
  "description": "Brief event description",
  "confidence": "High/Medium/Low based on clarity of information"
}

If no event is found, return:
{
  "event_name": null,
  "date": null,
  "time": null,
  "timezone": null,
  "location": null,
  "description": null,
  "confidence": "None"
}

Email content:
Subject: %s
From: %s
Date: %s
Text: %s

Extract the event information:`

// BuildPrompt renders the extraction prompt for msg.
func BuildPrompt(msg model.EmailMessage) string {
	date := ""
	if !msg.ReceivedAt.IsZero() {
		date = msg.ReceivedAt.Format(time.RFC1123Z)
	}
	return systemInstruction + "\n\n" + fmt.Sprintf(promptTemplate, msg.Subject, msg.From, date, msg.BodyText)
}

// modelReply mirrors the JSON schema in the prompt. Every field is
// optional.
type modelReply struct {
	EventName   *string `json:"event_name"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Timezone    *string `json:"timezone"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Confidence  *string `json:"confidence"`
}

var (
	modelClock24Pattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	knownTimezoneAbbrevSet = wordSet(timezoneAbbreviations...)
)

// ParseReply decodes the first JSON object embedded anywhere in reply and
// normalises it into an event for msg.
func ParseReply(reply string, msg model.EmailMessage) (model.ExtractedEvent, error) {
	start := strings.IndexByte(reply, '{')
	if start < 0 {
		return model.ExtractedEvent{}, ErrNoJSON
	}

	var raw modelReply
	if err := json.NewDecoder(strings.NewReader(reply[start:])).Decode(&raw); err != nil {
		return model.ExtractedEvent{}, fmt.Errorf("decoding model reply: %w", err)
	}

	name := strings.TrimSpace(model.Deref(raw.EventName))
	if name == "" {
		return model.NoEvent(msg, model.SourceAI), nil
	}

	confidence, ok := model.ParseConfidence(model.Deref(raw.Confidence))
	if !ok || confidence == model.ConfidenceNone {
		confidence = model.ConfidenceLow
	}

	description := strings.TrimSpace(model.Deref(raw.Description))
	if description == "" {
		description = msg.Subject
	}

	ev := model.ExtractedEvent{
		EventName:   name,
		Date:        model.StringPtr(normalizeModelDate(model.Deref(raw.Date))),
		Time:        model.StringPtr(normalizeModelTime(model.Deref(raw.Time))),
		Timezone:    model.StringPtr(normalizeModelTimezone(model.Deref(raw.Timezone))),
		Location:    model.StringPtr(strings.TrimSpace(model.Deref(raw.Location))),
		Description: description,
		Confidence:  confidence,
		Source:      model.SourceAI,
	}
	ev.SetProvenance(msg)
	return ev, nil
}

func normalizeModelDate(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ""
	}
	return s
}

// normalizeModelTime accepts "HH:MM" or anything ResolveTime understands.
func normalizeModelTime(s string) string {
	s = strings.TrimSpace(s)
	if m := modelClock24Pattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return ""
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	t, _ := ResolveTime(s)
	return t
}

func normalizeModelTimezone(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !knownTimezoneAbbrevSet[s] {
		return ""
	}
	return strings.ToUpper(s)
}

// ModelExtractor asks a Completer for a structured event and falls back to
// pattern matching when the call or the reply is unusable.
type ModelExtractor struct {
	completer  Completer
	fallback   *Heuristic
	timeout    time.Duration
	logger     *zap.Logger
	onFallback func(error)
}

// ModelOption configures a ModelExtractor.
type ModelOption func(*ModelExtractor)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) ModelOption {
	return func(m *ModelExtractor) {
		m.timeout = d
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *zap.Logger) ModelOption {
	return func(m *ModelExtractor) {
		m.logger = logger
	}
}

// WithFallbackHook registers fn to be called with the cause of every
// fallback.
func WithFallbackHook(fn func(error)) ModelOption {
	return func(m *ModelExtractor) {
		m.onFallback = fn
	}
}

// NewModelExtractor creates a model-backed extractor that falls back to
// fallback.
func NewModelExtractor(completer Completer, fallback *Heuristic, opts ...ModelOption) *ModelExtractor {
	m := &ModelExtractor{
		completer: completer,
		fallback:  fallback,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TryExtract performs the model call without falling back.
func (m *ModelExtractor) TryExtract(ctx context.Context, msg model.EmailMessage) (model.ExtractedEvent, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	reply, err := m.completer.Complete(ctx, BuildPrompt(msg))
	if err != nil {
		return model.ExtractedEvent{}, fmt.Errorf("calling model service: %w", err)
	}
	return ParseReply(reply, msg)
}

// Extract returns the model's answer, or the pattern-matching result when
// the model path fails for any reason.
func (m *ModelExtractor) Extract(ctx context.Context, msg model.EmailMessage) model.ExtractedEvent {
	ev, err := m.TryExtract(ctx, msg)
	if err == nil {
		return ev
	}

	m.logger.Warn("model extraction failed, using pattern matching",
		zap.String("message_id", msg.ID),
		zap.Error(err),
	)
	if m.onFallback != nil {
		m.onFallback(err)
	}
	return m.fallback.Extract(msg)
}
