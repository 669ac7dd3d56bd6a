package extract

import (
	"context"
	"time"

	"github.com/nhle/agendify/internal/model"
)

// Extractor turns one message into an event candidate. Implementations
// never fail: a message without an event yields the None-confidence
// result.
type Extractor interface {
	Extract(ctx context.Context, msg model.EmailMessage) model.ExtractedEvent
}

// ExtractorFunc adapts an ordinary function to Extractor.
type ExtractorFunc func(ctx context.Context, msg model.EmailMessage) model.ExtractedEvent

func (f ExtractorFunc) Extract(ctx context.Context, msg model.EmailMessage) model.ExtractedEvent {
	return f(ctx, msg)
}

// Heuristic is the pattern-matching extractor. It holds no mutable state;
// the clock is only read to resolve relative dates.
type Heuristic struct {
	now func() time.Time
}

// HeuristicOption configures a Heuristic.
type HeuristicOption func(*Heuristic)

// WithClock overrides the time source used for relative dates.
func WithClock(now func() time.Time) HeuristicOption {
	return func(h *Heuristic) {
		h.now = now
	}
}

// NewHeuristic creates a pattern-matching extractor.
func NewHeuristic(opts ...HeuristicOption) *Heuristic {
	h := &Heuristic{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Extract runs the signal gate and, when it passes, every field
// extractor. Pattern-matched events always carry High confidence.
func (h *Heuristic) Extract(msg model.EmailMessage) model.ExtractedEvent {
	t := Normalize(msg)
	if !HasEventSignal(t) {
		return model.NoEvent(msg, model.SourcePatternMatching)
	}

	dt := ResolveDateTime(t, h.now())
	ev := model.ExtractedEvent{
		EventName:   ExtractEventName(t),
		Date:        model.StringPtr(dt.Date),
		Time:        model.StringPtr(dt.Time),
		Timezone:    model.StringPtr(dt.Timezone),
		Location:    model.StringPtr(ExtractLocation(t)),
		Description: ExtractDescription(t),
		Confidence:  model.ConfidenceHigh,
		Source:      model.SourcePatternMatching,
	}
	ev.SetProvenance(msg)
	return ev
}

// Extractor exposes h through the context-aware Extractor interface.
func (h *Heuristic) Extractor() Extractor {
	return ExtractorFunc(func(_ context.Context, msg model.EmailMessage) model.ExtractedEvent {
		return h.Extract(msg)
	})
}
