// Package review holds extracted event candidates and moves each one
// from pending to approved (creating a calendar event) or denied.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/agendify/internal/calendar"
	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/store"
)

var (
	ErrNotFound    = store.ErrNotFound
	ErrNotPending  = store.ErrNotPending
	ErrMissingDate = calendar.ErrMissingDate
)

// Calendar is the collaborator approved events are written to.
type Calendar interface {
	CreateEvent(ctx context.Context, req model.CalendarEventRequest) (model.CreatedCalendarEvent, error)
}

// Workflow is the review state machine over persisted candidates.
type Workflow struct {
	store       store.Store
	calendar    Calendar
	defaultZone string
	now         func() time.Time
	logger      *zap.Logger
	onDecision  func(model.ReviewState)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the time source used for review timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithDefaultZone sets the IANA zone used for events without a
// recognised timezone.
func WithDefaultZone(zone string) Option {
	return func(w *Workflow) { w.defaultZone = zone }
}

// WithDecisionHook registers fn to be called after every successful
// approve or deny.
func WithDecisionHook(fn func(model.ReviewState)) Option {
	return func(w *Workflow) { w.onDecision = fn }
}

// NewWorkflow creates a Workflow. cal may be nil when only listing and
// denying are needed; Approve then fails.
func NewWorkflow(s store.Store, cal Calendar, opts ...Option) *Workflow {
	w := &Workflow{
		store:       s,
		calendar:    cal,
		defaultZone: calendar.DefaultZone,
		now:         time.Now,
		logger:      zap.NewNop(),
		onDecision:  func(model.ReviewState) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddCandidates stores every event that carries a name as a pending
// candidate. Message ids already known keep their current state. It
// returns how many candidates were new.
func (w *Workflow) AddCandidates(ctx context.Context, events []model.ExtractedEvent) (int, error) {
	added := 0
	for _, ev := range events {
		if !ev.HasEvent() {
			continue
		}
		ok, err := w.store.InsertCandidate(ctx, model.Candidate{
			ExtractedEvent: ev,
			State:          model.ReviewPending,
			CreatedAt:      w.now(),
		})
		if err != nil {
			return added, fmt.Errorf("adding candidate %s: %w", ev.SourceMessageID, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// Get returns the candidate extracted from message id.
func (w *Workflow) Get(ctx context.Context, id string) (*model.Candidate, error) {
	return w.store.GetCandidate(ctx, id)
}

// List returns candidates in state, or all candidates when state is nil.
func (w *Workflow) List(ctx context.Context, state *model.ReviewState) ([]model.Candidate, error) {
	return w.store.ListCandidates(ctx, store.CandidateFilter{State: state})
}

// Approve creates the candidate's calendar event and marks it approved.
// If the event cannot be built or the calendar rejects it, the candidate
// stays pending and the error is returned.
func (w *Workflow) Approve(ctx context.Context, id string) (*model.Candidate, error) {
	c, err := w.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.State != model.ReviewPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, id, c.State)
	}
	if w.calendar == nil {
		return nil, errors.New("no calendar configured")
	}

	req, err := calendar.BuildRequest(c.ExtractedEvent, w.defaultZone)
	if err != nil {
		return nil, fmt.Errorf("building calendar event for %s: %w", id, err)
	}

	created, err := w.calendar.CreateEvent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating calendar event for %s: %w", id, err)
	}

	at := w.now()
	if err := w.store.TransitionCandidate(ctx, id, model.ReviewApproved, created.ID, at); err != nil {
		// The calendar event exists but the candidate moved under us.
		w.logger.Warn("calendar event created for candidate that is no longer pending",
			zap.String("message_id", id),
			zap.String("calendar_event_id", created.ID),
			zap.Error(err),
		)
		return nil, err
	}

	w.logger.Info("candidate approved",
		zap.String("message_id", id),
		zap.String("event_name", c.EventName),
		zap.String("calendar_event_id", created.ID),
	)
	w.onDecision(model.ReviewApproved)

	c.State = model.ReviewApproved
	c.CalendarEventID = created.ID
	c.ReviewedAt = &at
	return c, nil
}

// Deny marks a pending candidate denied. No calendar call is made.
func (w *Workflow) Deny(ctx context.Context, id string) error {
	if err := w.store.TransitionCandidate(ctx, id, model.ReviewDenied, "", w.now()); err != nil {
		return err
	}

	w.logger.Info("candidate denied", zap.String("message_id", id))
	w.onDecision(model.ReviewDenied)
	return nil
}
