package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nhle/agendify/internal/model"
)

// FixedNow is the reference instant used across tests:
// Wednesday 2025-08-20 09:30 UTC.
var FixedNow = time.Date(2025, time.August, 20, 9, 30, 0, 0, time.UTC)

// Clock returns a clock function pinned to FixedNow.
func Clock() func() time.Time {
	return func() time.Time { return FixedNow }
}

// FakeMail is an in-memory mailbox. Messages are keyed by id and
// indexed by sender address.
type FakeMail struct {
	mu sync.Mutex

	Messages map[string]model.EmailMessage
	BySender map[string][]string

	// ListErr and FetchErr fail the matching address or message id.
	ListErr  map[string]error
	FetchErr map[string]error

	Fetched []string
}

// NewFakeMail returns an empty FakeMail.
func NewFakeMail() *FakeMail {
	return &FakeMail{
		Messages: map[string]model.EmailMessage{},
		BySender: map[string][]string{},
		ListErr:  map[string]error{},
		FetchErr: map[string]error{},
	}
}

// Add stores msg as sent by each of senders.
func (f *FakeMail) Add(msg model.EmailMessage, senders ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Messages[msg.ID] = msg
	for _, s := range senders {
		f.BySender[s] = append(f.BySender[s], msg.ID)
	}
}

func (f *FakeMail) ListMessageIDs(_ context.Context, addresses []string, since, until time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for _, addr := range addresses {
		if err := f.ListErr[addr]; err != nil {
			return nil, err
		}
		for _, id := range f.BySender[addr] {
			received := f.Messages[id].ReceivedAt
			if received.Before(since) || received.After(until) {
				continue
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (f *FakeMail) FetchMessage(_ context.Context, id string) (model.EmailMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Fetched = append(f.Fetched, id)
	if err := f.FetchErr[id]; err != nil {
		return model.EmailMessage{}, err
	}
	msg, ok := f.Messages[id]
	if !ok {
		return model.EmailMessage{}, fmt.Errorf("message %s not found", id)
	}
	return msg, nil
}

// FakeCalendar records created events. Err, when set, fails every
// create.
type FakeCalendar struct {
	mu sync.Mutex

	Created []model.CalendarEventRequest
	Err     error
}

func (f *FakeCalendar) CreateEvent(_ context.Context, req model.CalendarEventRequest) (model.CreatedCalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return model.CreatedCalendarEvent{}, f.Err
	}
	f.Created = append(f.Created, req)
	id := fmt.Sprintf("evt-%d", len(f.Created))
	return model.CreatedCalendarEvent{ID: id, HTMLLink: "https://calendar.example.com/" + id}, nil
}

// Calls returns how many events were created.
func (f *FakeCalendar) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Created)
}
