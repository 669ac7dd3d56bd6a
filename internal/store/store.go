package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/agendify/internal/model"
)

var (
	// ErrNotFound is returned when no candidate has the requested id.
	ErrNotFound = errors.New("candidate not found")

	// ErrNotPending is returned when a transition targets a candidate
	// that has already been approved or denied.
	ErrNotPending = errors.New("candidate is not pending")
)

// CandidateFilter controls filtering and pagination for candidate queries.
type CandidateFilter struct {
	State *model.ReviewState // nil (all)
	Limit int
}

// Store defines the persistence interface for review candidates,
// monitored addresses and scan history.
type Store interface {
	// === Candidates ===

	// InsertCandidate stores c unless a candidate with the same source
	// message id already exists. It reports whether a row was added.
	InsertCandidate(ctx context.Context, c model.Candidate) (bool, error)
	GetCandidate(ctx context.Context, messageID string) (*model.Candidate, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.Candidate, error)

	// TransitionCandidate moves a pending candidate to state. It fails
	// with ErrNotFound or ErrNotPending and leaves the row untouched.
	TransitionCandidate(
		ctx context.Context,
		messageID string,
		state model.ReviewState,
		calendarEventID string,
		at time.Time,
	) error

	// === Monitored addresses ===

	AddAddress(ctx context.Context, address string) (bool, error)
	RemoveAddress(ctx context.Context, address string) (bool, error)
	ListAddresses(ctx context.Context) ([]string, error)

	// === Scan history ===

	RecordScanRun(ctx context.Context, run model.ScanRun) error
	ListScanRuns(ctx context.Context, limit int) ([]model.ScanRun, error)

	Close() error
}
