// Package scan walks the monitored senders' recent mail, extracts event
// candidates and hands them to the review workflow.
package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/agendify/internal/extract"
	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/source"
)

// fetchTimeout is the maximum time allowed for a single mail call.
const fetchTimeout = 30 * time.Second

// AddressLister supplies the monitored sender addresses.
type AddressLister interface {
	List(ctx context.Context) ([]string, error)
}

// CandidateSink receives extracted events.
type CandidateSink interface {
	AddCandidates(ctx context.Context, events []model.ExtractedEvent) (int, error)
}

// History persists a summary of each run.
type History interface {
	RecordScanRun(ctx context.Context, run model.ScanRun) error
}

// Recorder observes scanner activity (see internal/metrics).
type Recorder interface {
	RecordExtraction(ev model.ExtractedEvent)
	RecordMessageFailure()
	RecordScan(run model.ScanRun)
}

// Window bounds the received time of scanned messages.
type Window struct {
	Since time.Time
	Until time.Time
}

// LastHours returns the window ending at now and reaching back h hours.
func LastHours(now time.Time, h int) Window {
	return Window{Since: now.Add(-time.Duration(h) * time.Hour), Until: now}
}

// Failure is one address or message that was skipped.
type Failure struct {
	Address   string
	MessageID string
	Err       error
}

// Report is the result of one Scan.
type Report struct {
	model.ScanRun

	// Candidates are the events that carried a name, ordered by
	// message receipt time.
	Candidates []model.ExtractedEvent
	Failures   []Failure
}

// Scanner runs the extraction pipeline over the monitored addresses.
type Scanner struct {
	mail        source.Mail
	extractor   extract.Extractor
	addresses   AddressLister
	sink        CandidateSink
	history     History
	recorder    Recorder
	concurrency int
	timeout     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency bounds how many addresses are scanned at once.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFetchTimeout bounds each list or fetch call.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scanner) { s.timeout = d }
}

// WithHistory records every run in h.
func WithHistory(h History) Option {
	return func(s *Scanner) { s.history = h }
}

// WithRecorder reports activity to r.
func WithRecorder(r Recorder) Option {
	return func(s *Scanner) { s.recorder = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a Scanner.
func NewScanner(
	mail source.Mail,
	extractor extract.Extractor,
	addresses AddressLister,
	sink CandidateSink,
	opts ...Option,
) *Scanner {
	s := &Scanner{
		mail:        mail,
		extractor:   extractor,
		addresses:   addresses,
		sink:        sink,
		concurrency: 4,
		timeout:     fetchTimeout,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scanState is shared by the per-address goroutines of one run.
type scanState struct {
	mu       sync.Mutex
	seen     map[string]bool
	events   []model.ExtractedEvent
	failures []Failure
	messages int
}

func (st *scanState) claim(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.seen[id] {
		return false
	}
	st.seen[id] = true
	st.messages++
	return true
}

func (st *scanState) fail(f Failure) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failures = append(st.failures, f)
}

func (st *scanState) add(ev model.ExtractedEvent) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.events = append(st.events, ev)
}

// Scan extracts candidates from every monitored address's mail in w.
// Addresses are scanned concurrently and messages of one address in
// order. A failing address or message is logged and skipped; only a
// failure to read the address set or to store candidates aborts the run.
func (s *Scanner) Scan(ctx context.Context, w Window) (*Report, error) {
	started := s.now()

	addrs, err := s.addresses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading monitored addresses: %w", err)
	}

	report := &Report{ScanRun: model.ScanRun{StartedAt: started, Addresses: len(addrs)}}
	if len(addrs) == 0 {
		s.logger.Info("no monitored addresses, nothing to scan")
		report.FinishedAt = s.now()
		return report, nil
	}

	st := &scanState{seen: make(map[string]bool)}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, addr := range addrs {
		g.Go(func() error {
			s.scanAddress(ctx, addr, w, st)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(st.events, func(i, j int) bool {
		a, b := st.events[i], st.events[j]
		if !a.SourceDate.Equal(b.SourceDate) {
			return a.SourceDate.Before(b.SourceDate)
		}
		return a.SourceMessageID < b.SourceMessageID
	})

	report.Messages = st.messages
	report.Candidates = st.events
	report.Failures = st.failures
	report.Extracted = len(st.events)
	report.Failed = len(st.failures)

	added, err := s.sink.AddCandidates(ctx, st.events)
	if err != nil {
		return nil, fmt.Errorf("storing candidates: %w", err)
	}
	report.Added = added
	report.FinishedAt = s.now()

	s.logger.Info("scan complete",
		zap.Int("addresses", report.Addresses),
		zap.Int("messages", report.Messages),
		zap.Int("extracted", report.Extracted),
		zap.Int("added", report.Added),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration()),
	)

	if s.recorder != nil {
		s.recorder.RecordScan(report.ScanRun)
	}
	if s.history != nil {
		if err := s.history.RecordScanRun(ctx, report.ScanRun); err != nil {
			s.logger.Warn("recording scan run failed", zap.Error(err))
		}
	}

	return report, nil
}

func (s *Scanner) scanAddress(ctx context.Context, addr string, w Window, st *scanState) {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	ids, err := s.mail.ListMessageIDs(listCtx, []string{addr}, w.Since, w.Until)
	cancel()
	if err != nil {
		s.logger.Warn("listing messages failed, skipping address",
			zap.String("address", addr),
			zap.Error(err),
		)
		st.fail(Failure{Address: addr, Err: err})
		return
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if !st.claim(id) {
			continue
		}

		ev, err := s.processMessage(ctx, id)
		if err != nil {
			s.logger.Warn("fetching message failed, skipping",
				zap.String("address", addr),
				zap.String("message_id", id),
				zap.Error(err),
			)
			st.fail(Failure{Address: addr, MessageID: id, Err: err})
			if s.recorder != nil {
				s.recorder.RecordMessageFailure()
			}
			continue
		}

		if s.recorder != nil {
			s.recorder.RecordExtraction(ev)
		}
		if ev.HasEvent() {
			s.logger.Debug("event candidate extracted",
				zap.String("message_id", id),
				zap.String("event_name", ev.EventName),
				zap.String("source", string(ev.Source)),
			)
			st.add(ev)
		}
	}
}

func (s *Scanner) processMessage(ctx context.Context, id string) (model.ExtractedEvent, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.mail.FetchMessage(fetchCtx, id)
	if err != nil {
		return model.ExtractedEvent{}, err
	}
	return s.extractor.Extract(ctx, msg), nil
}
