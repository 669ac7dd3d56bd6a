// Package app wires configuration, credentials and persistence into the
// services the CLI drives.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/agendify/internal/credential"
	"github.com/nhle/agendify/internal/extract"
	"github.com/nhle/agendify/internal/metrics"
	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/review"
	"github.com/nhle/agendify/internal/scan"
	"github.com/nhle/agendify/internal/source"
	"github.com/nhle/agendify/internal/store"
)

// App holds the long-lived services of one agendify process.
type App struct {
	Config    *model.AppConfig
	Logger    *zap.Logger
	Store     *store.SQLiteStore
	Vault     *credential.Vault
	Metrics   *metrics.Metrics
	Addresses *review.Addresses
	Workflow  *review.Workflow

	now      func() time.Time
	mail     source.Mail
	calendar review.Calendar
}

// Option configures an App.
type Option func(*App)

// WithVault uses v instead of the system keyring.
func WithVault(v *credential.Vault) Option {
	return func(a *App) { a.Vault = v }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithMail uses m instead of the configured IMAP mailbox.
func WithMail(m source.Mail) Option {
	return func(a *App) { a.mail = m }
}

// WithCalendar uses c instead of the configured calendar backend.
func WithCalendar(c review.Calendar) Option {
	return func(a *App) { a.calendar = c }
}

// New opens the database, seeds the monitored addresses from cfg and
// builds the review workflow. The calendar backend is connected on
// first use so that listing and denying work without it.
func New(ctx context.Context, cfg *model.AppConfig, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Vault == nil {
		v, err := credential.Open()
		if err != nil {
			return nil, err
		}
		a.Vault = v
	}

	if cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	s, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.Store = s

	a.Addresses = review.NewAddresses(s)
	if err := a.Addresses.Seed(ctx, cfg.MonitoredAddresses); err != nil {
		logger.Warn("some configured addresses were not added", zap.Error(err))
	}

	cal := a.calendar
	if cal == nil {
		cal = &lazyCalendar{build: a.buildCalendar}
	}
	a.Workflow = review.NewWorkflow(s, cal,
		review.WithDefaultZone(cfg.Calendar.DefaultTimezone),
		review.WithClock(a.now),
		review.WithLogger(logger.Named("review")),
		review.WithDecisionHook(a.Metrics.RecordDecision),
	)

	return a, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}

// Extractor returns the model-backed extractor when AI is enabled and
// the pattern-matching one otherwise.
func (a *App) Extractor() (extract.Extractor, error) {
	heuristic := extract.NewHeuristic(extract.WithClock(a.now))
	if !a.Config.AI.Enabled {
		return heuristic.Extractor(), nil
	}

	completer, err := a.buildCompleter()
	if err != nil {
		return nil, err
	}
	return extract.NewModelExtractor(completer, heuristic,
		extract.WithTimeout(time.Duration(a.Config.AI.TimeoutSec)*time.Second),
		extract.WithLogger(a.Logger.Named("extract")),
		extract.WithFallbackHook(a.Metrics.RecordFallback),
	), nil
}

// Mail returns the mailbox the scanner reads.
func (a *App) Mail() (source.Mail, error) {
	if a.mail != nil {
		return a.mail, nil
	}
	m, err := a.IMAP()
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Scanner wires the mailbox, extractor and review workflow together.
func (a *App) Scanner() (*scan.Scanner, error) {
	mail, err := a.Mail()
	if err != nil {
		return nil, err
	}
	extractor, err := a.Extractor()
	if err != nil {
		return nil, err
	}

	return scan.NewScanner(mail, extractor, a.Addresses, a.Workflow,
		scan.WithConcurrency(a.Config.Scan.Concurrency),
		scan.WithHistory(a.Store),
		scan.WithRecorder(a.Metrics),
		scan.WithClock(a.now),
		scan.WithLogger(a.Logger.Named("scan")),
	), nil
}

// Watcher returns a scheduled scanner using the configured schedule
// and lookback.
func (a *App) Watcher() (*scan.Watcher, error) {
	s, err := a.Scanner()
	if err != nil {
		return nil, err
	}
	return scan.NewWatcher(s, a.Config.Scan.Schedule, a.Config.Scan.LookbackHours, a.Logger.Named("watch")), nil
}

// lazyCalendar connects to the calendar backend on first create and
// keeps the connection once it succeeds.
type lazyCalendar struct {
	build func(ctx context.Context) (review.Calendar, error)

	mu  sync.Mutex
	cal review.Calendar
}

func (l *lazyCalendar) CreateEvent(ctx context.Context, req model.CalendarEventRequest) (model.CreatedCalendarEvent, error) {
	l.mu.Lock()
	if l.cal == nil {
		cal, err := l.build(ctx)
		if err != nil {
			l.mu.Unlock()
			return model.CreatedCalendarEvent{}, err
		}
		l.cal = cal
	}
	cal := l.cal
	l.mu.Unlock()

	return cal.CreateEvent(ctx, req)
}
