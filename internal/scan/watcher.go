package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Watcher runs the Scanner on a cron schedule over a trailing window.
type Watcher struct {
	scanner  *Scanner
	schedule string
	lookback int
	now      func() time.Time
	logger   *zap.Logger
}

// NewWatcher creates a Watcher that scans the last lookbackHours on
// every tick of schedule (standard cron spec or "@every 15m").
func NewWatcher(s *Scanner, schedule string, lookbackHours int, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		scanner:  s,
		schedule: schedule,
		lookback: lookbackHours,
		now:      s.now,
		logger:   logger,
	}
}

// Run scans once immediately and then on schedule until ctx is done.
// Overlapping ticks are skipped while a scan is still running.
func (w *Watcher) Run(ctx context.Context) error {
	logger := cronLogger{w.logger.Sugar()}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(w.schedule, func() { w.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid scan schedule %q: %w", w.schedule, err)
	}

	w.tick(ctx)
	c.Start()
	w.logger.Info("watching inbox", zap.String("schedule", w.schedule), zap.Int("lookback_hours", w.lookback))

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("watcher stopped")
	return nil
}

func (w *Watcher) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.scanner.Scan(ctx, LastHours(w.now(), w.lookback)); err != nil && ctx.Err() == nil {
		w.logger.Error("scheduled scan failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
