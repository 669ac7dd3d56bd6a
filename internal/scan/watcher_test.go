package scan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/agendify/internal/scan"
)

func TestWatcher_ScansImmediatelyAndStops(t *testing.T) {
	h := newHarness(t, ada)
	h.mail.Add(message("1", "Test Meeting", "We have a meeting at 3 PM tomorrow.", time.Hour), ada)

	w := scan.NewWatcher(h.scanner, "@every 1h", 24, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		c, err := h.workflow.Get(context.Background(), "1")
		return err == nil && c != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_InvalidSchedule(t *testing.T) {
	h := newHarness(t, ada)
	w := scan.NewWatcher(h.scanner, "every now and then", 24, nil)

	err := w.Run(context.Background())
	assert.Error(t, err)
}
