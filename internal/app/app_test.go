package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/agendify/internal/credential"
	"github.com/nhle/agendify/internal/extract"
	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/scan"
	"github.com/nhle/agendify/tests/testutil"
)

func testConfig(t *testing.T) *model.AppConfig {
	t.Helper()

	dir := t.TempDir()
	cfg, err := model.LoadConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	cfg.DatabasePath = filepath.Join(dir, "data", "agendify.db")
	return cfg
}

func newTestApp(t *testing.T, cfg *model.AppConfig, opts ...Option) (*App, *credential.Vault) {
	t.Helper()

	vault := credential.NewVault(keyring.NewArrayKeyring(nil))
	opts = append([]Option{WithVault(vault), WithClock(testutil.Clock())}, opts...)
	a, err := New(context.Background(), cfg, zap.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, vault
}

func TestNew_SeedsAddresses(t *testing.T) {
	cfg := testConfig(t)
	cfg.MonitoredAddresses = []string{"Ada@Example.com", "not-an-address"}

	a, _ := newTestApp(t, cfg)

	addrs, err := a.Addresses.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, addrs)
}

func TestExtractor_PatternMatchingByDefault(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))

	x, err := a.Extractor()
	require.NoError(t, err)

	ev := x.Extract(context.Background(), model.EmailMessage{
		ID:       "1",
		Subject:  "Test Meeting",
		BodyText: "We have a meeting at 3 PM tomorrow. Please come.",
	})
	assert.Equal(t, model.SourcePatternMatching, ev.Source)
	assert.Equal(t, "2025-08-21", model.Deref(ev.Date))
}

func TestExtractor_ModelBacked(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Enabled = true
	cfg.AI.Provider = "anthropic"
	t.Setenv("ANTHROPIC_API_KEY", "")

	a, vault := newTestApp(t, cfg)

	_, err := a.Extractor()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	require.NoError(t, vault.Set(credential.KeyAnthropicAPIKey, "sk-test"))
	x, err := a.Extractor()
	require.NoError(t, err)
	assert.IsType(t, &extract.ModelExtractor{}, x)
}

func TestMail_RequiresConfigAndPassword(t *testing.T) {
	cfg := testConfig(t)
	a, vault := newTestApp(t, cfg)

	_, err := a.Mail()
	assert.ErrorContains(t, err, "mail is not configured")

	cfg.Mail.IMAPHost = "imap.example.com"
	cfg.Mail.Username = "ada@example.com"
	_, err = a.Mail()
	assert.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, vault.Set(credential.KeyIMAPPassword, "hunter2"))
	m, err := a.Mail()
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestScanner_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.MonitoredAddresses = []string{"ada@example.com"}

	mail := testutil.NewFakeMail()
	mail.Add(model.EmailMessage{
		ID:         "1",
		Subject:    "Another Test",
		From:       "Ada <ada@example.com>",
		ReceivedAt: testutil.FixedNow,
		BodyText:   "Meeting at 12 PM EST on Monday.",
	}, "ada@example.com")
	cal := &testutil.FakeCalendar{}

	a, _ := newTestApp(t, cfg, WithMail(mail), WithCalendar(cal))
	ctx := context.Background()

	s, err := a.Scanner()
	require.NoError(t, err)
	report, err := s.Scan(ctx, scan.LastHours(testutil.FixedNow, 24))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)

	c, err := a.Workflow.Approve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewApproved, c.State)
	require.Len(t, cal.Created, 1)
	assert.Equal(t, "2025-08-25T12:00:00", cal.Created[0].Start.DateTime)
	assert.Equal(t, "America/New_York", cal.Created[0].Start.TimeZone)

	runs, err := a.Store.ListScanRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestApprove_UnconfiguredCalendarStaysPending(t *testing.T) {
	cfg := testConfig(t)
	a, _ := newTestApp(t, cfg)
	ctx := context.Background()

	_, err := a.Workflow.AddCandidates(ctx, []model.ExtractedEvent{{
		EventName:       "Standup",
		Date:            model.StringPtr("2025-08-21"),
		Confidence:      model.ConfidenceHigh,
		Source:          model.SourcePatternMatching,
		SourceMessageID: "9",
		SourceDate:      testutil.FixedNow,
	}})
	require.NoError(t, err)

	_, err = a.Workflow.Approve(ctx, "9")
	assert.ErrorContains(t, err, "CalDAV is not configured")

	cfg.Calendar.Provider = "outlook"
	_, err = a.Workflow.Approve(ctx, "9")
	assert.ErrorContains(t, err, "unknown calendar provider")

	c, err := a.Workflow.Get(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewPending, c.State)
}

func TestWatcher_UsesSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.Schedule = "@every 5m"
	a, _ := newTestApp(t, cfg, WithMail(testutil.NewFakeMail()))

	w, err := a.Watcher()
	require.NoError(t, err)
	assert.NotNil(t, w)
}
