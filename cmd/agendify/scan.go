package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/scan"
	"github.com/nhle/agendify/internal/ui"
)

var (
	scanSince   string
	scanUntil   string
	scanJSON    bool
	historySize int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	scanCmd.AddCommand(scanHistoryCmd)

	scanCmd.Flags().StringVar(&scanSince, "since", "", "start of the window: YYYY-MM-DD, RFC 3339 or a duration ago (e.g. 48h)")
	scanCmd.Flags().StringVar(&scanUntil, "until", "", "end of the window (default now)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the report as JSON")

	scanHistoryCmd.Flags().IntVar(&historySize, "limit", 20, "number of runs to show")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan monitored senders' mail once",
	Long: `Scan mail from every monitored address and store the events found as
pending candidates. Messages that cannot be fetched are skipped and reported.

Examples:
  # Scan the configured lookback window (24h by default)
  agendify scan

  # Scan a fixed range
  agendify scan --since 2025-08-01 --until 2025-08-15

  # Scan the last two days
  agendify scan --since 48h`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan on a schedule until interrupted",
	Long: `Run a scan now and then on scan.schedule (default "@every 15m") over the
last scan.lookback_hours. When metrics.addr is set, Prometheus metrics are
served at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var scanHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scan runs",
	Args:  cobra.NoArgs,
	RunE:  runScanHistory,
}

// parseWhen reads an absolute date, an RFC 3339 timestamp or a duration
// before now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date, timestamp or duration", s)
}

// scanWindow resolves the --since/--until flags against the default
// lookback.
func scanWindow(since, until string, lookbackHours int, now time.Time) (scan.Window, error) {
	w := scan.LastHours(now, lookbackHours)
	if until != "" {
		t, err := parseWhen(until, now)
		if err != nil {
			return w, err
		}
		w.Until = t
	}
	if since != "" {
		t, err := parseWhen(since, now)
		if err != nil {
			return w, err
		}
		w.Since = t
	} else if until != "" {
		w.Since = w.Until.Add(-time.Duration(lookbackHours) * time.Hour)
	}
	if !w.Since.Before(w.Until) {
		return w, errors.New("--since must be before --until")
	}
	return w, nil
}

type reportJSON struct {
	Addresses  int                    `json:"addresses"`
	Messages   int                    `json:"messages"`
	Extracted  int                    `json:"extracted"`
	Added      int                    `json:"added"`
	Failed     int                    `json:"failed"`
	Candidates []model.ExtractedEvent `json:"candidates"`
	Failures   []string               `json:"failures,omitempty"`
}

func describeFailure(f scan.Failure) string {
	if f.MessageID == "" {
		return fmt.Sprintf("%s: %v", f.Address, f.Err)
	}
	return fmt.Sprintf("%s message %s: %v", f.Address, f.MessageID, f.Err)
}

func runScan(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := scanWindow(scanSince, scanUntil, a.Config.Scan.LookbackHours, time.Now())
	if err != nil {
		return err
	}

	scanner, err := a.Scanner()
	if err != nil {
		return err
	}

	report, err := scanner.Scan(cmd.Context(), w)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		failures := make([]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, describeFailure(f))
		}
		return writeJSON(cmd, reportJSON{
			Addresses:  report.Addresses,
			Messages:   report.Messages,
			Extracted:  report.Extracted,
			Added:      report.Added,
			Failed:     report.Failed,
			Candidates: report.Candidates,
			Failures:   failures,
		})
	}

	fmt.Fprintf(out, "Scanned %d messages from %d addresses: %d events found, %d new, %d skipped.\n",
		report.Messages, report.Addresses, report.Extracted, report.Added, report.Failed)
	for _, f := range report.Failures {
		fmt.Fprintf(out, "  skipped %s\n", describeFailure(f))
	}
	if report.Added > 0 {
		fmt.Fprintln(out, "Run 'agendify review list' to see pending candidates.")
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	watcher, err := a.Watcher()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return watcher.Run(ctx) })
	if addr := a.Config.Metrics.Addr; addr != "" {
		g.Go(func() error { return a.Metrics.Serve(ctx, addr) })
	}
	return g.Wait()
}

func runScanHistory(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := a.Store.ListScanRuns(cmd.Context(), historySize)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("No scans recorded yet."))
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDURATION\tADDRESSES\tMESSAGES\tEVENTS\tNEW\tSKIPPED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Duration().Round(time.Millisecond),
			r.Addresses, r.Messages, r.Extracted, r.Added, r.Failed)
	}
	return tw.Flush()
}
