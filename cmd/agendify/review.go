package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/review"
	"github.com/nhle/agendify/internal/ui"
)

var (
	reviewState      string
	reviewJSON       bool
	reviewAccessible bool
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewApproveCmd)
	reviewCmd.AddCommand(reviewDenyCmd)
	reviewCmd.AddCommand(reviewInteractiveCmd)

	reviewListCmd.Flags().StringVar(&reviewState, "state", "pending", "pending, approved, denied or all")
	reviewListCmd.Flags().BoolVar(&reviewJSON, "json", false, "print candidates as JSON")

	reviewInteractiveCmd.Flags().BoolVar(&reviewAccessible, "accessible", os.Getenv("ACCESSIBLE") != "",
		"plain prompts for screen readers")
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review extracted event candidates",
	Long: `Approve or deny the events found by scans. Approving creates the event
in the configured calendar; if that fails the candidate stays pending.
Both decisions are final.`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	Args:  cobra.NoArgs,
	RunE:  runReviewList,
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <id>...",
	Short: "Add candidates to the calendar",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReviewApprove,
}

var reviewDenyCmd = &cobra.Command{
	Use:   "deny <id>...",
	Short: "Dismiss candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReviewDeny,
}

var reviewInteractiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Step through pending candidates",
	Args:  cobra.NoArgs,
	RunE:  runReviewInteractive,
}

// parseState maps the --state flag onto a filter; "all" means none.
func parseState(s string) (*model.ReviewState, error) {
	switch st := model.ReviewState(s); st {
	case model.ReviewPending, model.ReviewApproved, model.ReviewDenied:
		return &st, nil
	case "all", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown state %q", s)
	}
}

func runReviewList(cmd *cobra.Command, _ []string) error {
	state, err := parseState(reviewState)
	if err != nil {
		return err
	}

	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cs, err := a.Workflow.List(cmd.Context(), state)
	if err != nil {
		return err
	}

	if reviewJSON {
		return writeJSON(cmd, cs)
	}

	title := "All candidates"
	if state != nil {
		title = fmt.Sprintf("%s candidates", *state)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderCandidates(title, cs))
	return nil
}

func runReviewApprove(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var errs []error
	for _, id := range args {
		c, err := a.Workflow.Approve(cmd.Context(), id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Approved %s: %q on %s (calendar event %s)\n",
			id, c.EventName, ui.FormatWhen(c.ExtractedEvent), c.CalendarEventID)
	}
	return errors.Join(errs...)
}

func runReviewDeny(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var errs []error
	for _, id := range args {
		if err := a.Workflow.Deny(cmd.Context(), id); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Denied %s\n", id)
	}
	return errors.Join(errs...)
}

func runReviewInteractive(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	pending := model.ReviewPending
	cs, err := a.Workflow.List(ctx, &pending)
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("Nothing to review."))
		return nil
	}

	out := cmd.OutOrStdout()
	var approved, denied int
	for i, c := range cs {
		d, err := ui.PromptDecision(c, i+1, len(cs), reviewAccessible)
		if err != nil {
			return err
		}

		switch d {
		case ui.DecisionApprove:
			created, err := a.Workflow.Approve(ctx, c.SourceMessageID)
			if err != nil {
				fmt.Fprintf(out, "Could not approve %q, it stays pending: %v\n", c.EventName, err)
				continue
			}
			approved++
			fmt.Fprintf(out, "Added %q to the calendar (%s)\n", created.EventName, created.CalendarEventID)
		case ui.DecisionDeny:
			if err := a.Workflow.Deny(ctx, c.SourceMessageID); err != nil && !errors.Is(err, review.ErrNotPending) {
				return err
			}
			denied++
		case ui.DecisionQuit:
			fmt.Fprintf(out, "%d approved, %d denied.\n", approved, denied)
			return nil
		}
	}

	fmt.Fprintf(out, "%d approved, %d denied.\n", approved, denied)
	return nil
}
