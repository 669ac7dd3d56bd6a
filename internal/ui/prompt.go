package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/nhle/agendify/internal/model"
)

// Decision is the reviewer's answer for one candidate.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
	DecisionSkip    Decision = "skip"
	DecisionQuit    Decision = "quit"
)

// DecisionForm builds the huh form asking what to do with c. The
// answer is written to out when the form completes.
func DecisionForm(c model.Candidate, index, total int, out *Decision) *huh.Form {
	*out = DecisionSkip
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Candidate %d of %d", index, total)).
				Description(RenderCandidate(c)),
			huh.NewSelect[Decision]().
				Title("Add to calendar?").
				Options(
					huh.NewOption("Approve", DecisionApprove),
					huh.NewOption("Deny", DecisionDeny),
					huh.NewOption("Skip for now", DecisionSkip),
					huh.NewOption("Quit", DecisionQuit),
				).
				Value(out),
		),
	)
}

// PromptDecision runs DecisionForm on the terminal. Aborting the form
// (ctrl+c) yields DecisionQuit.
func PromptDecision(c model.Candidate, index, total int, accessible bool) (Decision, error) {
	var d Decision
	form := DecisionForm(c, index, total, &d).WithAccessible(accessible)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return DecisionQuit, nil
		}
		return "", fmt.Errorf("running review prompt: %w", err)
	}
	return d, nil
}
