package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/agendify/internal/model"
)

func candidate() model.Candidate {
	return model.Candidate{
		ExtractedEvent: model.ExtractedEvent{
			EventName:       "Design Review",
			Date:            model.StringPtr("2025-08-21"),
			Time:            model.StringPtr("3:00 pm"),
			Timezone:        model.StringPtr("EST"),
			Location:        model.StringPtr("room 204"),
			Description:     "The design review will be held in room 204",
			Confidence:      model.ConfidenceHigh,
			Source:          model.SourcePatternMatching,
			SourceMessageID: "4711",
			SourceSubject:   "Design Review",
			SourceFrom:      "Ada <ada@example.com>",
		},
		State: model.ReviewPending,
	}
}

func TestFormatWhen(t *testing.T) {
	ev := candidate().ExtractedEvent
	assert.Equal(t, "2025-08-21 3:00 pm EST", FormatWhen(ev))

	ev.Timezone = nil
	assert.Equal(t, "2025-08-21 3:00 pm", FormatWhen(ev))

	ev.Time = nil
	assert.Equal(t, "2025-08-21 (all day)", FormatWhen(ev))

	ev.Date = nil
	assert.Equal(t, "no date", FormatWhen(ev))
}

func TestRenderCandidate(t *testing.T) {
	out := RenderCandidate(candidate())

	for _, want := range []string{
		"Design Review", "pending", "2025-08-21 3:00 pm EST", "room 204",
		"Ada <ada@example.com>", "4711", "Pattern Matching", "(High)",
		"will be held in room 204",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Calendar")
}

func TestRenderCandidates_Empty(t *testing.T) {
	assert.Contains(t, RenderCandidates("Pending", nil), "No candidates.")
}

func TestDecisionFormDefaultsToSkip(t *testing.T) {
	d := DecisionApprove
	form := DecisionForm(candidate(), 1, 3, &d)
	assert.NotNil(t, form)
	assert.Equal(t, DecisionSkip, d)
}
