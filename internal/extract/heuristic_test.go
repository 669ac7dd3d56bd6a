package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/agendify/internal/model"
)

func fixedClock() time.Time { return fixedNow }

func message(subject, body string) model.EmailMessage {
	return model.EmailMessage{
		ID:         "msg-1",
		Subject:    subject,
		From:       "Ada <ada@example.com>",
		ReceivedAt: time.Date(2025, time.August, 19, 17, 0, 0, 0, time.UTC),
		BodyText:   body,
	}
}

func TestHeuristic_Scenarios(t *testing.T) {
	h := NewHeuristic(WithClock(fixedClock))

	t.Run("meeting tomorrow", func(t *testing.T) {
		ev := h.Extract(message("Test Meeting", "We have a meeting at 3 PM tomorrow. Please come."))

		assert.Equal(t, "Test Meeting", ev.EventName)
		assert.Equal(t, "3:00 pm", model.Deref(ev.Time))
		assert.Equal(t, "2025-08-21", model.Deref(ev.Date))
		assert.Nil(t, ev.Timezone)
		assert.Equal(t, model.ConfidenceHigh, ev.Confidence)
		assert.Equal(t, model.SourcePatternMatching, ev.Source)
	})

	t.Run("next monday with zone", func(t *testing.T) {
		ev := h.Extract(message("Another Test", "Meeting at 12 PM EST on Monday."))

		assert.Equal(t, "12:00 pm", model.Deref(ev.Time))
		assert.Equal(t, "EST", model.Deref(ev.Timezone))
		assert.Equal(t, "2025-08-25", model.Deref(ev.Date))
		assert.Equal(t, "Meeting at 12 PM EST on Monday.", ev.Description)
	})

	t.Run("location", func(t *testing.T) {
		ev := h.Extract(message("Time Test", "Meeting at 6:40 PM in the conference room."))

		assert.Equal(t, "6:40 pm", model.Deref(ev.Time))
		require.NotNil(t, ev.Location)
		assert.Contains(t, *ev.Location, "conference room")
	})
}

func TestHeuristic_Provenance(t *testing.T) {
	msg := message("Test Meeting", "We have a meeting at 3 PM tomorrow.")
	ev := NewHeuristic(WithClock(fixedClock)).Extract(msg)

	assert.Equal(t, msg.ID, ev.SourceMessageID)
	assert.Equal(t, msg.Subject, ev.SourceSubject)
	assert.Equal(t, msg.From, ev.SourceFrom)
	assert.Equal(t, msg.ReceivedAt, ev.SourceDate)
}

func TestHeuristic_NoSignal(t *testing.T) {
	msg := message("Invoice #4411", "Please find the invoice attached.")
	ev := NewHeuristic(WithClock(fixedClock)).Extract(msg)

	assert.Equal(t, model.ConfidenceNone, ev.Confidence)
	assert.False(t, ev.HasEvent())
	assert.Empty(t, ev.EventName)
	assert.Nil(t, ev.Date)
	assert.Nil(t, ev.Time)
	assert.Nil(t, ev.Timezone)
	assert.Nil(t, ev.Location)
	assert.Equal(t, msg.ID, ev.SourceMessageID)
}

func TestHeuristic_NameNeverEmptyWhenSignalled(t *testing.T) {
	h := NewHeuristic(WithClock(fixedClock))
	inputs := []model.EmailMessage{
		message("", "tomorrow"),
		message("", "9/12"),
		message("Re:", "call"),
		message("  ", "standup at 09:30"),
	}

	for _, msg := range inputs {
		ev := h.Extract(msg)
		assert.True(t, ev.HasEvent(), "body %q", msg.BodyText)
		assert.NotEmpty(t, ev.EventName, "body %q", msg.BodyText)
	}
}

func TestHeuristic_Idempotent(t *testing.T) {
	h := NewHeuristic(WithClock(fixedClock))
	msg := message("Quarterly Review", "The review is scheduled for aug 27th 2025 at 10 am PST in room 12B.")

	first := h.Extract(msg)
	second := h.Extract(msg)
	assert.Equal(t, first, second)
	assert.Equal(t, "2025-08-27", model.Deref(first.Date))
	assert.Equal(t, "room 12b", model.Deref(first.Location))
}
