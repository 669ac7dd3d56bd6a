package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/agendify/internal/model"
)

func textOf(subject, body string) Text {
	return Normalize(model.EmailMessage{Subject: subject, BodyText: body})
}

func TestHasEventSignal(t *testing.T) {
	assert.True(t, HasEventSignal(textOf("Team standup", "")))
	assert.True(t, HasEventSignal(textOf("", "Lunch at 12:30 pm?")))
	assert.True(t, HasEventSignal(textOf("", "can we do thursday")))
	assert.True(t, HasEventSignal(textOf("Meetings next week", "")))
	assert.False(t, HasEventSignal(textOf("Invoice #4411", "Please find the invoice attached.")))
	assert.False(t, HasEventSignal(textOf("", "We will recall the product.")))
}

func TestCleanSubject(t *testing.T) {
	assert.Equal(t, "Team Lunch", CleanSubject("Re: Team Lunch!"))
	assert.Equal(t, "Re: Budget", CleanSubject("RE: Re: Budget"))
	assert.Equal(t, "Offsite", CleanSubject("  Fwd:Offsite  "))
	assert.Equal(t, "", CleanSubject("Re:"))
}

func TestExtractEventName(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"subject wins", "Test Meeting", "We have a meeting at 3 PM tomorrow.", "Test Meeting"},
		{"reply prefix stripped", "Re: Design Review.", "", "Design Review"},
		{"we have phrase", "Re:", "We have a quarterly planning meeting on friday.", "quarterly planning"},
		{"anchored phrase", "", "The launch party at 5 pm in the atrium.", "launch party"},
		{"capitalized run", "", "Hello,\nPlease come to Design Review friday", "Design Review"},
		{"raw subject fallback", "Hi", "call me", "Hi"},
		{"literal fallback", "", "tomorrow", "Meeting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEventName(textOf(tt.subject, tt.body)))
		})
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"conference room", "Meeting at 6:40 PM in the conference room.", "the conference room"},
		{"floor", "See you on the 5th floor lounge at noon.", "5th floor lounge"},
		{"room token", "Meet in room 204 tomorrow.", "room 204"},
		{"location label", "Location: Main Hall, building 2", "main hall"},
		{"venue label", "Venue: the old mill", "the old mill"},
		{"noun sentence", "Drinks after work by the cafeteria bar.", "drinks after work by the cafeteria bar"},
		{"time clause rejected", "We meet at 3 pm tomorrow.", ""},
		{"too short", "Meet in A1.", ""},
		{"noun inside available", "Quick sync. Let me know if you are available", ""},
		{"noun inside shall", "We shall decide later", ""},
		{"noun inside collaborate and officer", "Please collaborate with the officer", ""},
		{"whole-word noun", "Quick sync. Drop by my office after lunch", "drop by my office after lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLocation(textOf("", tt.body)))
		})
	}
}

func TestExtractDescription(t *testing.T) {
	assert.Equal(t, "session will be held in Hall B.",
		ExtractDescription(textOf("Kickoff", "Hi all. The session will be held in Hall B. Bring laptops.")))
	assert.Equal(t, "The review is scheduled for next week.",
		ExtractDescription(textOf("Kickoff", "The review is scheduled for next week. Thanks")))
	assert.Equal(t, "Meeting at 12 PM EST on Monday.",
		ExtractDescription(textOf("Another Test", "Meeting at 12 PM EST on Monday.")))
	assert.Equal(t, "Test Meeting",
		ExtractDescription(textOf("Test Meeting", "We have a meeting at 3 PM tomorrow. Please come.")))
}
