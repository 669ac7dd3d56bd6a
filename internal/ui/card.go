// Package ui renders candidates for the terminal and prompts for review
// decisions.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/theme"
)

// FormatWhen renders an event's date, time and timezone on one line.
func FormatWhen(ev model.ExtractedEvent) string {
	date := model.Deref(ev.Date)
	if date == "" {
		return "no date"
	}
	parts := []string{date}
	if t := model.Deref(ev.Time); t != "" {
		parts = append(parts, t)
		if tz := model.Deref(ev.Timezone); tz != "" {
			parts = append(parts, tz)
		}
	} else {
		parts = append(parts, "(all day)")
	}
	return strings.Join(parts, " ")
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		theme.LabelStyle.Render(label),
		theme.ValueStyle.Render(value),
	)
}

// RenderCandidate renders c as a bordered card.
func RenderCandidate(c model.Candidate) string {
	lines := []string{
		theme.TitleStyle.Render(c.EventName) + "  " +
			theme.StateStyle(string(c.State)).Render(string(c.State)),
		field("When", FormatWhen(c.ExtractedEvent)),
	}
	if loc := model.Deref(c.Location); loc != "" {
		lines = append(lines, field("Where", loc))
	}
	lines = append(lines,
		field("From", c.SourceFrom),
		field("Subject", c.SourceSubject),
		field("Id", c.SourceMessageID),
		theme.LabelStyle.Render("Found by")+
			theme.SourceLabelStyle(string(c.Source)).Render(string(c.Source))+" "+
			theme.ConfidenceStyle(string(c.Confidence)).Render(fmt.Sprintf("(%s)", c.Confidence)),
	)
	if c.CalendarEventID != "" {
		lines = append(lines, field("Calendar", c.CalendarEventID))
	}
	if c.Description != "" && c.Description != c.SourceSubject {
		lines = append(lines, "", theme.HelpStyle.Render(c.Description))
	}
	return theme.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderCandidates renders every candidate under a header.
func RenderCandidates(title string, cs []model.Candidate) string {
	if len(cs) == 0 {
		return Muted("No candidates.")
	}
	out := []string{theme.HeaderStyle.Render(fmt.Sprintf("%s (%d)", title, len(cs)))}
	for _, c := range cs {
		out = append(out, RenderCandidate(c))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// Muted renders s as a dimmed hint.
func Muted(s string) string {
	return theme.HelpStyle.Render(s)
}
