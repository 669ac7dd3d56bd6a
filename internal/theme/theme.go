package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section headers.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// CardStyle wraps one candidate.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is the event name on a card.
var TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)

// LabelStyle is a field label on a card.
var LabelStyle = lipgloss.NewStyle().Foreground(ColorGray).Width(10)

// ValueStyle is a field value on a card.
var ValueStyle = lipgloss.NewStyle().Foreground(ColorWhite)

// HelpStyle is used for hints and empty-state text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// StateStyle returns a color-coded style for a review state.
func StateStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch state {
	case "pending":
		return base.Foreground(ColorYellow)
	case "approved":
		return base.Foreground(ColorGreen)
	case "denied":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// ConfidenceStyle returns a color-coded style for an extraction
// confidence label.
func ConfidenceStyle(confidence string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch confidence {
	case "High":
		return base.Foreground(ColorGreen)
	case "Medium":
		return base.Foreground(ColorYellow)
	case "Low":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// SourceLabelStyle returns a color-coded style for an extraction source.
func SourceLabelStyle(source string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch source {
	case "AI":
		return base.Foreground(ColorMagenta)
	case "Pattern Matching":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
