package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	accentColor = lipgloss.Color("#33CC33")
	errorColor  = lipgloss.Color("#EF4444")
	mutedColor  = lipgloss.Color("#6B7280")
	textColor   = lipgloss.Color("#F9FAFB")
	borderColor = lipgloss.Color("#374151")
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	symbolStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	sparkStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)
