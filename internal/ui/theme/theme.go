// Package theme holds the lipgloss styles used by the command-line output.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Card frames one question.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 1)

// Answer states
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Text)
)

var (
	statusReady      = lipgloss.NewStyle().Foreground(Success).Bold(true)
	statusProcessing = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	statusFailed     = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Status renders a READY/PROCESSING/FAILED badge.
func Status(s string) string {
	switch s {
	case "READY":
		return statusReady.Render(s)
	case "FAILED":
		return statusFailed.Render(s)
	default:
		return statusProcessing.Render(s)
	}
}
