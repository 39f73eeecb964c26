package main

import "github.com/charmbracelet/lipgloss"

// Color palette for CLI output on dark terminal backgrounds.
const (
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorWarning = lipgloss.Color("#F59E0B")
)

var (
	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for completed builds and passing checks.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// WarningStyle is for platform advisories.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)
