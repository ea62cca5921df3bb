package ui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette.
var (
	colorGreen  = lipgloss.Color("#a6e3a1")
	colorRed    = lipgloss.Color("#f38ba8")
	colorYellow = lipgloss.Color("#f9e2af")
	colorTeal   = lipgloss.Color("#94e2d5")
	colorMuted  = lipgloss.Color("#5a6278")
	colorBright = lipgloss.Color("#cdd6f4")
)

var (
	styleIconDone     = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconFailed   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconSkipped  = lipgloss.NewStyle().Foreground(colorMuted)
	styleWarning      = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim          = lipgloss.NewStyle().Foreground(colorMuted)
	styleRate         = lipgloss.NewStyle().Foreground(colorTeal)
	stylePercent      = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	styleProgressFill = lipgloss.NewStyle().Foreground(colorGreen)
)
