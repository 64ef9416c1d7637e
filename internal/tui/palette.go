package tui

import "github.com/charmbracelet/lipgloss"

// Shared palette for the progress view and the command output.
var (
	ColorInk        = lipgloss.Color("#ECEFF4")
	ColorDim        = lipgloss.Color("#6C7689")
	ColorAccent     = lipgloss.Color("#8FBCBB")
	ColorAccentSoft = lipgloss.Color("#5E81AC")
	ColorSuccess    = lipgloss.Color("#A3BE8C")
	ColorWarn       = lipgloss.Color("#D08770")
)
