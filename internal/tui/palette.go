package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorText  = lipgloss.Color("#ECEFF4")
	ColorFaint = lipgloss.Color("#616E88")
	ColorTitle = lipgloss.Color("#8FBCBB")
	ColorBar   = lipgloss.Color("#5E81AC")
	ColorOK    = lipgloss.Color("#A3BE8C")
	ColorFail  = lipgloss.Color("#BF616A")
)
