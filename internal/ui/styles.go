package ui

import "github.com/charmbracelet/lipgloss"

var (
	cPrimary = lipgloss.Color("#7D56F4")
	cAccent  = lipgloss.Color("#FF79C6")
	cDim     = lipgloss.Color("#6272A4")
	cSuccess = lipgloss.Color("#50FA7B")
	cError   = lipgloss.Color("#FF5555")
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	styleInstalled = lipgloss.NewStyle().Foreground(cDim).Italic(true)
	styleSpinner   = lipgloss.NewStyle().Foreground(cAccent)
	styleSuccess   = lipgloss.NewStyle().Foreground(cSuccess)
	styleError     = lipgloss.NewStyle().Foreground(cError)
	styleStatus    = lipgloss.NewStyle().Foreground(cDim)
	styleContainer = lipgloss.NewStyle().Padding(1, 2)
)
