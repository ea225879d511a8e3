package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#818cf8")).Width(9)
	markupStyle  = lipgloss.NewStyle().Faint(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fb7185"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	emphasis     = lipgloss.NewStyle().Bold(true).Underline(true)
	modeStyle    = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#4c1d95")).Foreground(lipgloss.Color("#f5f3ff"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6d28d9")).Padding(0, 1)
)
