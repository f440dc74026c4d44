package tui

import "github.com/charmbracelet/lipgloss"

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	rosterEntryStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("252")).
				Foreground(lipgloss.Color("0"))

	statusStyle       = lipgloss.NewStyle().Bold(true)
	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	usernameStyle  = lipgloss.NewStyle().Bold(true)
	systemStyle    = lipgloss.NewStyle().Faint(true)

	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
