package console

import "github.com/charmbracelet/lipgloss"

var (
	cAccent  = lipgloss.Color("39")
	cAccent2 = lipgloss.Color("205")
	cMuted   = lipgloss.Color("241")
	cOK      = lipgloss.Color("10")
	cWarn    = lipgloss.Color("214")
	cErr     = lipgloss.Color("196")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(cAccent2)
	labelStyle    = lipgloss.NewStyle().Width(12).Foreground(cMuted)
	focusLabel    = labelStyle.Foreground(cAccent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(cAccent).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(cMuted)
	mutedStyle    = lipgloss.NewStyle().Foreground(cMuted)
	okStyle       = lipgloss.NewStyle().Foreground(cOK)
	warnStyle     = lipgloss.NewStyle().Foreground(cWarn)
	errStyle      = lipgloss.NewStyle().Foreground(cErr).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cMuted).
			Padding(0, 1)
)
