package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the storefront's terminal palette.
type Styles struct {
	Header   lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Cursor   lipgloss.Style
	Muted    lipgloss.Style
	SoldOut  lipgloss.Style
	Panel    lipgloss.Style
	Price    lipgloss.Style
	Compare  lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles returns the basalt-and-sand theme.
func DefaultStyles() Styles {
	sand := lipgloss.Color("180")
	basalt := lipgloss.Color("236")
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(sand).MarginBottom(1),
		Tab:      lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		TabOn:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(basalt).Background(sand),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(sand),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		SoldOut:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(sand).Padding(0, 1),
		Price:    lipgloss.NewStyle().Bold(true),
		Compare:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		Selected: lipgloss.NewStyle().Bold(true).Underline(true),
	}
}
