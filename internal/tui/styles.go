package tui

import "github.com/charmbracelet/lipgloss"

var (
	Crimson = lipgloss.Color("#c0392b")
	Slate   = lipgloss.Color("#2c3e50")
	Cloud   = lipgloss.Color("#ecf0f1")
	Muted   = lipgloss.Color("#95a5a6")
	Green   = lipgloss.Color("#27ae60")
)

type Styles struct {
	Sidebar    lipgloss.Style
	Item       lipgloss.Style
	ActiveItem lipgloss.Style
	Title      lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(Slate).
			PaddingRight(1),
		Item:       lipgloss.NewStyle().Foreground(Muted),
		ActiveItem: lipgloss.NewStyle().Foreground(Cloud).Background(Crimson).Bold(true),
		Title: lipgloss.NewStyle().
			Foreground(Crimson).
			Bold(true).
			PaddingLeft(1),
		Status: lipgloss.NewStyle().Foreground(Green),
		Error:  lipgloss.NewStyle().Foreground(Crimson).Bold(true),
		Help:   lipgloss.NewStyle().Foreground(Muted),
	}
}
