package ui

import "github.com/charmbracelet/lipgloss"

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette holds the lipgloss styles shared across the dashboard views.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style

	tab       lipgloss.Style
	tabActive lipgloss.Style
}

func NewPalette(title, ok, err, warn, help string) Palette {
	return Palette{
		title:     NewBold(title),
		ok:        NewStyle(ok),
		err:       NewStyle(err),
		warn:      NewStyle(warn),
		help:      NewStyle(help),
		tab:       NewStyle(help).Padding(0, 1),
		tabActive: NewBold(title).Padding(0, 1).Underline(true),
	}
}

func NewStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

func NewBold(hex string) lipgloss.Style {
	return NewStyle(hex).Bold(true)
}

func NewEm(hex string) lipgloss.Style {
	return NewStyle(hex).Italic(true)
}
