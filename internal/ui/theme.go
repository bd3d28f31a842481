package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/droidtail/droidtail/internal/record"
)

// Theme groups the lipgloss styles used across the views.
type Theme struct {
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Border    lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
	Muted     lipgloss.Style
	Paused    lipgloss.Style
	Running   lipgloss.Style

	levels [record.LevelError + 1]lipgloss.Style
}

// DefaultTheme is tuned for dark terminal backgrounds.
func DefaultTheme() Theme {
	t := Theme{
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true).Padding(0, 1),
		Border:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Paused:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Running:   lipgloss.NewStyle().Foreground(lipgloss.Color("84")).Bold(true),
	}
	t.levels[record.LevelVerbose] = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	t.levels[record.LevelDebug] = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	t.levels[record.LevelInfo] = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	t.levels[record.LevelWarning] = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	t.levels[record.LevelError] = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	return t
}

// Level returns the style for a severity.
func (t Theme) Level(l record.Level) lipgloss.Style {
	if l < record.LevelVerbose || l > record.LevelError {
		return t.Muted
	}
	return t.levels[l]
}
