package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/droidtail/droidtail/internal/core"
	"github.com/droidtail/droidtail/internal/record"
)

// chromeHeight is the vertical space the tabs, status, and help rows take
// away from the content viewport.
const chromeHeight = 4

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var content string
	switch m.currentView {
	case ViewLogs:
		content = m.viewport.View()
	case ViewStats:
		content = m.statsView()
	case ViewStorage:
		content = m.storageView()
	}

	return strings.Join([]string{
		m.tabsView(),
		content,
		m.statusView(),
		m.helpView(),
	}, "\n")
}

func (m Model) tabsView() string {
	titles := []string{"Logs", "Stats", "Storage"}
	parts := make([]string, len(titles))
	for i, title := range titles {
		style := m.theme.Tab
		if View(i) == m.currentView {
			style = m.theme.TabActive
		}
		parts[i] = style.Render(fmt.Sprintf("%d:%s", i+1, title))
	}

	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	state := m.theme.Running.Render(strings.ToUpper(m.state.String()))
	if m.state == core.StatePaused {
		state = m.theme.Paused.Render("PAUSED")
	}

	gap := m.width - lipgloss.Width(tabs) - lipgloss.Width(state)
	if gap < 1 {
		gap = 1
	}
	return tabs + strings.Repeat(" ", gap) + state
}

func (m Model) statsView() string {
	s := m.stats
	lines := []string{
		"",
		"  Log statistics",
		"",
		fmt.Sprintf("  Errors    %8d", s.PerLevel[record.LevelError]),
		fmt.Sprintf("  Warnings  %8d", s.PerLevel[record.LevelWarning]),
		fmt.Sprintf("  Info      %8d", s.PerLevel[record.LevelInfo]),
		fmt.Sprintf("  Debug     %8d", s.PerLevel[record.LevelDebug]),
		fmt.Sprintf("  Verbose   %8d", s.PerLevel[record.LevelVerbose]),
		"",
		fmt.Sprintf("  Total ingested  %8d", s.Ingested),
		fmt.Sprintf("  Parse failures  %8d", s.ParseFailures),
		fmt.Sprintf("  Cutoff skipped  %8d", s.SkippedByCutoff),
		fmt.Sprintf("  History held    %8d / %d", len(m.snapshot), m.core.History().Cap()),
	}
	return m.pad(strings.Join(lines, "\n"))
}

func (m Model) storageView() string {
	if !m.archiveOK {
		return m.pad("\n  Archival disabled\n\n  " +
			m.theme.Muted.Render("Enable it in the [archive] config section."))
	}

	st := m.archive
	lines := []string{
		"",
		"  Archive status",
		"",
		fmt.Sprintf("  Current file   %s", filepath.Base(st.CurrentFile)),
		fmt.Sprintf("  Current bytes  %d", st.CurrentBytes),
		fmt.Sprintf("  Total bytes    %d", st.TotalBytes),
		fmt.Sprintf("  Files          %d", st.FileCount),
		fmt.Sprintf("  Written        %d", st.Written),
		fmt.Sprintf("  Dropped        %d", st.Dropped),
	}
	if st.LastErr != nil {
		lines = append(lines, "", "  "+m.theme.Paused.Render("storage error: "+st.LastErr.Error()))
	}
	return m.pad(strings.Join(lines, "\n"))
}

// pad stretches content to the viewport height so the status row stays put.
func (m Model) pad(content string) string {
	lines := strings.Count(content, "\n") + 1
	if missing := m.viewport.Height - lines; missing > 0 {
		content += strings.Repeat("\n", missing)
	}
	return content
}

func (m Model) statusView() string {
	if m.searching {
		return m.theme.Status.Render("Search: " + m.searchInput.View())
	}

	cfg := m.core.Filter()
	chips := make([]string, 0, int(record.LevelError)+1)
	for l := record.LevelError; l >= record.LevelVerbose; l-- {
		if cfg.Levels[l] {
			chips = append(chips, m.theme.Level(l).Render(l.Letter()))
		} else {
			chips = append(chips, m.theme.Muted.Render("-"))
		}
	}

	mode := "TAIL"
	if !m.follow {
		mode = "SCROLL"
	}
	status := fmt.Sprintf("[%s] %s | %d/%d visible", strings.Join(chips, " "), mode, len(m.visible), len(m.snapshot))
	if cfg.Search != "" {
		status += fmt.Sprintf(" | search %q", cfg.Search)
	}
	if m.archiveOK && m.archive.LastErr != nil {
		status += " | " + m.theme.Paused.Render("archive failing")
	}
	return m.theme.Status.Render(status)
}

func (m Model) helpView() string {
	return m.theme.Help.Render("1-3: views | space: pause | t: tail | /: search | e/w/i/d/v: levels | g/G: first/last | q: quit")
}
