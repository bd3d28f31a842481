// Package ui provides the Bubble Tea terminal interface: a live log view
// over the core's history ring, plus statistics and archive status views.
//
// The UI is strictly a consumer. It pulls a ring snapshot and the counters
// on a fixed tick, applies the filter itself, and mutates the core only
// through its control surface (pause/resume/stop and filter updates). The
// core never pushes render events.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/droidtail/droidtail/internal/archive"
	"github.com/droidtail/droidtail/internal/core"
	"github.com/droidtail/droidtail/internal/record"
)

// View represents the current active view.
type View int

const (
	ViewLogs View = iota
	ViewStats
	ViewStorage
)

const defaultTick = 100 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context context.Context
	Core    *core.Core
	Tick    time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx  context.Context
	core *core.Core
	keys keyMap
	tick time.Duration

	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	viewport    viewport.Model
	follow      bool
	searchInput textinput.Model
	searching   bool

	snapshot  []record.Record
	visible   []record.Record
	stats     core.Stats
	state     core.State
	archive   archive.Status
	archiveOK bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 100

	return Model{
		ctx:         ctx,
		core:        opts.Core,
		keys:        defaultKeyMap(),
		tick:        tick,
		theme:       DefaultTheme(),
		currentView: ViewLogs,
		follow:      true,
		searchInput: ti,
	}
}

// Run blocks until the user quits or the context is cancelled.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd(m.tick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - chromeHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tick)
	}

	return m, nil
}

// refresh pulls the latest snapshot and counters and re-renders the log
// content. Filtering happens here, on the display's cadence.
func (m *Model) refresh() {
	if m.core == nil || !m.ready {
		return
	}
	m.snapshot = m.core.Snapshot()
	m.stats = m.core.Stats()
	m.state = m.core.State()
	m.archive, m.archiveOK = m.core.ArchiveStatus()

	cfg := m.core.Filter()
	m.visible = cfg.Apply(m.snapshot)

	if m.currentView == ViewLogs {
		var b strings.Builder
		for _, rec := range m.visible {
			b.WriteString(m.theme.Level(rec.Level).Render(formatLine(rec)))
			b.WriteByte('\n')
		}
		m.viewport.SetContent(b.String())
		if m.follow {
			m.viewport.GotoBottom()
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.core.Stop()
		return m, tea.Quit

	case key.Matches(msg, k.ViewLogs):
		m.currentView = ViewLogs
	case key.Matches(msg, k.ViewStats):
		m.currentView = ViewStats
	case key.Matches(msg, k.ViewStorage):
		m.currentView = ViewStorage

	case key.Matches(msg, k.Pause):
		if m.state == core.StatePaused {
			m.core.Resume()
		} else {
			m.core.Pause()
		}
		m.state = m.core.State()

	case key.Matches(msg, k.Follow):
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}

	case key.Matches(msg, k.Search):
		m.searching = true
		m.searchInput.SetValue(m.core.Filter().Search)
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, k.Escape):
		cfg := m.core.Filter()
		cfg.Search = ""
		m.core.SetFilter(cfg)
		m.refresh()

	case key.Matches(msg, k.ToggleError):
		m.toggleLevel(record.LevelError)
	case key.Matches(msg, k.ToggleWarning):
		m.toggleLevel(record.LevelWarning)
	case key.Matches(msg, k.ToggleInfo):
		m.toggleLevel(record.LevelInfo)
	case key.Matches(msg, k.ToggleDebug):
		m.toggleLevel(record.LevelDebug)
	case key.Matches(msg, k.ToggleVerbose):
		m.toggleLevel(record.LevelVerbose)

	case key.Matches(msg, k.Up):
		m.follow = false
		m.viewport.ScrollUp(1)
	case key.Matches(msg, k.Down):
		m.viewport.ScrollDown(1)
		if m.viewport.AtBottom() {
			m.follow = true
		}
	case key.Matches(msg, k.PageUp):
		m.follow = false
		m.viewport.PageUp()
	case key.Matches(msg, k.PageDown):
		m.viewport.PageDown()
		if m.viewport.AtBottom() {
			m.follow = true
		}
	case key.Matches(msg, k.Top):
		m.follow = false
		m.viewport.GotoTop()
	case key.Matches(msg, k.Bottom):
		m.follow = true
		m.viewport.GotoBottom()
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.searchInput.Blur()
		cfg := m.core.Filter()
		cfg.Search = ""
		m.core.SetFilter(cfg)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	cfg := m.core.Filter()
	cfg.Search = m.searchInput.Value()
	m.core.SetFilter(cfg)
	m.refresh()
	return m, cmd
}

func (m *Model) toggleLevel(l record.Level) {
	m.core.SetFilter(m.core.Filter().ToggleLevel(l))
	m.refresh()
}
