package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/base-tetris/internal/registry"
	"github.com/vovakirdan/base-tetris/internal/session"
	"github.com/vovakirdan/base-tetris/internal/storage"
)

// History is the session history the history screen reads.
type History interface {
	TopSessions(engineID string, limit int) ([]storage.SessionEntry, error)
	Stats(engineID string) (*storage.EngineStats, error)
}

const historyLimit = 100

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Sort   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Sort, k.Reload, k.Quit}
}

func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultHistoryKeyMap returns the default history bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by date"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel lists the finished sessions of one engine next to the best
// score on record and the aggregate stats.
type HistoryModel struct {
	store    History
	engine   registry.EngineInfo
	best     int
	sessions []storage.SessionEntry
	stats    *storage.EngineStats
	byDate   bool
	err      error

	printer *message.Printer
	table   table.Model
	help    help.Model
	keys    HistoryKeyMap
	width   int
	height  int
	done    bool
}

// NewHistoryModel loads the history of eng. store may be nil, in which case
// the screen only shows best.
func NewHistoryModel(store History, eng registry.EngineInfo, best, width, height int) HistoryModel {
	m := HistoryModel{
		store:   store,
		engine:  eng,
		best:    best,
		printer: message.NewPrinter(language.English),
		help:    help.New(),
		keys:    DefaultHistoryKeyMap(),
		width:   width,
		height:  height,
	}
	m.table = newHistoryTable(historyRows(height))
	m.load()
	return m
}

// historyRows is the table height that leaves room for the title, summary,
// selection line and help.
func historyRows(height int) int {
	if rows := height - 14; rows > 3 {
		return rows
	}
	return 3
}

func newHistoryTable(rows int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Score", Width: 10},
			{Title: "Lines", Width: 6},
			{Title: "Level", Width: 6},
			{Title: "Played", Width: 13},
		}),
		table.WithFocused(true),
		table.WithHeight(rows),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("27")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load fetches sessions and stats. A read error is kept for the view; the
// best score still shows.
func (m *HistoryModel) load() {
	m.sessions, m.stats, m.err = nil, nil, nil
	if m.store != nil {
		m.sessions, m.err = m.store.TopSessions(m.engine.ID, historyLimit)
		if m.err == nil {
			m.stats, m.err = m.store.Stats(m.engine.ID)
		}
	}
	m.arrange()
}

// arrange orders the sessions and rebuilds the table rows. Rank always
// reflects score, so a session keeps its number when sorted by date.
func (m *HistoryModel) arrange() {
	ranked := make([]storage.SessionEntry, len(m.sessions))
	copy(ranked, m.sessions)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	rank := make(map[string]int, len(ranked))
	for i, s := range ranked {
		rank[s.ID] = i + 1
	}

	if m.byDate {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].CreatedAt.After(ranked[j].CreatedAt) })
	}
	m.sessions = ranked

	rows := make([]table.Row, len(ranked))
	for i, s := range ranked {
		rows[i] = table.Row{
			fmt.Sprintf("%d", rank[s.ID]),
			m.printer.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Lines),
			fmt.Sprintf("%d", session.Level(s.Lines)),
			s.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Selected returns the highlighted session, if any.
func (m HistoryModel) Selected() (storage.SessionEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return storage.SessionEntry{}, false
	}
	return m.sessions[i], true
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Sort):
			m.byDate = !m.byDate
			if m.byDate {
				m.keys.Sort.SetHelp("s", "sort by score")
			} else {
				m.keys.Sort.SetHelp("s", "sort by date")
			}
			m.arrange()
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(historyRows(msg.Height))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) View() string {
	if m.done {
		return ""
	}

	summary := lipgloss.JoinHorizontal(lipgloss.Center,
		m.stat("BEST", m.printer.Sprintf("%d", m.best)),
		m.stat("SESSIONS", m.printer.Sprintf("%d", m.sessionCount())),
		m.stat("AVERAGE", m.average()),
		m.stat("LINES", m.printer.Sprintf("%d", m.totalLines())),
	)

	var body string
	switch {
	case m.err != nil:
		body = noticeStyle.Render("Could not read history.")
	case len(m.sessions) == 0:
		body = labelStyle.Render("No sessions recorded yet.\nPlay a game to set a high score!")
	default:
		body = panelStyle.Render(m.table.View())
	}

	lines := []string{
		titleStyle.Render("HISTORY · " + m.engine.Title),
		"",
		summary,
		"",
		body,
	}
	if s, ok := m.Selected(); ok {
		lines = append(lines, "", labelStyle.Render(m.printer.Sprintf(
			"%d points · %d lines · level %d · %s",
			s.Score, s.Lines, session.Level(s.Lines), s.CreatedAt.Local().Format("2006-01-02 15:04"),
		)))
	}
	lines = append(lines, "", helpStyle.Render(m.help.View(m.keys)))

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m HistoryModel) stat(label, value string) string {
	return lipgloss.NewStyle().Padding(0, 2).Render(
		lipgloss.JoinVertical(lipgloss.Center, labelStyle.Render(label), valueStyle.Render(value)),
	)
}

func (m HistoryModel) sessionCount() int {
	if m.stats == nil {
		return 0
	}
	return m.stats.Sessions
}

func (m HistoryModel) totalLines() int64 {
	if m.stats == nil {
		return 0
	}
	return m.stats.TotalLines
}

func (m HistoryModel) average() string {
	if m.stats == nil || m.stats.Sessions == 0 {
		return "-"
	}
	return m.printer.Sprintf("%.0f", m.stats.AvgScore)
}

// RunHistory shows the history screen until the user quits.
func RunHistory(store History, eng registry.EngineInfo, best, width, height int) error {
	_, err := tea.NewProgram(
		NewHistoryModel(store, eng, best, width, height),
		tea.WithAltScreen(),
	).Run()
	return err
}
