package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/base-tetris/internal/core"
	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/session"
)

// Title is the game name shown on the start screen and top bar.
const Title = "Base Tetris"

// Tagline is shown under the title on the start screen.
const Tagline = "Stack • Clear • Win!"

// Sound is the audio surface the shell needs beyond what the controller
// drives.
type Sound interface {
	ToggleMute()
	Muted() bool
	Close() error
}

// Options configures a Model.
type Options struct {
	TickInterval time.Duration
	Logger       *log.Logger
}

// Model is the Bubble Tea model wrapping one session controller.
type Model struct {
	ctrl     *session.Controller
	sound    Sound
	keys     KeyMap
	help     help.Model
	board    *core.Screen
	queue    *core.Screen
	printer  *message.Printer
	interval time.Duration
	logger   *log.Logger
	width    int
	height   int
	notice   string
	quitting bool
}

// NewModel creates a model in the start screen.
func NewModel(ctrl *session.Controller, sound Sound, opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second / 60
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	h := help.New()
	h.ShowAll = false

	return Model{
		ctrl:     ctrl,
		sound:    sound,
		keys:     DefaultKeyMap().ForState(ctrl.State()),
		help:     h,
		board:    engine.NewBoardSurface(),
		queue:    engine.NewQueueSurface(),
		printer:  message.NewPrinter(language.English),
		interval: opts.TickInterval,
		logger:   opts.Logger,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		m.ctrl.Tick()
		m.keys = m.keys.ForState(m.ctrl.State())
		return m, tickCmd(m.interval)
	}

	return m, nil
}

// handleKey processes keyboard input. Which bindings are live depends on the
// session state, so illegal transitions cannot be requested.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.keys = m.keys.ForState(m.ctrl.State())

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.GoHome()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Mute):
		m.sound.ToggleMute()
		return m, nil

	case key.Matches(msg, m.keys.Start):
		m.notice = ""
		if err := m.ctrl.Start(); err != nil {
			m.logger.Error("cannot start session", "error", err)
			m.notice = "Could not start the game."
		}

	case key.Matches(msg, m.keys.Again):
		m.report(m.ctrl.Restart())

	case key.Matches(msg, m.keys.Pause):
		m.report(m.ctrl.TogglePause())

	case key.Matches(msg, m.keys.Home):
		m.ctrl.GoHome()

	default:
		if a := m.keys.Action(msg); a != engine.ActionNone {
			m.ctrl.Control(a)
		}
	}

	m.keys = m.keys.ForState(m.ctrl.State())
	return m, nil
}

func (m Model) report(err error) {
	if err != nil && !errors.Is(err, session.ErrNotMounted) {
		m.logger.Warn("control rejected", "error", err)
	}
}

// Controller returns the wrapped session controller.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	if m.ctrl.State() == session.NotStarted {
		body = m.viewStart()
	} else {
		body = m.viewGame()
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		body,
		"",
		helpStyle.Render(m.help.View(m.keys)),
	)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	playStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Padding(0, 3)
	bestStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	overlayStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("39")).Padding(1, 3).Align(lipgloss.Center)
	newBestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true).Blink(true)
)

func (m Model) viewStart() string {
	lines := []string{
		titleStyle.Render(strings.ToUpper(Title)),
		taglineStyle.Render(Tagline),
		"",
		playStyle.Render("▶ PLAY"),
		labelStyle.Render("press enter"),
	}
	if best := m.ctrl.Best(); best > 0 {
		lines = append(lines, "", bestStyle.Render("BEST: "+m.number(best)))
	}
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m Model) viewGame() string {
	obs := m.ctrl.Observed()

	top := lipgloss.JoinHorizontal(lipgloss.Center,
		labelStyle.Render("⌂ home"),
		"   ",
		titleStyle.Render(Title),
		"   ",
		labelStyle.Render(m.muteLabel()),
	)

	stats := lipgloss.JoinHorizontal(lipgloss.Center,
		m.stat("SCORE", m.number(obs.Score)),
		m.stat("LINES", m.number(obs.Lines)),
		m.stat("LEVEL", m.number(m.ctrl.Level())),
		m.stat("BEST", m.number(m.ctrl.Best())),
	)

	m.board.Clear()
	m.queue.Clear()
	if eng := m.ctrl.Engine(); eng != nil {
		eng.RenderBoard(m.board)
		eng.RenderQueue(m.queue)
	}

	board := RenderScreen(m.board)
	switch m.ctrl.State() {
	case session.Paused:
		board = m.overlay(m.viewPaused())
	case session.Lost:
		board = m.overlay(m.viewGameOver(obs))
	}

	queue := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		labelStyle.Render("NEXT"),
		RenderScreen(m.queue),
	))

	play := lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", queue)
	return lipgloss.JoinVertical(lipgloss.Center, top, stats, "", play)
}

func (m Model) stat(label, value string) string {
	return lipgloss.NewStyle().Padding(0, 2).Render(
		lipgloss.JoinVertical(lipgloss.Center, labelStyle.Render(label), valueStyle.Render(value)),
	)
}

func (m Model) muteLabel() string {
	if m.sound.Muted() {
		return "♪ off"
	}
	return "♪ on"
}

// overlay centers content over the board area.
func (m Model) overlay(content string) string {
	return lipgloss.Place(m.board.Width(), m.board.Height(), lipgloss.Center, lipgloss.Center,
		overlayStyle.Render(content))
}

func (m Model) viewPaused() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("PAUSED"),
		"",
		labelStyle.Render("press p to resume"),
	)
}

func (m Model) viewGameOver(obs engine.Snapshot) string {
	lines := []string{titleStyle.Render("GAME OVER")}
	if m.ctrl.NewBest() {
		lines = append(lines, newBestStyle.Render("New High Score!"))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Score: %s | Lines: %s", m.number(obs.Score), m.number(obs.Lines)),
		"",
		playStyle.Render("↻ PLAY AGAIN"),
		labelStyle.Render("press r"),
	)
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// number formats n with thousands separators.
func (m Model) number(n int) string {
	return m.printer.Sprintf("%d", n)
}

// Run starts the Bubble Tea program for ctrl. On exit the session is torn
// down and sound is released, whatever the outcome.
func Run(ctrl *session.Controller, sound Sound, opts Options) error {
	defer func() {
		ctrl.GoHome()
		if err := sound.Close(); err != nil && opts.Logger != nil {
			opts.Logger.Warn("cannot close audio", "error", err)
		}
	}()

	p := tea.NewProgram(
		NewModel(ctrl, sound, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
