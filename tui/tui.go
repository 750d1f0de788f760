// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Interactive pipeline board with keyboard stage moves, a deal editor and a dashboard
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"github.com/harperreed/dealboard/pipeline"
	"go.uber.org/zap"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewEdit
	ViewDashboard
)

// Options wires the model to its data.
type Options struct {
	DB     *db.Database
	Logger *zap.Logger
	Now    func() time.Time
}

// Model is the main bubbletea model.
//
// Every store call runs as a tea.Cmd tagged with the generation that issued
// it. Reloading or leaving a view starts a new generation and cancels the
// old one's context, so late results of abandoned work are dropped instead
// of applied.
type Model struct {
	db     *db.Database
	board  *pipeline.Board
	notes  *notify.Recorder
	logger *zap.Logger
	now    func() time.Time

	viewMode ViewMode

	gen    int
	ctx    context.Context
	cancel context.CancelFunc
	busy   bool

	// Board cursor
	col int
	row int

	edit      *editForm
	dashboard string

	status      string
	statusLevel notify.Level
	loadErr     error

	width  int
	height int
}

// NewModel creates a new TUI model. Call Init to load the board.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notes := &notify.Recorder{}
	m := Model{
		db:     opts.DB,
		notes:  notes,
		logger: logger,
		now:    now,
		width:  100,
		height: 30,
	}
	m.board = pipeline.NewBoard(opts.DB.Deals, notify.Tee{notes, notify.LogNotifier{Logger: logger}},
		pipeline.WithLogger(logger), pipeline.WithClock(now))
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Messages carry the generation of the command that produced them.
type (
	boardLoadedMsg struct {
		gen int
		err error
	}
	dealMovedMsg struct {
		gen    int
		dealID int
		deal   models.Deal
		err    error
	}
	dealSavedMsg struct {
		gen  int
		deal models.Deal
		err  error
	}
	dashboardMsg struct {
		gen  int
		text string
		err  error
	}
)

func (m Model) Init() tea.Cmd {
	return m.loadBoard()
}

// nextGeneration abandons in-flight work.
func (m *Model) nextGeneration() {
	m.cancel()
	m.gen++
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.busy = false
}

func (m Model) loadBoard() tea.Cmd {
	ctx, gen, board := m.ctx, m.gen, m.board
	return func() tea.Msg {
		return boardLoadedMsg{gen: gen, err: board.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case boardLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		m.loadErr = msg.err
		if msg.err != nil {
			m.setStatus(notify.LevelFailure, notify.Message(msg.err))
		}
		m.clampCursor()
		return m, nil
	case dealMovedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		m.takeNote(msg.err)
		if msg.err == nil {
			m.follow(msg.deal)
		}
		m.clampCursor()
		return m, nil
	case dealSavedMsg:
		return m.handleSaved(msg)
	case dashboardMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.dashboard = notify.Message(msg.err)
		} else {
			m.dashboard = msg.text
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewEdit:
		return m.renderEditView()
	case ViewDashboard:
		return m.renderDashboardView()
	}
	return m.renderBoardView()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	}
	return m.handleBoardKeys(msg)
}

// takeNote shows the latest board notification, or err when the board
// stayed silent.
func (m *Model) takeNote(err error) {
	notes := m.notes.Drain()
	if len(notes) > 0 {
		last := notes[len(notes)-1]
		m.setStatus(last.Level, last.Message)
		return
	}
	if err != nil {
		m.setStatus(notify.LevelFailure, notify.Message(err))
	}
}

func (m *Model) setStatus(level notify.Level, message string) {
	m.statusLevel = level
	m.status = message
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("170"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusLevel == notify.LevelFailure {
		return failureStyle.Render("✗ " + m.status)
	}
	return successStyle.Render("✓ " + m.status)
}
