package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/storage"
	"github.com/vovakirdan/tui-threes/internal/storage/redis"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show board list sidebar
	sidebarWidth       = 20  // Width of board list sidebar
	maxScores          = 100 // Max scores to load
)

// ScoreRow is one line of a scoreboard.
type ScoreRow struct {
	Score  int
	Moves  int
	Player string
	When   time.Time
}

// ScoreSource is one selectable board.
type ScoreSource struct {
	Title string
	Load  func() ([]ScoreRow, error)
}

// LocalScores lists the top scores of the SQLite store.
func LocalScores(store *storage.Store) ScoreSource {
	return ScoreSource{
		Title: "Local",
		Load: func() ([]ScoreRow, error) {
			entries, err := store.TopScores(threes.ID, maxScores)
			if err != nil {
				return nil, err
			}
			rows := make([]ScoreRow, len(entries))
			for i, e := range entries {
				rows[i] = ScoreRow{Score: e.Score, Moves: e.Moves, Player: e.Player, When: e.CreatedAt}
			}
			return rows, nil
		},
	}
}

// SharedScores lists the top entries of the Redis leaderboard.
func SharedScores(board *redis.Leaderboard) ScoreSource {
	return ScoreSource{
		Title: "Shared",
		Load: func() ([]ScoreRow, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			entries, err := board.Top(ctx, maxScores)
			if err != nil {
				return nil, err
			}
			rows := make([]ScoreRow, len(entries))
			for i, e := range entries {
				rows[i] = ScoreRow{Score: e.Score, Moves: e.Moves, Player: e.Player, When: e.RecordedAt}
			}
			return rows, nil
		},
	}
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextBoard key.Binding
	PrevBoard key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextBoard, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextBoard, k.PrevBoard},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextBoard: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next board"),
		),
		PrevBoard: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev board"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	sources     []ScoreSource
	cursor      int
	rows        []ScoreRow
	loadErr     error
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewScoreboardModel creates a new scoreboard over the given sources.
func NewScoreboardModel(sources []ScoreSource, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		sources:     sources,
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar && len(sources) > 1,
	}

	m.table = m.createTable()
	m.loadScores()

	return m
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Score", Width: 8},
		{Title: "Moves", Width: 7},
		{Title: "Player", Width: 12},
		{Title: "Date", Width: 14},
	}

	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}
	if extra := tableWidth - 55; extra > 0 {
		columns[3].Width += min(extra, 12)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadScores loads the rows of the selected source.
func (m *ScoreboardModel) loadScores() {
	m.rows, m.loadErr = nil, nil
	if len(m.sources) > 0 {
		m.rows, m.loadErr = m.sources[m.cursor].Load()
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.rows))
	for i, s := range m.rows {
		player := s.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Moves),
			player,
			s.When.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextBoard):
			if len(m.sources) > 1 {
				m.cursor = (m.cursor + 1) % len(m.sources)
				m.loadScores()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevBoard):
			if len(m.sources) > 1 {
				m.cursor = (m.cursor + len(m.sources) - 1) % len(m.sources)
				m.loadScores()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar && len(m.sources) > 1
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "THREES HIGH SCORES"
	if len(m.sources) > 1 {
		title = fmt.Sprintf("THREES HIGH SCORES - %s", m.sources[m.cursor].Title)
	}

	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(centerText(m.renderTable(), m.width))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the scoreboard with a sidebar listing the boards.
func (m ScoreboardModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Boards\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, src := range m.sources {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + src.Title))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(sidebar.String()), "  ", m.renderTable())
}

// renderTable renders the bordered table, an error or the empty message.
func (m ScoreboardModel) renderTable() string {
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case len(m.sources) == 0:
		return tableStyle.Render(emptyStyle.Render("No score database configured."))
	case m.loadErr != nil:
		return tableStyle.Render(emptyStyle.Render("Could not load scores:\n" + m.loadErr.Error()))
	case len(m.rows) == 0:
		return tableStyle.Render(emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!"))
	}
	return tableStyle.Render(m.table.View())
}

// Rows returns the rows of the selected board.
func (m ScoreboardModel) Rows() []ScoreRow {
	return m.rows
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(sources []ScoreSource, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(sources, width, height),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
