package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bubble-duel/internal/storage"
)

// DefaultHistoryLimit is how many matches the history screen loads.
const DefaultHistoryLimit = 100

// HistorySource reads finished matches.
type HistorySource interface {
	RecentMatches(ctx context.Context, limit int) ([]storage.MatchRecord, error)
	Stats(ctx context.Context) (storage.Stats, error)
}

var _ HistorySource = (*storage.Store)(nil)

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Quit}}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "close"),
		),
	}
}

// HistoryModel is the Bubble Tea model for the match history screen.
type HistoryModel struct {
	records  []storage.MatchRecord
	stats    storage.Stats
	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history screen over already loaded records.
func NewHistoryModel(records []storage.MatchRecord, stats storage.Stats, width, height int) HistoryModel {
	m := HistoryModel{
		records: records,
		stats:   stats,
		help:    help.New(),
		keys:    DefaultHistoryKeyMap(),
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	return m
}

// LoadHistory reads up to limit recent matches and the aggregate stats.
func LoadHistory(ctx context.Context, src HistorySource, limit int) ([]storage.MatchRecord, storage.Stats, error) {
	records, err := src.RecentMatches(ctx, limit)
	if err != nil {
		return nil, storage.Stats{}, err
	}
	stats, err := src.Stats(ctx)
	if err != nil {
		return nil, storage.Stats{}, err
	}
	return records, stats, nil
}

// historyColumns are sized for an 80 column terminal.
func historyColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 12},
		{Title: "Result", Width: 6},
		{Title: "Reason", Width: 10},
		{Title: "Gems", Width: 7},
		{Title: "Score", Width: 11},
		{Title: "Time", Width: 5},
		{Title: "Level", Width: 6},
	}
}

// historyRows formats records one row each, newest first as given.
func historyRows(records []storage.MatchRecord) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		result := "LOSS"
		if r.PlayerWon() {
			result = "WIN"
		}
		rows[i] = table.Row{
			r.StartedAt.Format("Jan 02 15:04"),
			result,
			r.Reason,
			fmt.Sprintf("%d-%d", r.PlayerGems, r.OpponentGems),
			fmt.Sprintf("%d-%d", r.PlayerScore, r.OpponentScore),
			formatClock(r.Duration),
			r.Difficulty,
		}
	}
	return rows
}

// createTable builds the styled match table.
func (m *HistoryModel) createTable() table.Model {
	height := m.height - 10 // Title, stats, borders and help
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithRows(historyRows(m.records)),
		table.WithFocused(true),
		table.WithHeight(height),
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

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.MarginBottom(1).Render("MATCH HISTORY"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(summarizeStats(m.stats)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.records) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No matches recorded yet.\nPlay a duel to start your history!")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// summarizeStats renders the aggregate line above the table.
func summarizeStats(st storage.Stats) string {
	if st.Matches == 0 {
		return "no matches played"
	}
	line := fmt.Sprintf("%d played   %d won   %d lost   best score %d   avg gems %.1f   avg time %s",
		st.Matches, st.Wins, st.Losses, st.BestScore, st.AvgGems, formatClock(st.AvgDuration))

	reasons := make([]string, 0, len(st.ByReason))
	for reason := range st.ByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for i, reason := range reasons {
		reasons[i] = fmt.Sprintf("%s %d", reason, st.ByReason[reason])
	}
	if len(reasons) > 0 {
		line += "\n" + strings.Join(reasons, "   ")
	}
	return line
}

// RunHistory loads the history from src and shows it until the user closes it.
func RunHistory(ctx context.Context, src HistorySource, width, height int) error {
	records, stats, err := LoadHistory(ctx, src, DefaultHistoryLimit)
	if err != nil {
		return err
	}
	p := tea.NewProgram(
		NewHistoryModel(records, stats, width, height),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}
