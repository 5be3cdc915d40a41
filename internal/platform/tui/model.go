package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/duel"
)

// Model is the Bubble Tea model wrapping one duel.
// Every tick runs one duel frame with the keys pressed since the last one.
type Model struct {
	duel     *duel.Duel
	config   core.RuntimeConfig
	keys     KeyMap
	help     help.Model
	input    core.InputFrame
	started  bool
	quitting bool
}

// NewModel creates a model for d. The match starts on the first tick.
func NewModel(d *duel.Duel, cfg core.RuntimeConfig) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = defaultTickRate
	}
	h := help.New()
	h.Width = cfg.ScreenW
	return Model{
		duel:   d,
		config: cfg,
		keys:   DefaultKeyMap(),
		help:   h,
		input:  core.NewInputFrame(),
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKey queues the key's action for the next frame.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	// Leaving is only allowed between rallies.
	if action == core.ActionBack {
		st := m.duel.Store.FlowState()
		if st.IsTerminal() || st == core.StatePaused {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if action != core.ActionNone {
		m.input.Set(action)
	}
	return m, nil
}

// handleResize processes terminal resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.help.Width = msg.Width
	return m, nil
}

// handleTick runs one duel frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if !m.started {
		m.duel.Start()
		m.started = true
	}
	m.duel.Step(m.duel.Now(), m.input)
	m.input.Clear()
	return m, tickCmd(m.config.TickRate)
}

// View renders the HUD and key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	out, over := m.duel.Outcome()
	hud := RenderHUD(Frame{
		State:   m.duel.Snapshot(),
		Outcome: out,
		Over:    over,
		Width:   m.config.ScreenW,
	})
	return hud + "\n\n" + labelStyle.Render(m.help.View(m.keys))
}

// IsQuitting returns true if the user asked to leave.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run plays d in the terminal until the user quits.
func Run(d *duel.Duel, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(d, cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
