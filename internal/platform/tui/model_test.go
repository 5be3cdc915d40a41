package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/bubble-duel/internal/config"
	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/duel"
	"github.com/vovakirdan/bubble-duel/internal/flow"
)

func newTestModel(t *testing.T) (Model, *duel.Duel, *flow.ManualClock) {
	t.Helper()
	clock := flow.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	d, err := duel.New(context.Background(), duel.Options{
		Config: config.DefaultGameConfig(),
		Clock:  clock,
		Seed:   7,
	})
	if err != nil {
		t.Fatalf("duel.New() failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewModel(d, core.RuntimeConfig{ScreenW: 100, ScreenH: 30, TickRate: 20}), d, clock
}

// send feeds msg to m and returns the updated model and command.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return nm, cmd
}

func tick(t *testing.T, m Model, clock *flow.ManualClock) Model {
	t.Helper()
	clock.Advance(50 * time.Millisecond)
	m, cmd := send(t, m, TickMsg(clock.Now()))
	if cmd == nil {
		t.Fatal("tick did not schedule the next tick")
	}
	return m
}

func TestModelFirstTickStartsMatch(t *testing.T) {
	m, d, clock := newTestModel(t)

	if m.Init() == nil {
		t.Fatal("Init() returned no tick command")
	}
	if got := d.Store.FlowState(); got != core.StateMenu {
		t.Fatalf("state before first tick = %s, want menu", got)
	}

	tick(t, m, clock)
	if got := d.Store.FlowState(); got != core.StatePlaying {
		t.Fatalf("state after first tick = %s, want playing", got)
	}
}

func TestModelPauseToggle(t *testing.T) {
	m, d, clock := newTestModel(t)
	m = tick(t, m, clock)

	m, _ = send(t, m, runeKey('p'))
	m = tick(t, m, clock)
	if got := d.Store.FlowState(); got != core.StatePaused {
		t.Fatalf("state = %s, want paused", got)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("View() does not show the pause banner")
	}

	m, _ = send(t, m, runeKey('p'))
	tick(t, m, clock)
	if got := d.Store.FlowState(); got != core.StatePlaying {
		t.Fatalf("state = %s, want playing", got)
	}
}

func TestModelFireKeyShoots(t *testing.T) {
	m, d, clock := newTestModel(t)
	m = tick(t, m, clock)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = tick(t, m, clock)
	if got := d.Shooter.Shots(); got != 1 {
		t.Fatalf("Shots() = %d, want 1", got)
	}

	// Input is consumed by the frame it was queued for.
	tick(t, m, clock)
	if got := d.Shooter.Shots(); got != 1 {
		t.Fatalf("Shots() = %d after idle tick, want 1", got)
	}
}

func TestModelQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := send(t, m, runeKey('q'))
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit key did not return tea.Quit")
	}
	if !m.IsQuitting() {
		t.Error("IsQuitting() = false after quit")
	}
	if m.View() != "" {
		t.Error("View() should be empty after quit")
	}
}

func TestModelBackOnlyWhenPaused(t *testing.T) {
	m, _, clock := newTestModel(t)
	m = tick(t, m, clock)

	m, cmd := send(t, m, runeKey('b'))
	if cmd != nil || m.IsQuitting() {
		t.Fatal("leaving mid-match should be ignored")
	}

	m, _ = send(t, m, runeKey('p'))
	m = tick(t, m, clock)
	m, cmd = send(t, m, runeKey('b'))
	if cmd == nil || !m.IsQuitting() {
		t.Fatal("leaving a paused match should quit")
	}
}

func TestModelShowsOutcome(t *testing.T) {
	m, d, clock := newTestModel(t)
	m = tick(t, m, clock)

	d.Store.UpdateGems(core.SidePlayer, 15)
	m = tick(t, m, clock)

	if got := d.Store.FlowState(); got != core.StateVictory {
		t.Fatalf("state = %s, want victory", got)
	}
	view := m.View()
	if !strings.Contains(view, "YOU WIN") {
		t.Error("View() does not show the win banner")
	}

	m, _ = send(t, m, runeKey('r'))
	tick(t, m, clock)
	if got := d.Store.FlowState(); got != core.StatePlaying {
		t.Fatalf("state after rematch = %s, want playing", got)
	}
}

func TestModelResize(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.config.ScreenW != 120 || m.config.ScreenH != 40 {
		t.Errorf("config = %dx%d, want 120x40", m.config.ScreenW, m.config.ScreenH)
	}
}
