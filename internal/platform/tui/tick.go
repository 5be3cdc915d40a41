// Package tui is the Bubble Tea front-end for a duel: the per-tick frame
// loop, key bindings, the lipgloss HUD, the match history table and the
// Wish SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultTickRate is used when a RuntimeConfig carries no tick rate.
const defaultTickRate = 60

// TickMsg is sent to trigger one duel frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = defaultTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
