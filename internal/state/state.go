// Package state owns the match-state tree. Every write goes through a
// named Store mutator that publishes the matching event on the bus.
package state

import (
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
)

// Competitor holds one side's progress.
type Competitor struct {
	Gems       int
	Score      int
	PowerUps   []core.PowerUp
	ResetCount int
	Difficulty string // Opponent only
}

// GameFlow tracks the match clock and flow state.
type GameFlow struct {
	State           core.FlowState
	TimeElapsed     time.Duration
	TimeRemaining   time.Duration
	IsInSuddenDeath bool
	IsPaused        bool
}

// Match tracks shared matching statistics.
type Match struct {
	CurrentCombo  int
	TotalMatches  int
	CascadeLevel  int
	LastMatchTime time.Duration // Elapsed match time of the last match
}

// Field tracks pressure on both playfields.
type Field struct {
	PlayerFieldDanger      int
	OpponentFieldDanger    int
	PlayerImmunityActive   bool
	OpponentImmunityActive bool
	PlayerPenaltyActive    bool
	OpponentPenaltyActive  bool
}

// Settings are the rules the tree was created with.
type Settings struct {
	Difficulty      string
	GemsToWin       int
	GameDuration    time.Duration
	SuddenDeathTime time.Duration
	MaxDanger       int
}

// GameState is the whole match-state tree.
type GameState struct {
	Player   Competitor
	Opponent Competitor
	GameFlow GameFlow
	Match    Match
	Field    Field
	Settings Settings
}

// Side returns the competitor for side.
func (g GameState) Side(side core.Side) Competitor {
	if side.IsPlayer() {
		return g.Player
	}
	return g.Opponent
}

// Danger returns the field danger for side.
func (g GameState) Danger(side core.Side) int {
	if side.IsPlayer() {
		return g.Field.PlayerFieldDanger
	}
	return g.Field.OpponentFieldDanger
}

// Immune reports whether side's field is protected.
func (g GameState) Immune(side core.Side) bool {
	if side.IsPlayer() {
		return g.Field.PlayerImmunityActive
	}
	return g.Field.OpponentImmunityActive
}

// Penalized reports whether side's field fills faster.
func (g GameState) Penalized(side core.Side) bool {
	if side.IsPlayer() {
		return g.Field.PlayerPenaltyActive
	}
	return g.Field.OpponentPenaltyActive
}

// clone returns a deep copy; PowerUps slices never alias.
func (g GameState) clone() GameState {
	out := g
	out.Player.PowerUps = clonePowerUps(g.Player.PowerUps)
	out.Opponent.PowerUps = clonePowerUps(g.Opponent.PowerUps)
	return out
}

func clonePowerUps(in []core.PowerUp) []core.PowerUp {
	if in == nil {
		return nil
	}
	out := make([]core.PowerUp, len(in))
	copy(out, in)
	return out
}

// initialState builds a fresh tree in the menu state.
func initialState(r Rules) GameState {
	return GameState{
		Player:   Competitor{PowerUps: []core.PowerUp{}},
		Opponent: Competitor{PowerUps: []core.PowerUp{}, Difficulty: r.Difficulty},
		GameFlow: GameFlow{
			State:         core.StateMenu,
			TimeRemaining: r.GameDuration,
		},
		Settings: Settings{
			Difficulty:      r.Difficulty,
			GemsToWin:       r.GemsToWin,
			GameDuration:    r.GameDuration,
			SuddenDeathTime: r.SuddenDeathTime,
			MaxDanger:       r.MaxDanger,
		},
	}
}
