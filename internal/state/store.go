package state

import (
	"math"
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
)

// Store is the single owner of a match's GameState.
// It has no locks: all calls must come from the match goroutine.
type Store struct {
	bus    *event.Bus
	rules  Rules
	state  GameState
	timeUp bool
}

// New creates a store in the menu state. A nil bus gets a private one.
func New(bus *event.Bus, rules Rules) *Store {
	if bus == nil {
		bus = event.NewBus()
	}
	return &Store{
		bus:   bus,
		rules: rules,
		state: initialState(rules),
	}
}

// Rules returns the rules the store enforces.
func (s *Store) Rules() Rules { return s.rules }

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() GameState { return s.state.clone() }

// FlowState returns the current flow state.
func (s *Store) FlowState() core.FlowState { return s.state.GameFlow.State }

// Gems returns side's gem total.
func (s *Store) Gems(side core.Side) int { return s.competitor(side).Gems }

// Danger returns side's field danger.
func (s *Store) Danger(side core.Side) int { return s.state.Danger(side) }

// InSuddenDeath reports whether sudden death has started.
func (s *Store) InSuddenDeath() bool { return s.state.GameFlow.IsInSuddenDeath }

// TimeElapsed returns the last recorded match time.
func (s *Store) TimeElapsed() time.Duration { return s.state.GameFlow.TimeElapsed }

// Immune reports whether side's field is protected.
func (s *Store) Immune(side core.Side) bool { return s.state.Immune(side) }

// Penalized reports whether side's field fills faster.
func (s *Store) Penalized(side core.Side) bool { return s.state.Penalized(side) }

// PowerUpCount returns how many power-ups side holds.
func (s *Store) PowerUpCount(side core.Side) int { return len(s.competitor(side).PowerUps) }

func (s *Store) competitor(side core.Side) *Competitor {
	if side.IsPlayer() {
		return &s.state.Player
	}
	return &s.state.Opponent
}

// UpdateGems sets side's gem total, clamped at zero.
func (s *Store) UpdateGems(side core.Side, gems int) {
	c := s.competitor(side)
	old := c.Gems
	if gems < 0 {
		gems = 0
	}
	c.Gems = gems

	s.bus.Publish(event.StateChanged{Path: side.String() + ".gems", Old: old, New: gems})
	s.bus.Publish(event.GemsUpdated{
		PlayerGems:   s.state.Player.Gems,
		OpponentGems: s.state.Opponent.Gems,
		Total:        s.state.Player.Gems + s.state.Opponent.Gems,
	})

	// Upward crossings only; a single large jump still fires once.
	if old < s.rules.GemsToWin && gems >= s.rules.GemsToWin {
		s.bus.Publish(event.VictoryConditionMet{Winner: side, Reason: core.ReasonGems})
	}
}

// AddGems adjusts side's gem total by delta.
func (s *Store) AddGems(side core.Side, delta int) {
	s.UpdateGems(side, s.competitor(side).Gems+delta)
}

// UpdatePlayerGems sets the player's gem total.
func (s *Store) UpdatePlayerGems(gems int) { s.UpdateGems(core.SidePlayer, gems) }

// UpdateOpponentGems sets the opponent's gem total.
func (s *Store) UpdateOpponentGems(gems int) { s.UpdateGems(core.SideOpponent, gems) }

// AddPlayerGems adjusts the player's gem total by delta.
func (s *Store) AddPlayerGems(delta int) { s.AddGems(core.SidePlayer, delta) }

// AddOpponentGems adjusts the opponent's gem total by delta.
func (s *Store) AddOpponentGems(delta int) { s.AddGems(core.SideOpponent, delta) }

// AddScore adjusts side's score by delta, clamped at zero.
func (s *Store) AddScore(side core.Side, delta int) {
	c := s.competitor(side)
	next := c.Score + delta
	if next < 0 {
		next = 0
	}
	applied := next - c.Score
	c.Score = next
	s.bus.Publish(event.ScoreUpdated{Side: side, Score: next, Delta: applied})
}

// UpdateGameTime records elapsed match time. Sudden death and time-up
// are each announced once per match.
func (s *Store) UpdateGameTime(elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	flow := &s.state.GameFlow
	flow.TimeElapsed = elapsed
	flow.TimeRemaining = max(0, s.rules.GameDuration-elapsed)

	if !flow.IsInSuddenDeath && elapsed >= s.rules.SuddenDeathTime {
		flow.IsInSuddenDeath = true
		s.bus.Publish(event.SuddenDeathStarted{Elapsed: elapsed})
	}
	if flow.TimeRemaining == 0 && !s.timeUp {
		s.timeUp = true
		s.bus.Publish(event.TimeUp{Elapsed: elapsed})
	}
}

// SetGameState overwrites the flow state without validating the
// transition. IsPaused always mirrors the paused state.
func (s *Store) SetGameState(next core.FlowState) {
	prev := s.state.GameFlow.State
	s.state.GameFlow.State = next
	s.state.GameFlow.IsPaused = next == core.StatePaused
	s.bus.Publish(event.GameStateChanged{From: prev, To: next})
}

// UpdateFieldDanger sets side's danger, clamped to [0, MaxDanger].
func (s *Store) UpdateFieldDanger(side core.Side, level int) {
	level = core.Clamp(level, 0, s.rules.MaxDanger)
	if side.IsPlayer() {
		s.state.Field.PlayerFieldDanger = level
	} else {
		s.state.Field.OpponentFieldDanger = level
	}
	s.bus.Publish(event.FieldDangerUpdated{Side: side, Level: level})
}

// SetImmunity toggles side's immunity.
func (s *Store) SetImmunity(side core.Side, active bool) {
	if side.IsPlayer() {
		s.state.Field.PlayerImmunityActive = active
	} else {
		s.state.Field.OpponentImmunityActive = active
	}
	s.bus.Publish(event.ImmunityChanged{Side: side, Active: active})
}

// SetPenalty toggles side's penalty.
func (s *Store) SetPenalty(side core.Side, active bool) {
	if side.IsPlayer() {
		s.state.Field.PlayerPenaltyActive = active
	} else {
		s.state.Field.OpponentPenaltyActive = active
	}
	s.bus.Publish(event.PenaltyChanged{Side: side, Active: active})
}

// IncrementCombo bumps the combo counter and returns it.
func (s *Store) IncrementCombo() int {
	s.state.Match.CurrentCombo++
	s.bus.Publish(event.ComboUpdated{Combo: s.state.Match.CurrentCombo})
	return s.state.Match.CurrentCombo
}

// ResetCombo zeroes the combo counter.
func (s *Store) ResetCombo() {
	s.state.Match.CurrentCombo = 0
	s.bus.Publish(event.ComboUpdated{Combo: 0})
}

// SetCascadeLevel records the cascade depth of the last match.
func (s *Store) SetCascadeLevel(level int) {
	s.state.Match.CascadeLevel = max(level, 0)
	s.bus.Publish(event.CascadeUpdated{Level: s.state.Match.CascadeLevel})
}

// RecordMatch counts a successful match made at elapsed time at.
func (s *Store) RecordMatch(at time.Duration) {
	old := s.state.Match.TotalMatches
	s.state.Match.TotalMatches++
	s.state.Match.LastMatchTime = at
	s.bus.Publish(event.StateChanged{Path: "match.totalMatches", Old: old, New: old + 1})
}

// AddPowerUp stores p for side. It reports false when all slots are full.
func (s *Store) AddPowerUp(side core.Side, p core.PowerUp) bool {
	c := s.competitor(side)
	if len(c.PowerUps) >= MaxPowerUps {
		return false
	}
	c.PowerUps = append(c.PowerUps, p)
	s.bus.Publish(event.PowerUpGained{Side: side, PowerUp: p})
	return true
}

// UsePowerUp spends side's oldest power-up.
func (s *Store) UsePowerUp(side core.Side) (core.PowerUp, bool) {
	c := s.competitor(side)
	if len(c.PowerUps) == 0 {
		return "", false
	}
	p := c.PowerUps[0]
	c.PowerUps = append(c.PowerUps[:0:0], c.PowerUps[1:]...)
	s.bus.Publish(event.PowerUpUsed{Side: side, PowerUp: p})
	return p, true
}

// ExecuteReset charges side for a field reset and returns the gems lost.
// Sides with no gems lose nothing. The returned and published loss is the
// amount actually removed, so it never exceeds the gems held.
func (s *Store) ExecuteReset(side core.Side) int {
	c := s.competitor(side)
	lost := 0
	if c.Gems > 0 {
		lost = int(math.Floor(float64(c.Gems) * s.rules.ResetLossRatio))
		lost = core.Clamp(lost, s.rules.MinGemLoss, s.rules.MaxGemLoss)
		lost = min(lost, c.Gems) // Report what was actually removed
	}
	c.ResetCount++
	if lost > 0 {
		s.AddGems(side, -lost)
	}
	s.bus.Publish(event.ResetExecuted{Side: side, GemsLost: lost})
	return lost
}

// ResetGame replaces the tree with initial values.
func (s *Store) ResetGame() {
	s.state = initialState(s.rules)
	s.timeUp = false
	s.bus.Publish(event.GameReset{})
}
