package gameplay

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/registry"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

const (
	pointsPerBubble = 10
	comboBonus      = 5
	powerUpEvery    = 5 // Combo length that earns a power-up
	curseCascade    = 2 // Cascade depth that curses the other side
)

// powerUpCycle is the order in which combo rewards are handed out.
var powerUpCycle = [...]core.PowerUp{core.PowerUpClear, core.PowerUpShield, core.PowerUpCurse}

// Scoring turns resolved shots into gems, score, combos and power-ups.
type Scoring struct {
	registry.Base

	bus    *event.Bus
	store  *state.Store
	logger *log.Logger

	combo   [2]int
	rewards [2]int
	subs    subscriptions
}

// NewScoring creates the scoring system.
func NewScoring(d Deps) *Scoring {
	return &Scoring{
		Base:   registry.NewBase(ScoringName, scoringPriority, flow.Name),
		bus:    d.Bus,
		store:  d.Store,
		logger: d.logger(ScoringName),
	}
}

func (s *Scoring) Initialize(context.Context) error {
	s.subs.add(event.On(s.bus, s.onShot))
	return nil
}

func (s *Scoring) Destroy() error {
	s.subs.cancelAll()
	return nil
}

// Reset clears per-match combos.
func (s *Scoring) Reset() {
	s.combo = [2]int{}
	s.rewards = [2]int{}
}

// Combo returns side's current combo.
func (s *Scoring) Combo(side core.Side) int { return s.combo[side] }

func (s *Scoring) onShot(e event.ShotResolved) {
	if !playing(s.store) {
		return
	}
	if e.Popped < minMatch {
		s.miss(e.Side)
		return
	}
	s.match(e)
}

// miss breaks the combo and pushes the shooter's field up a row.
func (s *Scoring) miss(side core.Side) {
	s.combo[side] = 0
	if side.IsPlayer() {
		s.store.ResetCombo()
	}
	if !s.store.Immune(side) {
		s.store.UpdateFieldDanger(side, s.store.Danger(side)+1)
	}
}

func (s *Scoring) match(e event.ShotResolved) {
	side := e.Side
	s.combo[side]++
	combo := s.combo[side]
	if side.IsPlayer() {
		s.store.IncrementCombo()
	}
	s.store.SetCascadeLevel(e.Cascade)
	s.store.RecordMatch(s.store.TimeElapsed())

	points := e.Popped*pointsPerBubble*(1+e.Cascade) + combo*comboBonus
	s.store.AddScore(side, points)

	if d := s.store.Danger(side); d > 0 {
		s.store.UpdateFieldDanger(side, d-1)
	}
	if combo%powerUpEvery == 0 {
		p := powerUpCycle[s.rewards[side]%len(powerUpCycle)]
		if s.store.AddPowerUp(side, p) {
			s.rewards[side]++
		}
	}
	if e.Cascade >= curseCascade && !s.store.Immune(side.Other()) {
		s.store.SetPenalty(side.Other(), true)
	}

	s.bus.Publish(event.MatchCompleted{Side: side, Count: e.Popped, Score: points, Combo: combo})

	// Gems go last: they can end the match.
	s.store.AddGems(side, e.Popped-minMatch+1+e.Cascade)
	s.logger.Debug("match", "side", side, "popped", e.Popped, "cascade", e.Cascade, "combo", combo)
}
