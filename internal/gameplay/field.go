package gameplay

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bubble-duel/internal/config"
	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/registry"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// Field builds pressure on both playfields and relieves it on resets and
// power-ups. It also owns immunity and penalty timers.
type Field struct {
	registry.Base

	bus    *event.Bus
	store  *state.Store
	cfg    config.FieldConfig
	logger *log.Logger

	rise     [2]time.Duration // Progress toward the next row
	immunity [2]time.Duration // Remaining immunity
	penalty  [2]time.Duration // Remaining penalty
	subs     subscriptions
}

// NewField creates the field system.
func NewField(d Deps) *Field {
	return &Field{
		Base:   registry.NewBase(FieldName, fieldPriority, flow.Name),
		bus:    d.Bus,
		store:  d.Store,
		cfg:    d.Config.Field,
		logger: d.logger(FieldName),
	}
}

func (f *Field) Initialize(context.Context) error {
	f.subs.add(
		event.On(f.bus, f.onResetTriggered),
		event.On(f.bus, f.onPowerUpUsed),
		event.On(f.bus, f.onImmunity),
		event.On(f.bus, f.onPenalty),
	)
	return nil
}

func (f *Field) Destroy() error {
	f.subs.cancelAll()
	return nil
}

// Reset clears all timers.
func (f *Field) Reset() {
	f.rise = [2]time.Duration{}
	f.immunity = [2]time.Duration{}
	f.penalty = [2]time.Duration{}
}

// Update advances timers by delta while the match is running.
func (f *Field) Update(_, delta time.Duration) {
	for _, side := range allSides {
		if !playing(f.store) {
			return
		}
		f.expire(side, delta)
		f.raise(side, delta)
	}
}

func (f *Field) expire(side core.Side, delta time.Duration) {
	if f.immunity[side] > 0 {
		f.immunity[side] -= delta
		if f.immunity[side] <= 0 {
			f.store.SetImmunity(side, false)
		}
	}
	if f.penalty[side] > 0 {
		f.penalty[side] -= delta
		if f.penalty[side] <= 0 {
			f.store.SetPenalty(side, false)
		}
	}
}

// raise adds rows at one per RowInterval, twice as fast under penalty.
// Immunity freezes the field.
func (f *Field) raise(side core.Side, delta time.Duration) {
	if f.store.Immune(side) {
		return
	}
	interval := f.cfg.RowInterval
	if f.store.Penalized(side) {
		interval /= 2
	}
	if interval <= 0 {
		return
	}
	f.rise[side] += delta
	for f.rise[side] >= interval && playing(f.store) {
		f.rise[side] -= interval
		f.store.UpdateFieldDanger(side, f.store.Danger(side)+1)
		if f.store.Immune(side) {
			// A reset just relieved the field.
			f.rise[side] = 0
			return
		}
	}
}

// onResetTriggered charges the side for a reset, clears its field and
// shields it briefly.
func (f *Field) onResetTriggered(e event.ResetTriggered) {
	lost := f.store.ExecuteReset(e.Side)
	f.rise[e.Side] = 0
	f.store.UpdateFieldDanger(e.Side, 0)
	f.store.SetImmunity(e.Side, true)
	f.logger.Info("field reset", "side", e.Side, "gems_lost", lost)
}

func (f *Field) onPowerUpUsed(e event.PowerUpUsed) {
	switch e.PowerUp {
	case core.PowerUpClear:
		f.store.UpdateFieldDanger(e.Side, f.store.Danger(e.Side)-f.cfg.ClearAmount)
	case core.PowerUpShield:
		f.store.SetImmunity(e.Side, true)
	case core.PowerUpCurse:
		target := e.Side.Other()
		if !f.store.Immune(target) {
			f.store.SetPenalty(target, true)
		}
	}
}

// onImmunity arms the timer whenever immunity is switched on.
func (f *Field) onImmunity(e event.ImmunityChanged) {
	if e.Active {
		f.immunity[e.Side] = f.cfg.ImmunityDuration
	} else {
		f.immunity[e.Side] = 0
	}
}

func (f *Field) onPenalty(e event.PenaltyChanged) {
	if e.Active {
		f.penalty[e.Side] = f.cfg.PenaltyDuration
	} else {
		f.penalty[e.Side] = 0
	}
}
