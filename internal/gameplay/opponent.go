package gameplay

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bubble-duel/internal/config"
	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/registry"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// Opponent is the AI competitor. Its cadence and accuracy ramp with
// match time through the difficulty manager.
type Opponent struct {
	registry.Base

	bus        *event.Bus
	store      *state.Store
	cfg        config.OpponentConfig
	difficulty *config.DifficultyManager
	logger     *log.Logger
	rng        *rand.Rand

	sinceShot time.Duration
	shots     int
}

// NewOpponent creates the AI opponent. Its random stream is derived from
// the seed but independent of the player's.
func NewOpponent(d Deps) *Opponent {
	return &Opponent{
		Base:       registry.NewBase(OpponentName, opponentPriority, ScoringName, FieldName),
		bus:        d.Bus,
		store:      d.Store,
		cfg:        d.Config.Opponent,
		difficulty: config.NewDifficultyManager(d.Config.Difficulty),
		logger:     d.logger(OpponentName),
		rng:        rand.New(rand.NewSource(d.Seed ^ 0x5eed)),
	}
}

func (o *Opponent) Initialize(context.Context) error { return nil }
func (o *Opponent) Destroy() error                   { return nil }

// Reset restarts the firing cadence.
func (o *Opponent) Reset() {
	o.sinceShot = 0
	o.shots = 0
}

// Shots returns the number of shots fired this match.
func (o *Opponent) Shots() int { return o.shots }

// Level returns the current difficulty level.
func (o *Opponent) Level() float64 {
	return o.difficulty.Level(o.store.TimeElapsed())
}

// Update fires on cadence and spends power-ups when under pressure.
func (o *Opponent) Update(_, delta time.Duration) {
	if !playing(o.store) {
		return
	}
	elapsed := o.store.TimeElapsed()

	if o.store.Danger(core.SideOpponent) >= o.cfg.PowerUpAtDanger {
		if p, ok := o.store.UsePowerUp(core.SideOpponent); ok {
			o.logger.Debug("power-up", "kind", p, "danger", o.store.Danger(core.SideOpponent))
		}
	}
	if !playing(o.store) {
		return
	}

	o.sinceShot += delta
	if o.sinceShot < o.difficulty.ShotInterval(o.cfg.ShotInterval, elapsed) {
		return
	}
	o.sinceShot = 0
	o.shots++
	accuracy := o.difficulty.Accuracy(o.cfg.Accuracy, elapsed)
	popped, cascade := resolveShot(o.rng, accuracy, o.cfg.MaxCascade)
	o.bus.Publish(event.ShotResolved{Side: core.SideOpponent, Popped: popped, Cascade: cascade})
}
