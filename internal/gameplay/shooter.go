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

// Shooter resolves the player's fire and power-up input.
type Shooter struct {
	registry.Base

	bus    *event.Bus
	store  *state.Store
	cfg    config.ShooterConfig
	logger *log.Logger
	rng    *rand.Rand

	input    core.InputFrame
	autoFire bool
	cooldown time.Duration
	shots    int
}

// NewShooter creates the player's shooter.
func NewShooter(d Deps) *Shooter {
	return &Shooter{
		Base:   registry.NewBase(ShooterName, shooterPriority, ScoringName),
		bus:    d.Bus,
		store:  d.Store,
		cfg:    d.Config.Shooter,
		logger: d.logger(ShooterName),
		rng:    rand.New(rand.NewSource(d.Seed)),
		input:  core.NewInputFrame(),
	}
}

func (s *Shooter) Initialize(context.Context) error { return nil }
func (s *Shooter) Destroy() error                   { return nil }

// Reset clears the cooldown and pending input.
func (s *Shooter) Reset() {
	s.cooldown = 0
	s.shots = 0
	s.input.Clear()
}

// SetInput queues the actions for the next update.
func (s *Shooter) SetInput(frame core.InputFrame) {
	for a, on := range frame.Actions {
		if on {
			s.input.Set(a)
		}
	}
}

// SetAutoFire makes the shooter fire whenever it is ready.
func (s *Shooter) SetAutoFire(on bool) { s.autoFire = on }

// Shots returns the number of shots fired this match.
func (s *Shooter) Shots() int { return s.shots }

// Update fires and spends power-ups while the match is running.
// Input arriving outside a running match is dropped.
func (s *Shooter) Update(_, delta time.Duration) {
	defer s.input.Clear()
	if !playing(s.store) {
		return
	}
	if s.cooldown > 0 {
		s.cooldown -= delta
	}

	if s.input.Has(core.ActionPowerUp) {
		if p, ok := s.store.UsePowerUp(core.SidePlayer); ok {
			s.logger.Debug("power-up", "kind", p)
		}
	}
	if (s.input.Has(core.ActionFire) || s.autoFire) && s.cooldown <= 0 {
		s.fire()
	}
}

func (s *Shooter) fire() {
	s.cooldown = s.cfg.FireCooldown
	s.shots++
	popped, cascade := resolveShot(s.rng, s.cfg.Accuracy, s.cfg.MaxCascade)
	s.bus.Publish(event.ShotResolved{Side: core.SidePlayer, Popped: popped, Cascade: cascade})
}
