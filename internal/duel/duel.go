// Package duel is the composition root: it builds one isolated match
// (bus, store, registry and every subsystem) and drives it frame by frame.
package duel

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bubble-duel/internal/config"
	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/gameplay"
	"github.com/vovakirdan/bubble-duel/internal/registry"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// Options configures a Duel.
type Options struct {
	Config   config.GameConfig
	Logger   *log.Logger
	Clock    flow.Clock // Defaults to the real clock
	Seed     int64
	Saver    gameplay.MatchSaver // Optional match history
	Meta     gameplay.RecordMeta
	AutoFire bool // Player fires whenever ready
}

// Duel owns every instance belonging to one match.
type Duel struct {
	Bus      *event.Bus
	Store    *state.Store
	Registry *registry.Registry
	Flow     *flow.Controller
	Scoring  *gameplay.Scoring
	Field    *gameplay.Field
	Shooter  *gameplay.Shooter
	Opponent *gameplay.Opponent
	Recorder *gameplay.Recorder

	logger    *log.Logger
	clock     flow.Clock
	loopStart time.Time
	lastStep  time.Time
}

// New builds and initializes a duel. On failure every system that was
// initialized is torn down again.
func New(ctx context.Context, opts Options) (*Duel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = flow.RealClock{}
	}
	cfg := opts.Config

	bus := event.NewBus(
		event.WithLogger(logger.WithPrefix("bus")),
		event.WithHistorySize(cfg.Events.HistorySize),
		event.WithClock(clock.Now),
	)
	store := state.New(bus, state.RulesFromConfig(cfg))
	reg := registry.New(logger.WithPrefix("registry"))

	d := &Duel{
		Bus:      bus,
		Store:    store,
		Registry: reg,
		logger:   logger,
		clock:    clock,
	}
	d.Flow = flow.New(bus, store, reg,
		flow.WithClock(clock),
		flow.WithTiming(cfg.Timing.TimerTick, cfg.Timing.VictoryCheckInterval),
		flow.WithLogger(logger.WithPrefix(flow.Name)),
	)

	deps := gameplay.Deps{Bus: bus, Store: store, Config: cfg, Logger: logger, Clock: clock, Seed: opts.Seed}
	d.Scoring = gameplay.NewScoring(deps)
	d.Field = gameplay.NewField(deps)
	d.Shooter = gameplay.NewShooter(deps)
	d.Opponent = gameplay.NewOpponent(deps)
	d.Recorder = gameplay.NewRecorder(deps, opts.Saver, opts.Meta)
	d.Shooter.SetAutoFire(opts.AutoFire)

	for _, sys := range []registry.System{d.Flow, d.Scoring, d.Field, d.Shooter, d.Opponent, d.Recorder} {
		if err := reg.Register(sys); err != nil {
			return nil, fmt.Errorf("duel: %w", err)
		}
	}
	if err := reg.InitializeAll(ctx); err != nil {
		if derr := reg.DestroyAll(); derr != nil {
			logger.Error("teardown after failed start", "error", derr)
		}
		return nil, fmt.Errorf("duel: %w", err)
	}
	return d, nil
}

// Start begins a match from the menu.
func (d *Duel) Start() bool {
	return d.Flow.StartGame()
}

// TogglePause pauses a running match or resumes a paused one.
func (d *Duel) TogglePause() {
	if !d.Flow.PauseGame() {
		d.Flow.ResumeGame()
	}
}

// Restart returns to the menu and starts a fresh match.
func (d *Duel) Restart() bool {
	d.Flow.ResetGame()
	return d.Flow.StartGame()
}

// Step runs one frame at now: control actions first, then every
// subsystem in initialization order.
func (d *Duel) Step(now time.Time, input core.InputFrame) {
	if d.loopStart.IsZero() {
		d.loopStart = now
		d.lastStep = now
	}
	delta := now.Sub(d.lastStep)
	if delta < 0 {
		delta = 0
	}
	d.lastStep = now

	if input.Has(core.ActionPause) {
		d.TogglePause()
	}
	if input.Has(core.ActionRestart) && d.Store.FlowState().IsTerminal() {
		d.Restart()
	}
	d.Shooter.SetInput(input)
	d.Registry.UpdateAll(now.Sub(d.loopStart), delta)
}

// Snapshot returns a copy of the match state.
func (d *Duel) Snapshot() state.GameState {
	return d.Store.Snapshot()
}

// Outcome returns the result once the match is over.
func (d *Duel) Outcome() (flow.Outcome, bool) {
	return d.Flow.Outcome()
}

// Now reads the duel's clock.
func (d *Duel) Now() time.Time {
	return d.clock.Now()
}

// Close tears every subsystem down in reverse order.
func (d *Duel) Close() error {
	if err := d.Registry.DestroyAll(); err != nil {
		return fmt.Errorf("duel: close: %w", err)
	}
	return nil
}
