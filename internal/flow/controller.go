// Package flow implements the match state machine: it owns the match
// clock, sudden death, victory evaluation and pause/resume. It is the
// only component that drives the store into a terminal state.
package flow

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/registry"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// Name is the registry name of the controller.
const Name = "flow"

const (
	DefaultTimerTick            = 100 * time.Millisecond
	DefaultVictoryCheckInterval = 500 * time.Millisecond
)

// Outcome is the latched result of a match.
type Outcome struct {
	MatchID string
	Winner  core.Side
	Reason  core.VictoryReason
	Elapsed time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(ctl *Controller) {
		if c != nil {
			ctl.clock = c
		}
	}
}

// WithTiming sets the timer tick period and the victory poll interval.
func WithTiming(tick, check time.Duration) Option {
	return func(ctl *Controller) {
		if tick > 0 {
			ctl.tick = tick
		}
		if check > 0 {
			ctl.checkEvery = check
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.logger = l
		}
	}
}

// Controller is the game flow subsystem.
type Controller struct {
	registry.Base

	bus    *event.Bus
	store  *state.Store
	reg    *registry.Registry
	clock  Clock
	logger *log.Logger

	tick       time.Duration
	checkEvery time.Duration

	matchID   string
	startedAt time.Time
	pausedAt  time.Time
	lastTick  time.Time
	lastCheck time.Time
	ticking   bool
	outcome   *Outcome

	subs []*event.Subscription
}

// New creates a controller. reg may be nil when no subsystems need
// resetting.
func New(bus *event.Bus, store *state.Store, reg *registry.Registry, opts ...Option) *Controller {
	c := &Controller{
		Base:       registry.NewBase(Name, 0),
		bus:        bus,
		store:      store,
		reg:        reg,
		clock:      RealClock{},
		logger:     log.New(io.Discard),
		tick:       DefaultTimerTick,
		checkEvery: DefaultVictoryCheckInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize subscribes to the events that can end or relieve a match.
func (c *Controller) Initialize(ctx context.Context) error {
	c.subs = append(c.subs,
		event.On(c.bus, c.onVictoryCondition),
		event.On(c.bus, c.onFieldDanger),
		event.On(c.bus, c.onSuddenDeath),
		event.On(c.bus, c.onTimeUp),
	)
	return nil
}

// Destroy stops the clock and drops all subscriptions.
func (c *Controller) Destroy() error {
	c.ticking = false
	for _, sub := range c.subs {
		sub.Cancel()
	}
	c.subs = nil
	return nil
}

// Update drives the timer tick and the throttled victory poll from the
// controller's clock. The frame times are ignored.
func (c *Controller) Update(_, _ time.Duration) {
	if !c.ticking {
		return
	}
	now := c.clock.Now()
	if now.Sub(c.lastTick) >= c.tick {
		c.lastTick = now
		c.store.UpdateGameTime(now.Sub(c.startedAt))
	}
	if c.store.FlowState() == core.StatePlaying && now.Sub(c.lastCheck) >= c.checkEvery {
		c.lastCheck = now
		c.checkVictory()
	}
}

// StartGame begins a new match from the menu. It reports whether the
// transition happened.
func (c *Controller) StartGame() bool {
	if c.store.FlowState() != core.StateMenu {
		return false
	}
	c.store.ResetGame()

	now := c.clock.Now()
	c.matchID = uuid.NewString()
	c.outcome = nil
	c.startedAt = now
	c.lastTick = now
	c.lastCheck = now
	c.ticking = true

	c.store.UpdateGameTime(0)
	c.store.SetGameState(core.StatePlaying)
	c.bus.Publish(event.GameStarted{MatchID: c.matchID})
	c.logger.Info("match started", "match", c.matchID)
	return true
}

// PauseGame freezes game progression. Only valid while playing.
func (c *Controller) PauseGame() bool {
	if c.store.FlowState() != core.StatePlaying {
		return false
	}
	now := c.clock.Now()
	c.ticking = false
	c.pausedAt = now

	elapsed := now.Sub(c.startedAt)
	c.store.UpdateGameTime(elapsed)
	if c.store.FlowState() != core.StatePlaying {
		// Catching up the clock ended the match.
		return false
	}
	c.store.SetGameState(core.StatePaused)
	c.bus.Publish(event.GamePaused{Elapsed: elapsed})
	return true
}

// ResumeGame continues a paused match. The pause is excluded from
// elapsed time by shifting the start timestamp.
func (c *Controller) ResumeGame() bool {
	if c.store.FlowState() != core.StatePaused {
		return false
	}
	now := c.clock.Now()
	pausedFor := now.Sub(c.pausedAt)
	c.startedAt = c.startedAt.Add(pausedFor)
	c.lastTick = now
	c.lastCheck = now
	c.ticking = true

	c.store.SetGameState(core.StatePlaying)
	c.bus.Publish(event.GameResumed{PausedFor: pausedFor})
	return true
}

// HandleVictory ends the match. The first call wins; later calls and
// calls outside a running match are ignored.
func (c *Controller) HandleVictory(winner core.Side, reason core.VictoryReason) bool {
	st := c.store.FlowState()
	if st != core.StatePlaying && st != core.StatePaused {
		return false
	}
	c.ticking = false
	elapsed := c.Elapsed()
	c.outcome = &Outcome{
		MatchID: c.matchID,
		Winner:  winner,
		Reason:  reason,
		Elapsed: elapsed,
	}

	next := core.StateDefeat
	if winner.IsPlayer() {
		next = core.StateVictory
	}
	c.store.SetGameState(next)
	c.bus.Publish(event.GameOver{
		MatchID: c.matchID,
		Winner:  winner,
		Reason:  reason,
		Elapsed: elapsed,
	})
	c.logger.Info("match over", "match", c.matchID, "winner", winner, "reason", reason, "elapsed", elapsed)
	return true
}

// ResetGame returns to the menu from any state, clearing every
// resettable subsystem and the store.
func (c *Controller) ResetGame() {
	c.ticking = false
	c.matchID = ""
	c.outcome = nil
	c.startedAt = time.Time{}
	if c.reg != nil {
		c.reg.ResetAll()
	}
	c.store.ResetGame()
}

// Elapsed returns match time excluding pauses. It stops advancing once
// the match is over.
func (c *Controller) Elapsed() time.Duration {
	if c.outcome != nil {
		return c.outcome.Elapsed
	}
	if c.startedAt.IsZero() {
		return 0
	}
	if c.store.FlowState() == core.StatePaused {
		return c.pausedAt.Sub(c.startedAt)
	}
	return c.clock.Now().Sub(c.startedAt)
}

// MatchID returns the current match identifier, empty in the menu.
func (c *Controller) MatchID() string { return c.matchID }

// Ticking reports whether the match clock is running.
func (c *Controller) Ticking() bool { return c.ticking }

// Outcome returns the latched result once the match is over.
func (c *Controller) Outcome() (Outcome, bool) {
	if c.outcome == nil {
		return Outcome{}, false
	}
	return *c.outcome, true
}

// checkVictory re-evaluates every victory rule against a snapshot.
// Gem victories normally arrive eagerly from the store; this poll
// catches any that were missed.
func (c *Controller) checkVictory() {
	snap := c.store.Snapshot()
	gemsToWin := snap.Settings.GemsToWin

	switch {
	case snap.Player.Gems >= gemsToWin:
		c.HandleVictory(core.SidePlayer, core.ReasonGems)
		return
	case snap.Opponent.Gems >= gemsToWin:
		c.HandleVictory(core.SideOpponent, core.ReasonGems)
		return
	}

	if snap.GameFlow.IsInSuddenDeath {
		for _, side := range []core.Side{core.SidePlayer, core.SideOpponent} {
			if snap.Danger(side) >= snap.Settings.MaxDanger {
				c.HandleVictory(side.Other(), core.ReasonFieldFull)
				return
			}
		}
	}

	if snap.GameFlow.TimeRemaining == 0 {
		c.HandleVictory(Decide(snap))
	}
}

func (c *Controller) onVictoryCondition(e event.VictoryConditionMet) {
	c.HandleVictory(e.Winner, e.Reason)
}

// onFieldDanger loses the match for a full field in sudden death and
// otherwise asks for a field reset.
func (c *Controller) onFieldDanger(e event.FieldDangerUpdated) {
	if c.store.FlowState() != core.StatePlaying {
		return
	}
	if e.Level < c.store.Rules().MaxDanger {
		return
	}
	if c.store.InSuddenDeath() {
		c.HandleVictory(e.Side.Other(), core.ReasonFieldFull)
		return
	}
	c.logger.Debug("field full, reset triggered", "side", e.Side)
	c.bus.Publish(event.ResetTriggered{Side: e.Side})
}

// onSuddenDeath ends the match at once if a field is already full.
func (c *Controller) onSuddenDeath(event.SuddenDeathStarted) {
	c.logger.Info("sudden death", "match", c.matchID)
	maxDanger := c.store.Rules().MaxDanger
	for _, side := range []core.Side{core.SidePlayer, core.SideOpponent} {
		if c.store.Danger(side) >= maxDanger {
			c.HandleVictory(side.Other(), core.ReasonFieldFull)
			return
		}
	}
}

func (c *Controller) onTimeUp(event.TimeUp) {
	c.HandleVictory(Decide(c.store.Snapshot()))
}
