package event

import (
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
)

// Name identifies an event in the catalogue.
type Name string

// Event catalogue. Every payload type below reports exactly one of these.
const (
	NameStateChanged        Name = "state-changed"
	NameGemsUpdated         Name = "gems-updated"
	NameScoreUpdated        Name = "score-updated"
	NameVictoryConditionMet Name = "victory-condition-met"
	NameSuddenDeathStarted  Name = "sudden-death-started"
	NameTimeUp              Name = "time-up"
	NameGameStateChanged    Name = "game-state-changed"
	NameFieldDangerUpdated  Name = "field-danger-updated"
	NameImmunityChanged     Name = "immunity-changed"
	NamePenaltyChanged      Name = "penalty-changed"
	NameComboUpdated        Name = "combo-updated"
	NameCascadeUpdated      Name = "cascade-updated"
	NamePowerUpGained       Name = "power-up-gained"
	NamePowerUpUsed         Name = "power-up-used"
	NameResetExecuted       Name = "reset-executed"
	NameResetTriggered      Name = "reset-triggered"
	NameGameReset           Name = "game-reset"
	NameGameStarted         Name = "game-started"
	NameGamePaused          Name = "game-paused"
	NameGameResumed         Name = "game-resumed"
	NameGameOver            Name = "game-over"
	NameShotResolved        Name = "shot-resolved"
	NameMatchCompleted      Name = "match-completed"
)

// Event is a payload in the closed catalogue.
// Only types declared in this package implement it.
type Event interface {
	Name() Name
	catalogue()
}

// StateChanged reports a single numeric field changing in the state store.
type StateChanged struct {
	Path string // Dotted path, e.g. "player.gems"
	Old  int
	New  int
}

func (StateChanged) Name() Name { return NameStateChanged }
func (StateChanged) catalogue() {}

// GemsUpdated carries both gem totals after any gem mutation.
type GemsUpdated struct {
	PlayerGems   int
	OpponentGems int
	Total        int
}

func (GemsUpdated) Name() Name { return NameGemsUpdated }
func (GemsUpdated) catalogue() {}

// ScoreUpdated is sent when a side's score changes.
type ScoreUpdated struct {
	Side  core.Side
	Score int
	Delta int
}

func (ScoreUpdated) Name() Name { return NameScoreUpdated }
func (ScoreUpdated) catalogue() {}

// VictoryConditionMet is raised when a side satisfies a win condition.
// The flow controller decides whether it ends the match.
type VictoryConditionMet struct {
	Winner core.Side
	Reason core.VictoryReason
}

func (VictoryConditionMet) Name() Name { return NameVictoryConditionMet }
func (VictoryConditionMet) catalogue() {}

// SuddenDeathStarted fires once per match when sudden death begins.
type SuddenDeathStarted struct {
	Elapsed time.Duration
}

func (SuddenDeathStarted) Name() Name { return NameSuddenDeathStarted }
func (SuddenDeathStarted) catalogue() {}

// TimeUp fires once per match when the countdown reaches zero.
type TimeUp struct {
	Elapsed time.Duration
}

func (TimeUp) Name() Name { return NameTimeUp }
func (TimeUp) catalogue() {}

// GameStateChanged reports a flow state overwrite.
type GameStateChanged struct {
	From core.FlowState
	To   core.FlowState
}

func (GameStateChanged) Name() Name { return NameGameStateChanged }
func (GameStateChanged) catalogue() {}

// FieldDangerUpdated reports a side's field danger level (0..MaxDanger).
type FieldDangerUpdated struct {
	Side  core.Side
	Level int
}

func (FieldDangerUpdated) Name() Name { return NameFieldDangerUpdated }
func (FieldDangerUpdated) catalogue() {}

// IsPlayer reports whether the player's field changed.
func (e FieldDangerUpdated) IsPlayer() bool { return e.Side.IsPlayer() }

// ImmunityChanged reports a side's immunity toggling.
type ImmunityChanged struct {
	Side   core.Side
	Active bool
}

func (ImmunityChanged) Name() Name { return NameImmunityChanged }
func (ImmunityChanged) catalogue() {}

// PenaltyChanged reports a side's penalty toggling.
type PenaltyChanged struct {
	Side   core.Side
	Active bool
}

func (PenaltyChanged) Name() Name { return NamePenaltyChanged }
func (PenaltyChanged) catalogue() {}

// ComboUpdated carries the current combo counter.
type ComboUpdated struct {
	Combo int
}

func (ComboUpdated) Name() Name { return NameComboUpdated }
func (ComboUpdated) catalogue() {}

// CascadeUpdated carries the current cascade level.
type CascadeUpdated struct {
	Level int
}

func (CascadeUpdated) Name() Name { return NameCascadeUpdated }
func (CascadeUpdated) catalogue() {}

// PowerUpGained is sent when a side receives a power-up.
type PowerUpGained struct {
	Side    core.Side
	PowerUp core.PowerUp
}

func (PowerUpGained) Name() Name { return NamePowerUpGained }
func (PowerUpGained) catalogue() {}

// PowerUpUsed is sent when a side spends a power-up.
type PowerUpUsed struct {
	Side    core.Side
	PowerUp core.PowerUp
}

func (PowerUpUsed) Name() Name { return NamePowerUpUsed }
func (PowerUpUsed) catalogue() {}

// ResetExecuted reports a field reset and the gems it cost.
type ResetExecuted struct {
	Side     core.Side
	GemsLost int
}

func (ResetExecuted) Name() Name { return NameResetExecuted }
func (ResetExecuted) catalogue() {}

// ResetTriggered asks collaborators to relieve a full field outside sudden death.
type ResetTriggered struct {
	Side core.Side
}

func (ResetTriggered) Name() Name { return NameResetTriggered }
func (ResetTriggered) catalogue() {}

// GameReset is sent after the state tree is replaced with initial values.
type GameReset struct{}

func (GameReset) Name() Name { return NameGameReset }
func (GameReset) catalogue() {}

// GameStarted is sent when a match begins.
type GameStarted struct {
	MatchID string
}

func (GameStarted) Name() Name { return NameGameStarted }
func (GameStarted) catalogue() {}

// GamePaused is sent when game progression freezes.
type GamePaused struct {
	Elapsed time.Duration
}

func (GamePaused) Name() Name { return NameGamePaused }
func (GamePaused) catalogue() {}

// GameResumed is sent when game progression continues.
type GameResumed struct {
	PausedFor time.Duration
}

func (GameResumed) Name() Name { return NameGameResumed }
func (GameResumed) catalogue() {}

// GameOver is sent exactly once per match when the outcome is latched.
type GameOver struct {
	MatchID string
	Winner  core.Side
	Reason  core.VictoryReason
	Elapsed time.Duration
}

func (GameOver) Name() Name { return NameGameOver }
func (GameOver) catalogue() {}

// ShotResolved reports the outcome of a single shot.
// Popped below 3 is a miss; Cascade counts extra clusters dropped.
type ShotResolved struct {
	Side    core.Side
	Popped  int
	Cascade int
}

func (ShotResolved) Name() Name { return NameShotResolved }
func (ShotResolved) catalogue() {}

// MatchCompleted is sent after a successful match has been scored.
type MatchCompleted struct {
	Side  core.Side
	Count int
	Score int
	Combo int
}

func (MatchCompleted) Name() Name { return NameMatchCompleted }
func (MatchCompleted) catalogue() {}

// IsPlayer reports whether the player made the match.
func (e MatchCompleted) IsPlayer() bool { return e.Side.IsPlayer() }
