// Package core holds the vocabulary shared by every duel package: sides,
// flow states, victory reasons, power-ups and semantic input.
package core

// Side identifies one of the two competitors.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// String returns the side name used in events and persisted records.
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// Other returns the competing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// IsPlayer reports whether s is the local player.
func (s Side) IsPlayer() bool {
	return s == SidePlayer
}

// FlowState is the top-level game flow state.
type FlowState string

const (
	StateMenu    FlowState = "menu"
	StatePlaying FlowState = "playing"
	StatePaused  FlowState = "paused"
	StateVictory FlowState = "victory"
	StateDefeat  FlowState = "defeat"
)

// IsTerminal reports whether the match has been decided.
func (s FlowState) IsTerminal() bool {
	return s == StateVictory || s == StateDefeat
}

// VictoryReason explains why a match ended.
type VictoryReason string

const (
	ReasonGems      VictoryReason = "gems"       // Gem threshold reached
	ReasonFieldFull VictoryReason = "field-full" // Field filled during sudden death
	ReasonTimeGems  VictoryReason = "time-gems"  // Time expired, more gems
	ReasonTimeScore VictoryReason = "time-score" // Time expired, gems tied, higher score
	ReasonTimeTie   VictoryReason = "time-tie"   // Time expired, full tie
)

// PowerUp is a collectible effect a side can hold and spend.
type PowerUp string

const (
	PowerUpClear  PowerUp = "clear"  // Lowers own field danger
	PowerUpShield PowerUp = "shield" // Grants temporary immunity
	PowerUpCurse  PowerUp = "curse"  // Applies a penalty to the other side
)
