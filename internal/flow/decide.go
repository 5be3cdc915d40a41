package flow

import (
	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// Decide rules on a match whose time has expired: more gems wins, then
// more score, and a full tie goes to the player.
func Decide(snap state.GameState) (core.Side, core.VictoryReason) {
	p, o := snap.Player, snap.Opponent
	switch {
	case p.Gems > o.Gems:
		return core.SidePlayer, core.ReasonTimeGems
	case o.Gems > p.Gems:
		return core.SideOpponent, core.ReasonTimeGems
	case p.Score > o.Score:
		return core.SidePlayer, core.ReasonTimeScore
	case o.Score > p.Score:
		return core.SideOpponent, core.ReasonTimeScore
	default:
		return core.SidePlayer, core.ReasonTimeTie
	}
}
