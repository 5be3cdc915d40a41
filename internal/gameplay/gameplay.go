// Package gameplay contains the duel's gameplay subsystems. They talk to
// the orchestration core only through bus events and store mutators.
package gameplay

import (
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bubble-duel/internal/config"
	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// Registry names and priorities of the gameplay systems.
const (
	ScoringName  = "scoring"
	FieldName    = "field"
	ShooterName  = "shooter"
	OpponentName = "opponent"
	RecorderName = "recorder"

	scoringPriority  = 20
	fieldPriority    = 30
	shooterPriority  = 40
	opponentPriority = 50
	recorderPriority = 90
)

// minMatch is the smallest cluster that pops.
const minMatch = 3

// Deps are the collaborators every gameplay system needs.
type Deps struct {
	Bus    *event.Bus
	Store  *state.Store
	Config config.GameConfig
	Logger *log.Logger
	Clock  flow.Clock
	Seed   int64
}

func (d Deps) clock() flow.Clock {
	if d.Clock == nil {
		return flow.RealClock{}
	}
	return d.Clock
}

func (d Deps) logger(prefix string) *log.Logger {
	if d.Logger == nil {
		return log.New(io.Discard)
	}
	return d.Logger.WithPrefix(prefix)
}

// playing reports whether game progression is running.
func playing(s *state.Store) bool {
	return s.FlowState() == core.StatePlaying
}

// subscriptions collects bus handles so Destroy can drop them together.
type subscriptions []*event.Subscription

func (s *subscriptions) add(subs ...*event.Subscription) {
	*s = append(*s, subs...)
}

func (s *subscriptions) cancelAll() {
	for _, sub := range *s {
		sub.Cancel()
	}
	*s = nil
}

// resolveShot rolls the outcome of one shot. A hit pops a cluster of at
// least minMatch bubbles and may cascade; a miss pops fewer.
func resolveShot(rng *rand.Rand, accuracy float64, maxCascade int) (popped, cascade int) {
	if rng.Float64() >= accuracy {
		return rng.Intn(minMatch), 0
	}
	popped = minMatch + rng.Intn(4)
	if maxCascade > 0 && rng.Float64() < 0.3 {
		cascade = 1 + rng.Intn(maxCascade)
	}
	return popped, cascade
}

var allSides = [...]core.Side{core.SidePlayer, core.SideOpponent}
