package duel

import (
	"context"
	"fmt"
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// simEpoch anchors simulated clocks so runs are reproducible.
var simEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SimResult is the outcome of a headless match.
type SimResult struct {
	Outcome flow.Outcome
	Final   state.GameState
	Frames  int
	History []event.Record
	Shots   [2]int
}

// Simulate plays one match headlessly with a manual clock and an
// auto-firing player. The same seed and config always produce the same
// result. frame is the simulated frame duration.
func Simulate(ctx context.Context, opts Options, frame time.Duration) (SimResult, error) {
	if frame <= 0 {
		frame = 50 * time.Millisecond
	}
	clock := flow.NewManualClock(simEpoch)
	opts.Clock = clock
	opts.AutoFire = true

	d, err := New(ctx, opts)
	if err != nil {
		return SimResult{}, err
	}
	defer d.Close()

	if !d.Start() {
		return SimResult{}, fmt.Errorf("duel: simulate: match did not start")
	}

	// Time expiry always ends the match; the cap only guards bad configs.
	limit := int(opts.Config.Timing.GameDuration/frame) + 1000
	input := core.NewInputFrame()
	res := SimResult{}
	for !d.Store.FlowState().IsTerminal() {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("duel: simulate: %w", err)
		}
		if res.Frames >= limit {
			return res, fmt.Errorf("duel: simulate: no outcome after %d frames", res.Frames)
		}
		clock.Advance(frame)
		d.Step(clock.Now(), input)
		res.Frames++
	}

	res.Outcome, _ = d.Outcome()
	res.Final = d.Snapshot()
	res.History = d.Bus.Recent(0)
	res.Shots = [2]int{d.Shooter.Shots(), d.Opponent.Shots()}
	return res, nil
}
