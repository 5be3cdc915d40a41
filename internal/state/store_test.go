package state

import (
	"testing"
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/event"
)

func newTestStore() (*Store, *event.Bus) {
	bus := event.NewBus()
	return New(bus, DefaultRules()), bus
}

func TestGemsNeverNegative(t *testing.T) {
	s, _ := newTestStore()

	s.AddPlayerGems(3)
	s.AddPlayerGems(-10)
	if got := s.Gems(core.SidePlayer); got != 0 {
		t.Fatalf("player gems = %d, want 0", got)
	}

	s.UpdateOpponentGems(-4)
	if got := s.Gems(core.SideOpponent); got != 0 {
		t.Fatalf("opponent gems = %d, want 0", got)
	}
}

func TestGemMutatorsPublishChangeAndTotals(t *testing.T) {
	s, bus := newTestStore()
	var changes []event.StateChanged
	var totals []event.GemsUpdated
	event.On(bus, func(e event.StateChanged) { changes = append(changes, e) })
	event.On(bus, func(e event.GemsUpdated) { totals = append(totals, e) })

	s.AddPlayerGems(4)
	s.AddOpponentGems(2)

	if len(changes) != 2 {
		t.Fatalf("got %d state-changed events, want 2", len(changes))
	}
	if changes[0] != (event.StateChanged{Path: "player.gems", Old: 0, New: 4}) {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[1].Path != "opponent.gems" {
		t.Errorf("second change path = %q", changes[1].Path)
	}
	last := totals[len(totals)-1]
	if last.PlayerGems != 4 || last.OpponentGems != 2 || last.Total != 6 {
		t.Errorf("gems-updated = %+v", last)
	}
}

func TestVictoryConditionFiresOncePerCrossing(t *testing.T) {
	s, bus := newTestStore()
	var wins []event.VictoryConditionMet
	event.On(bus, func(e event.VictoryConditionMet) { wins = append(wins, e) })

	// One large jump past the threshold.
	s.AddOpponentGems(40)
	s.AddOpponentGems(3)
	if len(wins) != 1 {
		t.Fatalf("got %d victory events, want 1", len(wins))
	}
	if wins[0].Winner != core.SideOpponent || wins[0].Reason != core.ReasonGems {
		t.Errorf("victory = %+v", wins[0])
	}

	// Falling below and crossing again is a new crossing.
	s.UpdateOpponentGems(10)
	s.UpdateOpponentGems(15)
	if len(wins) != 2 {
		t.Fatalf("got %d victory events after second crossing, want 2", len(wins))
	}
}

func TestVictoryConditionExactThreshold(t *testing.T) {
	s, bus := newTestStore()
	count := 0
	event.On(bus, func(event.VictoryConditionMet) { count++ })

	for i := 0; i < 14; i++ {
		s.AddPlayerGems(1)
	}
	if count != 0 {
		t.Fatalf("victory fired below threshold")
	}
	s.AddPlayerGems(1)
	if count != 1 {
		t.Fatalf("victory count = %d at threshold, want 1", count)
	}
}

func TestExecuteResetLosesHalf(t *testing.T) {
	s, bus := newTestStore()
	var resets []event.ResetExecuted
	event.On(bus, func(e event.ResetExecuted) { resets = append(resets, e) })

	s.UpdatePlayerGems(10)
	lost := s.ExecuteReset(core.SidePlayer)

	if lost != 5 {
		t.Fatalf("ExecuteReset() = %d, want 5", lost)
	}
	snap := s.Snapshot()
	if snap.Player.Gems != 5 || snap.Player.ResetCount != 1 {
		t.Fatalf("player after reset = %+v", snap.Player)
	}
	if len(resets) != 1 || resets[0] != (event.ResetExecuted{Side: core.SidePlayer, GemsLost: 5}) {
		t.Fatalf("reset events = %+v", resets)
	}
}

func TestExecuteResetReportsRemovedGems(t *testing.T) {
	s, bus := newTestStore()
	var resets []event.ResetExecuted
	event.On(bus, func(e event.ResetExecuted) { resets = append(resets, e) })

	s.UpdatePlayerGems(1)
	if lost := s.ExecuteReset(core.SidePlayer); lost != 1 {
		t.Fatalf("ExecuteReset() = %d, want 1", lost)
	}
	if len(resets) != 1 || resets[0].GemsLost != 1 {
		t.Fatalf("reset events = %+v, want one reporting 1 gem", resets)
	}
	if got := s.Gems(core.SidePlayer); got != 0 {
		t.Fatalf("gems after reset = %d, want 0", got)
	}
}

func TestExecuteResetBounds(t *testing.T) {
	tests := []struct {
		gems int
		want int
	}{
		{0, 0},
		{1, 1},  // Minimum loss, capped by what is held
		{3, 2},  // floor(1.5) raised to the minimum
		{12, 6}, // Within bounds
		{40, 8}, // Capped at the maximum
	}
	for _, tt := range tests {
		s, _ := newTestStore()
		s.UpdateOpponentGems(tt.gems)
		if got := s.ExecuteReset(core.SideOpponent); got != tt.want {
			t.Errorf("ExecuteReset() with %d gems = %d, want %d", tt.gems, got, tt.want)
		}
		snap := s.Snapshot()
		if snap.Opponent.Gems != tt.gems-tt.want {
			t.Errorf("gems after reset = %d, want %d", snap.Opponent.Gems, tt.gems-tt.want)
		}
		if snap.Opponent.ResetCount != 1 {
			t.Errorf("ResetCount = %d, want 1", snap.Opponent.ResetCount)
		}
	}
}

func TestUpdateGameTimeAnnouncesOnce(t *testing.T) {
	s, bus := newTestStore()
	sudden, up := 0, 0
	event.On(bus, func(event.SuddenDeathStarted) { sudden++ })
	event.On(bus, func(event.TimeUp) { up++ })

	s.UpdateGameTime(100 * time.Second)
	snap := s.Snapshot()
	if snap.GameFlow.TimeRemaining != 80*time.Second || snap.GameFlow.IsInSuddenDeath {
		t.Fatalf("flow at 100s = %+v", snap.GameFlow)
	}

	s.UpdateGameTime(150 * time.Second)
	s.UpdateGameTime(160 * time.Second)
	if sudden != 1 {
		t.Fatalf("sudden-death-started fired %d times, want 1", sudden)
	}

	s.UpdateGameTime(180 * time.Second)
	s.UpdateGameTime(200 * time.Second)
	if up != 1 {
		t.Fatalf("time-up fired %d times, want 1", up)
	}
	if got := s.Snapshot().GameFlow.TimeRemaining; got != 0 {
		t.Fatalf("TimeRemaining = %s, want 0", got)
	}
}

func TestSetGameStateTracksPause(t *testing.T) {
	s, bus := newTestStore()
	var changes []event.GameStateChanged
	event.On(bus, func(e event.GameStateChanged) { changes = append(changes, e) })

	s.SetGameState(core.StatePlaying)
	s.SetGameState(core.StatePaused)
	if !s.Snapshot().GameFlow.IsPaused {
		t.Fatal("IsPaused = false in paused state")
	}
	s.SetGameState(core.StatePlaying)
	if s.Snapshot().GameFlow.IsPaused {
		t.Fatal("IsPaused = true after leaving paused state")
	}

	want := []event.GameStateChanged{
		{From: core.StateMenu, To: core.StatePlaying},
		{From: core.StatePlaying, To: core.StatePaused},
		{From: core.StatePaused, To: core.StatePlaying},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(changes), len(want))
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("transition %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestFieldDangerClamped(t *testing.T) {
	s, bus := newTestStore()
	var levels []int
	event.On(bus, func(e event.FieldDangerUpdated) { levels = append(levels, e.Level) })

	s.UpdateFieldDanger(core.SidePlayer, 14)
	s.UpdateFieldDanger(core.SideOpponent, -2)

	if got := s.Danger(core.SidePlayer); got != 10 {
		t.Errorf("player danger = %d, want 10", got)
	}
	if got := s.Danger(core.SideOpponent); got != 0 {
		t.Errorf("opponent danger = %d, want 0", got)
	}
	if len(levels) != 2 || levels[0] != 10 || levels[1] != 0 {
		t.Errorf("published levels = %v", levels)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s, _ := newTestStore()
	s.AddPowerUp(core.SidePlayer, core.PowerUpShield)
	s.AddPlayerGems(3)

	snap := s.Snapshot()
	snap.Player.Gems = 99
	snap.Player.PowerUps[0] = core.PowerUpCurse
	snap.Player.PowerUps = append(snap.Player.PowerUps, core.PowerUpClear)

	again := s.Snapshot()
	if again.Player.Gems != 3 {
		t.Errorf("gems leaked through snapshot: %d", again.Player.Gems)
	}
	if len(again.Player.PowerUps) != 1 || again.Player.PowerUps[0] != core.PowerUpShield {
		t.Errorf("power-ups leaked through snapshot: %v", again.Player.PowerUps)
	}
}

func TestPowerUpSlots(t *testing.T) {
	s, _ := newTestStore()

	for i := 0; i < MaxPowerUps; i++ {
		if !s.AddPowerUp(core.SideOpponent, core.PowerUpClear) {
			t.Fatalf("AddPowerUp() rejected slot %d", i)
		}
	}
	if s.AddPowerUp(core.SideOpponent, core.PowerUpCurse) {
		t.Fatal("AddPowerUp() accepted past the slot limit")
	}

	s2, _ := newTestStore()
	s2.AddPowerUp(core.SidePlayer, core.PowerUpShield)
	s2.AddPowerUp(core.SidePlayer, core.PowerUpCurse)
	p, ok := s2.UsePowerUp(core.SidePlayer)
	if !ok || p != core.PowerUpShield {
		t.Fatalf("UsePowerUp() = %q, %v; want oldest shield", p, ok)
	}
	if _, ok := s2.UsePowerUp(core.SideOpponent); ok {
		t.Fatal("UsePowerUp() succeeded with no power-ups")
	}
}

func TestComboAndMatches(t *testing.T) {
	s, _ := newTestStore()

	s.IncrementCombo()
	if got := s.IncrementCombo(); got != 2 {
		t.Fatalf("IncrementCombo() = %d, want 2", got)
	}
	s.SetCascadeLevel(3)
	s.RecordMatch(42 * time.Second)
	s.ResetCombo()

	m := s.Snapshot().Match
	if m.CurrentCombo != 0 || m.CascadeLevel != 3 || m.TotalMatches != 1 || m.LastMatchTime != 42*time.Second {
		t.Fatalf("match = %+v", m)
	}
}

func TestResetGameRestoresInitialTree(t *testing.T) {
	s, bus := newTestStore()
	resets := 0
	event.On(bus, func(event.GameReset) { resets++ })

	s.SetGameState(core.StatePlaying)
	s.AddPlayerGems(7)
	s.SetImmunity(core.SideOpponent, true)
	s.UpdateGameTime(190 * time.Second)
	s.ResetGame()

	snap := s.Snapshot()
	if snap.GameFlow.State != core.StateMenu || snap.Player.Gems != 0 || snap.Field.OpponentImmunityActive {
		t.Fatalf("tree not reset: %+v", snap)
	}
	if snap.GameFlow.TimeRemaining != 180*time.Second || snap.GameFlow.IsInSuddenDeath {
		t.Fatalf("clock not reset: %+v", snap.GameFlow)
	}
	if resets != 1 {
		t.Fatalf("game-reset fired %d times, want 1", resets)
	}

	up := 0
	event.On(bus, func(event.TimeUp) { up++ })
	s.UpdateGameTime(180 * time.Second)
	if up != 1 {
		t.Fatal("time-up not re-armed after ResetGame")
	}
}

func TestScoreClamped(t *testing.T) {
	s, bus := newTestStore()
	var last event.ScoreUpdated
	event.On(bus, func(e event.ScoreUpdated) { last = e })

	s.AddScore(core.SidePlayer, 30)
	s.AddScore(core.SidePlayer, -50)
	if last.Score != 0 || last.Delta != -30 {
		t.Fatalf("score-updated = %+v", last)
	}
}
