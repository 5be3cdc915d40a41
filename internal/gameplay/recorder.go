package gameplay

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bubble-duel/internal/event"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/registry"
	"github.com/vovakirdan/bubble-duel/internal/state"
	"github.com/vovakirdan/bubble-duel/internal/storage"
)

const saveTimeout = 5 * time.Second

// MatchSaver persists finished matches.
type MatchSaver interface {
	SaveMatch(ctx context.Context, m storage.MatchRecord) (int64, error)
}

// Ensure the SQLite store can back the recorder.
var _ MatchSaver = (*storage.Store)(nil)

// RecordMeta describes who played and how.
type RecordMeta struct {
	Mode       string
	PlayerName string
}

// Recorder turns game-over events into match records. Saving is
// optional; the last record is always kept in memory.
type Recorder struct {
	registry.Base

	bus    *event.Bus
	store  *state.Store
	saver  MatchSaver
	meta   RecordMeta
	clock  flow.Clock
	logger *log.Logger

	startedAt time.Time
	last      *storage.MatchRecord
	saved     int
	subs      subscriptions
}

// NewRecorder creates the recorder. saver may be nil.
func NewRecorder(d Deps, saver MatchSaver, meta RecordMeta) *Recorder {
	return &Recorder{
		Base:   registry.NewBase(RecorderName, recorderPriority, flow.Name),
		bus:    d.Bus,
		store:  d.Store,
		saver:  saver,
		meta:   meta,
		clock:  d.clock(),
		logger: d.logger(RecorderName),
	}
}

func (r *Recorder) Initialize(context.Context) error {
	r.subs.add(
		event.On(r.bus, r.onStarted),
		event.On(r.bus, r.onGameOver),
	)
	return nil
}

func (r *Recorder) Destroy() error {
	r.subs.cancelAll()
	return nil
}

// Last returns the most recent match record.
func (r *Recorder) Last() (storage.MatchRecord, bool) {
	if r.last == nil {
		return storage.MatchRecord{}, false
	}
	return *r.last, true
}

// Saved returns how many records were persisted.
func (r *Recorder) Saved() int { return r.saved }

func (r *Recorder) onStarted(event.GameStarted) {
	r.startedAt = r.clock.Now()
}

func (r *Recorder) onGameOver(e event.GameOver) {
	snap := r.store.Snapshot()
	rec := storage.MatchRecord{
		MatchID:        e.MatchID,
		Mode:           r.meta.Mode,
		PlayerName:     r.meta.PlayerName,
		Difficulty:     snap.Settings.Difficulty,
		Winner:         e.Winner.String(),
		Reason:         string(e.Reason),
		PlayerGems:     snap.Player.Gems,
		OpponentGems:   snap.Opponent.Gems,
		PlayerScore:    snap.Player.Score,
		OpponentScore:  snap.Opponent.Score,
		PlayerResets:   snap.Player.ResetCount,
		OpponentResets: snap.Opponent.ResetCount,
		Duration:       e.Elapsed,
		StartedAt:      r.startedAt,
	}
	r.last = &rec

	if r.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if _, err := r.saver.SaveMatch(ctx, rec); err != nil {
		r.logger.Error("failed to save match", "match", rec.MatchID, "error", err)
		return
	}
	r.saved++
	r.logger.Info("match saved", "match", rec.MatchID, "winner", rec.Winner, "reason", rec.Reason)
}
