// Package storage provides SQLite-based persistence for duel match history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrMatchNotFound is returned when a match ID is unknown.
var ErrMatchNotFound = errors.New("storage: match not found")

// Store manages the SQLite database connection for match history.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished duel.
type MatchRecord struct {
	ID             int64
	MatchID        string
	Mode           string // "local", "ssh" or "sim"
	PlayerName     string
	Difficulty     string
	Winner         string // "player" or "opponent"
	Reason         string
	PlayerGems     int
	OpponentGems   int
	PlayerScore    int
	OpponentScore  int
	PlayerResets   int
	OpponentResets int
	Duration       time.Duration
	StartedAt      time.Time
	CreatedAt      time.Time
}

// PlayerWon reports whether the local player won the match.
func (m MatchRecord) PlayerWon() bool {
	return m.Winner == "player"
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			player_name TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			winner TEXT NOT NULL,
			reason TEXT NOT NULL,
			player_gems INTEGER NOT NULL DEFAULT 0,
			opponent_gems INTEGER NOT NULL DEFAULT 0,
			player_score INTEGER NOT NULL DEFAULT 0,
			opponent_score INTEGER NOT NULL DEFAULT 0,
			player_resets INTEGER NOT NULL DEFAULT 0,
			opponent_resets INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			started_at_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_at_ms DESC);
		CREATE INDEX IF NOT EXISTS idx_matches_player ON matches(player_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match and returns its row ID.
func (s *Store) SaveMatch(ctx context.Context, m MatchRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO matches
		 (match_id, mode, player_name, difficulty, winner, reason,
		  player_gems, opponent_gems, player_score, opponent_score,
		  player_resets, opponent_resets, duration_ms, started_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID, m.Mode, m.PlayerName, m.Difficulty, m.Winner, m.Reason,
		m.PlayerGems, m.OpponentGems, m.PlayerScore, m.OpponentScore,
		m.PlayerResets, m.OpponentResets, m.Duration.Milliseconds(), m.StartedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match %s: %w", m.MatchID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

const matchColumns = `id, match_id, mode, player_name, difficulty, winner, reason,
	player_gems, opponent_gems, player_score, opponent_score,
	player_resets, opponent_resets, duration_ms, started_at_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (MatchRecord, error) {
	var m MatchRecord
	var durationMs, startedMs int64
	var createdAt any
	err := row.Scan(
		&m.ID, &m.MatchID, &m.Mode, &m.PlayerName, &m.Difficulty, &m.Winner, &m.Reason,
		&m.PlayerGems, &m.OpponentGems, &m.PlayerScore, &m.OpponentScore,
		&m.PlayerResets, &m.OpponentResets, &durationMs, &startedMs, &createdAt,
	)
	if err != nil {
		return m, err
	}
	m.Duration = time.Duration(durationMs) * time.Millisecond
	m.StartedAt = time.UnixMilli(startedMs)
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// MatchByID retrieves a match by its match ID.
func (s *Store) MatchByID(ctx context.Context, matchID string) (MatchRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("storage: match %s: %w", matchID, ErrMatchNotFound)
	}
	if err != nil {
		return m, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return m, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 ORDER BY started_at_ms DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return matches, nil
}

// ClearMatches deletes all match history.
func (s *Store) ClearMatches(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

// Stats contains aggregated match statistics.
type Stats struct {
	Matches     int
	Wins        int
	Losses      int
	BestScore   int
	AvgGems     float64
	AvgDuration time.Duration
	ByReason    map[string]int
	LastPlayed  time.Time
}

// Stats aggregates the whole match history.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByReason: make(map[string]int)}

	var avgDurationMs float64
	var lastStartedMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN winner = 'player' THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(player_score), 0),
		        COALESCE(AVG(player_gems), 0),
		        COALESCE(AVG(duration_ms), 0),
		        COALESCE(MAX(started_at_ms), 0)
		 FROM matches`,
	).Scan(&st.Matches, &st.Wins, &st.BestScore, &st.AvgGems, &avgDurationMs, &lastStartedMs)
	if err != nil {
		return st, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	st.Losses = st.Matches - st.Wins
	st.AvgDuration = time.Duration(avgDurationMs) * time.Millisecond
	if lastStartedMs > 0 {
		st.LastPlayed = time.UnixMilli(lastStartedMs)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT reason, COUNT(*) FROM matches GROUP BY reason`)
	if err != nil {
		return st, fmt.Errorf("storage: cannot get reason stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return st, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.ByReason[reason] = n
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return st, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
