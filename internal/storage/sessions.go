package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/session"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SessionRow is a stored workout session.
type SessionRow struct {
	ID            uuid.UUID     `json:"id"`
	Exercise      exercise.Kind `json:"exercise"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	RepCount      int           `json:"rep_count"`
	BestScore     int           `json:"best_score"`
	AvgScore      float64       `json:"avg_score"`
	AvgRepTime    float64       `json:"avg_rep_time_sec"`
	StdDevRepTime float64       `json:"stddev_rep_time_sec"`
}

// CreateSession inserts a new session row.
func (db *DB) CreateSession(ctx context.Context, id uuid.UUID, kind exercise.Kind, startedAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, exercise, started_at) VALUES ($1, $2, $3)`,
		id, string(kind), startedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// FinishSession stamps the end time and final statistics.
func (db *DB) FinishSession(ctx context.Context, id uuid.UUID, endedAt time.Time, stats session.Stats) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE sessions
		 SET ended_at = $2, rep_count = $3, best_score = $4, avg_score = $5,
		     avg_rep_time = $6, stddev_rep_time = $7
		 WHERE id = $1`,
		id, endedAt, stats.RepCount, stats.BestScore, stats.AvgScore,
		stats.AvgRepTime, stats.StdDevRepTime,
	)
	if err != nil {
		return fmt.Errorf("finishing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession returns one session by ID.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*SessionRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, exercise, started_at, ended_at, rep_count, best_score,
		        avg_score, avg_rep_time, stddev_rep_time
		 FROM sessions WHERE id = $1`, id)

	var s SessionRow
	err := row.Scan(&s.ID, &s.Exercise, &s.StartedAt, &s.EndedAt, &s.RepCount,
		&s.BestScore, &s.AvgScore, &s.AvgRepTime, &s.StdDevRepTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &s, nil
}

// ListSessions returns recent sessions, newest first, optionally
// filtered by exercise.
func (db *DB) ListSessions(ctx context.Context, kind exercise.Kind, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, exercise, started_at, ended_at, rep_count, best_score,
		        avg_score, avg_rep_time, stddev_rep_time
		 FROM sessions
		 WHERE ($1 = '' OR exercise = $1)
		 ORDER BY started_at DESC
		 LIMIT $2`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.ID, &s.Exercise, &s.StartedAt, &s.EndedAt, &s.RepCount,
			&s.BestScore, &s.AvgScore, &s.AvgRepTime, &s.StdDevRepTime); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
