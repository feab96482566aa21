package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// LeaderboardEntry is one wallet's standing for an exercise.
type LeaderboardEntry struct {
	Exercise    exercise.Kind `json:"exercise"`
	Address     string        `json:"address"`
	DisplayName string        `json:"display_name"`
	BestScore   int           `json:"best_score"`
	RepCount    int           `json:"rep_count"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SubmitScore upserts a leaderboard entry, keeping the best score and
// highest rep count ever submitted for the address.
func (db *DB) SubmitScore(ctx context.Context, e LeaderboardEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO leaderboard (exercise, address, display_name, best_score, rep_count, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (exercise, address) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   best_score   = GREATEST(leaderboard.best_score, EXCLUDED.best_score),
		   rep_count    = GREATEST(leaderboard.rep_count, EXCLUDED.rep_count),
		   updated_at   = now()`,
		string(e.Exercise), e.Address, e.DisplayName, e.BestScore, e.RepCount,
	)
	if err != nil {
		return fmt.Errorf("submitting score: %w", err)
	}
	return nil
}

// TopScores returns the leaderboard for an exercise, best first.
func (db *DB) TopScores(ctx context.Context, kind exercise.Kind, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise, address, display_name, best_score, rep_count, updated_at
		 FROM leaderboard WHERE exercise = $1
		 ORDER BY best_score DESC, rep_count DESC, updated_at ASC
		 LIMIT $2`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Exercise, &e.Address, &e.DisplayName, &e.BestScore, &e.RepCount, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
