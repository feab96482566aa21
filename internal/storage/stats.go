package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// ProgressStats summarizes all stored training for one exercise.
type ProgressStats struct {
	Exercise      exercise.Kind `json:"exercise"`
	TotalSessions int64         `json:"total_sessions"`
	TotalReps     int64         `json:"total_reps"`
	BestScore     int           `json:"best_score"`
	AvgScore      float64       `json:"avg_score"`
	FirstSession  *time.Time    `json:"first_session,omitempty"`
	LastSession   *time.Time    `json:"last_session,omitempty"`
}

// GetProgressStats aggregates sessions and reps for an exercise.
func (db *DB) GetProgressStats(ctx context.Context, kind exercise.Kind) (*ProgressStats, error) {
	stats := &ProgressStats{Exercise: kind}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(rep_count), 0), COALESCE(MAX(best_score), 0),
		        MIN(started_at), MAX(started_at)
		 FROM sessions WHERE exercise = $1`, string(kind),
	).Scan(&stats.TotalSessions, &stats.TotalReps, &stats.BestScore,
		&stats.FirstSession, &stats.LastSession)
	if err != nil {
		return nil, fmt.Errorf("aggregating sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(r.score), 0)
		 FROM reps r JOIN sessions s ON s.id = r.session_id
		 WHERE s.exercise = $1`, string(kind),
	).Scan(&stats.AvgScore)
	if err != nil {
		return nil, fmt.Errorf("averaging rep scores: %w", err)
	}

	return stats, nil
}
