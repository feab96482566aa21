package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// RepRow is a stored repetition.
type RepRow struct {
	ID         int64              `json:"id"`
	SessionID  uuid.UUID          `json:"session_id"`
	RepNumber  int                `json:"rep_number"`
	Score      int                `json:"score"`
	Issues     []string           `json:"issues"`
	Details    map[string]float64 `json:"details,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// InsertRep appends a completed rep to a session's history. Rep rows
// are append-only; there is no update path.
func (db *DB) InsertRep(ctx context.Context, sessionID uuid.UUID, repNumber int, rep *exercise.RepResult, recordedAt time.Time) error {
	details, err := json.Marshal(rep.Details)
	if err != nil {
		return fmt.Errorf("encoding rep details: %w", err)
	}

	issues := rep.Issues
	if issues == nil {
		issues = []string{}
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO reps (session_id, rep_number, score, issues, details, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id, rep_number) DO NOTHING`,
		sessionID, repNumber, rep.Score, issues, details, recordedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting rep: %w", err)
	}
	return nil
}

// ListReps returns a session's reps in order.
func (db *DB) ListReps(ctx context.Context, sessionID uuid.UUID) ([]RepRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, rep_number, score, issues, details, recorded_at
		 FROM reps WHERE session_id = $1 ORDER BY rep_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying reps: %w", err)
	}
	defer rows.Close()

	var out []RepRow
	for rows.Next() {
		var r RepRow
		var details []byte
		if err := rows.Scan(&r.ID, &r.SessionID, &r.RepNumber, &r.Score, &r.Issues, &details, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning rep: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &r.Details); err != nil {
				return nil, fmt.Errorf("decoding rep details: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
