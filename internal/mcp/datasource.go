package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. *storage.DB
// satisfies it; tests use an in-memory implementation.
type DataSource interface {
	GetSession(ctx context.Context, id uuid.UUID) (*storage.SessionRow, error)
	ListSessions(ctx context.Context, kind exercise.Kind, limit int) ([]storage.SessionRow, error)
	ListReps(ctx context.Context, sessionID uuid.UUID) ([]storage.RepRow, error)
	TopScores(ctx context.Context, kind exercise.Kind, limit int) ([]storage.LeaderboardEntry, error)
	GetProgressStats(ctx context.Context, kind exercise.Kind) (*storage.ProgressStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
