package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/session"
	"github.com/claude/imperfectcoach/internal/storage"
)

// Store abstracts the persistence layer for handlers. *storage.DB
// satisfies it; tests use an in-memory implementation.
type Store interface {
	CreateSession(ctx context.Context, id uuid.UUID, kind exercise.Kind, startedAt time.Time) error
	FinishSession(ctx context.Context, id uuid.UUID, endedAt time.Time, stats session.Stats) error
	GetSession(ctx context.Context, id uuid.UUID) (*storage.SessionRow, error)
	ListSessions(ctx context.Context, kind exercise.Kind, limit int) ([]storage.SessionRow, error)
	InsertRep(ctx context.Context, sessionID uuid.UUID, repNumber int, rep *exercise.RepResult, recordedAt time.Time) error
	ListReps(ctx context.Context, sessionID uuid.UUID) ([]storage.RepRow, error)
	SubmitScore(ctx context.Context, e storage.LeaderboardEntry) error
	TopScores(ctx context.Context, kind exercise.Kind, limit int) ([]storage.LeaderboardEntry, error)
	GetProgressStats(ctx context.Context, kind exercise.Kind) (*storage.ProgressStats, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     Store
	live   *registry
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		live:   newRegistry(),
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Live workout endpoints
	s.router.Post("/api/v1/sessions", s.handleCreateSession)
	s.router.Post("/api/v1/sessions/{id}/frames", s.handleProcessFrames)
	s.router.Post("/api/v1/sessions/{id}/finish", s.handleFinishSession)

	// History and progress
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/stats", s.handleProgressStats)

	// Leaderboard: reads are open, submissions need the API key the
	// trusted submitter holds (chain verification stays upstream).
	s.router.Get("/api/v1/leaderboard", s.handleGetLeaderboard)
	s.router.With(APIKeyAuth(s.apiKey)).Post("/api/v1/leaderboard", s.handleSubmitScore)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
