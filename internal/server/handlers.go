package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/imperfectcoach/internal/engine"
	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/pose"
	"github.com/claude/imperfectcoach/internal/storage"
)

type createSessionRequest struct {
	Exercise exercise.Kind `json:"exercise"`
}

type createSessionResponse struct {
	ID        uuid.UUID     `json:"id"`
	Exercise  exercise.Kind `json:"exercise"`
	StartedAt time.Time     `json:"started_at"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if !req.Exercise.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	startedAt := time.Now()
	coach, err := engine.New(req.Exercise, nil, startedAt.UnixMilli())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := uuid.New()
	if err := s.db.CreateSession(r.Context(), id, req.Exercise, startedAt); err != nil {
		s.log.Error("creating session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	s.live.add(id, &liveSession{coach: coach})
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: id, Exercise: req.Exercise, StartedAt: startedAt})
}

type framesRequest struct {
	Frames []pose.Frame `json:"frames"`
}

type framesResponse struct {
	Outputs  []engine.Output `json:"outputs"`
	RepCount int             `json:"rep_count"`
}

// handleProcessFrames feeds a batch of pose frames to the session's
// coach. Frames carry client timestamps in milliseconds; batches for
// the same session are serialized on the session lock.
func (s *Server) handleProcessFrames(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	ls, ok := s.live.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no live session"})
		return
	}

	var req framesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if len(req.Frames) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no frames"})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	resp := framesResponse{Outputs: make([]engine.Output, 0, len(req.Frames))}
	for i := range req.Frames {
		out := ls.coach.ProcessFrame(&req.Frames[i])
		if out.RepCompleted && out.Rep != nil {
			if err := s.db.InsertRep(r.Context(), id, out.RepCount, out.Rep, time.Now()); err != nil {
				// The rep still counts in memory; losing one row is
				// recoverable via the finish-time aggregate.
				s.log.Warn("persisting rep", "session", id, "error", err)
			}
		}
		resp.Outputs = append(resp.Outputs, out)
	}
	resp.RepCount = ls.coach.Tracker().RepCount()
	writeJSON(w, http.StatusOK, resp)
}

type finishResponse struct {
	ID       uuid.UUID        `json:"id"`
	Exercise exercise.Kind    `json:"exercise"`
	Stats    sessionStatsJSON `json:"stats"`
	Earned   []string         `json:"achievements"`
}

type sessionStatsJSON struct {
	RepCount      int     `json:"rep_count"`
	BestScore     int     `json:"best_score"`
	AvgScore      float64 `json:"avg_score"`
	AvgRepTime    float64 `json:"avg_rep_time_sec"`
	StdDevRepTime float64 `json:"stddev_rep_time_sec"`
	Elapsed       string  `json:"elapsed"`
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	ls, ok := s.live.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no live session"})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := time.Now()
	stats := ls.coach.Stats(now.UnixMilli())
	if err := s.db.FinishSession(r.Context(), id, now, stats); err != nil {
		s.log.Error("finishing session", "session", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to finish session"})
		return
	}
	s.live.remove(id)

	writeJSON(w, http.StatusOK, finishResponse{
		ID:       id,
		Exercise: ls.coach.Kind(),
		Stats: sessionStatsJSON{
			RepCount:      stats.RepCount,
			BestScore:     stats.BestScore,
			AvgScore:      stats.AvgScore,
			AvgRepTime:    stats.AvgRepTime,
			StdDevRepTime: stats.StdDevRepTime,
			Elapsed:       stats.Elapsed,
		},
		Earned: ls.coach.Tracker().Achievements(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	kind := exercise.Kind(r.URL.Query().Get("exercise"))
	if kind != "" && !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	sessions, err := s.db.ListSessions(r.Context(), kind, queryInt(r, "limit"))
	if err != nil {
		s.log.Error("listing sessions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = []storage.SessionRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	row, err := s.db.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		s.log.Error("getting session", "session", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get session"})
		return
	}

	reps, err := s.db.ListReps(r.Context(), id)
	if err != nil {
		s.log.Error("listing reps", "session", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reps"})
		return
	}
	if reps == nil {
		reps = []storage.RepRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": row, "reps": reps})
}

func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	kind := exercise.Kind(r.URL.Query().Get("exercise"))
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise query parameter required"})
		return
	}

	entries, err := s.db.TopScores(r.Context(), kind, queryInt(r, "limit"))
	if err != nil {
		s.log.Error("querying leaderboard", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to query leaderboard"})
		return
	}
	if entries == nil {
		entries = []storage.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

type submitScoreRequest struct {
	Exercise    exercise.Kind `json:"exercise"`
	Address     string        `json:"address"`
	DisplayName string        `json:"display_name"`
	BestScore   int           `json:"best_score"`
	RepCount    int           `json:"rep_count"`
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if !req.Exercise.Valid() || req.Address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise and address are required"})
		return
	}
	if req.BestScore < 0 || req.BestScore > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "best_score must be 0-100"})
		return
	}

	err := s.db.SubmitScore(r.Context(), storage.LeaderboardEntry{
		Exercise:    req.Exercise,
		Address:     req.Address,
		DisplayName: req.DisplayName,
		BestScore:   req.BestScore,
		RepCount:    req.RepCount,
	})
	if err != nil {
		s.log.Error("submitting score", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to submit score"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProgressStats(w http.ResponseWriter, r *http.Request) {
	kind := exercise.Kind(r.URL.Query().Get("exercise"))
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise query parameter required"})
		return
	}

	stats, err := s.db.GetProgressStats(r.Context(), kind)
	if err != nil {
		s.log.Error("aggregating stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to aggregate stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
