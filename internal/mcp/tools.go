package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// parseKind validates an optional exercise filter. Empty means all.
func parseKind(s string) (exercise.Kind, bool) {
	kind := exercise.Kind(s)
	if s != "" && !kind.Valid() {
		return "", false
	}
	return kind, true
}

// --- Tool definitions ---

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("List recent workout sessions with rep counts, scores, and timing statistics. Newest first."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise"), mcp.Enum("pullup", "jump")),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 50.")),
)

var toolGetSessionReps = mcp.NewTool("get_session_reps",
	mcp.WithDescription("Get the rep-by-rep breakdown of one session: score, form issues, and measured angles/heights per rep."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetLeaderboard = mcp.NewTool("get_leaderboard",
	mcp.WithDescription("Get the leaderboard for an exercise, best score first."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise to rank"), mcp.Enum("pullup", "jump")),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 20.")),
)

var toolGetProgressStats = mcp.NewTool("get_progress_stats",
	mcp.WithDescription("All-time aggregates for an exercise: total sessions and reps, best and average form score, first and last training dates."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise to summarize"), mcp.Enum("pullup", "jump")),
)

// --- Tool handlers ---

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, ok := parseKind(req.GetString("exercise", ""))
	if !ok {
		return mcp.NewToolResultError("unknown exercise"), nil
	}
	limit := req.GetInt("limit", 50)

	sessions, err := h.ds.ListSessions(ctx, kind, limit)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionReps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session_id: " + err.Error()), nil
	}

	session, err := h.ds.GetSession(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session_reps session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	reps, err := h.ds.ListReps(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session_reps reps", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"session": session,
		"reps":    reps,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindStr, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	kind := exercise.Kind(kindStr)
	if !kind.Valid() {
		return mcp.NewToolResultError("unknown exercise"), nil
	}
	limit := req.GetInt("limit", 20)

	entries, err := h.ds.TopScores(ctx, kind, limit)
	if err != nil {
		h.log.Error("mcp get_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindStr, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	kind := exercise.Kind(kindStr)
	if !kind.Valid() {
		return mcp.NewToolResultError("unknown exercise"), nil
	}

	stats, err := h.ds.GetProgressStats(ctx, kind)
	if err != nil {
		h.log.Error("mcp get_progress_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
