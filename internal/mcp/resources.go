package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/imperfectcoach/internal/exercise"
)

func (h *handlers) summary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	recent, err := h.ds.ListSessions(ctx, "", 10)
	if err != nil {
		return nil, err
	}

	progress := map[string]any{}
	for _, kind := range []exercise.Kind{exercise.KindPullup, exercise.KindJump} {
		stats, err := h.ds.GetProgressStats(ctx, kind)
		if err != nil {
			h.log.Warn("summary: progress query failed", "exercise", kind, "error", err)
			continue
		}
		progress[string(kind)] = stats
	}

	data, err := json.Marshal(map[string]any{
		"recent_sessions": recent,
		"progress":        progress,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
