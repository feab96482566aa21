// Package replay re-runs recorded pose streams through the coaching
// pipeline: one JSON frame per line, scored offline exactly as it
// would have been live.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/claude/imperfectcoach/internal/pose"
)

// maxLineBytes bounds a single JSONL line. Frames are small; a line
// over 1 MiB means a corrupt recording.
const maxLineBytes = 1 << 20

// ReadFrames decodes a JSONL pose recording, one frame per line.
// Blank lines are skipped; a malformed line fails with its number.
func ReadFrames(r io.Reader) ([]pose.Frame, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var frames []pose.Frame
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var f pose.Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	return frames, nil
}
