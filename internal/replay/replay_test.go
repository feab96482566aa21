package replay

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/imperfectcoach/internal/exercise"
)

func TestReadFrames(t *testing.T) {
	input := strings.Join([]string{
		`{"timestamp_ms":0,"width":640,"height":480,"keypoints":[{"name":"nose","x":320,"y":60,"score":0.9}]}`,
		``,
		`{"timestamp_ms":33,"width":640,"height":480,"keypoints":[]}`,
	}, "\n")

	frames, err := ReadFrames(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].TimestampMS != 0 || frames[1].TimestampMS != 33 {
		t.Errorf("timestamps = %d, %d", frames[0].TimestampMS, frames[1].TimestampMS)
	}
	if len(frames[0].Keypoints) != 1 || frames[0].Keypoints[0].Name != "nose" {
		t.Errorf("keypoints = %+v", frames[0].Keypoints)
	}
}

func TestReadFramesReportsBadLine(t *testing.T) {
	input := `{"timestamp_ms":0}` + "\n" + `not json`
	_, err := ReadFrames(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 error", err)
	}
}

func TestStateDBRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenStateDB(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	replayed, err := db.IsReplayed("a.jsonl", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if replayed {
		t.Error("fresh db reports file as replayed")
	}

	if err := db.MarkReplayed("a.jsonl", 100, "abc", 7); err != nil {
		t.Fatal(err)
	}

	replayed, err = db.IsReplayed("a.jsonl", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !replayed {
		t.Error("marked file not reported as replayed")
	}

	// Same path with different content replays again.
	replayed, err = db.IsReplayed("a.jsonl", 120, "def")
	if err != nil {
		t.Fatal(err)
	}
	if replayed {
		t.Error("changed file reported as replayed")
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.jsonl")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}
}

func TestRenderScoreChart(t *testing.T) {
	reps := []exercise.RepResult{
		{Exercise: exercise.KindPullup, Score: 100},
		{Exercise: exercise.KindPullup, Score: 70},
	}

	var buf bytes.Buffer
	if err := RenderScoreChart(&buf, exercise.KindPullup, reps); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, "Form scores") {
		t.Error("chart missing title")
	}
	if !strings.Contains(html, "echarts") {
		t.Error("output does not look like an echarts page")
	}
}
