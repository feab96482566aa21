package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/imperfectcoach/internal/engine"
	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/replay"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	input := flag.String("input", "", "JSONL recording file or directory of recordings")
	exerciseName := flag.String("exercise", "pullup", "exercise to score (pullup or jump)")
	stateDir := flag.String("state-dir", "", "state directory (default ~/.coach-replay)")
	chartPath := flag.String("chart", "", "write an HTML score chart to this path")
	seed := flag.Int64("seed", 0, "feedback RNG seed (0 = time-based)")
	force := flag.Bool("force", false, "replay files even if already processed")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("coach-replay", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Usage: coach-replay -input <recording.jsonl|dir> [-exercise pullup|jump] [-chart out.html]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	kind := exercise.Kind(*exerciseName)
	if !kind.Valid() {
		fmt.Fprintf(os.Stderr, "Error: unknown exercise %q\n", *exerciseName)
		os.Exit(1)
	}

	// Open state database
	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".coach-replay")
	}
	state, err := replay.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	files, err := collectRecordings(*input)
	if err != nil {
		log.Error("failed to list recordings", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		log.Info("no recordings found", "input", *input)
		return
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	var allReps []exercise.RepResult
	replayed, skipped := 0, 0
	for _, path := range files {
		reps, skip, err := replayFile(path, kind, rng, state, *force, log)
		if err != nil {
			log.Error("replay failed", "file", path, "error", err)
			os.Exit(1)
		}
		if skip {
			skipped++
			continue
		}
		replayed++
		allReps = append(allReps, reps...)
	}

	printSummary(allReps, replayed, skipped)

	if *chartPath != "" && len(allReps) > 0 {
		f, err := os.Create(*chartPath)
		if err != nil {
			log.Error("failed to create chart file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := replay.RenderScoreChart(f, kind, allReps); err != nil {
			log.Error("chart render failed", "error", err)
			os.Exit(1)
		}
		log.Info("chart written", "path", *chartPath)
	}
}

// collectRecordings returns the .jsonl files under input, sorted, or
// input itself if it is a file.
func collectRecordings(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		files = append(files, filepath.Join(input, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func replayFile(path string, kind exercise.Kind, rng *rand.Rand, state *replay.StateDB, force bool, log *slog.Logger) ([]exercise.RepResult, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	hash, err := replay.HashFile(path)
	if err != nil {
		return nil, false, err
	}

	if !force {
		done, err := state.IsReplayed(path, info.Size(), hash)
		if err != nil {
			return nil, false, err
		}
		if done {
			log.Info("skipping already replayed file", "file", path)
			return nil, true, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	frames, err := replay.ReadFrames(f)
	if err != nil {
		return nil, false, err
	}
	if len(frames) == 0 {
		log.Warn("empty recording", "file", path)
		return nil, false, state.MarkReplayed(path, info.Size(), hash, 0)
	}

	coach, err := engine.New(kind, rng, frames[0].TimestampMS)
	if err != nil {
		return nil, false, err
	}

	var reps []exercise.RepResult
	for i := range frames {
		out := coach.ProcessFrame(&frames[i])
		if out.RepCompleted && out.Rep != nil {
			reps = append(reps, *out.Rep)
			issues := "clean"
			if len(out.Rep.Issues) > 0 {
				issues = strings.Join(out.Rep.Issues, ",")
			}
			log.Info("rep", "file", filepath.Base(path), "n", out.RepCount,
				"score", out.Rep.Score, "issues", issues, "feedback", out.Feedback)
		}
	}

	if err := state.MarkReplayed(path, info.Size(), hash, len(reps)); err != nil {
		return nil, false, err
	}
	return reps, false, nil
}

func printSummary(reps []exercise.RepResult, replayed, skipped int) {
	fmt.Println()
	fmt.Println("=== Replay Summary ===")
	fmt.Printf("  Files replayed:   %d\n", replayed)
	fmt.Printf("  Files skipped:    %d (already replayed)\n", skipped)
	fmt.Printf("  Reps scored:      %d\n", len(reps))

	if len(reps) > 0 {
		best, sum := 0, 0
		for _, r := range reps {
			if r.Score > best {
				best = r.Score
			}
			sum += r.Score
		}
		fmt.Printf("  Best score:       %d\n", best)
		fmt.Printf("  Average score:    %.1f\n", float64(sum)/float64(len(reps)))
	}
	fmt.Println()
}
