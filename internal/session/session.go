// Package session folds completed reps into running workout
// statistics: rep count, inter-rep timing mean and spread, elapsed
// time, and achievement triggers.
package session

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// Achievement names emitted by AddRep.
const (
	AchievementFirstRep    = "first_rep"
	AchievementPerfectForm = "perfect_form"
	AchievementTenClub     = "ten_club"
	AchievementConsistent  = "consistent"
	AchievementNewBest     = "new_best"
)

// consistentStdDevMax is the inter-rep timing spread (seconds) under
// which a session of five or more reps counts as metronome-consistent.
const consistentStdDevMax = 0.35

// Stats is a snapshot of the running session statistics.
type Stats struct {
	RepCount      int     `json:"rep_count"`
	AvgRepTime    float64 `json:"avg_rep_time_sec"`
	StdDevRepTime float64 `json:"stddev_rep_time_sec"`
	Elapsed       string  `json:"elapsed"`
	BestScore     int     `json:"best_score"`
	AvgScore      float64 `json:"avg_score"`
}

// Tracker accumulates a session's rep history. History is append-only;
// reps are never mutated after AddRep. Owned exclusively by the frame
// loop; not safe for concurrent use.
type Tracker struct {
	kind    exercise.Kind
	startMS int64
	reps    []exercise.RepResult
	best    int
	awarded map[string]bool
}

// NewTracker starts a session at the given timestamp.
func NewTracker(kind exercise.Kind, startMS int64) *Tracker {
	return &Tracker{
		kind:    kind,
		startMS: startMS,
		awarded: make(map[string]bool),
	}
}

// Kind returns the tracked exercise.
func (t *Tracker) Kind() exercise.Kind { return t.kind }

// RepCount returns the number of completed reps.
func (t *Tracker) RepCount() int { return len(t.reps) }

// Reps returns the rep history. Callers must not mutate it.
func (t *Tracker) Reps() []exercise.RepResult { return t.reps }

// AddRep appends a completed rep and returns any achievements it
// triggered. Session-scoped achievements fire at most once.
func (t *Tracker) AddRep(rep exercise.RepResult) []string {
	t.reps = append(t.reps, rep)

	var earned []string
	award := func(name string) {
		if !t.awarded[name] {
			t.awarded[name] = true
			earned = append(earned, name)
		}
	}

	if len(t.reps) == 1 {
		award(AchievementFirstRep)
	}
	if rep.Score == 100 {
		award(AchievementPerfectForm)
	}
	if len(t.reps) == 10 {
		award(AchievementTenClub)
	}
	if len(t.reps) > 1 && rep.Score > t.best {
		award(AchievementNewBest)
	}
	if rep.Score > t.best {
		t.best = rep.Score
	}

	if len(t.reps) >= 5 {
		_, stddev := MeanStdDev(RepTimings(t.reps))
		if stddev > 0 && stddev < consistentStdDevMax {
			award(AchievementConsistent)
		}
	}

	return earned
}

// Achievements returns every achievement awarded so far, sorted.
func (t *Tracker) Achievements() []string {
	out := make([]string, 0, len(t.awarded))
	for name := range t.awarded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Stats returns the running statistics as of nowMS.
func (t *Tracker) Stats(nowMS int64) Stats {
	avg, stddev := MeanStdDev(RepTimings(t.reps))

	var scoreSum int
	for _, r := range t.reps {
		scoreSum += r.Score
	}
	avgScore := 0.0
	if len(t.reps) > 0 {
		avgScore = float64(scoreSum) / float64(len(t.reps))
	}

	return Stats{
		RepCount:      len(t.reps),
		AvgRepTime:    avg,
		StdDevRepTime: stddev,
		Elapsed:       FormatElapsed(nowMS - t.startMS),
		BestScore:     t.best,
		AvgScore:      avgScore,
	}
}

// RepTimings converts rep timestamps to successive deltas in seconds.
func RepTimings(reps []exercise.RepResult) []float64 {
	if len(reps) < 2 {
		return nil
	}
	timings := make([]float64, 0, len(reps)-1)
	for i := 1; i < len(reps); i++ {
		timings = append(timings, float64(reps[i].TimestampMS-reps[i-1].TimestampMS)/1000)
	}
	return timings
}

// MeanStdDev returns the mean and population standard deviation of the
// timings. Zero or one rep means zero or no timings, which yields
// {0, 0} rather than a division by zero.
func MeanStdDev(timings []float64) (avg, stddev float64) {
	if len(timings) == 0 {
		return 0, 0
	}
	avg = stat.Mean(timings, nil)

	var sq float64
	for _, v := range timings {
		d := v - avg
		sq += d * d
	}
	stddev = math.Sqrt(sq / float64(len(timings)))
	return avg, stddev
}

// FormatElapsed renders a millisecond duration as zero-padded MM:SS.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
