// Package engine wires the per-frame pipeline: keypoints flow through
// the readiness evaluator (while not mid-rep), the exercise processor,
// the feedback selector, and the session aggregator. Processing is
// frame-synchronous — one frame runs to completion before the next.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/exercise/jump"
	"github.com/claude/imperfectcoach/internal/exercise/pullup"
	"github.com/claude/imperfectcoach/internal/feedback"
	"github.com/claude/imperfectcoach/internal/pose"
	"github.com/claude/imperfectcoach/internal/readiness"
	"github.com/claude/imperfectcoach/internal/session"
)

// Output is the per-frame result handed to the UI/application layer.
type Output struct {
	Feedback     string                `json:"feedback,omitempty"`
	Phase        exercise.Phase        `json:"phase,omitempty"`
	RepCompleted bool                  `json:"rep_completed"`
	Rep          *exercise.RepResult   `json:"rep,omitempty"`
	Angles       map[string]float64    `json:"angles,omitempty"`
	Speak        *exercise.SpeakHint   `json:"speak,omitempty"`
	Readiness    *readiness.Assessment `json:"readiness,omitempty"`
	Achievements []string              `json:"achievements,omitempty"`
	RepCount     int                   `json:"rep_count"`
}

// Coach runs one workout session. It owns the session's mutable state
// exclusively; callers must not invoke ProcessFrame concurrently.
type Coach struct {
	kind      exercise.Kind
	evaluator *readiness.Evaluator
	processor exercise.Processor
	selector  *feedback.Selector
	tracker   *session.Tracker

	jumpProc *jump.Processor // nil for non-jump sessions
}

// New creates a Coach for the given exercise. A nil rng gives
// time-seeded phrase selection; tests pass a fixed source.
func New(kind exercise.Kind, rng *rand.Rand, startMS int64) (*Coach, error) {
	c := &Coach{
		kind:     kind,
		selector: feedback.NewSelector(rng),
		tracker:  session.NewTracker(kind, startMS),
	}

	switch kind {
	case exercise.KindPullup:
		c.evaluator = readiness.NewEvaluator(readiness.PullupConfig())
		c.processor = pullup.New(pullup.DefaultConfig())
	case exercise.KindJump:
		c.evaluator = readiness.NewEvaluator(readiness.JumpConfig())
		jp := jump.New(jump.DefaultConfig())
		c.jumpProc = jp
		c.processor = jp
	default:
		return nil, fmt.Errorf("unknown exercise %q", kind)
	}
	return c, nil
}

// Kind returns the session's exercise.
func (c *Coach) Kind() exercise.Kind { return c.kind }

// Tracker exposes the session aggregate for stats queries.
func (c *Coach) Tracker() *session.Tracker { return c.tracker }

// Stats returns the running statistics as of nowMS.
func (c *Coach) Stats(nowMS int64) session.Stats { return c.tracker.Stats(nowMS) }

// ProcessFrame runs one frame through the pipeline and returns the
// UI-facing output. It never fails; degenerate frames degrade to
// readiness feedback.
func (c *Coach) ProcessFrame(f *pose.Frame) Output {
	res := c.processor.Process(f)

	// Outside the counted state machine the frame belongs to the
	// readiness evaluator, which also drives jump calibration.
	if res.Outcome == exercise.OutcomeNotApplicable {
		a := c.evaluator.Evaluate(f)
		if c.jumpProc != nil && c.evaluator.Calibrated() && !c.jumpProc.Calibrated() {
			c.jumpProc.SetGroundLevel(c.evaluator.GroundLevel())
		}
		return Output{
			Feedback:  a.Summary,
			Phase:     c.processor.Phase(),
			Readiness: &a,
			RepCount:  c.tracker.RepCount(),
		}
	}

	out := Output{
		Feedback: res.Feedback,
		Phase:    res.Phase,
		Angles:   res.Angles,
		Speak:    res.Speak,
	}

	if res.Outcome == exercise.OutcomeRepComplete && res.Rep != nil {
		out.RepCompleted = true
		out.Rep = res.Rep
		out.Achievements = c.tracker.AddRep(*res.Rep)
		// Jump reps compose their own cue; everything else goes
		// through the phrase selector.
		if out.Feedback == "" {
			out.Feedback = c.selector.ForRep(res.Rep)
		}
	}

	out.RepCount = c.tracker.RepCount()
	return out
}

// Reset returns the coach to its session-start state, including the
// jump calibration.
func (c *Coach) Reset(startMS int64) {
	c.processor.Reset()
	c.evaluator.ResetCalibration()
	c.tracker = session.NewTracker(c.kind, startMS)
}
