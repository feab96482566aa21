// Package exercise defines the shared contract between the per-frame
// rep processors (pull-up, jump) and the rest of the engine: phases,
// issue tags, completed-rep results, and the tagged per-frame outcome.
package exercise

import "github.com/claude/imperfectcoach/internal/pose"

// Kind identifies a tracked exercise.
type Kind string

const (
	KindPullup Kind = "pullup"
	KindJump   Kind = "jump"
)

// Valid reports whether k names a known exercise.
func (k Kind) Valid() bool {
	return k == KindPullup || k == KindJump
}

// Phase is the discrete state of an in-progress rep cycle. Each
// exercise uses exactly two phases; a rep is emitted only on the
// transition that closes a full cycle.
type Phase string

const (
	PhaseHanging  Phase = "hanging"
	PhasePulledUp Phase = "pulled_up"
	PhaseGrounded Phase = "grounded"
	PhaseAirborne Phase = "airborne"
)

// MinConfidence is the keypoint confidence below which a detection is
// treated as not visible.
const MinConfidence = 0.5

// Issue tags attached to completed reps. Tags are deduplicated; the
// feedback selector maps them to coaching phrases.
const (
	IssueAsymmetry         = "asymmetry"
	IssuePartialBottomROM  = "partial_bottom_rom"
	IssuePartialTopROM     = "partial_top_rom"
	IssueLowJump           = "low_jump"
	IssueStiffLanding      = "stiff_landing"
	IssueAsymmetricLanding = "asymmetric_landing"
)

// RepResult is produced exactly once per completed repetition and is
// immutable afterward.
type RepResult struct {
	Exercise    Kind               `json:"exercise"`
	Score       int                `json:"score"`
	Issues      []string           `json:"issues"`
	Details     map[string]float64 `json:"details,omitempty"`
	TimestampMS int64              `json:"timestamp_ms"`
}

// HasIssue reports whether the rep carries the given tag.
func (r *RepResult) HasIssue(tag string) bool {
	for _, is := range r.Issues {
		if is == tag {
			return true
		}
	}
	return false
}

// SpeakHint is an immediate spoken cue, decoupled from the
// score-affecting issue tags so the UI can voice it without waiting
// for rep completion.
type SpeakHint struct {
	Issue  string `json:"issue"`
	Phrase string `json:"phrase"`
}

// Outcome tags a per-frame processor result. Modeling the "defer to
// readiness" case as an explicit variant keeps the state machine
// contract exhaustively testable.
type Outcome string

const (
	// OutcomeNotApplicable means the frame falls outside the counted
	// state machine (e.g. not hanging, ground level not calibrated);
	// the caller should run the readiness evaluator instead.
	OutcomeNotApplicable Outcome = "not_applicable"
	// OutcomeFeedback means the frame was consumed without a phase
	// change. Feedback text is optional.
	OutcomeFeedback Outcome = "feedback"
	// OutcomePhaseChange means the rep advanced to a new phase without
	// completing a cycle.
	OutcomePhaseChange Outcome = "phase_change"
	// OutcomeRepComplete means a full cycle closed on this frame and
	// Rep is populated.
	OutcomeRepComplete Outcome = "rep_complete"
)

// FrameResult is the per-frame output of a processor.
type FrameResult struct {
	Outcome      Outcome            `json:"outcome"`
	Feedback     string             `json:"feedback,omitempty"`
	Phase        Phase              `json:"phase,omitempty"`
	RepCompleted bool               `json:"rep_completed"`
	Rep          *RepResult         `json:"rep,omitempty"`
	Angles       map[string]float64 `json:"angles,omitempty"`
	Speak        *SpeakHint         `json:"speak,omitempty"`
}

// Processor is a per-session exercise state machine. Process is strict
// call/return: one frame is handled to completion before the next, and
// no background mutation occurs. Processors never fail; every input
// degrades to a defined FrameResult.
type Processor interface {
	Kind() Kind
	Phase() Phase
	Process(f *pose.Frame) FrameResult
	Reset()
}
