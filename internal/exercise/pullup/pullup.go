// Package pullup implements the pull-up rep state machine: HANGING
// (arms extended) to PULLED_UP (chin over bar) and back, with form
// scoring on the closing transition.
package pullup

import (
	"math"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/pose"
)

// Config holds the angle thresholds that drive phase transitions and
// scoring. Supplied statically by the caller; the processor never
// reads files or environment.
type Config struct {
	// ShoulderAngleMax is the hip-shoulder-elbow angle both sides must
	// drop below to reach the top.
	ShoulderAngleMax float64
	// ElbowAngleMax is the elbow angle both sides must drop below to
	// reach the top.
	ElbowAngleMax float64
	// ElbowLockoutMin is the elbow angle both sides must exceed to
	// complete the lowering transition.
	ElbowLockoutMin float64
	// FullExtensionMin is the elbow angle below which the bottom
	// extension is tagged as partial ROM.
	FullExtensionMin float64
	// AsymmetryMaxDeg is the left/right elbow difference during the
	// pull above which the rep is tagged asymmetric.
	AsymmetryMaxDeg float64
	// TopElbowMax is the elbow angle at the top above which the rep is
	// flagged shallow. Tag only; the scoring penalty was removed.
	TopElbowMax float64
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		ShoulderAngleMax: 85,
		ElbowAngleMax:    130,
		ElbowLockoutMin:  150,
		FullExtensionMin: 155,
		AsymmetryMaxDeg:  30,
		TopElbowMax:      90,
	}
}

// required is the 13-point arm + torso + leg set needed for form
// context. Any of these below MinConfidence blocks processing.
var required = []string{
	pose.Nose,
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
	pose.LeftAnkle, pose.RightAnkle,
}

// Processor tracks one subject through pull-up reps. Not safe for
// concurrent use; the frame loop owns it exclusively.
type Processor struct {
	cfg   Config
	phase exercise.Phase

	maxAsymmetry float64
	asymmetrySpoken bool
	shallowTop      bool
}

// New returns a Processor in the HANGING phase.
func New(cfg Config) *Processor {
	return &Processor{cfg: cfg, phase: exercise.PhaseHanging}
}

func (p *Processor) Kind() exercise.Kind { return exercise.KindPullup }
func (p *Processor) Phase() exercise.Phase { return p.phase }

// Reset returns the processor to its session-start state.
func (p *Processor) Reset() {
	p.phase = exercise.PhaseHanging
	p.resetRepTracking()
}

func (p *Processor) resetRepTracking() {
	p.maxAsymmetry = 0
	p.asymmetrySpoken = false
	p.shallowTop = false
}

// Process consumes one frame and advances the state machine. It never
// fails: missing keypoints and out-of-position frames degrade to
// feedback or a not-applicable result.
func (p *Processor) Process(f *pose.Frame) exercise.FrameResult {
	if !f.AllVisible(exercise.MinConfidence, required...) {
		return exercise.FrameResult{
			Outcome:  exercise.OutcomeFeedback,
			Feedback: "Make sure you're fully in view.",
			Phase:    p.phase,
		}
	}

	nose, _ := f.Lookup(pose.Nose)
	ls, _ := f.Lookup(pose.LeftShoulder)
	rs, _ := f.Lookup(pose.RightShoulder)
	le, _ := f.Lookup(pose.LeftElbow)
	re, _ := f.Lookup(pose.RightElbow)
	lw, _ := f.Lookup(pose.LeftWrist)
	rw, _ := f.Lookup(pose.RightWrist)
	lh, _ := f.Lookup(pose.LeftHip)
	rh, _ := f.Lookup(pose.RightHip)

	avgWristY := (lw.Y + rw.Y) / 2
	avgShoulderY := (ls.Y + rs.Y) / 2

	leftElbow := pose.Angle(ls.Point(), le.Point(), lw.Point())
	rightElbow := pose.Angle(rs.Point(), re.Point(), rw.Point())
	leftShoulder := pose.Angle(lh.Point(), ls.Point(), le.Point())
	rightShoulder := pose.Angle(rh.Point(), rs.Point(), re.Point())

	angles := map[string]float64{
		"left_elbow":     leftElbow,
		"right_elbow":    rightElbow,
		"left_shoulder":  leftShoulder,
		"right_shoulder": rightShoulder,
	}

	// Hanging precondition: wrists overhead (above shoulders in screen
	// space). Outside it the frame belongs to readiness, not the
	// counted state machine.
	if p.phase == exercise.PhaseHanging && avgWristY >= avgShoulderY {
		return exercise.FrameResult{Outcome: exercise.OutcomeNotApplicable, Phase: p.phase}
	}

	// Track asymmetry while the arms are engaged, including at the top.
	var speak *exercise.SpeakHint
	engaged := p.phase == exercise.PhasePulledUp ||
		leftElbow < p.cfg.ElbowAngleMax || rightElbow < p.cfg.ElbowAngleMax
	if engaged {
		diff := math.Abs(leftElbow - rightElbow)
		if diff > p.maxAsymmetry {
			p.maxAsymmetry = diff
		}
		if diff > p.cfg.AsymmetryMaxDeg && !p.asymmetrySpoken {
			p.asymmetrySpoken = true
			speak = &exercise.SpeakHint{
				Issue:  exercise.IssueAsymmetry,
				Phrase: "Pull evenly with both arms!",
			}
		}
	}

	switch p.phase {
	case exercise.PhaseHanging:
		atTop := leftShoulder < p.cfg.ShoulderAngleMax && rightShoulder < p.cfg.ShoulderAngleMax &&
			leftElbow < p.cfg.ElbowAngleMax && rightElbow < p.cfg.ElbowAngleMax
		if atTop {
			// Shoulder and elbow thresholds alone are not enough: the
			// chin must clear the bar, otherwise shallow partials would
			// count. Hold the phase and cue instead.
			if nose.Y >= avgWristY {
				return exercise.FrameResult{
					Outcome:  exercise.OutcomeFeedback,
					Feedback: "Get your chin over the bar!",
					Phase:    p.phase,
					Angles:   angles,
					Speak:    speak,
				}
			}
			p.phase = exercise.PhasePulledUp
			p.shallowTop = leftElbow > p.cfg.TopElbowMax || rightElbow > p.cfg.TopElbowMax
			return exercise.FrameResult{
				Outcome:  exercise.OutcomePhaseChange,
				Feedback: "Good! Now lower with control.",
				Phase:    p.phase,
				Angles:   angles,
				Speak:    speak,
			}
		}

	case exercise.PhasePulledUp:
		if leftElbow > p.cfg.ElbowLockoutMin && rightElbow > p.cfg.ElbowLockoutMin {
			rep := p.completeRep(leftElbow, rightElbow, f.TimestampMS, &speak)
			p.phase = exercise.PhaseHanging
			p.resetRepTracking()
			return exercise.FrameResult{
				Outcome:      exercise.OutcomeRepComplete,
				Phase:        p.phase,
				RepCompleted: true,
				Rep:          rep,
				Angles:       angles,
				Speak:        speak,
			}
		}
	}

	return exercise.FrameResult{
		Outcome: exercise.OutcomeFeedback,
		Phase:   p.phase,
		Angles:  angles,
		Speak:   speak,
	}
}

// completeRep scores the rep at the lockout transition: base 100,
// −30 for asymmetry during the pull, −25 for a partial bottom
// extension, floored at 0.
func (p *Processor) completeRep(leftElbow, rightElbow float64, ts int64, speak **exercise.SpeakHint) *exercise.RepResult {
	score := 100
	var issues []string

	if p.maxAsymmetry > p.cfg.AsymmetryMaxDeg {
		issues = append(issues, exercise.IssueAsymmetry)
		score -= 30
	}
	if leftElbow < p.cfg.FullExtensionMin || rightElbow < p.cfg.FullExtensionMin {
		issues = append(issues, exercise.IssuePartialBottomROM)
		score -= 25
		if *speak == nil {
			*speak = &exercise.SpeakHint{
				Issue:  exercise.IssuePartialBottomROM,
				Phrase: "Fully extend your arms at the bottom.",
			}
		}
	}
	// Shallow-top reps are tagged for history but carry no deduction;
	// the old penalty was removed as flawed.
	if p.shallowTop {
		issues = append(issues, exercise.IssuePartialTopROM)
	}

	if score < 0 {
		score = 0
	}

	return &exercise.RepResult{
		Exercise: exercise.KindPullup,
		Score:    score,
		Issues:   issues,
		Details: map[string]float64{
			"left_elbow_bottom":  leftElbow,
			"right_elbow_bottom": rightElbow,
			"max_asymmetry_deg":  p.maxAsymmetry,
		},
		TimestampMS: ts,
	}
}
