// Package jump implements the vertical-jump rep state machine:
// GROUNDED to AIRBORNE and back against a calibrated ground level,
// scoring height and landing mechanics on touchdown.
package jump

import (
	"math"
	"strings"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/pose"
)

// Config holds the pixel and angle thresholds for jump detection and
// scoring.
type Config struct {
	// AirborneThresholdPx is how far above ground level the average
	// ankle must rise to register liftoff. Absorbs camera noise
	// without needing sub-pixel precision.
	AirborneThresholdPx float64
	// KneeAsymmetryMaxDeg is the left/right knee difference at landing
	// above which the landing score is capped.
	KneeAsymmetryMaxDeg float64
	// PowerBonusMinHeightPx is the minimum jump height for the
	// late-session power bonus.
	PowerBonusMinHeightPx float64
	// PowerBonusMinReps is the completed-rep count required before the
	// power bonus applies.
	PowerBonusMinReps int
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		AirborneThresholdPx:   30,
		KneeAsymmetryMaxDeg:   20,
		PowerBonusMinHeightPx: 50,
		PowerBonusMinReps:     3,
	}
}

// required is the lower-body set gating jump processing.
var required = []string{
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
	pose.LeftAnkle, pose.RightAnkle,
}

// Processor tracks one subject through jump reps. Ground level must be
// calibrated (SetGroundLevel) before frames enter the counted state
// machine. Not safe for concurrent use.
type Processor struct {
	cfg   Config
	phase exercise.Phase

	groundLevel float64
	calibrated  bool

	minAnkleY float64
	reps      int
}

// New returns a Processor in the GROUNDED phase, uncalibrated.
func New(cfg Config) *Processor {
	return &Processor{cfg: cfg, phase: exercise.PhaseGrounded}
}

func (p *Processor) Kind() exercise.Kind { return exercise.KindJump }
func (p *Processor) Phase() exercise.Phase { return p.phase }

// Calibrated reports whether a ground level has been set.
func (p *Processor) Calibrated() bool { return p.calibrated }

// SetGroundLevel fixes the resting ankle height used as the airborne
// baseline. Fixed until Reset.
func (p *Processor) SetGroundLevel(y float64) {
	p.groundLevel = y
	p.calibrated = true
}

// Reset returns the processor to its session-start state, dropping the
// calibration.
func (p *Processor) Reset() {
	p.phase = exercise.PhaseGrounded
	p.calibrated = false
	p.groundLevel = 0
	p.minAnkleY = 0
	p.reps = 0
}

// Process consumes one frame. Uncalibrated frames defer to the
// readiness evaluator, which owns calibration progress.
func (p *Processor) Process(f *pose.Frame) exercise.FrameResult {
	if !f.AllVisible(exercise.MinConfidence, required...) {
		return exercise.FrameResult{
			Outcome:  exercise.OutcomeFeedback,
			Feedback: "Make sure your full body is in view!",
			Phase:    p.phase,
		}
	}

	if !p.calibrated {
		return exercise.FrameResult{Outcome: exercise.OutcomeNotApplicable, Phase: p.phase}
	}

	lh, _ := f.Lookup(pose.LeftHip)
	rh, _ := f.Lookup(pose.RightHip)
	lk, _ := f.Lookup(pose.LeftKnee)
	rk, _ := f.Lookup(pose.RightKnee)
	la, _ := f.Lookup(pose.LeftAnkle)
	ra, _ := f.Lookup(pose.RightAnkle)

	leftKnee := pose.Angle(lh.Point(), lk.Point(), la.Point())
	rightKnee := pose.Angle(rh.Point(), rk.Point(), ra.Point())
	avgAnkleY := (la.Y + ra.Y) / 2

	angles := map[string]float64{
		"left_knee":  leftKnee,
		"right_knee": rightKnee,
	}

	airborne := avgAnkleY < p.groundLevel-p.cfg.AirborneThresholdPx

	switch p.phase {
	case exercise.PhaseGrounded:
		if airborne {
			p.phase = exercise.PhaseAirborne
			p.minAnkleY = avgAnkleY
			return exercise.FrameResult{
				Outcome:  exercise.OutcomePhaseChange,
				Feedback: "Explode upward!",
				Phase:    p.phase,
				Angles:   angles,
			}
		}

	case exercise.PhaseAirborne:
		if avgAnkleY < p.minAnkleY {
			p.minAnkleY = avgAnkleY
		}
		if !airborne {
			rep, feedback := p.completeRep(leftKnee, rightKnee, f.TimestampMS)
			p.phase = exercise.PhaseGrounded
			return exercise.FrameResult{
				Outcome:      exercise.OutcomeRepComplete,
				Feedback:     feedback,
				Phase:        p.phase,
				RepCompleted: true,
				Rep:          rep,
				Angles:       angles,
			}
		}
	}

	return exercise.FrameResult{
		Outcome: exercise.OutcomeFeedback,
		Phase:   p.phase,
		Angles:  angles,
	}
}

// completeRep scores a landing: height 60%, landing mechanics 35%,
// plus the late-session power bonus, clamped to [0,100].
func (p *Processor) completeRep(leftKnee, rightKnee float64, ts int64) (*exercise.RepResult, string) {
	height := p.groundLevel - p.minAnkleY
	var issues []string

	heightScore, heightPhrase := scoreHeight(height)
	if heightScore <= 50 {
		issues = append(issues, exercise.IssueLowJump)
	}

	avgKnee := (leftKnee + rightKnee) / 2
	landingScore, landingPhrase := scoreLanding(avgKnee)
	if landingScore == 30 {
		issues = append(issues, exercise.IssueStiffLanding)
	}

	kneeDiff := math.Abs(leftKnee - rightKnee)
	if kneeDiff > p.cfg.KneeAsymmetryMaxDeg {
		landingScore = max(30, landingScore-20)
		issues = append(issues, exercise.IssueAsymmetricLanding)
	}

	bonus := 0
	if p.reps >= p.cfg.PowerBonusMinReps && height >= p.cfg.PowerBonusMinHeightPx {
		bonus = 10
	}
	p.reps++

	score := int(math.Round(float64(heightScore)*0.6 + float64(landingScore)*0.35 + float64(bonus)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	rep := &exercise.RepResult{
		Exercise: exercise.KindJump,
		Score:    score,
		Issues:   issues,
		Details: map[string]float64{
			"jump_height_px":   height,
			"landing_knee_avg": avgKnee,
			"knee_asymmetry":   kneeDiff,
		},
		TimestampMS: ts,
	}
	return rep, composeFeedback(height, landingScore, heightPhrase, landingPhrase)
}

func scoreHeight(px float64) (int, string) {
	switch {
	case px >= 80:
		return 100, "Incredible height!"
	case px >= 60:
		return 85, "Great explosive jump!"
	case px >= 40:
		return 70, "Good jump!"
	case px >= 25:
		return 50, "Nice hop — now drive harder off the ground."
	default:
		return 25, "Explode up — jump higher!"
	}
}

func scoreLanding(avgKnee float64) (int, string) {
	switch {
	case avgKnee < 120:
		return 100, "Perfect soft landing!"
	case avgKnee < 140:
		return 85, "Good controlled landing."
	case avgKnee < 160:
		return 60, "Bend your knees more when you land."
	default:
		return 30, "Land softer — absorb with your knees!"
	}
}

// composeFeedback picks what leads the cue: a strong jump leads with
// height praise, a strong landing leads with landing praise, otherwise
// both phrases are combined.
func composeFeedback(height float64, landingScore int, heightPhrase, landingPhrase string) string {
	switch {
	case height >= 60:
		if landingScore < 70 {
			return heightPhrase + " " + landingPhrase
		}
		return heightPhrase
	case landingScore >= 85:
		return strings.TrimSpace(landingPhrase + " " + heightPhrase)
	default:
		return heightPhrase + " " + landingPhrase
	}
}
