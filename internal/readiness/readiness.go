// Package readiness evaluates, per frame, whether the subject is
// positioned well enough to begin exercising, independent of the rep
// state machines. For jumps it also owns ground-level calibration.
package readiness

import (
	"fmt"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/pose"
)

// Category classifies a readiness issue.
type Category string

const (
	CategoryVisibility  Category = "visibility"
	CategoryPositioning Category = "positioning"
	CategoryStability   Category = "stability"
	CategoryPosture     Category = "posture"
)

// Severity ranks how strongly an issue blocks the session.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Level buckets the numeric score into a qualitative rating.
type Level string

const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelFair      Level = "fair"
	LevelPoor      Level = "poor"
)

// Issue is one categorized problem with a suggested correction.
type Issue struct {
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Correction string   `json:"correction"`
}

// Assessment is the per-frame readiness evaluation. Recomputed from
// scratch every frame; only calibration progress persists between
// frames.
type Assessment struct {
	Level      Level   `json:"level"`
	Score      int     `json:"score"`
	Issues     []Issue `json:"issues"`
	Summary    string  `json:"summary"`
	CanProceed bool    `json:"can_proceed"`

	// Jump calibration state. Progress is 0..1.
	CalibrationProgress float64 `json:"calibration_progress,omitempty"`
	Calibrated          bool    `json:"calibrated,omitempty"`
}

// Config is the exercise-specific readiness tuning, supplied
// statically by the caller.
type Config struct {
	RequiredKeypoints []string
	MinConfidence     float64
	// CenterToleranceFrac is the allowed horizontal offset of the body
	// center from the frame center, as a fraction of frame width.
	CenterToleranceFrac float64
	// MinVerticalExtentFrac is the minimum body height as a fraction
	// of frame height; smaller means the subject is too far away.
	MinVerticalExtentFrac float64
	// StandingKneeAngleMin, when > 0, requires straight legs before
	// calibration counts a frame.
	StandingKneeAngleMin float64
	// Stance width as a multiple of shoulder width. Zero values
	// disable the check.
	StanceWidthMin float64
	StanceWidthMax float64
	// CalibrationFrames is the number of consecutive valid standing
	// frames needed to fix the ground level. Zero disables
	// calibration.
	CalibrationFrames int
	// MinScore is the numeric gate for CanProceed.
	MinScore int
}

// PullupConfig returns the readiness tuning for pull-ups: full-body
// visibility and framing only, no calibration.
func PullupConfig() Config {
	return Config{
		RequiredKeypoints: []string{
			pose.Nose,
			pose.LeftShoulder, pose.RightShoulder,
			pose.LeftElbow, pose.RightElbow,
			pose.LeftWrist, pose.RightWrist,
			pose.LeftHip, pose.RightHip,
			pose.LeftKnee, pose.RightKnee,
			pose.LeftAnkle, pose.RightAnkle,
		},
		MinConfidence:         exercise.MinConfidence,
		CenterToleranceFrac:   0.20,
		MinVerticalExtentFrac: 0.40,
		MinScore:              60,
	}
}

// JumpConfig returns the readiness tuning for jumps, including the
// standing-posture checks that gate ground-level calibration.
func JumpConfig() Config {
	return Config{
		RequiredKeypoints: []string{
			pose.LeftShoulder, pose.RightShoulder,
			pose.LeftHip, pose.RightHip,
			pose.LeftKnee, pose.RightKnee,
			pose.LeftAnkle, pose.RightAnkle,
		},
		MinConfidence:         exercise.MinConfidence,
		CenterToleranceFrac:   0.20,
		MinVerticalExtentFrac: 0.40,
		StandingKneeAngleMin:  160,
		StanceWidthMin:        0.5,
		StanceWidthMax:        2.0,
		CalibrationFrames:     30,
		MinScore:              60,
	}
}

// Severity penalties. High-severity issues dominate the score.
const (
	penaltyHigh   = 40
	penaltyMedium = 20
	penaltyLow    = 10
)

// Evaluator assesses frames against one exercise's readiness config.
// The only cross-frame state is the calibration counter; everything
// else is recomputed per frame. Not safe for concurrent use.
type Evaluator struct {
	cfg Config

	stableFrames int
	groundSum    float64
	groundLevel  float64
	calibrated   bool
}

// NewEvaluator returns an Evaluator for the given config.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Calibrated reports whether the jump ground level has been fixed.
func (e *Evaluator) Calibrated() bool { return e.calibrated }

// GroundLevel returns the calibrated resting ankle height. Only
// meaningful once Calibrated reports true.
func (e *Evaluator) GroundLevel() float64 { return e.groundLevel }

// ResetCalibration drops the fixed ground level and restarts the
// consecutive-frame counter.
func (e *Evaluator) ResetCalibration() {
	e.stableFrames = 0
	e.groundSum = 0
	e.groundLevel = 0
	e.calibrated = false
}

// Evaluate assesses one frame. It is callable every frame, including
// frames with zero detected keypoints, and never fails.
func (e *Evaluator) Evaluate(f *pose.Frame) Assessment {
	var issues []Issue

	visible := make([]pose.Keypoint, 0, len(e.cfg.RequiredKeypoints))
	missing := 0
	for _, name := range e.cfg.RequiredKeypoints {
		kp, ok := f.Visible(name, e.cfg.MinConfidence)
		if !ok {
			missing++
			continue
		}
		visible = append(visible, kp)
	}

	// Nothing usable in frame: worst-case assessment, no math on an
	// empty bounding box.
	if len(visible) == 0 {
		a := Assessment{
			Level: LevelPoor,
			Score: 0,
			Issues: []Issue{{
				Category:   CategoryVisibility,
				Severity:   SeverityHigh,
				Correction: "Step into view of the camera.",
			}},
			Summary:    "No one detected — step into view of the camera.",
			CanProceed: false,
		}
		e.updateCalibration(f, false)
		e.fillCalibration(&a)
		return a
	}

	if missing > 0 {
		frac := float64(missing) / float64(len(e.cfg.RequiredKeypoints))
		sev := SeverityLow
		switch {
		case frac > 0.5:
			sev = SeverityHigh
		case frac > 0.2:
			sev = SeverityMedium
		}
		issues = append(issues, Issue{
			Category:   CategoryVisibility,
			Severity:   sev,
			Correction: "Make sure your whole body is visible.",
		})
	}

	issues = append(issues, e.framingIssues(f, visible)...)
	issues = append(issues, e.postureIssues(f)...)

	score := 100
	for _, is := range issues {
		switch is.Severity {
		case SeverityHigh:
			score -= penaltyHigh
		case SeverityMedium:
			score -= penaltyMedium
		case SeverityLow:
			score -= penaltyLow
		}
	}
	if score < 0 {
		score = 0
	}

	highPresent := false
	for _, is := range issues {
		if is.Severity == SeverityHigh {
			highPresent = true
			break
		}
	}

	a := Assessment{
		Level:      levelFor(score),
		Score:      score,
		Issues:     issues,
		CanProceed: !highPresent && score >= e.cfg.MinScore,
	}
	a.Summary = summarize(&a)

	e.updateCalibration(f, len(issues) == 0)
	e.fillCalibration(&a)
	return a
}

func levelFor(score int) Level {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 55:
		return LevelFair
	default:
		return LevelPoor
	}
}

func summarize(a *Assessment) string {
	if len(a.Issues) == 0 {
		return "You're all set — ready to go!"
	}
	if len(a.Issues) == 1 {
		return a.Issues[0].Correction
	}
	return fmt.Sprintf("%s (%d more to fix)", a.Issues[0].Correction, len(a.Issues)-1)
}

// framingIssues checks horizontal centering and apparent body size
// using the bounding box of the visible required keypoints.
func (e *Evaluator) framingIssues(f *pose.Frame, visible []pose.Keypoint) []Issue {
	if f.Width <= 0 || f.Height <= 0 {
		return nil
	}

	minX, maxX := visible[0].X, visible[0].X
	minY, maxY := visible[0].Y, visible[0].Y
	for _, kp := range visible[1:] {
		minX = min(minX, kp.X)
		maxX = max(maxX, kp.X)
		minY = min(minY, kp.Y)
		maxY = max(maxY, kp.Y)
	}

	var issues []Issue

	center := (minX + maxX) / 2
	offset := center - f.Width/2
	if offset < 0 {
		offset = -offset
	}
	if tol := e.cfg.CenterToleranceFrac * f.Width; offset > tol {
		sev := SeverityMedium
		if offset > 2*tol {
			sev = SeverityHigh
		}
		issues = append(issues, Issue{
			Category:   CategoryPositioning,
			Severity:   sev,
			Correction: "Move to the center of the frame.",
		})
	}

	if (maxY-minY)/f.Height < e.cfg.MinVerticalExtentFrac {
		issues = append(issues, Issue{
			Category:   CategoryPositioning,
			Severity:   SeverityMedium,
			Correction: "Step closer to the camera.",
		})
	}

	return issues
}

// postureIssues runs the jump-specific standing checks: straight legs
// and a stance near shoulder width.
func (e *Evaluator) postureIssues(f *pose.Frame) []Issue {
	if e.cfg.StandingKneeAngleMin <= 0 {
		return nil
	}

	lh, ok1 := f.Visible(pose.LeftHip, e.cfg.MinConfidence)
	rh, ok2 := f.Visible(pose.RightHip, e.cfg.MinConfidence)
	lk, ok3 := f.Visible(pose.LeftKnee, e.cfg.MinConfidence)
	rk, ok4 := f.Visible(pose.RightKnee, e.cfg.MinConfidence)
	la, ok5 := f.Visible(pose.LeftAnkle, e.cfg.MinConfidence)
	ra, ok6 := f.Visible(pose.RightAnkle, e.cfg.MinConfidence)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		// Visibility already flagged; posture cannot be judged.
		return nil
	}

	var issues []Issue

	leftKnee := pose.Angle(lh.Point(), lk.Point(), la.Point())
	rightKnee := pose.Angle(rh.Point(), rk.Point(), ra.Point())
	if leftKnee < e.cfg.StandingKneeAngleMin || rightKnee < e.cfg.StandingKneeAngleMin {
		issues = append(issues, Issue{
			Category:   CategoryPosture,
			Severity:   SeverityMedium,
			Correction: "Stand tall with your legs straight.",
		})
	}

	if e.cfg.StanceWidthMin > 0 {
		ls, okL := f.Visible(pose.LeftShoulder, e.cfg.MinConfidence)
		rs, okR := f.Visible(pose.RightShoulder, e.cfg.MinConfidence)
		if okL && okR {
			shoulderWidth := abs(rs.X - ls.X)
			ankleWidth := abs(ra.X - la.X)
			if shoulderWidth > 0 {
				ratio := ankleWidth / shoulderWidth
				if ratio < e.cfg.StanceWidthMin || ratio > e.cfg.StanceWidthMax {
					issues = append(issues, Issue{
						Category:   CategoryStability,
						Severity:   SeverityLow,
						Correction: "Set your feet about shoulder-width apart.",
					})
				}
			}
		}
	}

	return issues
}

// updateCalibration advances or resets the consecutive-valid-frame
// counter. Any violation resets to zero; the ground level is the mean
// resting ankle height over the qualifying window and stays fixed once
// set.
func (e *Evaluator) updateCalibration(f *pose.Frame, validStanding bool) {
	if e.cfg.CalibrationFrames <= 0 || e.calibrated {
		return
	}
	if !validStanding {
		e.stableFrames = 0
		e.groundSum = 0
		return
	}

	la, ok1 := f.Visible(pose.LeftAnkle, e.cfg.MinConfidence)
	ra, ok2 := f.Visible(pose.RightAnkle, e.cfg.MinConfidence)
	if !ok1 || !ok2 {
		e.stableFrames = 0
		e.groundSum = 0
		return
	}

	e.stableFrames++
	e.groundSum += (la.Y + ra.Y) / 2
	if e.stableFrames >= e.cfg.CalibrationFrames {
		e.groundLevel = e.groundSum / float64(e.stableFrames)
		e.calibrated = true
	}
}

func (e *Evaluator) fillCalibration(a *Assessment) {
	if e.cfg.CalibrationFrames <= 0 {
		return
	}
	a.Calibrated = e.calibrated
	if e.calibrated {
		a.CalibrationProgress = 1
		return
	}
	a.CalibrationProgress = float64(e.stableFrames) / float64(e.cfg.CalibrationFrames)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
