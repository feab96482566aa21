package pullup

import (
	"math"
	"testing"

	"github.com/claude/imperfectcoach/internal/exercise"
	"github.com/claude/imperfectcoach/internal/pose"
)

// buildArm places shoulder/elbow/wrist so that the hip-shoulder-elbow
// angle is shoulderDeg and the shoulder-elbow-wrist angle is elbowDeg.
// The hip sits directly below the shoulder, so the shoulder angle is
// exactly the angle between straight-down and the upper arm.
func buildArm(sx, sy, shoulderDeg, elbowDeg float64) (shoulder, elbow, wrist pose.Point) {
	shoulder = pose.Point{X: sx, Y: sy}

	phi := shoulderDeg * math.Pi / 180
	elbow = pose.Point{
		X: sx + 60*math.Sin(phi),
		Y: sy + 60*math.Cos(phi),
	}

	// Unit vector from elbow back to shoulder, rotated by the elbow
	// angle, gives the forearm direction.
	ux := (shoulder.X - elbow.X) / 60
	uy := (shoulder.Y - elbow.Y) / 60
	theta := elbowDeg * math.Pi / 180
	fx := ux*math.Cos(theta) - uy*math.Sin(theta)
	fy := ux*math.Sin(theta) + uy*math.Cos(theta)
	wrist = pose.Point{X: elbow.X + 70*fx, Y: elbow.Y + 70*fy}
	return shoulder, elbow, wrist
}

// barFrame builds a full 13-keypoint frame of a subject on the bar with
// the given per-arm angles and nose height.
func barFrame(lsDeg, leDeg, rsDeg, reDeg, noseY float64, ts int64) *pose.Frame {
	kp := func(name string, p pose.Point) pose.Keypoint {
		return pose.Keypoint{Name: name, X: p.X, Y: p.Y, Score: 0.9}
	}

	lShoulder, lElbow, lWrist := buildArm(280, 100, lsDeg, leDeg)
	rShoulder, rElbow, rWrist := buildArm(360, 100, rsDeg, reDeg)

	f := &pose.Frame{Width: 640, Height: 480, TimestampMS: ts}
	f.Keypoints = []pose.Keypoint{
		kp(pose.Nose, pose.Point{X: 320, Y: noseY}),
		kp(pose.LeftShoulder, lShoulder),
		kp(pose.RightShoulder, rShoulder),
		kp(pose.LeftElbow, lElbow),
		kp(pose.RightElbow, rElbow),
		kp(pose.LeftWrist, lWrist),
		kp(pose.RightWrist, rWrist),
		kp(pose.LeftHip, pose.Point{X: 280, Y: 230}),
		kp(pose.RightHip, pose.Point{X: 360, Y: 230}),
		kp(pose.LeftKnee, pose.Point{X: 280, Y: 310}),
		kp(pose.RightKnee, pose.Point{X: 360, Y: 310}),
		kp(pose.LeftAnkle, pose.Point{X: 280, Y: 380}),
		kp(pose.RightAnkle, pose.Point{X: 360, Y: 380}),
	}
	return f
}

func hangingFrame(ts int64) *pose.Frame {
	return barFrame(175, 175, 175, 175, 190, ts)
}

func topFrame(ts int64) *pose.Frame {
	return barFrame(40, 60, 40, 60, 40, ts)
}

func lockoutFrame(ts int64) *pose.Frame {
	return barFrame(158, 158, 158, 158, 190, ts)
}

// TestFullCycleCountsRep walks one clean rep through the machine:
// hanging, chin over the bar at the top, full lockout at the bottom.
func TestFullCycleCountsRep(t *testing.T) {
	p := New(DefaultConfig())

	res := p.Process(hangingFrame(0))
	if res.Outcome != exercise.OutcomeFeedback || res.RepCompleted {
		t.Fatalf("hanging frame: outcome = %v rep=%v, want feedback/no rep", res.Outcome, res.RepCompleted)
	}

	res = p.Process(topFrame(500))
	if res.Outcome != exercise.OutcomePhaseChange {
		t.Fatalf("top frame: outcome = %v, want phase_change", res.Outcome)
	}
	if p.Phase() != exercise.PhasePulledUp {
		t.Fatalf("phase = %v, want pulled_up", p.Phase())
	}

	res = p.Process(lockoutFrame(1000))
	if res.Outcome != exercise.OutcomeRepComplete || !res.RepCompleted || res.Rep == nil {
		t.Fatalf("lockout frame: outcome = %v, want rep_complete with payload", res.Outcome)
	}
	if res.Rep.Score != 100 {
		t.Errorf("clean rep score = %d, want 100", res.Rep.Score)
	}
	if len(res.Rep.Issues) != 0 {
		t.Errorf("clean rep issues = %v, want none", res.Rep.Issues)
	}
	if p.Phase() != exercise.PhaseHanging {
		t.Errorf("phase after rep = %v, want hanging", p.Phase())
	}
}

// TestChinBelowBarHoldsPhase verifies the shallow-partial guard: meeting
// the shoulder/elbow thresholds without the chin over the wrists must
// not advance the phase or count a rep.
func TestChinBelowBarHoldsPhase(t *testing.T) {
	p := New(DefaultConfig())
	p.Process(hangingFrame(0))

	// Angles say "top" but the nose is still below the wrists.
	res := p.Process(barFrame(40, 60, 40, 60, 150, 500))
	if res.Outcome != exercise.OutcomeFeedback {
		t.Fatalf("outcome = %v, want feedback", res.Outcome)
	}
	if res.Feedback != "Get your chin over the bar!" {
		t.Errorf("feedback = %q, want chin cue", res.Feedback)
	}
	if p.Phase() != exercise.PhaseHanging {
		t.Errorf("phase = %v, want hanging", p.Phase())
	}

	// Re-extending afterwards must not complete anything.
	res = p.Process(lockoutFrame(1000))
	if res.RepCompleted {
		t.Error("aborted pull completed a rep")
	}
}

// TestAsymmetryScoring reproduces the reference case: elbow angles 40°
// and 80° at the top (diff 40 > 30) with a clean 158° bottom gives
// exactly 100−30 = 70.
func TestAsymmetryScoring(t *testing.T) {
	p := New(DefaultConfig())
	p.Process(hangingFrame(0))

	res := p.Process(barFrame(40, 40, 40, 80, 40, 500))
	if p.Phase() != exercise.PhasePulledUp {
		t.Fatalf("phase = %v, want pulled_up", p.Phase())
	}
	if res.Speak == nil || res.Speak.Issue != exercise.IssueAsymmetry {
		t.Errorf("speak hint = %+v, want asymmetry cue at time of detection", res.Speak)
	}

	res = p.Process(lockoutFrame(1000))
	if res.Rep == nil {
		t.Fatal("no rep completed")
	}
	if !res.Rep.HasIssue(exercise.IssueAsymmetry) {
		t.Errorf("issues = %v, want asymmetry", res.Rep.Issues)
	}
	if res.Rep.HasIssue(exercise.IssuePartialBottomROM) {
		t.Errorf("issues = %v, 158° bottom should not tag partial ROM", res.Rep.Issues)
	}
	if res.Rep.Score != 70 {
		t.Errorf("score = %d, want 70", res.Rep.Score)
	}
}

// TestPartialBottomROM verifies the −25 deduction when the lockout
// passes the 150° transition but stops short of 155° full extension.
func TestPartialBottomROM(t *testing.T) {
	p := New(DefaultConfig())
	p.Process(hangingFrame(0))
	p.Process(topFrame(500))

	res := p.Process(barFrame(152, 152, 152, 152, 190, 1000))
	if res.Rep == nil {
		t.Fatal("no rep completed at 152° lockout")
	}
	if !res.Rep.HasIssue(exercise.IssuePartialBottomROM) {
		t.Errorf("issues = %v, want partial_bottom_rom", res.Rep.Issues)
	}
	if res.Rep.Score != 75 {
		t.Errorf("score = %d, want 75", res.Rep.Score)
	}
	if res.Speak == nil || res.Speak.Issue != exercise.IssuePartialBottomROM {
		t.Errorf("speak = %+v, want extension cue", res.Speak)
	}
}

// TestShallowTopTaggedNotPenalized: a top reached with barely-bent
// elbows is tagged partial_top_rom but keeps its score. The old
// deduction was removed and must stay removed.
func TestShallowTopTaggedNotPenalized(t *testing.T) {
	p := New(DefaultConfig())
	p.Process(hangingFrame(0))
	p.Process(barFrame(60, 100, 60, 100, 40, 500))

	if p.Phase() != exercise.PhasePulledUp {
		t.Fatalf("phase = %v, want pulled_up", p.Phase())
	}

	res := p.Process(lockoutFrame(1000))
	if res.Rep == nil {
		t.Fatal("no rep completed")
	}
	if !res.Rep.HasIssue(exercise.IssuePartialTopROM) {
		t.Errorf("issues = %v, want partial_top_rom tag", res.Rep.Issues)
	}
	if res.Rep.Score != 100 {
		t.Errorf("score = %d, want 100 (tag carries no penalty)", res.Rep.Score)
	}
}

// TestMissingKeypointsDegrade verifies low-confidence keypoints produce
// the visibility cue without touching the state machine.
func TestMissingKeypointsDegrade(t *testing.T) {
	p := New(DefaultConfig())

	f := hangingFrame(0)
	for i := range f.Keypoints {
		if f.Keypoints[i].Name == pose.LeftAnkle {
			f.Keypoints[i].Score = 0.2
		}
	}

	res := p.Process(f)
	if res.Outcome != exercise.OutcomeFeedback {
		t.Fatalf("outcome = %v, want feedback", res.Outcome)
	}
	if res.Feedback != "Make sure you're fully in view." {
		t.Errorf("feedback = %q, want visibility cue", res.Feedback)
	}
	if p.Phase() != exercise.PhaseHanging {
		t.Errorf("phase = %v, want hanging", p.Phase())
	}
}

// TestNotHangingDefers verifies frames with arms down are deferred to
// the readiness evaluator.
func TestNotHangingDefers(t *testing.T) {
	p := New(DefaultConfig())

	// Arms hanging by the sides: shoulder angle ~0 puts the wrists far
	// below the shoulders.
	res := p.Process(barFrame(5, 175, 5, 175, 90, 0))
	if res.Outcome != exercise.OutcomeNotApplicable {
		t.Fatalf("outcome = %v, want not_applicable", res.Outcome)
	}
}

// TestReset returns the machine to its start state mid-rep.
func TestReset(t *testing.T) {
	p := New(DefaultConfig())
	p.Process(hangingFrame(0))
	p.Process(topFrame(500))

	p.Reset()
	if p.Phase() != exercise.PhaseHanging {
		t.Errorf("phase after reset = %v, want hanging", p.Phase())
	}
	res := p.Process(lockoutFrame(1000))
	if res.RepCompleted {
		t.Error("rep completed after reset")
	}
}
