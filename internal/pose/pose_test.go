package pose

import "testing"

func testFrame() *Frame {
	return &Frame{
		Width:  640,
		Height: 480,
		Keypoints: []Keypoint{
			{Name: Nose, X: 320, Y: 100, Score: 0.9},
			{Name: LeftWrist, X: 280, Y: 60, Score: 0.8},
			{Name: RightWrist, X: 360, Y: 62, Score: 0.3},
		},
	}
}

func TestLookup(t *testing.T) {
	f := testFrame()

	kp, ok := f.Lookup(Nose)
	if !ok {
		t.Fatal("Lookup(nose) not found")
	}
	if kp.X != 320 || kp.Y != 100 {
		t.Errorf("nose position = (%v,%v), want (320,100)", kp.X, kp.Y)
	}

	// Absent names are not found, regardless of confidence handling.
	if _, ok := f.Lookup(LeftAnkle); ok {
		t.Error("Lookup(left_ankle) found, want missing")
	}
}

func TestVisible(t *testing.T) {
	f := testFrame()

	if _, ok := f.Visible(LeftWrist, 0.5); !ok {
		t.Error("left_wrist at 0.8 should be visible at threshold 0.5")
	}
	if _, ok := f.Visible(RightWrist, 0.5); ok {
		t.Error("right_wrist at 0.3 should not be visible at threshold 0.5")
	}
	// An absent keypoint behaves exactly like a low-confidence one.
	if _, ok := f.Visible(LeftHip, 0.5); ok {
		t.Error("absent keypoint should not be visible")
	}
}

func TestAllVisible(t *testing.T) {
	f := testFrame()

	if !f.AllVisible(0.5, Nose, LeftWrist) {
		t.Error("AllVisible(nose, left_wrist) = false, want true")
	}
	if f.AllVisible(0.5, Nose, RightWrist) {
		t.Error("AllVisible with low-confidence right_wrist = true, want false")
	}
	if f.AllVisible(0.5, Nose, LeftAnkle) {
		t.Error("AllVisible with absent left_ankle = true, want false")
	}
}
