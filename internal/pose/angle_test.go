package pose

import (
	"math"
	"testing"
)

// TestAngleRightAngle verifies a simple 90° configuration.
func TestAngleRightAngle(t *testing.T) {
	got := Angle(Point{X: 1, Y: 0}, Point{}, Point{X: 0, Y: 1})
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("Angle = %v, want 90", got)
	}
}

// TestAngleCollinear verifies the collinear conventions: same-direction
// endpoints give 0, opposite-direction endpoints give 180.
func TestAngleCollinear(t *testing.T) {
	same := Angle(Point{X: 1, Y: 1}, Point{}, Point{X: 2, Y: 2})
	if math.Abs(same) > 1e-9 {
		t.Errorf("same-direction collinear angle = %v, want 0", same)
	}

	opposite := Angle(Point{X: -1, Y: 0}, Point{}, Point{X: 1, Y: 0})
	if math.Abs(opposite-180) > 1e-9 {
		t.Errorf("opposite-direction collinear angle = %v, want 180", opposite)
	}
}

// TestAngleDegenerate verifies the documented zero-length-vector
// convention: coincident points return 180.
func TestAngleDegenerate(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c Point
	}{
		{"a equals b", Point{X: 3, Y: 4}, Point{X: 3, Y: 4}, Point{X: 7, Y: 1}},
		{"c equals b", Point{X: 7, Y: 1}, Point{X: 3, Y: 4}, Point{X: 3, Y: 4}},
		{"all coincident", Point{X: 5, Y: 5}, Point{X: 5, Y: 5}, Point{X: 5, Y: 5}},
	}
	for _, tc := range cases {
		if got := Angle(tc.a, tc.b, tc.c); got != 180 {
			t.Errorf("%s: Angle = %v, want 180", tc.name, got)
		}
	}
}

// TestAngleRange verifies the result stays in [0,180] across a sweep of
// configurations, including near-collinear ones where a naive acos
// would leave the domain.
func TestAngleRange(t *testing.T) {
	for i := 0; i <= 360; i++ {
		rad := float64(i) * math.Pi / 180
		a := Point{X: math.Cos(rad) * 100, Y: math.Sin(rad) * 100}
		got := Angle(a, Point{}, Point{X: 100, Y: 0})
		if math.IsNaN(got) || got < 0 || got > 180 {
			t.Fatalf("Angle at %d° = %v, want value in [0,180]", i, got)
		}
	}

	// Near-collinear: floating-point dot/norm rounding must not push
	// the cosine outside [-1,1].
	got := Angle(Point{X: 1e-9, Y: 1e9}, Point{}, Point{X: -1e-9, Y: -1e9})
	if math.IsNaN(got) {
		t.Fatal("near-collinear angle is NaN")
	}
}

// TestAngleKneeExample verifies an anatomically typical configuration:
// a hip-knee-ankle triple at a slight bend.
func TestAngleKneeExample(t *testing.T) {
	hip := Point{X: 100, Y: 200}
	knee := Point{X: 105, Y: 300}
	ankle := Point{X: 100, Y: 400}

	got := Angle(hip, knee, ankle)
	if got < 170 || got > 180 {
		t.Errorf("near-straight knee angle = %v, want in (170,180]", got)
	}
}
