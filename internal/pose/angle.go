package pose

import "math"

// Angle returns the angle ABC in degrees, in [0,180], where b is the
// vertex. The cosine is clamped to [-1,1] before inverting so
// near-collinear configurations never produce NaN.
//
// Degenerate input (either vector has zero length) returns 180 by
// convention: a missing limb segment reads as fully extended, which
// keeps the extension-gated rep transitions conservative.
func Angle(a, b, c Point) float64 {
	ux, uy := a.X-b.X, a.Y-b.Y
	vx, vy := c.X-b.X, c.Y-b.Y

	lu := math.Hypot(ux, uy)
	lv := math.Hypot(vx, vy)
	if lu == 0 || lv == 0 {
		return 180
	}

	cos := (ux*vx + uy*vy) / (lu * lv)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
