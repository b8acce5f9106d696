package geometry

import "math"

// DefaultRotationSnap is the increment used while the snap modifier is held.
const DefaultRotationSnap = 15.0

// NormalizeAngle maps any angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// PolarAngle is the angle of p around center in degrees.
func PolarAngle(center, p Position) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X) * 180 / math.Pi
}

// ComputeRotation returns the rotation reached by sweeping the pointer from
// start to current around center, added to initial. When snap is positive the
// total is rounded to the nearest multiple of snap.
func ComputeRotation(center, start, current Position, initial, snap float64) float64 {
	diff := PolarAngle(center, current) - PolarAngle(center, start)
	total := initial + diff
	if snap > 0 {
		total = math.Round(total/snap) * snap
	}
	return NormalizeAngle(total)
}
