package spacet

import "math"

const (
	deg2rad = math.Pi / 180
	twoPi   = 2 * math.Pi
)

// normalizeAngle wraps an angle into [0, 2π).
func normalizeAngle(angle float64) float64 {
	wrapped := math.Mod(angle, twoPi)
	if wrapped < 0 {
		wrapped += twoPi
	}
	if wrapped >= twoPi {
		return 0
	}
	return wrapped
}

// Deg2rad converts degrees to radians in [0, 2π).
func Deg2rad(a float64) float64 {
	return normalizeAngle(a * deg2rad)
}

// Rad2deg converts radians to degrees in [0, 360).
func Rad2deg(a float64) float64 {
	return normalizeAngle(a) / deg2rad
}
