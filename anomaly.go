package spacet

import (
	"errors"
	"math"
)

const (
	// DefaultTolerance is the swept area tolerance of the angle solver.
	DefaultTolerance = 1e-5
	// DefaultMaxIterations bounds the bisection of the angle solver.
	DefaultMaxIterations = 1000
	// DefaultTableSize is the default number of samples per period.
	DefaultTableSize = 3600
)

// ErrTableSize is returned when an angle table is requested without any sample.
var ErrTableSize = errors.New("angle table needs at least one sample")

// SweptArea returns the area swept by the radius vector from periapsis, measured from
// the focus, when the body is at angle α of the centre-parametrised ellipse of
// semi-major axis a and semi-minor axis b. SweptArea(a, b, 2π) is the area of the ellipse.
func SweptArea(a, b, α float64) float64 {
	c := math.Sqrt(math.Max(a*a-b*b, 0))
	return 0.5 * (a*b*α - b*c*math.Sin(α))
}

// AlphaByArea finds the angle at which SweptArea reaches the target area by bisection
// over [0, 2π]. It stops when the area is within tol of the target, after maxIter steps,
// or when the bracket cannot shrink any further, and returns the last midpoint either way.
func AlphaByArea(target, a, b, tol float64, maxIter int) float64 {
	lo, hi := 0.0, twoPi
	mid := math.Pi
	for i := 0; i < maxIter; i++ {
		mid = lo + (hi-lo)/2
		δ := SweptArea(a, b, mid) - target
		if math.Abs(δ) < tol {
			return mid
		}
		if δ < 0 {
			lo = mid
		} else {
			hi = mid
		}
		if next := lo + (hi-lo)/2; next == lo || next == hi {
			break
		}
	}
	return mid
}

// AngleTable maps equal fractions of one period onto the angle reached by the body,
// so that Kepler's second law holds without solving Kepler's equation at every tick.
type AngleTable []float64

// NewAngleTable builds the n samples of an orbit of semi-major axis a and semi-minor axis b.
// Sample i holds the angle at which i/n of the ellipse area has been swept.
func NewAngleTable(a, b float64, n int, tol float64, maxIter int) (AngleTable, error) {
	if n <= 0 {
		return nil, ErrTableSize
	}
	table := make(AngleTable, n)
	if a*a-b*b <= 0 {
		// Circular orbits sweep area uniformly.
		for i := range table {
			table[i] = float64(i) * twoPi / float64(n)
		}
		return table, nil
	}
	total := math.Pi * a * b
	for i := 1; i < n; i++ {
		table[i] = AlphaByArea(float64(i)/float64(n)*total, a, b, tol, maxIter)
	}
	return table, nil
}

// Index returns the sample used at the provided time for an orbit of the given period.
// Times are wrapped onto one period, and the rounding up of the very end of the period
// wraps back onto the periapsis sample. Non-finite times map onto the periapsis sample.
func (t AngleTable) Index(time, period float64) int {
	n := len(t)
	if n == 0 || !(period > 0) || math.IsInf(period, 0) || math.IsNaN(time) || math.IsInf(time, 0) {
		return 0
	}
	ft := math.Mod(time, period)
	if ft < 0 {
		ft += period
	}
	return int(math.Round(ft*float64(n)/period)) % n
}

// Alpha returns the angle reached at the provided time. Bodies without a period do not move.
func (t AngleTable) Alpha(time, period float64) float64 {
	if len(t) == 0 {
		return 0
	}
	return t[t.Index(time, period)]
}
