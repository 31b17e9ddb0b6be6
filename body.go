package spacet

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// GravitationalConstant in m^3 kg^-1 s^-2.
	GravitationalConstant = 6.67259e-11
)

var (
	// ErrEccentricity is returned for open or negative eccentricities.
	ErrEccentricity = errors.New("eccentricity must be within [0, 1)")
	// ErrSemiMajorAxis is returned for negative semi-major axes, or for moons without one.
	ErrSemiMajorAxis = errors.New("semi-major axis must be positive")
	// ErrMass is returned for non-positive masses.
	ErrMass = errors.New("mass must be positive")
	// ErrRadius is returned for negative radii.
	ErrRadius = errors.New("radius must not be negative")
	// ErrAngle is returned for non-finite inclinations or orientations.
	ErrAngle = errors.New("orbit angles must be finite")
	// ErrAttached is returned when a moon already orbits another body.
	ErrAttached = errors.New("body already orbits another body")
	// ErrCycle is returned when a body would end up orbiting itself.
	ErrCycle = errors.New("body cannot orbit itself or one of its moons")
	// ErrFrozen is returned when the hierarchy is modified after it was built.
	ErrFrozen = errors.New("hierarchy is frozen once built")
)

// Body is a celestial body along with its orbit around its mother body.
// Only AddMoon links bodies together, and a link never changes afterwards.
type Body struct {
	Name   string
	Mass   float64 // kg
	Radius float64 // m
	Color  colorful.Color

	a, e, b, c float64 // semi-major axis, eccentricity, semi-minor axis, focal distance
	θ, φ       float64 // inclination and orientation of the orbit
	k          float64 // 4π²/(G·m), used for the periods of the moons
	t          float64 // period around the mother, zero for the root

	mother *Body
	moons  []*Body
	path   string
	frozen bool

	tableOnce sync.Once
	table     AngleTable
	tableErr  error

	// Pose and rendering state, owned by the tree.
	transform   *mat.Dense
	scale       float64
	alpha       float64
	offset      r3.Vec
	position    r3.Vec
	handle      Handle
	orbitHandle Handle
}

// NewBody returns a body of mass m (kg) and radius r (m) on an orbit of semi-major axis a,
// eccentricity e, inclination θ and orientation φ (radians). A zero semi-major axis is only
// valid for the root of a hierarchy.
func NewBody(name string, m, r, a, e, θ, φ float64) (*Body, error) {
	switch {
	case math.IsNaN(e) || e < 0 || e >= 1:
		return nil, fmt.Errorf("%s: %w (e=%f)", name, ErrEccentricity, e)
	case math.IsNaN(a) || math.IsInf(a, 0) || a < 0:
		return nil, fmt.Errorf("%s: %w (a=%f)", name, ErrSemiMajorAxis, a)
	case math.IsNaN(m) || math.IsInf(m, 0) || m <= 0:
		return nil, fmt.Errorf("%s: %w (m=%f)", name, ErrMass, m)
	case math.IsNaN(r) || math.IsInf(r, 0) || r < 0:
		return nil, fmt.Errorf("%s: %w (r=%f)", name, ErrRadius, r)
	case math.IsNaN(θ) || math.IsInf(θ, 0) || math.IsNaN(φ) || math.IsInf(φ, 0):
		return nil, fmt.Errorf("%s: %w (θ=%f φ=%f)", name, ErrAngle, θ, φ)
	}
	b := &Body{
		Name:   name,
		Mass:   m,
		Radius: r,
		Color:  colorful.Color{R: 1, G: 1},
		a:      a,
		e:      e,
		b:      a * math.Sqrt(1-e*e),
		c:      e * a,
		θ:      θ,
		φ:      φ,
		scale:  1,
	}
	b.k = gravityFactor(GravitationalConstant, m)
	return b, nil
}

// MustNewBody is NewBody which panics on invalid elements.
func MustNewBody(name string, m, r, a, e, θ, φ float64) *Body {
	b, err := NewBody(name, m, r, a, e, θ, φ)
	if err != nil {
		panic(err)
	}
	return b
}

func gravityFactor(G, m float64) float64 {
	return 4 * math.Pi * math.Pi / (G * m)
}

// AddMoon makes the provided body orbit this one and computes its period from
// Kepler's third law. The moon must not orbit anything yet.
func (b *Body) AddMoon(moon *Body) error {
	if moon == nil {
		return errors.New("nil moon")
	}
	if b.frozen || moon.frozen {
		return ErrFrozen
	}
	if moon.mother != nil {
		return fmt.Errorf("%s: %w (%s)", moon.Name, ErrAttached, moon.mother.Name)
	}
	for anc := b; anc != nil; anc = anc.mother {
		if anc == moon {
			return fmt.Errorf("%s: %w", moon.Name, ErrCycle)
		}
	}
	if moon.a <= 0 {
		return fmt.Errorf("%s: %w (a=%f)", moon.Name, ErrSemiMajorAxis, moon.a)
	}
	b.moons = append(b.moons, moon)
	moon.mother = b
	moon.t = math.Sqrt(b.k * moon.a * moon.a * moon.a)
	return nil
}

// rebind recomputes the gravity factors and the periods of this body and all its moons
// for the provided gravitational constant.
func (b *Body) rebind(G float64) {
	b.k = gravityFactor(G, b.Mass)
	for _, moon := range b.moons {
		moon.t = math.Sqrt(b.k * moon.a * moon.a * moon.a)
		moon.rebind(G)
	}
}

// angleTable builds the angle table on first use only.
func (b *Body) angleTable(n int, tol float64, maxIter int) (AngleTable, error) {
	b.tableOnce.Do(func() {
		b.table, b.tableErr = NewAngleTable(b.a, b.b, n, tol, maxIter)
	})
	return b.table, b.tableErr
}

// SemiMajorAxis returns a.
func (b *Body) SemiMajorAxis() float64 { return b.a }

// Eccentricity returns e.
func (b *Body) Eccentricity() float64 { return b.e }

// SemiMinorAxis returns b.
func (b *Body) SemiMinorAxis() float64 { return b.b }

// FocalDistance returns the distance between the centre of the ellipse and its focus.
func (b *Body) FocalDistance() float64 { return b.c }

// Inclination returns the inclination of the orbit in radians.
func (b *Body) Inclination() float64 { return b.θ }

// Orientation returns the orientation of the orbit in radians.
func (b *Body) Orientation() float64 { return b.φ }

// K returns 4π²/(G·m), which multiplied by a³ gives the square of a moon's period.
func (b *Body) K() float64 { return b.k }

// Period returns the period of the orbit in seconds, zero for a root.
func (b *Body) Period() float64 { return b.t }

// Mother returns the body this one orbits, nil for a root.
func (b *Body) Mother() *Body { return b.mother }

// Moons returns the moons in the order they were added.
func (b *Body) Moons() []*Body {
	moons := make([]*Body, len(b.moons))
	copy(moons, b.moons)
	return moons
}

// IsRoot returns whether this body orbits nothing.
func (b *Body) IsRoot() bool { return b.mother == nil }

// Depth returns the number of hops up to the root.
func (b *Body) Depth() int {
	depth := 0
	for m := b.mother; m != nil; m = m.mother {
		depth++
	}
	return depth
}

// Path returns the dotted path assigned when the tree was created, e.g. "1.3.1".
func (b *Body) Path() string { return b.path }

// Alpha returns the angle computed by the last advance.
func (b *Body) Alpha() float64 { return b.alpha }

// Offset returns the position relative to the mother computed by the last advance.
func (b *Body) Offset() r3.Vec { return b.offset }

// Position returns the absolute position computed by the last advance.
func (b *Body) Position() r3.Vec { return b.position }

// String implements the Stringer interface.
func (b *Body) String() string {
	if b.mother == nil && b.a == 0 {
		return fmt.Sprintf("%s m=%.4e r=%.1f", b.Name, b.Mass, b.Radius)
	}
	return fmt.Sprintf("%s a=%.1f e=%.4f i=%.3f φ=%.3f T=%.1f", b.Name, b.a, b.e, Rad2deg(b.θ), Rad2deg(b.φ), b.t)
}
