package spacet

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// AU is one astronomical unit in meters.
	AU = 1.49597870700e11
)

// CelestialObject holds the literal elements of a well known body.
// Angles are in degrees.
type CelestialObject struct {
	Name          string
	Mass          float64 // kg
	Radius        float64 // m
	SemiMajorAxis float64 // m
	Eccentricity  float64
	Inclination   float64
	Orientation   float64
	Color         string
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Body returns a new body with these elements.
func (c CelestialObject) Body() (*Body, error) {
	b, err := NewBody(c.Name, c.Mass, c.Radius, c.SemiMajorAxis, c.Eccentricity, Deg2rad(c.Inclination), Deg2rad(c.Orientation))
	if err != nil {
		return nil, err
	}
	if c.Color != "" {
		col, err := colorful.Hex(c.Color)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		b.Color = col
	}
	return b, nil
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	for _, obj := range catalogue {
		if strings.EqualFold(obj.Name, name) {
			return obj, nil
		}
	}
	return CelestialObject{}, fmt.Errorf("undefined body '%s'", name)
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 1.9891e30, 6.96e8, 0, 0, 0, 0, "#ffff00"}

// Mercury is the fastest.
var Mercury = CelestialObject{"Mercury", 3.3022e23, 2.44e6, 5.79e10, 0.2056, 7.005, 0, "#9c9c9c"}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 4.869e24, 6.053e6, 1.08e11, 0.0068, 3.395, 0, "#e6c87a"}

// Earth is home.
var Earth = CelestialObject{"Earth", 5.965e24, 6.378e6, 1.49e11, 0.0167, 0, 0, "#2a6fdb"}

// Moon is Earth's.
var Moon = CelestialObject{"Moon", 7.342e22, 1.738e6, 3.8443e8, 0.0549, 5.145, 0, "#d0d0d0"}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 6.6219e23, 3.397e6, 2.28e11, 0.0934, 1.85, 0, "#c1440e"}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 1.90e27, 7.1492e7, 7.78e11, 0.0484, 1.303, 0, "#d8ca9d"}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"Saturn", 5.6834e26, 6.0268e7, 1.43e12, 0.0539, 2.489, 0, "#e3e0c0"}

// Uranus is no joke.
var Uranus = CelestialObject{"Uranus", 8.6810e25, 2.5559e7, 2.87e12, 0.0473, 0.773, 0, "#9fe3e6"}

// Neptune is windy.
var Neptune = CelestialObject{"Neptune", 1.0247e26, 2.4764e7, 4.50e12, 0.0086, 1.770, 0, "#4166f5"}

// Halley is a comet on a retrograde orbit.
var Halley = CelestialObject{"Halley", 1.0e15, 1.1e7, 2.682e12, 0.967, 162.3, 0, "#ffffff"}

var catalogue = []CelestialObject{Sun, Mercury, Venus, Earth, Moon, Mars, Jupiter, Saturn, Uranus, Neptune, Halley}

// SolarSystem returns the Sun with its planets, Halley's comet, and the Moon around the Earth.
func SolarSystem() (*Body, error) {
	sun, err := Sun.Body()
	if err != nil {
		return nil, err
	}
	var earth *Body
	for _, obj := range []CelestialObject{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune, Halley} {
		b, err := obj.Body()
		if err != nil {
			return nil, err
		}
		if err := sun.AddMoon(b); err != nil {
			return nil, err
		}
		if obj.Name == Earth.Name {
			earth = b
		}
	}
	moon, err := Moon.Body()
	if err != nil {
		return nil, err
	}
	if err := earth.AddMoon(moon); err != nil {
		return nil, err
	}
	return sun, nil
}

// toyOrbits are the semi-major axes of the compact system, before scaling.
var toyOrbits = []float64{5.79, 10.8, 14.9, 22.8, 77.8, 143, 287, 450, 590}

// ToySystem returns a compact system meant to be run with ToyConfig: a sun of mass 20 with
// nine small planets on slightly eccentric orbits, the third one with a moon.
func ToySystem() (*Body, error) {
	sun, err := NewBody("Sun", 20, 6, 0, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	for i, a := range toyOrbits {
		p, err := NewBody(fmt.Sprintf("P%d", i+1), 20, 2, 5*a, 0.05, 0, 0)
		if err != nil {
			return nil, err
		}
		if err := sun.AddMoon(p); err != nil {
			return nil, err
		}
	}
	moon, err := NewBody("M1", 5, 1, 10, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := sun.moons[2].AddMoon(moon); err != nil {
		return nil, err
	}
	return sun, nil
}

// ToyConfig returns the configuration of the compact system, where G is one.
func ToyConfig() Config {
	conf := DefaultConfig()
	conf.G = 1
	return conf
}
