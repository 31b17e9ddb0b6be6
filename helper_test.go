package spacet

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func assertPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b r3.Vec) bool {
	for _, p := range [][2]float64{{a.X, b.X}, {a.Y, b.Y}, {a.Z, b.Z}} {
		if !scalar.EqualWithinAbsOrRel(p[0], p[1], eps, eps) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles in radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(a - b)
	if diff < eps || math.Abs(diff-2*math.Pi) < eps {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10fπ", diff/math.Pi)
}

// fakeRenderer records what the tree draws.
type fakeRenderer struct {
	handles []*fakeHandle
	parents map[*fakeHandle]*fakeHandle
	fail    string
}

type fakeHandle struct {
	name     string
	radius   float64
	points   []r3.Vec
	position r3.Vec
}

func (h *fakeHandle) SetPosition(p r3.Vec)      { h.position = p }
func (h *fakeHandle) SetPoints(points []r3.Vec) { h.points = points }
func (h *fakeHandle) SetRadius(r float64)       { h.radius = r }

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{parents: make(map[*fakeHandle]*fakeHandle)}
}

func (r *fakeRenderer) Sphere(name string, radius float64, _ colorful.Color) (Handle, error) {
	if name == r.fail {
		return nil, errors.New("boom")
	}
	h := &fakeHandle{name: name, radius: radius}
	r.handles = append(r.handles, h)
	return h, nil
}

func (r *fakeRenderer) LineLoop(name string, points []r3.Vec, _ colorful.Color) (Handle, error) {
	h := &fakeHandle{name: name, points: points}
	r.handles = append(r.handles, h)
	return h, nil
}

func (r *fakeRenderer) Attach(parent, child Handle) error {
	c := child.(*fakeHandle)
	if parent == nil {
		delete(r.parents, c)
		return nil
	}
	r.parents[c] = parent.(*fakeHandle)
	return nil
}

func (r *fakeRenderer) find(name string) *fakeHandle {
	for _, h := range r.handles {
		if h.name == name {
			return h
		}
	}
	return nil
}

// world composes the positions of a handle and its ancestors.
func (r *fakeRenderer) world(h *fakeHandle) r3.Vec {
	var w r3.Vec
	for ; h != nil; h = r.parents[h] {
		w = r3.Add(w, h.position)
	}
	return w
}

// threeLevels returns a star with a planet, itself with a moon.
func threeLevels(t *testing.T) (star, planet, moon *Body) {
	t.Helper()
	var err error
	if star, err = NewBody("star", 1e12, 10, 0, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if planet, err = NewBody("planet", 1e10, 3, 1000, 0.2, 0.3, 0.7); err != nil {
		t.Fatal(err)
	}
	if moon, err = NewBody("moon", 1e6, 1, 50, 0.1, 1.1, 2.0); err != nil {
		t.Fatal(err)
	}
	if err := star.AddMoon(planet); err != nil {
		t.Fatal(err)
	}
	if err := planet.AddMoon(moon); err != nil {
		t.Fatal(err)
	}
	return
}

// testConfig is a unit G configuration with a fine table.
func testConfig() Config {
	conf := DefaultConfig()
	conf.G = 1
	conf.TableSize = 3600
	return conf
}
