package spacet

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCelestialObject(t *testing.T) {
	for _, name := range []string{"earth", "Sun", "HALLEY", "moon"} {
		obj, err := CelestialObjectFromString(name)
		if err != nil {
			t.Fatal(err)
		}
		b, err := obj.Body()
		if err != nil {
			t.Fatalf("%s: %s", obj, err)
		}
		if b.Name != obj.Name || b.SemiMajorAxis() != obj.SemiMajorAxis {
			t.Fatalf("%s: unexpected body %s", obj, b)
		}
		if ok, err := anglesEqual(b.Inclination(), Deg2rad(obj.Inclination)); !ok {
			t.Fatalf("%s: inclination %s", obj, err)
		}
	}
	if _, err := CelestialObjectFromString("Pluto"); err == nil {
		t.Fatal("Pluto is not in the catalogue")
	}
	bad := Earth
	bad.Color = "blue"
	if _, err := bad.Body(); err == nil {
		t.Fatal("invalid color accepted")
	}
	bad = Earth
	bad.Eccentricity = 1.2
	if _, err := bad.Body(); err == nil {
		t.Fatal("open orbit accepted")
	}
	if c, _ := Mars.Body(); c.Color.Hex() != Mars.Color {
		t.Fatalf("color %s", c.Color.Hex())
	}
}

func TestSolarSystem(t *testing.T) {
	sun, err := SolarSystem()
	if err != nil {
		t.Fatal(err)
	}
	tree, err := NewTree(sun, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 11 || len(sun.Moons()) != 9 {
		t.Fatalf("unexpected size %d", tree.Len())
	}
	earth, err := tree.Resolve("1.3")
	if err != nil || earth.Name != "Earth" {
		t.Fatalf("Earth is not the third planet: %v", err)
	}
	if moon, err := tree.Resolve("1.3.1"); err != nil || moon.Name != "Moon" {
		t.Fatalf("the Moon does not orbit the Earth: %v", err)
	}
	year := 365.25 * 86400
	if !scalar.EqualWithinRel(earth.Period(), year, 0.01) {
		t.Fatalf("Earth period of %f days", earth.Period()/86400)
	}
	moon, _ := tree.Lookup("moon")
	if !scalar.EqualWithinRel(moon.Period(), 27.3*86400, 0.02) {
		t.Fatalf("Moon period of %f days", moon.Period()/86400)
	}
	halley, _ := tree.Lookup("halley")
	if !scalar.EqualWithinRel(halley.Period(), 75.3*year, 0.02) {
		t.Fatalf("Halley period of %f years", halley.Period()/year)
	}
	// Half a year later the Earth is on the other side of the Sun.
	start := tree.Advance(0)[3].Position
	half := tree.Advance(earth.Period() / 2)[3].Position
	if math.Abs(r3.Norm(r3.Add(start, half))) > 0.05*AU {
		t.Fatalf("unexpected positions %+v and %+v", start, half)
	}
}

func TestToySystem(t *testing.T) {
	sun, err := ToySystem()
	if err != nil {
		t.Fatal(err)
	}
	tree, err := NewTree(sun, ToyConfig())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 11 {
		t.Fatalf("unexpected size %d", tree.Len())
	}
	p1, err := tree.Lookup("P1")
	if err != nil {
		t.Fatal(err)
	}
	a := 5 * 5.79
	if exp := 2 * math.Pi * math.Sqrt(a*a*a/20); !scalar.EqualWithinRel(p1.Period(), exp, 1e-12) {
		t.Fatalf("P1 period %f != %f", p1.Period(), exp)
	}
	if m1, err := tree.Resolve("1.3.1"); err != nil || m1.Name != "M1" {
		t.Fatalf("M1 does not orbit P3: %v", err)
	}
}
