package spacet

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// lookDistance is how far ahead of the camera its look-at point is.
const lookDistance = 1e4

// Camera is a fly camera: a position, a heading α in the reference plane and a pitch β.
// When following a body, its position is relative to that body.
type Camera struct {
	Position r3.Vec
	Step     float64 // distance of one move
	α, β     float64
	handle   Handle
	target   *Body
	tree     *Tree
}

// NewCamera returns a camera looking along the 2nd axis, drawn through the provided handle
// (which may be nil).
func NewCamera(h Handle, position r3.Vec, step float64) *Camera {
	c := &Camera{Position: position, Step: step, α: math.Pi / 2, handle: h}
	c.sync()
	return c
}

// Heading returns α and β.
func (c *Camera) Heading() (α, β float64) { return c.α, c.β }

// Direction returns the unit vector the camera looks along.
func (c *Camera) Direction() r3.Vec {
	sα, cα := math.Sincos(c.α)
	sβ, cβ := math.Sincos(c.β)
	return r3.Vec{X: cβ * cα, Y: cβ * sα, Z: sβ}
}

// right returns the unit vector pointing to the right of the camera, in the reference plane.
func (c *Camera) right() r3.Vec {
	sα, cα := math.Sincos(c.α)
	return r3.Vec{X: sα, Y: -cα}
}

// LookAt returns the point the camera looks at, in the same frame as its position.
func (c *Camera) LookAt() r3.Vec {
	return r3.Add(c.Position, r3.Scale(lookDistance, c.Direction()))
}

// Forward moves the camera one step ahead.
func (c *Camera) Forward() { c.move(r3.Scale(c.Step, c.Direction())) }

// Back moves the camera one step backwards.
func (c *Camera) Back() { c.move(r3.Scale(-c.Step, c.Direction())) }

// Right strafes the camera one step to the right.
func (c *Camera) Right() { c.move(r3.Scale(c.Step, c.right())) }

// Left strafes the camera one step to the left.
func (c *Camera) Left() { c.move(r3.Scale(-c.Step, c.right())) }

func (c *Camera) move(δ r3.Vec) {
	c.Position = r3.Add(c.Position, δ)
	c.sync()
}

// Turn changes the heading by dα and the pitch by dβ. The pitch stays within [-π/2, π/2].
func (c *Camera) Turn(dα, dβ float64) {
	c.α = normalizeAngle(c.α + dα)
	c.β = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.β+dβ))
}

// Target returns the followed body, nil if none.
func (c *Camera) Target() *Body { return c.target }

// Follow attaches the camera to the sphere of the body at the provided path, so that it
// inherits the motion of that body. The camera keeps its offset to the body.
func (c *Camera) Follow(t *Tree, path string) error {
	if c.handle == nil {
		return errors.New("camera has no handle")
	}
	b, err := t.Resolve(path)
	if err != nil {
		return err
	}
	h, err := t.Handle(path)
	if err != nil {
		return err
	}
	if err := t.Renderer().Attach(h, c.handle); err != nil {
		return err
	}
	c.Position = r3.Sub(c.World(), b.Position())
	c.target = b
	c.tree = t
	c.sync()
	return nil
}

// Unfollow attaches the camera back to the scene root where it currently is.
func (c *Camera) Unfollow() error {
	if c.target == nil {
		return nil
	}
	if err := c.tree.Renderer().Attach(nil, c.handle); err != nil {
		return err
	}
	c.Position = c.World()
	c.target = nil
	c.tree = nil
	c.sync()
	return nil
}

// World returns the absolute position of the camera.
func (c *Camera) World() r3.Vec {
	if c.target == nil {
		return c.Position
	}
	return r3.Add(c.target.Position(), c.Position)
}

func (c *Camera) sync() {
	if c.handle != nil {
		c.handle.SetPosition(c.Position)
	}
}
