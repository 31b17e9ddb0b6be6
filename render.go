package spacet

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer is the scene graph the tree draws into.
type Renderer interface {
	// Sphere creates a sphere of the provided radius.
	Sphere(name string, radius float64, color colorful.Color) (Handle, error)
	// LineLoop creates a closed polyline through the provided points.
	LineLoop(name string, points []r3.Vec, color colorful.Color) (Handle, error)
	// Attach makes child inherit the transform of parent, or of the scene root if parent is nil.
	Attach(parent, child Handle) error
}

// Handle is something drawn by a Renderer.
type Handle interface {
	// SetPosition sets the position relative to the parent handle.
	SetPosition(r3.Vec)
}

// PointSetter is implemented by handles whose polyline can be replaced.
type PointSetter interface {
	SetPoints([]r3.Vec)
}

// RadiusSetter is implemented by handles whose sphere can be resized.
type RadiusSetter interface {
	SetRadius(float64)
}
