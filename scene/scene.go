// Package scene is an in-memory scene graph. It implements spacet.Renderer for headless
// runs and tests, and composes the positions of nested nodes.
package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	spacet "github.com/william-xian/SpaceT"
)

// Kind of node.
type Kind int

const (
	// Group nodes only hold other nodes.
	Group Kind = iota
	// Sphere nodes are bodies.
	Sphere
	// LineLoop nodes are closed polylines.
	LineLoop
	// Camera nodes are viewpoints.
	Camera
)

func (k Kind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case LineLoop:
		return "lineloop"
	case Camera:
		return "camera"
	default:
		return "group"
	}
}

var (
	// ErrForeign is returned for handles which were not created by the graph.
	ErrForeign = errors.New("handle does not belong to this graph")
	// ErrLoop is returned when a node would become its own ancestor.
	ErrLoop = errors.New("node cannot be attached below itself")
)

// Node is an element of the graph. Its position is relative to its parent.
type Node struct {
	Name   string
	Kind   Kind
	Color  colorful.Color
	graph  *Graph
	radius float64
	points []r3.Vec

	position r3.Vec
	parent   *Node
	children []*Node
}

// Graph is a scene graph. All its methods are safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	root  *Node
	nodes []*Node
}

// New returns an empty graph.
func New() *Graph {
	g := &Graph{}
	g.root = &Node{Name: "scene", Kind: Group, graph: g}
	return g
}

// Root returns the root of the graph.
func (g *Graph) Root() *Node { return g.root }

func (g *Graph) add(n *Node) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	n.graph = g
	n.parent = g.root
	g.root.children = append(g.root.children, n)
	g.nodes = append(g.nodes, n)
	return n
}

// Sphere implements spacet.Renderer.
func (g *Graph) Sphere(name string, radius float64, color colorful.Color) (spacet.Handle, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%s: negative radius", name)
	}
	return g.add(&Node{Name: name, Kind: Sphere, Color: color, radius: radius}), nil
}

// LineLoop implements spacet.Renderer.
func (g *Graph) LineLoop(name string, points []r3.Vec, color colorful.Color) (spacet.Handle, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%s: a line loop needs at least two points", name)
	}
	return g.add(&Node{Name: name, Kind: LineLoop, Color: color, points: append([]r3.Vec(nil), points...)}), nil
}

// Camera returns a new camera node at the root of the graph.
func (g *Graph) Camera(name string) *Node {
	return g.add(&Node{Name: name, Kind: Camera})
}

// Attach implements spacet.Renderer. A nil parent is the root of the graph. The child is
// detached from its previous parent.
func (g *Graph) Attach(parent, child spacet.Handle) error {
	c, ok := child.(*Node)
	if !ok || c == nil || c.graph != g || c == g.root {
		return ErrForeign
	}
	p := g.root
	if parent != nil {
		if p, ok = parent.(*Node); !ok || p == nil || p.graph != g {
			return ErrForeign
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for anc := p; anc != nil; anc = anc.parent {
		if anc == c {
			return ErrLoop
		}
	}
	if old := c.parent; old != nil {
		for i, sibling := range old.children {
			if sibling == c {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}
	c.parent = p
	p.children = append(p.children, c)
	return nil
}

// Find returns the first node created with the provided name, or nil.
func (g *Graph) Find(name string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, n := range g.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Len returns the number of nodes, the root excluded.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// SetPosition implements spacet.Handle.
func (n *Node) SetPosition(p r3.Vec) {
	n.graph.mu.Lock()
	n.position = p
	n.graph.mu.Unlock()
}

// SetPoints implements spacet.PointSetter.
func (n *Node) SetPoints(points []r3.Vec) {
	n.graph.mu.Lock()
	n.points = append(n.points[:0], points...)
	n.graph.mu.Unlock()
}

// SetRadius implements spacet.RadiusSetter.
func (n *Node) SetRadius(r float64) {
	n.graph.mu.Lock()
	n.radius = r
	n.graph.mu.Unlock()
}

// Position returns the position relative to the parent.
func (n *Node) Position() r3.Vec {
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	return n.position
}

// Radius returns the radius of a sphere.
func (n *Node) Radius() float64 {
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	return n.radius
}

// Points returns a copy of the points of a line loop.
func (n *Node) Points() []r3.Vec {
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	return append([]r3.Vec(nil), n.points...)
}

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node {
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	return n.parent
}

// Children returns a copy of the children.
func (n *Node) Children() []*Node {
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// World returns the position in the frame of the root, composing the positions of the ancestors.
func (n *Node) World() r3.Vec {
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	var w r3.Vec
	for m := n; m != nil; m = m.parent {
		w = r3.Add(w, m.position)
	}
	return w
}

// WorldPoints returns the points of a line loop in the frame of the root.
func (n *Node) WorldPoints() []r3.Vec {
	origin := r3.Vec{}
	if p := n.Parent(); p != nil {
		origin = p.World()
	}
	points := n.Points()
	for i := range points {
		points[i] = r3.Add(origin, r3.Add(n.Position(), points[i]))
	}
	return points
}
