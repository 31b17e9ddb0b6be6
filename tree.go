package spacet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNotFound is returned when a path or a name does not match any body.
	ErrNotFound = errors.New("body not found")
	// ErrNotRoot is returned when a tree is created from a body which orbits another one.
	ErrNotRoot = errors.New("body is not the root of its hierarchy")
	// ErrBuilt is returned when a tree is built twice.
	ErrBuilt = errors.New("tree already built")
	// ErrNotBuilt is returned when rendering handles are requested before Build.
	ErrNotBuilt = errors.New("tree not built yet")
)

// Pose is where a body is at a given time.
type Pose struct {
	Path     string
	Name     string
	Depth    int
	Alpha    float64 // angle on the ellipse
	Offset   r3.Vec  // relative to the mother
	Position r3.Vec  // absolute
	Radius   float64 // rendered radius
}

// Tree drives the hierarchy of bodies: every traversal visits a mother before its moons.
// Build and SetDepthScale exclude Advance, so poses can be read from other goroutines.
type Tree struct {
	mu         sync.RWMutex
	root       *Body
	conf       Config
	logger     log.Logger
	metrics    *Metrics
	barycenter float64 // mass a root orbits, if any
	renderer   Renderer
	built      bool
	time       float64
	count      int
	poses      []Pose
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger of the tree.
func WithLogger(logger log.Logger) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = log.With(logger, "subsys", "tree")
		}
	}
}

// WithMetrics makes the tree report to the provided metrics.
func WithMetrics(m *Metrics) TreeOption {
	return func(t *Tree) { t.metrics = m }
}

// WithBarycenter makes a root with a non-zero semi-major axis orbit the origin as if the
// provided mass sat there. Without it, such a root stays at its periapsis.
func WithBarycenter(mass float64) TreeOption {
	return func(t *Tree) {
		if mass > 0 {
			t.barycenter = mass
		}
	}
}

// NewTree wraps the hierarchy below root, which cannot gain moons afterwards. The periods
// are recomputed with the gravitational constant of the configuration, and every body is
// given its path. A hierarchy can be wrapped by a single tree.
func NewTree(root *Body, conf Config, opts ...TreeOption) (*Tree, error) {
	if root == nil {
		return nil, errors.New("nil root")
	}
	if !root.IsRoot() {
		return nil, fmt.Errorf("%s: %w", root.Name, ErrNotRoot)
	}
	if root.frozen {
		return nil, fmt.Errorf("%s: %w", root.Name, ErrFrozen)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	t := &Tree{root: root, conf: conf, logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(t)
	}
	root.rebind(conf.G)
	root.t = 0
	if t.barycenter > 0 && root.a > 0 {
		root.t = math.Sqrt(gravityFactor(conf.G, t.barycenter) * root.a * root.a * root.a)
	}
	assignPaths(root, "1")
	t.Walk(func(b *Body) error {
		b.frozen = true
		t.count++
		return nil
	})
	if t.metrics != nil {
		t.metrics.Bodies.Set(float64(t.count))
	}
	return t, nil
}

func assignPaths(b *Body, path string) {
	b.path = path
	for i, moon := range b.moons {
		assignPaths(moon, path+"."+strconv.Itoa(i+1))
	}
}

// Root returns the root body.
func (t *Tree) Root() *Body { return t.root }

// Config returns the configuration of the tree.
func (t *Tree) Config() Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conf
}

// Len returns the number of bodies.
func (t *Tree) Len() int { return t.count }

// Walk calls fn on every body, mothers before their moons, moons in order.
// It stops at the first error.
func (t *Tree) Walk(fn func(*Body) error) error {
	return walk(t.root, fn)
}

func walk(b *Body, fn func(*Body) error) error {
	if err := fn(b); err != nil {
		return err
	}
	for _, moon := range b.moons {
		if err := walk(moon, fn); err != nil {
			return err
		}
	}
	return nil
}

// Build creates the sphere and the orbit of every body in the renderer, attaching
// them to the sphere of the mother, and then advances to the provided time.
// Handles are returned in traversal order.
func (t *Tree) Build(r Renderer, now float64) ([]Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.built {
		return nil, ErrBuilt
	}
	if r == nil {
		return nil, errors.New("nil renderer")
	}
	if err := t.buildTables(); err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, t.count)
	err := t.Walk(func(b *Body) error {
		t.refreshTransform(b)
		var parent Handle
		if b.mother != nil {
			parent = b.mother.handle
		}
		sphere, err := r.Sphere(b.Name, t.renderedRadius(b), b.Color)
		if err != nil {
			return fmt.Errorf("%s: sphere: %w", b.Name, err)
		}
		if err := r.Attach(parent, sphere); err != nil {
			return fmt.Errorf("%s: attach sphere: %w", b.Name, err)
		}
		b.handle = sphere
		handles = append(handles, sphere)
		if b.a > 0 {
			orbit, err := r.LineLoop(b.Name+" orbit", t.orbitPoints(b), t.conf.OrbitColor)
			if err != nil {
				return fmt.Errorf("%s: orbit: %w", b.Name, err)
			}
			if err := r.Attach(parent, orbit); err != nil {
				return fmt.Errorf("%s: attach orbit: %w", b.Name, err)
			}
			b.orbitHandle = orbit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.renderer = r
	t.built = true
	level.Info(t.logger).Log("msg", "built", "bodies", t.count, "table_size", t.conf.TableSize)
	t.advance(now)
	return handles, nil
}

// buildTables builds the angle table of every body.
func (t *Tree) buildTables() error {
	start := time.Now()
	err := t.Walk(func(b *Body) error {
		_, err := b.angleTable(t.conf.TableSize, t.conf.Tolerance, t.conf.MaxIterations)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Name, err)
		}
		return nil
	})
	if t.metrics != nil {
		t.metrics.TableBuild.Observe(time.Since(start).Seconds())
	}
	level.Debug(t.logger).Log("msg", "angle tables", "took", time.Since(start))
	return err
}

// Advance moves every body to where it is at the provided time, mothers before their moons,
// and returns the poses in traversal order. Advancing to the same time again is a pause.
func (t *Tree) Advance(now float64) []Pose {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advance(now)
}

func (t *Tree) advance(now float64) []Pose {
	start := time.Now()
	seconds := t.conf.SimulatedSeconds(now)
	poses := make([]Pose, 0, t.count)
	t.Walk(func(b *Body) error {
		if b.transform == nil {
			t.refreshTransform(b)
		}
		table, _ := b.angleTable(t.conf.TableSize, t.conf.Tolerance, t.conf.MaxIterations)
		b.alpha = table.Alpha(seconds, b.t)
		b.offset = transformPoint(b.transform, ellipsePoint(b.a, b.b, b.alpha))
		b.position = b.offset
		if b.mother != nil {
			b.position = r3.Add(b.mother.position, b.offset)
		}
		if b.handle != nil {
			b.handle.SetPosition(b.offset)
		}
		poses = append(poses, Pose{
			Path:     b.path,
			Name:     b.Name,
			Depth:    b.Depth(),
			Alpha:    b.alpha,
			Offset:   b.offset,
			Position: b.position,
			Radius:   t.renderedRadius(b),
		})
		return nil
	})
	t.time = now
	t.poses = poses
	if t.metrics != nil {
		t.metrics.Ticks.Inc()
		t.metrics.SimTime.Set(seconds)
		t.metrics.TickDuration.Observe(time.Since(start).Seconds())
	}
	return poses
}

// Poses returns a copy of the poses computed by the last advance.
func (t *Tree) Poses() []Pose {
	t.mu.RLock()
	defer t.mu.RUnlock()
	poses := make([]Pose, len(t.poses))
	copy(poses, t.poses)
	return poses
}

// Time returns the time of the last advance.
func (t *Tree) Time() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.time
}

// SetDepthScale replaces the per-depth multipliers. Transforms and orbit polylines are
// recomputed, and the bodies are moved to their scaled positions at the current time.
func (t *Tree) SetDepthScale(s DepthScale) error {
	if err := s.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conf.Scale = DepthScale{
		Radius: append([]float64(nil), s.Radius...),
		Orbit:  append([]float64(nil), s.Orbit...),
	}
	t.Walk(func(b *Body) error {
		t.refreshTransform(b)
		if ps, ok := b.orbitHandle.(PointSetter); ok {
			ps.SetPoints(t.orbitPoints(b))
		}
		if rs, ok := b.handle.(RadiusSetter); ok {
			rs.SetRadius(t.renderedRadius(b))
		}
		return nil
	})
	level.Debug(t.logger).Log("msg", "depth scale", "radius", fmt.Sprint(s.Radius), "orbit", fmt.Sprint(s.Orbit))
	if t.built {
		t.advance(t.time)
	}
	return nil
}

// refreshTransform recomputes the orbit transform of a body for the current depth scale.
func (t *Tree) refreshTransform(b *Body) {
	b.scale = t.conf.Scale.OrbitAt(b.Depth())
	b.transform = OrbitTransform(b.θ, b.φ, b.c, b.scale)
}

func (t *Tree) renderedRadius(b *Body) float64 {
	return b.Radius * t.conf.Scale.RadiusAt(b.Depth())
}

// orbitPoints samples the orbit of a body uniformly in angle, in the frame of its mother.
// The first point is repeated at the end to close the loop.
func (t *Tree) orbitPoints(b *Body) []r3.Vec {
	n := t.conf.OrbitSamples
	points := make([]r3.Vec, 0, n+1)
	for i := 0; i < n; i++ {
		α := float64(i) * twoPi / float64(n)
		points = append(points, transformPoint(b.transform, ellipsePoint(b.a, b.b, α)))
	}
	return append(points, points[0])
}

// ellipsePoint returns the point at angle α of the ellipse centred on the origin.
func ellipsePoint(a, b, α float64) r3.Vec {
	s, c := math.Sincos(α)
	return r3.Vec{X: a * c, Y: b * s}
}

// Resolve returns the body at the provided dotted path.
func (t *Tree) Resolve(path string) (*Body, error) {
	return ResolvePath(t.root, path)
}

// Lookup returns the first body, in traversal order, with the provided name (case insensitive).
func (t *Tree) Lookup(name string) (*Body, error) {
	var found *Body
	t.Walk(func(b *Body) error {
		if strings.EqualFold(b.Name, name) {
			found = b
			return errStop
		}
		return nil
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return found, nil
}

var errStop = errors.New("stop")

// Handle returns the sphere created by Build for the body at the provided path.
func (t *Tree) Handle(path string) (Handle, error) {
	b, err := t.Resolve(path)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.built {
		return nil, ErrNotBuilt
	}
	return b.handle, nil
}

// ResolvePath returns the body at the provided dotted path below root. The root is "1",
// its first moon "1.1", the first moon of its third moon "1.3.1", and so on.
func ResolvePath(root *Body, path string) (*Body, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrNotFound)
	}
	segments := strings.Split(strings.TrimSpace(path), ".")
	if segments[0] != "1" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	b := root
	for _, seg := range segments[1:] {
		i, err := strconv.Atoi(seg)
		if err != nil || i < 1 || i > len(b.moons) {
			return nil, fmt.Errorf("%w: %q (at %q)", ErrNotFound, path, seg)
		}
		b = b.moons[i-1]
	}
	return b, nil
}

// Renderer returns the renderer the tree was built into, nil before Build.
func (t *Tree) Renderer() Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}
