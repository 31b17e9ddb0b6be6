package spacet

import (
	"context"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/time/rate"
)

// Simulation ticks a tree with a clock.
type Simulation struct {
	Tree      *Tree
	Clock     *Clock
	logger    log.Logger
	listeners []func(now float64, poses []Pose)
}

// NewSimulation returns a simulation of the provided tree.
func NewSimulation(tree *Tree, clock *Clock, logger log.Logger) *Simulation {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Simulation{Tree: tree, Clock: clock, logger: log.With(logger, "subsys", "sim")}
}

// AddListener registers a callback invoked after every step with the new poses.
// Listeners must be added before Run.
func (s *Simulation) AddListener(fn func(now float64, poses []Pose)) {
	s.listeners = append(s.listeners, fn)
}

// Step ticks the clock, advances the tree and notifies the listeners.
func (s *Simulation) Step() []Pose {
	now := s.Clock.Tick()
	poses := s.Tree.Advance(now)
	for _, fn := range s.listeners {
		fn(now, poses)
	}
	return poses
}

// Run steps the simulation at most fps times per second (as fast as possible if fps is not
// positive) until the provided number of frames has been stepped (forever if frames is not
// positive) or the context is done.
func (s *Simulation) Run(ctx context.Context, fps float64, frames int) error {
	limit := rate.Inf
	if fps > 0 && !math.IsInf(fps, 1) {
		limit = rate.Limit(fps)
	}
	limiter := rate.NewLimiter(limit, 1)
	level.Info(s.logger).Log("msg", "running", "fps", fps, "frames", frames)
	for i := 0; frames <= 0 || i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := limiter.Wait(ctx); err != nil {
			// The next frame is due after the deadline.
			<-ctx.Done()
			return ctx.Err()
		}
		s.Step()
	}
	level.Info(s.logger).Log("msg", "finished", "time", s.Clock.Now(), "jd", s.Clock.JD())
	return nil
}
