package spacet

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ErrNegativeStep is returned when the clock is asked to go backwards.
var ErrNegativeStep = errors.New("simulation time only moves forward")

// Clock is the monotonic simulation time. Every tick adds the time scale to it,
// unless the clock is paused.
type Clock struct {
	mu     sync.Mutex
	now    float64
	scale  float64
	paused bool
	epoch  time.Time
	unit   float64 // seconds per unit of simulation time
}

// NewClock returns a clock at time zero advancing by one unit per tick.
func NewClock(conf Config) *Clock {
	return &Clock{scale: 1, epoch: conf.Epoch, unit: conf.TimeUnit}
}

// Tick advances the clock by its time scale and returns the new time.
func (c *Clock) Tick() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		c.now += c.scale
	}
	return c.now
}

// Step advances the clock by the provided increment, zero included, even when paused.
func (c *Clock) Step(increment float64) (float64, error) {
	if math.IsNaN(increment) || increment < 0 {
		return 0, ErrNegativeStep
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += increment
	return c.now, nil
}

// SetScale sets the increment of each tick.
func (c *Clock) SetScale(scale float64) error {
	if math.IsNaN(scale) || scale < 0 {
		return ErrNegativeStep
	}
	c.mu.Lock()
	c.scale = scale
	c.mu.Unlock()
	return nil
}

// Scale returns the increment of each tick.
func (c *Clock) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// Pause stops ticks from moving the clock.
func (c *Clock) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume lets ticks move the clock again.
func (c *Clock) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Paused returns whether the clock is paused.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Now returns the simulation time.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Date returns the date matching the simulation time. It goes through the Julian day
// so that runs spanning centuries do not overflow a time.Duration.
func (c *Clock) Date() time.Time {
	return julian.JDToTime(c.JD())
}

// JD returns the Julian day matching the simulation time.
func (c *Clock) JD() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return julian.TimeToJD(c.epoch) + c.now*c.unit/86400
}
