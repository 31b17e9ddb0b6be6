package spacet

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	conf := DefaultConfig()
	conf.TimeUnit = 3600
	c := NewClock(conf)
	if c.Now() != 0 || c.Scale() != 1 || c.Paused() {
		t.Fatal("unexpected initial state")
	}
	if c.Tick() != 1 || c.Tick() != 2 {
		t.Fatal("ticks must add one unit")
	}
	if err := c.SetScale(0.5); err != nil {
		t.Fatal(err)
	}
	if c.Tick() != 2.5 {
		t.Fatalf("scaled tick gave %f", c.Now())
	}
	c.Pause()
	if c.Tick() != 2.5 || c.Tick() != 2.5 {
		t.Fatal("a paused clock must not move")
	}
	if now, err := c.Step(1.5); err != nil || now != 4 {
		t.Fatalf("a paused clock still steps: %f (%v)", now, err)
	}
	c.Resume()
	if c.Paused() || c.Tick() != 4.5 {
		t.Fatal("resume failed")
	}
	if _, err := c.Step(-1); !errors.Is(err, ErrNegativeStep) {
		t.Fatalf("expected ErrNegativeStep, got %v", err)
	}
	if _, err := c.Step(math.NaN()); !errors.Is(err, ErrNegativeStep) {
		t.Fatalf("expected ErrNegativeStep, got %v", err)
	}
	if err := c.SetScale(-2); !errors.Is(err, ErrNegativeStep) {
		t.Fatalf("expected ErrNegativeStep, got %v", err)
	}
	if c.Scale() != 0.5 {
		t.Fatal("a rejected scale must not replace the current one")
	}
}

func TestClockDate(t *testing.T) {
	conf := DefaultConfig()
	conf.TimeUnit = 86400
	c := NewClock(conf)
	if math.Abs(c.JD()-J2000) > 1e-6 {
		t.Fatalf("JD at zero: %f", c.JD())
	}
	if _, err := c.Step(366); err != nil {
		t.Fatal(err)
	}
	// 2000 is a leap year.
	if exp := time.Date(2001, 1, 1, 12, 0, 0, 0, time.UTC); c.Date().Sub(exp).Abs() > time.Second {
		t.Fatalf("date %s != %s", c.Date(), exp)
	}
	if math.Abs(c.JD()-(J2000+366)) > 1e-6 {
		t.Fatalf("JD %f", c.JD())
	}
}

func TestClockDateCenturies(t *testing.T) {
	conf := DefaultConfig()
	conf.TimeUnit = 86400 * 365.25
	c := NewClock(conf)
	if _, err := c.Step(1000); err != nil {
		t.Fatal(err)
	}
	exp := conf.Epoch.AddDate(0, 0, 365250)
	if got := c.Date(); got.Year() != 3000 || got.Sub(exp).Abs() > time.Second {
		t.Fatalf("date after a millennium %s != %s", got, exp)
	}
}
