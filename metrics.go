package spacet

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus metrics of the engine.
type Metrics struct {
	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	TableBuild   prometheus.Histogram
	Bodies       prometheus.Gauge
	SimTime      prometheus.Gauge
}

// NewMetrics registers the engine metrics against the provided registerer, defaulting to
// the global Prometheus registry when nil. Registering twice returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spacet_ticks_total",
		Help: "Total number of tree advances.",
	}), "spacet_ticks_total")
	if err != nil {
		return nil, err
	}
	tickDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "spacet_tick_duration_seconds",
		Help:    "Time spent advancing the whole tree.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	}), "spacet_tick_duration_seconds")
	if err != nil {
		return nil, err
	}
	tableBuild, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "spacet_angle_table_build_seconds",
		Help:    "Time spent building the angle tables of a tree.",
		Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
	}), "spacet_angle_table_build_seconds")
	if err != nil {
		return nil, err
	}
	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spacet_bodies",
		Help: "Number of bodies in the tree.",
	}), "spacet_bodies")
	if err != nil {
		return nil, err
	}
	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spacet_simulated_seconds",
		Help: "Simulated seconds since the epoch at the last advance.",
	}), "spacet_simulated_seconds")
	if err != nil {
		return nil, err
	}
	return &Metrics{
		Ticks:        ticks,
		TickDuration: tickDuration,
		TableBuild:   tableBuild,
		Bodies:       bodies,
		SimTime:      simTime,
	}, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
