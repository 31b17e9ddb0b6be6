package spacet

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const (
	// DefaultOrbitSamples is the number of points of an orbit polyline, before closing it.
	DefaultOrbitSamples = 360
	// J2000 is the Julian day of the default epoch.
	J2000 = 2451545.0
	// ConfigEnv is the environment variable pointing to the directory holding conf.toml.
	ConfigEnv = "SPACET_CONFIG"
)

// DepthScale holds the per-depth multipliers applied to the rendered geometry.
// Index 0 is the root. Depths without a multiplier are not scaled.
type DepthScale struct {
	Radius []float64
	Orbit  []float64
}

// RadiusAt returns the radius multiplier of the provided depth.
func (s DepthScale) RadiusAt(depth int) float64 {
	return scaleAt(s.Radius, depth)
}

// OrbitAt returns the orbit multiplier of the provided depth.
func (s DepthScale) OrbitAt(depth int) float64 {
	return scaleAt(s.Orbit, depth)
}

// Validate returns an error if any multiplier is not a positive finite number.
func (s DepthScale) Validate() error {
	for name, table := range map[string][]float64{"radius": s.Radius, "orbit": s.Orbit} {
		for depth, f := range table {
			if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
				return fmt.Errorf("%s scale at depth %d must be positive, got %f", name, depth, f)
			}
		}
	}
	return nil
}

func scaleAt(table []float64, depth int) float64 {
	if depth < 0 || depth >= len(table) {
		return 1
	}
	return table[depth]
}

// Config holds the knobs of the engine. It is passed explicitly to the tree and the clock.
type Config struct {
	G             float64 // gravitational constant
	TimeUnit      float64 // simulated seconds per unit of simulation time
	TableSize     int     // angle samples per period
	OrbitSamples  int     // polyline points per orbit
	Tolerance     float64 // swept area tolerance of the angle solver
	MaxIterations int     // bisection budget of the angle solver
	Scale         DepthScale
	OrbitColor    colorful.Color
	Epoch         time.Time // date of simulation time zero
}

// DefaultConfig returns the configuration of a real-scale system.
func DefaultConfig() Config {
	return Config{
		G:             GravitationalConstant,
		TimeUnit:      1,
		TableSize:     DefaultTableSize,
		OrbitSamples:  DefaultOrbitSamples,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		OrbitColor:    colorful.Color{G: 1},
		Epoch:         julian.JDToTime(J2000),
	}
}

// Validate returns an error when the configuration cannot drive the engine.
func (c Config) Validate() error {
	if math.IsNaN(c.G) || c.G <= 0 {
		return errors.New("gravitational constant must be positive")
	}
	if math.IsNaN(c.TimeUnit) || c.TimeUnit <= 0 {
		return errors.New("time unit must be positive")
	}
	if c.TableSize <= 0 {
		return ErrTableSize
	}
	if c.OrbitSamples < 3 {
		return errors.New("an orbit needs at least three samples")
	}
	if c.Tolerance < 0 {
		return errors.New("tolerance must not be negative")
	}
	if c.MaxIterations <= 0 {
		return errors.New("the angle solver needs at least one iteration")
	}
	return c.Scale.Validate()
}

// SimulatedSeconds converts simulation time into seconds.
func (c Config) SimulatedSeconds(time float64) float64 {
	return time * c.TimeUnit
}

// SetDefaults registers the default configuration on a viper instance.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("engine.G", def.G)
	v.SetDefault("engine.time_unit", def.TimeUnit)
	v.SetDefault("engine.table_size", def.TableSize)
	v.SetDefault("engine.orbit_samples", def.OrbitSamples)
	v.SetDefault("engine.tolerance", def.Tolerance)
	v.SetDefault("engine.max_iterations", def.MaxIterations)
	v.SetDefault("engine.epoch", def.Epoch)
	v.SetDefault("scale.radius", []string{})
	v.SetDefault("scale.orbit", []string{})
	v.SetDefault("render.orbit_color", def.OrbitColor.Hex())
}

// LoadConfig reads the configuration file at the provided path. If the path is a directory
// (or empty, in which case $SPACET_CONFIG is used), conf.toml is looked up in it. Without any
// file, the defaults and the SPACET_* environment variables are used.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("SPACET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			v.SetConfigName("conf")
			v.AddConfigPath(path)
		} else {
			v.SetConfigFile(path)
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", filepath.Clean(path), err)
		}
	}
	return ConfigFromViper(v)
}

// ConfigFromViper builds the configuration from the keys of a viper instance.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	conf := Config{
		G:             v.GetFloat64("engine.G"),
		TimeUnit:      v.GetFloat64("engine.time_unit"),
		TableSize:     v.GetInt("engine.table_size"),
		OrbitSamples:  v.GetInt("engine.orbit_samples"),
		Tolerance:     v.GetFloat64("engine.tolerance"),
		MaxIterations: v.GetInt("engine.max_iterations"),
		Epoch:         v.GetTime("engine.epoch"),
	}
	var err error
	if conf.Scale.Radius, err = floatSlice(v.GetStringSlice("scale.radius")); err != nil {
		return Config{}, fmt.Errorf("scale.radius: %w", err)
	}
	if conf.Scale.Orbit, err = floatSlice(v.GetStringSlice("scale.orbit")); err != nil {
		return Config{}, fmt.Errorf("scale.orbit: %w", err)
	}
	if conf.OrbitColor, err = colorful.Hex(v.GetString("render.orbit_color")); err != nil {
		return Config{}, fmt.Errorf("render.orbit_color: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func floatSlice(values []string) ([]float64, error) {
	var out []float64
	for _, value := range values {
		for _, field := range strings.Split(value, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}
