package spacet

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const testTOML = `
[engine]
G = 1.0
time_unit = 86400
table_size = 720
epoch = 2017-01-01T00:00:00Z

[scale]
radius = [10, 100, 10]
orbit = [1, 2.5]

[render]
orbit_color = "#ff0000"
`

func writeConf(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	conf := DefaultConfig()
	if err := conf.Validate(); err != nil {
		t.Fatal(err)
	}
	if conf.G != GravitationalConstant || conf.TableSize != DefaultTableSize || conf.OrbitSamples != DefaultOrbitSamples {
		t.Fatal("unexpected defaults")
	}
	if !conf.Epoch.Equal(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected epoch %s", conf.Epoch)
	}
	if conf.SimulatedSeconds(12) != 12 {
		t.Fatal("default time unit is the second")
	}
}

func TestConfigValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"G":          func(c *Config) { c.G = 0 },
		"time unit":  func(c *Config) { c.TimeUnit = -1 },
		"table":      func(c *Config) { c.TableSize = 0 },
		"samples":    func(c *Config) { c.OrbitSamples = 2 },
		"tolerance":  func(c *Config) { c.Tolerance = -1e-3 },
		"iterations": func(c *Config) { c.MaxIterations = 0 },
		"scale":      func(c *Config) { c.Scale.Radius = []float64{1, 0} },
	} {
		conf := DefaultConfig()
		mutate(&conf)
		if err := conf.Validate(); err == nil {
			t.Fatalf("%s: invalid configuration accepted", name)
		}
	}
}

func TestDepthScale(t *testing.T) {
	s := DepthScale{Radius: []float64{10, 100, 10}}
	for depth, exp := range map[int]float64{-1: 1, 0: 10, 1: 100, 2: 10, 3: 1} {
		if got := s.RadiusAt(depth); got != exp {
			t.Fatalf("radius at %d: %f != %f", depth, got, exp)
		}
		if s.OrbitAt(depth) != 1 {
			t.Fatal("an empty table does not scale")
		}
	}
	for _, bad := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		if err := (DepthScale{Orbit: []float64{1, bad}}).Validate(); err == nil {
			t.Fatalf("%f accepted", bad)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := writeConf(t, testTOML)
	for _, path := range []string{dir, filepath.Join(dir, "conf.toml")} {
		conf, err := LoadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if conf.G != 1 || conf.TimeUnit != 86400 || conf.TableSize != 720 {
			t.Fatalf("engine section not loaded: %+v", conf)
		}
		if conf.OrbitSamples != DefaultOrbitSamples || conf.MaxIterations != DefaultMaxIterations {
			t.Fatal("defaults lost")
		}
		if conf.Scale.RadiusAt(1) != 100 || conf.Scale.OrbitAt(1) != 2.5 || conf.Scale.OrbitAt(2) != 1 {
			t.Fatalf("scale not loaded: %+v", conf.Scale)
		}
		if conf.OrbitColor.Hex() != "#ff0000" {
			t.Fatalf("color %s", conf.OrbitColor.Hex())
		}
		if jd := julian.TimeToJD(conf.Epoch); math.Abs(jd-2457754.5) > 1e-6 {
			t.Fatalf("epoch %f", jd)
		}
	}
}

func TestLoadConfigEnv(t *testing.T) {
	dir := writeConf(t, testTOML)
	t.Setenv(ConfigEnv, dir)
	t.Setenv("SPACET_ENGINE_TIME_UNIT", "60")
	t.Setenv("SPACET_SCALE_ORBIT", "3,4")
	conf, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if conf.G != 1 {
		t.Fatal("file pointed by the environment not loaded")
	}
	if conf.TimeUnit != 60 || conf.SimulatedSeconds(2) != 120 {
		t.Fatalf("environment override ignored: %f", conf.TimeUnit)
	}
	if conf.Scale.OrbitAt(0) != 3 || conf.Scale.OrbitAt(1) != 4 {
		t.Fatalf("scale override ignored: %+v", conf.Scale)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	conf, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if conf.G != GravitationalConstant {
		t.Fatal("defaults not used")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
	for _, content := range []string{
		"[engine]\ntable_size = 0\n",
		"[render]\norbit_color = \"green\"\n",
		"[scale]\nradius = [\"big\"]\n",
		"[scale]\norbit = [1, -1]\n",
	} {
		if _, err := LoadConfig(writeConf(t, content)); err == nil {
			t.Fatalf("invalid configuration accepted:\n%s", content)
		}
	}
	if _, err := LoadConfig(writeConf(t, "[engine]\ntable_size = 0\n")); !errors.Is(err, ErrTableSize) {
		t.Fatalf("expected ErrTableSize, got %v", err)
	}
}

func TestConfigFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("engine.table_size", 10)
	v.Set("scale.radius", []string{"2", "3"})
	conf, err := ConfigFromViper(v)
	if err != nil {
		t.Fatal(err)
	}
	if conf.TableSize != 10 || conf.Scale.RadiusAt(1) != 3 {
		t.Fatalf("unexpected %+v", conf)
	}
}
