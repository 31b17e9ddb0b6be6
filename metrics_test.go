package spacet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	star, _, _ := threeLevels(t)
	conf := testConfig()
	conf.TimeUnit = 10
	tree, err := NewTree(star, conf, WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	if testutil.ToFloat64(m.Bodies) != 3 {
		t.Fatal("bodies not counted")
	}
	if _, err := tree.Build(newFakeRenderer(), 0); err != nil {
		t.Fatal(err)
	}
	for _, now := range []float64{1, 2, 3} {
		tree.Advance(now)
	}
	if got := testutil.ToFloat64(m.Ticks); got != 4 {
		t.Fatalf("expected 4 ticks, got %f", got)
	}
	if got := testutil.ToFloat64(m.SimTime); got != 30 {
		t.Fatalf("expected 30 simulated seconds, got %f", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]uint64{}
	for _, f := range families {
		if h := f.GetMetric()[0].GetHistogram(); h != nil {
			counts[f.GetName()] = h.GetSampleCount()
		}
	}
	if counts["spacet_angle_table_build_seconds"] != 1 || counts["spacet_tick_duration_seconds"] != 4 {
		t.Fatalf("unexpected histograms %v", counts)
	}

	again, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	if testutil.ToFloat64(again.Ticks) != 4 {
		t.Fatal("registering twice must return the existing collectors")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "WARN")
	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, "ts=") || !strings.Contains(out, "level=warn") {
		t.Fatalf("missing keys in %q", out)
	}
	buf.Reset()
	level.Debug(NewLogger(&buf, "")).Log("msg", "debug")
	if buf.Len() != 0 {
		t.Fatal("info is the default level")
	}
}
