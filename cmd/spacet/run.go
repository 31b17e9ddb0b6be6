package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	spacet "github.com/william-xian/SpaceT"
	"github.com/william-xian/SpaceT/scene"
	"github.com/william-xian/SpaceT/stream"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tick the system, optionally exporting and streaming the poses",
		RunE:  run,
	}
	flags := cmd.Flags()
	flags.Int("frames", 0, "number of ticks (0 runs until interrupted)")
	flags.Float64("fps", 60, "ticks per second (0 runs as fast as possible)")
	flags.Float64("scale", 1, "simulation time added per tick")
	flags.String("follow", "", "dotted path of the body the camera follows")
	flags.String("listen", "", "address serving /ws and /metrics, e.g. :8080")
	flags.String("export-dir", ".", "directory of the exported files")
	flags.String("export", "", "base name of the exported files (nothing exported if empty)")
	flags.Bool("csv", true, "export the poses of every tick")
	flags.Bool("catalog", true, "export the catalogue of bodies")
	flags.Int("log-every", 600, "log the followed body every so many ticks (0 disables)")
	for _, name := range []string{"frames", "fps", "scale", "follow", "listen", "export-dir", "export", "csv", "catalog", "log-every"} {
		conf.BindPFlag("run."+name, flags.Lookup(name))
	}
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	reg := prometheus.NewRegistry()
	metrics, err := spacet.NewMetrics(reg)
	if err != nil {
		return err
	}
	tree, engine, err := loadTree(spacet.WithLogger(logger), spacet.WithMetrics(metrics))
	if err != nil {
		return err
	}
	graph := scene.New()
	if _, err := tree.Build(graph, 0); err != nil {
		return err
	}
	clock := spacet.NewClock(engine)
	if err := clock.SetScale(conf.GetFloat64("run.scale")); err != nil {
		return err
	}
	sim := spacet.NewSimulation(tree, clock, logger)

	camera := spacet.NewCamera(graph.Camera("camera"), r3.Vec{Z: 4 * tree.Root().Radius}, tree.Root().Radius)
	if path := conf.GetString("run.follow"); path != "" {
		if err := camera.Follow(tree, path); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "camera follows", "body", camera.Target().Name, "path", path)
	}
	if every := conf.GetInt("run.log-every"); every > 0 {
		ticks := 0
		sim.AddListener(func(now float64, poses []spacet.Pose) {
			ticks++
			if ticks%every != 0 {
				return
			}
			level.Info(logger).Log("msg", "tick", "time", now, "date", clock.Date().Format(time.RFC3339), "camera", camera.World())
		})
	}

	export := spacet.ExportConfig{
		Dir:      conf.GetString("run.export-dir"),
		Filename: conf.GetString("run.export"),
		AsCSV:    conf.GetBool("run.csv"),
		Catalog:  conf.GetBool("run.catalog"),
	}
	if !export.IsUseless() {
		if export.Catalog {
			path, err := spacet.WriteCatalog(export, tree, clock.JD())
			if err != nil {
				return err
			}
			level.Info(logger).Log("msg", "catalog written", "file", path)
		}
		if export.AsCSV {
			pw, path, err := spacet.CreatePoseFile(export)
			if err != nil {
				return err
			}
			defer pw.Close()
			level.Info(logger).Log("msg", "writing poses", "file", path)
			sim.AddListener(func(now float64, poses []spacet.Pose) {
				if err := pw.Write(clock.JD(), now, poses); err != nil {
					level.Error(logger).Log("msg", "could not write poses", "err", err)
				}
			})
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if addr := conf.GetString("run.listen"); addr != "" {
		hub := stream.NewHub(logger)
		defer hub.Close()
		sim.AddListener(func(now float64, poses []spacet.Pose) {
			if err := hub.Publish(stream.NewFrame(now, clock.JD(), poses)); err != nil {
				level.Error(logger).Log("msg", "could not publish", "err", err)
			}
		})
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(logger).Log("msg", "server stopped", "err", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		level.Info(logger).Log("msg", "listening", "addr", addr)
	}

	err = sim.Run(ctx, conf.GetFloat64("run.fps"), conf.GetInt("run.frames"))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
