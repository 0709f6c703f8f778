// Command pbdsim runs the 2D position-based-dynamics simulator headlessly,
// streaming a JSON snapshot of every tick to any connected websocket client
// (package stream). It is the host application: it owns the tick loop,
// scene selection, and lifecycle, but no rendering or input handling of
// its own.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/haldenlabs/pbd2d/config"
	"github.com/haldenlabs/pbd2d/scene"
	"github.com/haldenlabs/pbd2d/sim"
	"github.com/haldenlabs/pbd2d/stream"
)

// Config is the CLI's own flag surface, distinct from config.Config: it
// carries process lifecycle and transport settings the simulation itself
// has no opinion on.
type Config struct {
	ConfigFile string
	Scene      string
	TimeStep   float64
	Duration   float64
	TargetFPS  int

	Addr string

	Verbose       bool
	Quiet         bool
	StatsInterval float64
	ProfileCPU    string
	ProfileMem    string

	SolverMode string
}

var sceneNames = map[string]scene.Tag{
	"friction":    scene.Friction,
	"granular":    scene.Granular,
	"stacks":      scene.Stacks,
	"wall":        scene.Wall,
	"pendulum":    scene.Pendulum,
	"fluid":       scene.Fluid,
	"fluid-solid": scene.FluidSolid,
	"gas":         scene.Gas,
}

func parseFlags() *Config {
	c := &Config{}

	flag.StringVar(&c.ConfigFile, "config", "", "TOML tuning config file (defaults to config.DefaultConf)")
	flag.StringVar(&c.Scene, "scene", "stacks", "demo scene: friction, granular, stacks, wall, pendulum, fluid, fluid-solid, gas")
	flag.Float64Var(&c.TimeStep, "timestep", 1.0/60.0, "physics time step in seconds")
	flag.Float64Var(&c.Duration, "duration", 0, "simulation duration in seconds (0 = run until interrupted)")
	flag.IntVar(&c.TargetFPS, "fps", 60, "tick rate in ticks per second")

	flag.StringVar(&c.Addr, "addr", ":8080", "HTTP listen address serving the /ws snapshot stream")

	flag.BoolVar(&c.Verbose, "verbose", false, "verbose logging")
	flag.BoolVar(&c.Quiet, "quiet", false, "suppress all but fatal logging")
	flag.Float64Var(&c.StatsInterval, "stats-interval", 2.0, "statistics reporting interval in seconds")
	flag.StringVar(&c.ProfileCPU, "profile-cpu", "", "CPU profile output file")
	flag.StringVar(&c.ProfileMem, "profile-mem", "", "memory profile output file")

	flag.StringVar(&c.SolverMode, "solver-mode", "", "override the config's solver mode: iterative or batched")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pbdsim - 2D position-based-dynamics simulator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -scene fluid -duration 10\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config tuning.toml -scene gas -addr :9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -profile-cpu cpu.prof -verbose\n", os.Args[0])
	}

	flag.Parse()

	if err := validateConfig(c); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return c
}

func validateConfig(c *Config) error {
	if _, ok := sceneNames[c.Scene]; !ok {
		return fmt.Errorf("unknown scene %q", c.Scene)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("timestep must be positive")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if c.TargetFPS < 1 || c.TargetFPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000")
	}
	if c.SolverMode != "" && c.SolverMode != string(config.Iterative) && c.SolverMode != string(config.Batched) {
		return fmt.Errorf("solver-mode must be %q or %q, got %q", config.Iterative, config.Batched, c.SolverMode)
	}
	return nil
}

func main() {
	cliCfg := parseFlags()

	if cliCfg.Quiet {
		log.SetOutput(io.Discard)
	} else if cliCfg.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	if cliCfg.ProfileCPU != "" {
		f, err := os.Create(cliCfg.ProfileCPU)
		if err != nil {
			log.Fatal("Could not create CPU profile:", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("Could not start CPU profile:", err)
		}
		defer pprof.StopCPUProfile()
	}

	simCfg := config.DefaultConf
	if cliCfg.ConfigFile != "" {
		parsed, err := config.ParseConfig(cliCfg.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		simCfg = parsed
	}
	if cliCfg.SolverMode != "" {
		cp := *simCfg
		cp.SolverMode = config.SolverMode(cliCfg.SolverMode)
		simCfg = &cp
	}
	if err := simCfg.Validate(); err != nil {
		log.Fatalf("Invalid tuning config: %v", err)
	}

	if !cliCfg.Quiet {
		log.Printf("Starting pbdsim (CPU cores: %d)", runtime.NumCPU())
	}

	s := sim.New(simCfg)
	tag := sceneNames[cliCfg.Scene]
	if err := s.Init(tag); err != nil {
		log.Fatalf("Failed to init scene: %v", err)
	}
	if !cliCfg.Quiet {
		log.Printf("Loaded scene %s (solver mode: %s)", tag, simCfg.SolverMode)
	}

	srv := stream.NewServer()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWS)
	httpSrv := &http.Server{Addr: cliCfg.Addr, Handler: mux}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("stream: HTTP server error: %v", err)
		}
	}()
	if !cliCfg.Quiet {
		log.Printf("Streaming snapshots on ws://%s/ws", cliCfg.Addr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cliCfg.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cliCfg.Duration*float64(time.Second)))
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if !cliCfg.Quiet {
		go reportStats(ctx, s, cliCfg.StatsInterval)
	}

	go func() {
		select {
		case <-sigChan:
			if !cliCfg.Quiet {
				log.Println("Shutting down gracefully...")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	if !cliCfg.Quiet {
		log.Printf("Simulation started (tick rate: %d Hz, timestep: %.4fs)", cliCfg.TargetFPS, cliCfg.TimeStep)
		if cliCfg.Duration > 0 {
			log.Printf("Duration: %.2f seconds", cliCfg.Duration)
		} else {
			log.Println("Press Ctrl+C to stop")
		}
	}

	steps := runLoop(ctx, s, srv, cliCfg.TimeStep, cliCfg.TargetFPS)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	if cliCfg.ProfileMem != "" {
		f, err := os.Create(cliCfg.ProfileMem)
		if err != nil {
			log.Printf("Could not create memory profile: %v", err)
		} else {
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Printf("Could not write memory profile: %v", err)
			}
		}
	}

	if !cliCfg.Quiet {
		log.Printf("Simulation completed: %d steps", steps)
	}
}

// runLoop ticks the simulation at targetFPS until ctx is done, broadcasting a
// snapshot after every tick, and returns the number of ticks completed.
func runLoop(ctx context.Context, s *sim.Simulation, srv *stream.Server, dt float64, targetFPS int) int {
	ticker := time.NewTicker(time.Second / time.Duration(targetFPS))
	defer ticker.Stop()

	steps := 0
	for {
		select {
		case <-ticker.C:
			if err := s.Tick(dt); err != nil {
				log.Printf("sim: tick error: %v", err)
				continue
			}
			steps++
			srv.Broadcast(stream.SnapshotFrom(s))
		case <-ctx.Done():
			return steps
		}
	}
}

func reportStats(ctx context.Context, s *sim.Simulation, interval float64) {
	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Printf("Particles: %d | Bodies: %d | Kinetic energy: %.3f",
				len(s.Particles()), len(s.Bodies()), s.KineticEnergy())
		case <-ctx.Done():
			return
		}
	}
}
