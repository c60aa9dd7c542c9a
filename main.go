package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/bubbles/app"
	"github.com/pthm-cable/bubbles/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the program with the given arguments and returns its exit code.
func run(args []string) int {
	// CLI flags
	fs := flag.NewFlagSet("bubbles", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml (empty = use defaults)")
	backend := fs.String("backend", app.BackendWindow, "Host backend: window, terminal or headless")
	logStats := fs.Bool("log-stats", false, "Output stats via slog")
	statsWindow := fs.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := fs.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logFile := fs.String("log-file", "", "Log file (terminal backend logs nowhere when empty)")
	seed := fs.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := fs.Int64("max-ticks", 0, "Stop after N frames (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	// JSON logs to stdout, except when the terminal owns the screen
	var logOut io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			return 1
		}
		defer f.Close()
		logOut = f
	} else if *backend == app.BackendTerminal {
		logOut = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	a, err := app.New(cfg, app.Options{
		Backend:        *backend,
		Seed:           rngSeed,
		MaxTicks:       *maxTicks,
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	runErr := a.Run(ctx)
	stop()

	if err := a.Close(); err != nil {
		slog.Error("failed to close backend", "error", err)
	}
	if runErr != nil {
		slog.Error("run failed", "error", runErr)
		return 1
	}
	return 0
}
