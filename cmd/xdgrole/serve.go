package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/config"
	"github.com/1broseidon/xdgrole/internal/daemon"
	"github.com/1broseidon/xdgrole/internal/ipc"
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/runtimepath"
	"github.com/1broseidon/xdgrole/internal/scenario"
	"github.com/1broseidon/xdgrole/internal/sutureext"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/xdgrole/config.yaml)")
	backendName := fs.String("backend", "", "Override the configured backend (x11 or headless)")
	scenarioPath := fs.String("scenario", "", "Play a scenario once the compositor is up")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xdgrole serve [--path PATH] [--backend x11|headless] [--scenario FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the compositor in the foreground with its IPC socket.")
		fmt.Fprintln(os.Stderr, "SIGHUP reloads the log level from the config files.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if *backendName != "" {
		cfg.Backend = *backendName
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	var level slog.LevelVar
	level.Set(cfg.SlogLevel())
	logger := newLogger(&level)
	slog.SetDefault(logger)

	var sc *scenario.Scenario
	if *scenarioPath != "" {
		if sc, err = scenario.Load(*scenarioPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	backend, err := openBackend(cfg)
	if err != nil {
		logger.Error("failed to open backend", "backend", cfg.Backend, "error", err)
		return 1
	}
	defer backend.Close()

	c, err := compositor.New(compositor.Options{
		Backend: backend,
		Policy:  policyFromConfig(cfg),
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to start compositor", "error", err)
		return 1
	}
	loop := compositor.NewLoop(c)

	sup := sutureext.New("xdgrole", logger)
	sutureext.Add(sup, loop)
	sutureext.Add(sup, daemon.NewReconciler(daemon.ReconcilerConfig{Logger: logger}, backend, loop))

	if cfg.IPC.Enabled {
		socketPath, err := runtimepath.SocketPathFor(cfg.IPC.SocketName)
		if err != nil {
			logger.Error("failed to resolve IPC socket", "error", err)
			return 1
		}
		sutureext.Add(sup, ipc.NewServer(socketPath, loop, logger))
	}

	if sc != nil {
		runner := scenario.NewRunner(c, logger)
		sutureext.Add(sup, sutureext.NewServiceFunc("scenario", func(ctx context.Context) error {
			if err := runner.RunOn(ctx, loop, sc); err != nil {
				logger.Error("scenario failed", "name", sc.Name, "error", err)
			}
			return suture.ErrDoNotRestart
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reloadOnHangup(ctx, *path, &level, logger)

	logger.Info("xdgrole started", "backend", backend.Name(), "decoration", cfg.DecorationMode, "outputs", len(c.Outputs()))
	err = sup.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", "error", err)
		return 1
	}
	logger.Info("xdgrole stopped")
	return 0
}

// reloadOnHangup re-reads the config on SIGHUP. Only the log level applies
// to a running compositor.
func reloadOnHangup(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			res, err := loadConfig(path)
			if err != nil {
				logger.Warn("config reload failed", "error", err)
				continue
			}
			level.Set(res.Config.SlogLevel())
			logger.Info("config reloaded", "log_level", res.Config.LogLevel)
		}
	}
}

func openBackend(cfg *config.Config) (platform.Backend, error) {
	switch cfg.Backend {
	case config.BackendX11:
		if cfg.XAuthority != "" {
			os.Setenv("XAUTHORITY", cfg.XAuthority)
		}
		return platform.NewLinuxBackendFromDisplay(cfg.Display)
	case config.BackendHeadless:
		return platform.NewHeadlessBackend(cfg.HeadlessOutputs()), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func runSim(args []string) int {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/xdgrole/config.yaml)")
	preset := fs.String("preset", "", "Use a builtin output preset instead of the configured outputs")
	dump := fs.Bool("dump", false, "Print the final windows and seat as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xdgrole sim [--path PATH] [--preset NAME] [--dump] <scenario.yaml>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Play a scenario against a headless compositor built from the config.")
		fmt.Fprintln(os.Stderr, "Exits 1 when a step fails.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "sim requires exactly one scenario file")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	logger := newLogger(cfg.SlogLevel())

	outputs := cfg.HeadlessOutputs()
	if *preset != "" {
		presetOutputs, ok := config.BuiltinOutputPresets()[*preset]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown output preset %q\n", *preset)
			return 2
		}
		presetCfg := *cfg
		presetCfg.Outputs = presetOutputs
		outputs = presetCfg.HeadlessOutputs()
	}

	sc, err := scenario.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	c, err := compositor.New(compositor.Options{
		Backend: platform.NewHeadlessBackend(outputs),
		Policy:  policyFromConfig(cfg),
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := scenario.NewRunner(c, logger).Run(ctx, sc)
	if *dump {
		state := struct {
			Windows []compositor.WindowInfo `json:"windows"`
			Seat    compositor.SeatInfo     `json:"seat"`
		}{c.Windows(), c.SeatInfo()}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", sc.Name, runErr)
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s: %d steps ok\n", sc.Name, len(sc.Steps))
	return 0
}
