package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"golang.org/x/term"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/config"
)

func main() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "sim":
		os.Exit(runSim(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "seat":
		os.Exit(runSeat(os.Args[2:]))
	case "outputs":
		os.Exit(runOutputs(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xdgrole <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Run the compositor (foreground)")
	fmt.Fprintln(w, "  sim <file>          Play a scenario against a headless compositor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show compositor status")
	fmt.Fprintln(w, "  windows             List toplevel windows")
	fmt.Fprintln(w, "  seat                Show focus, grabs and cursor")
	fmt.Fprintln(w, "  outputs             List outputs")
	fmt.Fprintln(w, "  close <id>          Ask a window's client to close it")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config presets      List builtin output presets")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xdgrole <command> --help' for command-specific options.")
}

// newLogger logs in color to a terminal and as JSON otherwise.
func newLogger(level slog.Leveler) *slog.Logger {
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = console.NewHandler(os.Stderr, &console.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func policyFromConfig(cfg *config.Config) compositor.Policy {
	return compositor.Policy{
		Decoration:       cfg.Decoration(),
		HonourPreference: cfg.HonourClientPreference,
		Capabilities:     cfg.CapabilitySet(),
		DoubleClick:      cfg.DoubleClickInterval(),
		Layout:           cfg.ChromeLayout(),
	}
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}
