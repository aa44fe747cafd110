package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/xdgrole/internal/chrome"
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// Margins reserves strips along the edges of an output (panels, docks).
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// OutputConfig describes one headless output.
type OutputConfig struct {
	Name     string  `yaml:"name"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Reserved Margins `yaml:"reserved,omitempty"`
}

// Bounds returns the output rectangle in global coordinates.
func (o OutputConfig) Bounds() platform.Rect {
	return platform.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// Usable returns the bounds minus the reserved strips.
func (o OutputConfig) Usable() platform.Rect {
	return platform.Rect{
		X:      o.X + o.Reserved.Left,
		Y:      o.Y + o.Reserved.Top,
		Width:  o.Width - o.Reserved.Left - o.Reserved.Right,
		Height: o.Height - o.Reserved.Top - o.Reserved.Bottom,
	}
}

// Chrome sizes server-side window decorations.
type Chrome struct {
	TitlebarHeight int `yaml:"titlebar_height"`
	Border         int `yaml:"border"`
}

// IPC configures the introspection socket.
type IPC struct {
	Enabled bool `yaml:"enabled"`
	// SocketName is a file name under the runtime directory, or an absolute path.
	SocketName string `yaml:"socket_name"`
}

const (
	BackendX11      = "x11"
	BackendHeadless = "headless"

	DefaultDoubleClickMs = 220
	DefaultSocketName    = "xdgrole.sock"
)

// capabilityNames maps config names to advertised capabilities, in the
// order they are printed.
var capabilityNames = []struct {
	name string
	cap  toplevel.Capability
}{
	{"window_menu", toplevel.CapWindowMenu},
	{"maximize", toplevel.CapMaximize},
	{"fullscreen", toplevel.CapFullscreen},
	{"minimize", toplevel.CapMinimize},
}

// Config holds the effective configuration.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	Backend    string `yaml:"backend"`
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	DoubleClickMs          int      `yaml:"double_click_ms"`
	DecorationMode         string   `yaml:"decoration_mode"`
	HonourClientPreference bool     `yaml:"honour_client_preference"`
	Capabilities           []string `yaml:"capabilities"`
	Chrome                 Chrome   `yaml:"chrome"`

	// OutputPreset names the builtin output set used when Outputs is empty.
	OutputPreset string         `yaml:"output_preset"`
	Outputs      []OutputConfig `yaml:"outputs"`

	IPC IPC `yaml:"ipc"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	caps := make([]string, 0, len(capabilityNames))
	for _, c := range capabilityNames {
		caps = append(caps, c.name)
	}
	return &Config{
		LogLevel:       "info",
		Backend:        BackendHeadless,
		DoubleClickMs:  DefaultDoubleClickMs,
		DecorationMode: "client",
		Capabilities:   caps,
		Chrome: Chrome{
			TitlebarHeight: chrome.DefaultLayout.TitlebarHeight,
			Border:         chrome.DefaultLayout.Border,
		},
		OutputPreset: DefaultOutputPreset,
		Outputs:      BuiltinOutputPresets()[DefaultOutputPreset],
		IPC: IPC{
			Enabled:    true,
			SocketName: DefaultSocketName,
		},
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "xdgrole", "config.yaml"), nil
}

// ParseDecorationMode maps "client" or "server" to a decoration mode.
func ParseDecorationMode(s string) (toplevel.DecorationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "client_side", "client-side":
		return toplevel.DecorationClientSide, nil
	case "server", "server_side", "server-side":
		return toplevel.DecorationServerSide, nil
	default:
		return toplevel.DecorationUnset, fmt.Errorf("unknown decoration mode %q", s)
	}
}

// ParseCapabilities folds capability names into a set.
func ParseCapabilities(names []string) (toplevel.Capabilities, error) {
	var caps toplevel.Capabilities
	for _, name := range names {
		found := false
		for _, c := range capabilityNames {
			if c.name == strings.TrimSpace(name) {
				caps |= toplevel.Capabilities(c.cap)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown capability %q", name)
		}
	}
	return caps, nil
}

// Decoration returns the configured decoration mode, client-side when invalid.
func (c *Config) Decoration() toplevel.DecorationMode {
	mode, err := ParseDecorationMode(c.DecorationMode)
	if err != nil {
		return toplevel.DecorationClientSide
	}
	return mode
}

// CapabilitySet returns the advertised capabilities. Unknown names are skipped.
func (c *Config) CapabilitySet() toplevel.Capabilities {
	var caps toplevel.Capabilities
	for _, name := range c.Capabilities {
		if one, err := ParseCapabilities([]string{name}); err == nil {
			caps |= one
		}
	}
	return caps
}

// DoubleClickInterval returns double_click_ms as a duration.
func (c *Config) DoubleClickInterval() time.Duration {
	return time.Duration(c.DoubleClickMs) * time.Millisecond
}

// ChromeLayout returns the decoration geometry.
func (c *Config) ChromeLayout() chrome.Layout {
	return chrome.Layout{TitlebarHeight: c.Chrome.TitlebarHeight, Border: c.Chrome.Border}
}

// HeadlessOutputs converts the configured outputs for the headless backend.
func (c *Config) HeadlessOutputs() []platform.Output {
	out := make([]platform.Output, 0, len(c.Outputs))
	for _, o := range c.Outputs {
		out = append(out, platform.Output{
			Name:   o.Name,
			Bounds: o.Bounds(),
			Usable: o.Usable(),
		})
	}
	return out
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch c.Backend {
	case BackendX11, BackendHeadless:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: x11, headless")}
	}
	if c.DoubleClickMs <= 0 {
		return &ValidationError{Path: "double_click_ms", Err: fmt.Errorf("double_click_ms must be > 0")}
	}
	if _, err := ParseDecorationMode(c.DecorationMode); err != nil {
		return &ValidationError{Path: "decoration_mode", Err: fmt.Errorf("decoration_mode must be one of: client, server")}
	}
	if _, err := ParseCapabilities(c.Capabilities); err != nil {
		return &ValidationError{Path: "capabilities", Err: err}
	}
	if c.Chrome.TitlebarHeight < 0 {
		return &ValidationError{Path: "chrome.titlebar_height", Err: fmt.Errorf("titlebar_height must be >= 0")}
	}
	if c.Chrome.Border < 0 {
		return &ValidationError{Path: "chrome.border", Err: fmt.Errorf("border must be >= 0")}
	}

	if c.Backend == BackendHeadless && len(c.Outputs) == 0 {
		return &ValidationError{Path: "outputs", Err: fmt.Errorf("the headless backend needs at least one output")}
	}
	names := make(map[string]struct{}, len(c.Outputs))
	for i, o := range c.Outputs {
		path := fmt.Sprintf("outputs.%d", i)
		if err := validateOutput(o); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if _, dup := names[o.Name]; dup {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate output name %q", o.Name)}
		}
		names[o.Name] = struct{}{}
	}

	if c.IPC.Enabled {
		name := strings.TrimSpace(c.IPC.SocketName)
		if name == "" {
			return &ValidationError{Path: "ipc.socket_name", Err: fmt.Errorf("socket_name is required when ipc is enabled")}
		}
		if !filepath.IsAbs(name) && strings.ContainsRune(name, filepath.Separator) {
			return &ValidationError{Path: "ipc.socket_name", Err: fmt.Errorf("socket_name must be a file name or an absolute path")}
		}
	}

	for _, w := range c.validationWarnings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string
	if c.Backend == BackendHeadless && strings.TrimSpace(c.Display) != "" {
		warnings = append(warnings, fmt.Sprintf("display %q is ignored by the headless backend", c.Display))
	}
	if c.Backend == BackendX11 && len(c.Outputs) > 0 && c.OutputPreset == "" {
		warnings = append(warnings, "outputs are ignored by the x11 backend; RandR reports them")
	}
	if c.DoubleClickMs > 1000 {
		warnings = append(warnings, fmt.Sprintf("double_click_ms %d is unusually long", c.DoubleClickMs))
	}
	return warnings
}

func validateOutput(o OutputConfig) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	r := o.Reserved
	if r.Top < 0 || r.Bottom < 0 || r.Left < 0 || r.Right < 0 {
		return fmt.Errorf("reserved values must be >= 0")
	}
	if o.Usable().Empty() {
		return fmt.Errorf("reserved strips leave no usable area")
	}
	return nil
}
