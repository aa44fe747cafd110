package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("$%s: %s: %v", e.Source.Name, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over the defaults. The returned string
// names the builtin output preset in use, or is empty when outputs were
// listed explicitly.
func BuildEffectiveConfig(raw RawConfig) (*Config, string, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*raw.LogLevel)
	}
	if raw.Backend != nil {
		cfg.Backend = strings.TrimSpace(*raw.Backend)
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.DoubleClickMs != nil {
		cfg.DoubleClickMs = *raw.DoubleClickMs
	}
	if raw.DecorationMode != nil {
		cfg.DecorationMode = strings.TrimSpace(*raw.DecorationMode)
	}
	if raw.HonourClientPreference != nil {
		cfg.HonourClientPreference = *raw.HonourClientPreference
	}
	if raw.Capabilities != nil {
		cfg.Capabilities = append([]string(nil), raw.Capabilities...)
	}
	if raw.Chrome != nil {
		cfg.Chrome.TitlebarHeight = derefInt(raw.Chrome.TitlebarHeight, cfg.Chrome.TitlebarHeight)
		cfg.Chrome.Border = derefInt(raw.Chrome.Border, cfg.Chrome.Border)
	}
	if raw.IPC != nil {
		if raw.IPC.Enabled != nil {
			cfg.IPC.Enabled = *raw.IPC.Enabled
		}
		if raw.IPC.SocketName != nil {
			cfg.IPC.SocketName = strings.TrimSpace(*raw.IPC.SocketName)
		}
	}

	preset, err := applyOutputs(cfg, raw)
	if err != nil {
		return nil, "", err
	}
	return cfg, preset, nil
}

func applyOutputs(cfg *Config, raw RawConfig) (string, error) {
	if raw.Outputs != nil {
		cfg.OutputPreset = ""
		cfg.Outputs = append([]OutputConfig(nil), raw.Outputs...)
		return "", nil
	}

	name := cfg.OutputPreset
	if raw.OutputPreset != nil {
		name = strings.TrimSpace(*raw.OutputPreset)
	}
	outputs, ok := BuiltinOutputPresets()[name]
	if !ok {
		return "", &ValidationError{
			Path: "output_preset",
			Err:  fmt.Errorf("unknown output preset %q (known: %s)", name, strings.Join(sortedKeys(BuiltinOutputPresets()), ", ")),
		}
	}
	cfg.OutputPreset = name
	cfg.Outputs = outputs
	return name, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
