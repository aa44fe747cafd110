package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawChrome struct {
	TitlebarHeight *int `yaml:"titlebar_height"`
	Border         *int `yaml:"border"`
}

type RawIPC struct {
	Enabled    *bool   `yaml:"enabled"`
	SocketName *string `yaml:"socket_name"`
}

// RawConfig mirrors one YAML file. Nil fields were not set.
type RawConfig struct {
	Include                IncludeList    `yaml:"include"`
	LogLevel               *string        `yaml:"log_level"`
	Backend                *string        `yaml:"backend"`
	Display                *string        `yaml:"display"`
	XAuthority             *string        `yaml:"xauthority"`
	DoubleClickMs          *int           `yaml:"double_click_ms"`
	DecorationMode         *string        `yaml:"decoration_mode"`
	HonourClientPreference *bool          `yaml:"honour_client_preference"`
	Capabilities           []string       `yaml:"capabilities"`
	Chrome                 *RawChrome     `yaml:"chrome"`
	OutputPreset           *string        `yaml:"output_preset"`
	Outputs                []OutputConfig `yaml:"outputs"`
	IPC                    *RawIPC        `yaml:"ipc"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.DoubleClickMs != nil {
		out.DoubleClickMs = overlay.DoubleClickMs
	}
	if overlay.DecorationMode != nil {
		out.DecorationMode = overlay.DecorationMode
	}
	if overlay.HonourClientPreference != nil {
		out.HonourClientPreference = overlay.HonourClientPreference
	}
	// Lists replace rather than append.
	if overlay.Capabilities != nil {
		out.Capabilities = overlay.Capabilities
	}
	if overlay.Chrome != nil {
		base := RawChrome{}
		if out.Chrome != nil {
			base = *out.Chrome
		}
		merged := mergeRawChrome(base, *overlay.Chrome)
		out.Chrome = &merged
	}
	if overlay.OutputPreset != nil {
		out.OutputPreset = overlay.OutputPreset
		// A preset named later wins over outputs listed earlier.
		if overlay.Outputs == nil {
			out.Outputs = nil
		}
	}
	if overlay.Outputs != nil {
		out.Outputs = overlay.Outputs
	}
	if overlay.IPC != nil {
		base := RawIPC{}
		if out.IPC != nil {
			base = *out.IPC
		}
		merged := mergeRawIPC(base, *overlay.IPC)
		out.IPC = &merged
	}

	return out
}

func mergeRawChrome(base RawChrome, overlay RawChrome) RawChrome {
	out := base
	if overlay.TitlebarHeight != nil {
		out.TitlebarHeight = overlay.TitlebarHeight
	}
	if overlay.Border != nil {
		out.Border = overlay.Border
	}
	return out
}

func mergeRawIPC(base RawIPC, overlay RawIPC) RawIPC {
	out := base
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.SocketName != nil {
		out.SocketName = overlay.SocketName
	}
	return out
}
