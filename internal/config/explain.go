package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	log_level
//	backend
//	display
//	double_click_ms
//	decoration_mode
//	capabilities
//	chrome.titlebar_height
//	output_preset
//	outputs
//	outputs.<index>.width
//	ipc.socket_name
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Outputs from a preset came from the builtin table even if an earlier
	// file listed some.
	if res.OutputPreset != "" && (path == "outputs" || strings.HasPrefix(path, "outputs.")) {
		return value, Source{Kind: SourceBuiltin, Name: res.OutputPreset}, nil
	}

	// Exact-path source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	// A key inside a list inherits the list entry's source.
	if strings.HasPrefix(path, "outputs.") {
		if i := strings.LastIndex(path, "."); i > len("outputs") {
			if src, ok := res.Sources[path[:i]]; ok {
				return value, src, nil
			}
		}
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "log_level":
		return scalar(cfg.LogLevel)
	case "backend":
		return scalar(cfg.Backend)
	case "display":
		return scalar(cfg.Display)
	case "xauthority":
		return scalar(cfg.XAuthority)
	case "double_click_ms":
		return scalar(cfg.DoubleClickMs)
	case "decoration_mode":
		return scalar(cfg.DecorationMode)
	case "honour_client_preference":
		return scalar(cfg.HonourClientPreference)
	case "capabilities":
		return scalar(cfg.Capabilities)
	case "output_preset":
		return scalar(cfg.OutputPreset)
	case "chrome":
		if len(parts) == 1 {
			return cfg.Chrome, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "titlebar_height":
			return cfg.Chrome.TitlebarHeight, nil
		case "border":
			return cfg.Chrome.Border, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "ipc":
		if len(parts) == 1 {
			return cfg.IPC, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "enabled":
			return cfg.IPC.Enabled, nil
		case "socket_name":
			return cfg.IPC.SocketName, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "outputs":
		if len(parts) == 1 {
			return cfg.Outputs, nil
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= len(cfg.Outputs) {
			return nil, fmt.Errorf("unknown outputs entry %q", parts[1])
		}
		o := cfg.Outputs[idx]
		if len(parts) == 2 {
			return o, nil
		}
		if len(parts) == 4 && parts[2] == "reserved" {
			switch parts[3] {
			case "top":
				return o.Reserved.Top, nil
			case "bottom":
				return o.Reserved.Bottom, nil
			case "left":
				return o.Reserved.Left, nil
			case "right":
				return o.Reserved.Right, nil
			}
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		if len(parts) != 3 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[2] {
		case "name":
			return o.Name, nil
		case "x":
			return o.X, nil
		case "y":
			return o.Y, nil
		case "width":
			return o.Width, nil
		case "height":
			return o.Height, nil
		case "reserved":
			return o.Reserved, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
