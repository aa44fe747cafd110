package config

// DefaultOutputPreset is the output set used when nothing is configured.
const DefaultOutputPreset = "single"

// BuiltinOutputPresets returns the built-in headless output sets.
//
// These are always available without defining outputs in YAML. Listing
// outputs explicitly replaces the preset.
func BuiltinOutputPresets() map[string][]OutputConfig {
	return map[string][]OutputConfig{
		"single": {
			{Name: "HEADLESS-1", Width: 1920, Height: 1080},
		},
		"laptop": {
			{Name: "eDP-1", Width: 1366, Height: 768, Reserved: Margins{Top: 24}},
		},
		"dual": {
			{Name: "DP-1", Width: 1920, Height: 1080, Reserved: Margins{Top: 32}},
			{Name: "DP-2", X: 1920, Width: 1280, Height: 1024},
		},
		"stacked": {
			{Name: "HDMI-1", Width: 2560, Height: 1440},
			{Name: "eDP-1", Y: 1440, Width: 1920, Height: 1200, Reserved: Margins{Bottom: 48}},
		},
	}
}
