package mcp

import "github.com/1broseidon/xdgrole/internal/compositor"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	AppID  string `json:"app_id,omitempty" jsonschema:"Only list windows with this app ID"`
	Phase  string `json:"phase,omitempty" jsonschema:"Only list windows in this phase (unconfigured, mapped or unmapped)"`
	Client string `json:"client,omitempty" jsonschema:"Only list windows owned by this client connection ID"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []compositor.WindowInfo `json:"windows"`

	// Focused is the ID of the window holding keyboard focus, or 0.
	Focused uint32 `json:"focused"`
}

// WindowInput names a single window.
type WindowInput struct {
	ID uint32 `json:"id" jsonschema:"required,Window ID as reported by list_windows"`
}

// GetSeatInput is the input for the get_seat tool.
type GetSeatInput struct{}

// ListOutputsInput is the input for the list_outputs tool.
type ListOutputsInput struct{}

// ListOutputsOutput is the output for the list_outputs tool.
type ListOutputsOutput struct {
	Outputs []compositor.OutputInfo `json:"outputs"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
}
