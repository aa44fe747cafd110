package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/xdgrole/internal/compositor"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandGetWindow   CommandType = "GET_WINDOW"
	CommandGetSeat     CommandType = "GET_SEAT"
	CommandListOutputs CommandType = "LIST_OUTPUTS"
	CommandCloseWindow CommandType = "CLOSE_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData = compositor.Status

// WindowsData is returned by LIST_WINDOWS.
type WindowsData struct {
	Windows []compositor.WindowInfo `json:"windows"`
}

// OutputsData is returned by LIST_OUTPUTS.
type OutputsData struct {
	Outputs []compositor.OutputInfo `json:"outputs"`
}

// WindowPayload names a window for GET_WINDOW and CLOSE_WINDOW.
type WindowPayload struct {
	ID uint32 `json:"id"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
