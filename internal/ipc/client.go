package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/runtimepath"
)

// Client handles IPC communication with a running compositor
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientForSocket(socketPath)
}

// NewClientForSocket creates a client for an explicit socket path
func NewClientForSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor: %w (is `xdgrole serve` running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("compositor error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the reply into out.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves compositor status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows retrieves every toplevel, bottom of the stack first
func (c *Client) ListWindows() ([]compositor.WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// GetWindow retrieves one toplevel
func (c *Client) GetWindow(id uint32) (*compositor.WindowInfo, error) {
	var info compositor.WindowInfo
	if err := c.call(CommandGetWindow, WindowPayload{ID: id}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetSeat retrieves focus and grab state
func (c *Client) GetSeat() (*compositor.SeatInfo, error) {
	var info compositor.SeatInfo
	if err := c.call(CommandGetSeat, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListOutputs retrieves connected outputs
func (c *Client) ListOutputs() ([]compositor.OutputInfo, error) {
	var data OutputsData
	if err := c.call(CommandListOutputs, nil, &data); err != nil {
		return nil, err
	}
	return data.Outputs, nil
}

// CloseWindow asks a window's client to close it
func (c *Client) CloseWindow(id uint32) error {
	return c.call(CommandCloseWindow, WindowPayload{ID: id}, nil)
}

// Ping checks if the compositor is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
