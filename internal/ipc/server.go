package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/platform"
)

// requestTimeout bounds how long a request waits for the compositor turn.
const requestTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	loop         *compositor.Loop
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server answering from loop's compositor.
func NewServer(socketPath string, loop *compositor.Loop, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		loop:       loop,
		logger:     logger.With("component", "ipc"),
	}
}

func (s *Server) String() string { return "ipc" }

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Serve listens until ctx is cancelled. It is a suture service.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed server.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.shutdownMu.Lock()
	s.listener = listener
	s.shuttingDown = false
	s.shutdownMu.Unlock()

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop(listener)

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", string(req.Command))
	switch req.Command {
	case CommandGetStatus:
		return s.query(func(c *compositor.Compositor) any { return c.Status() })
	case CommandListWindows:
		return s.query(func(c *compositor.Compositor) any { return WindowsData{Windows: c.Windows()} })
	case CommandGetSeat:
		return s.query(func(c *compositor.Compositor) any { return c.SeatInfo() })
	case CommandListOutputs:
		return s.query(func(c *compositor.Compositor) any { return OutputsData{Outputs: c.OutputInfos()} })
	case CommandGetWindow:
		return s.handleGetWindow(req.Payload)
	case CommandCloseWindow:
		return s.handleCloseWindow(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// query runs fn on the compositor turn and wraps its result.
func (s *Server) query(fn func(*compositor.Compositor) any) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var data any
	err := s.loop.Do(ctx, func(c *compositor.Compositor) error {
		data = fn(c)
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Compositor unavailable: %v", err))
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func parseWindowPayload(payload json.RawMessage) (platform.WindowID, error) {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return 0, fmt.Errorf("invalid window payload: %w", err)
	}
	if req.ID == 0 {
		return 0, errors.New("id is required")
	}
	return platform.WindowID(req.ID), nil
}

func (s *Server) handleGetWindow(payload json.RawMessage) *Response {
	id, err := parseWindowPayload(payload)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var info compositor.WindowInfo
	err = s.loop.Do(ctx, func(c *compositor.Compositor) error {
		var ok bool
		info, ok = c.Window(id)
		if !ok {
			return fmt.Errorf("unknown window %d", id)
		}
		return nil
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(info)
	return resp
}

func (s *Server) handleCloseWindow(payload json.RawMessage) *Response {
	id, err := parseWindowPayload(payload)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	err = s.loop.Do(ctx, func(c *compositor.Compositor) error {
		return c.CloseWindow(id)
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to close window: %v", err))
	}
	s.logger.Info("close requested over IPC", "window", uint32(id))

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	listener := s.listener
	s.listener = nil
	s.shutdownMu.Unlock()

	if listener != nil {
		listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
