package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/ipc"
)

const (
	ServerName    = "xdgrole"
	ServerVersion = "0.1.0"
)

// Compositor is the view of a running compositor the tools need.
// *ipc.Client satisfies it.
type Compositor interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]compositor.WindowInfo, error)
	GetWindow(id uint32) (*compositor.WindowInfo, error)
	GetSeat() (*compositor.SeatInfo, error)
	ListOutputs() ([]compositor.OutputInfo, error)
	CloseWindow(id uint32) error
}

var _ Compositor = (*ipc.Client)(nil)

// Server is the MCP server exposing compositor state.
type Server struct {
	mcpServer *mcpsdk.Server
	comp      Compositor
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by comp.
func NewServer(comp Compositor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		comp:   comp,
		logger: logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Summarise the running compositor: backend, connected clients, toplevel count, outputs and the last configure serial.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List toplevel windows bottom of the stack first, with their lifecycle phase, committed and pending states, geometry and decoration mode. Filter by app_id, phase or client.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window",
		Description: "Describe one toplevel window by ID, including its last configure serial and how many configures are still unacknowledged.",
	}, s.handleGetWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_seat",
		Description: "Report the seat: pointer position and focus, keyboard focus, the active toplevel, any move or resize grab and the cursor shape.",
	}, s.handleGetSeat)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List connected outputs and their bounds in global coordinates.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Ask the client owning a toplevel to close it. The client decides whether and when the window goes away.",
	}, s.handleCloseWindow)
}
