package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xdgrole/internal/compositor"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, compositor.Status, error) {
	status, err := s.comp.GetStatus()
	if err != nil {
		return nil, compositor.Status{}, err
	}
	return nil, *status, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	all, err := s.comp.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	seat, err := s.comp.GetSeat()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	windows := make([]compositor.WindowInfo, 0, len(all))
	for _, w := range all {
		if args.AppID != "" && w.AppID != args.AppID {
			continue
		}
		if args.Phase != "" && w.Phase != args.Phase {
			continue
		}
		if args.Client != "" && w.Client != args.Client {
			continue
		}
		windows = append(windows, w)
	}
	s.logger.Debug("list_windows", "total", len(all), "matched", len(windows))

	return nil, ListWindowsOutput{
		Windows: windows,
		Focused: seat.KeyboardFocus,
	}, nil
}

func (s *Server) handleGetWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, compositor.WindowInfo, error) {
	if args.ID == 0 {
		return nil, compositor.WindowInfo{}, fmt.Errorf("id is required")
	}
	info, err := s.comp.GetWindow(args.ID)
	if err != nil {
		return nil, compositor.WindowInfo{}, err
	}
	return nil, *info, nil
}

func (s *Server) handleGetSeat(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetSeatInput) (*mcpsdk.CallToolResult, compositor.SeatInfo, error) {
	info, err := s.comp.GetSeat()
	if err != nil {
		return nil, compositor.SeatInfo{}, err
	}
	return nil, *info, nil
}

func (s *Server) handleListOutputs(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListOutputsInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	outputs, err := s.comp.ListOutputs()
	if err != nil {
		return nil, ListOutputsOutput{}, err
	}
	if outputs == nil {
		outputs = []compositor.OutputInfo{}
	}
	return nil, ListOutputsOutput{Outputs: outputs}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if args.ID == 0 {
		return nil, CloseWindowOutput{}, fmt.Errorf("id is required")
	}
	info, err := s.comp.GetWindow(args.ID)
	if err != nil {
		return nil, CloseWindowOutput{}, err
	}
	if err := s.comp.CloseWindow(args.ID); err != nil {
		s.logger.Warn("close_window failed", "window", args.ID, "error", err)
		return nil, CloseWindowOutput{}, err
	}
	s.logger.Info("close requested", "window", args.ID, "title", info.Title)

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Asked window %d (%q) to close", args.ID, info.Title)},
		},
	}, CloseWindowOutput{ID: args.ID, Title: info.Title}, nil
}
