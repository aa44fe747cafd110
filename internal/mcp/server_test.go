package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/ipc"
)

type fakeCompositor struct {
	windows []compositor.WindowInfo
	seat    compositor.SeatInfo
	outputs []compositor.OutputInfo
	closed  []uint32
	err     error
}

func (f *fakeCompositor) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{Backend: "headless", Windows: len(f.windows), Outputs: len(f.outputs)}, nil
}

func (f *fakeCompositor) ListWindows() ([]compositor.WindowInfo, error) {
	return f.windows, f.err
}

func (f *fakeCompositor) GetWindow(id uint32) (*compositor.WindowInfo, error) {
	for _, w := range f.windows {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, errors.New("no such window")
}

func (f *fakeCompositor) GetSeat() (*compositor.SeatInfo, error) {
	return &f.seat, f.err
}

func (f *fakeCompositor) ListOutputs() ([]compositor.OutputInfo, error) {
	return f.outputs, f.err
}

func (f *fakeCompositor) CloseWindow(id uint32) error {
	f.closed = append(f.closed, id)
	return nil
}

func newFake() *fakeCompositor {
	return &fakeCompositor{
		windows: []compositor.WindowInfo{
			{ID: 3, Title: "Editor", AppID: "org.example.editor", Phase: "mapped", Client: "a", States: []string{"activated"}},
			{ID: 4, Title: "Terminal", AppID: "org.example.term", Phase: "mapped", Client: "b", States: []string{}},
			{ID: 7, AppID: "org.example.term", Phase: "unconfigured", Client: "b", States: []string{}},
		},
		seat: compositor.SeatInfo{KeyboardFocus: 3, Cursor: "default"},
	}
}

func testServer(f *fakeCompositor) *Server {
	return NewServer(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListWindowsFilters(t *testing.T) {
	s := testServer(newFake())
	tests := []struct {
		name string
		in   ListWindowsInput
		want []uint32
	}{
		{"all", ListWindowsInput{}, []uint32{3, 4, 7}},
		{"app id", ListWindowsInput{AppID: "org.example.term"}, []uint32{4, 7}},
		{"phase", ListWindowsInput{Phase: "mapped"}, []uint32{3, 4}},
		{"client and phase", ListWindowsInput{Client: "b", Phase: "mapped"}, []uint32{4}},
		{"no match", ListWindowsInput{AppID: "missing"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListWindows(context.Background(), nil, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if out.Windows == nil {
				t.Fatal("windows is nil")
			}
			var got []uint32
			for _, w := range out.Windows {
				got = append(got, w.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", got, tt.want)
				}
			}
			if out.Focused != 3 {
				t.Errorf("focused = %d, want 3", out.Focused)
			}
		})
	}
}

func TestGetWindowRequiresID(t *testing.T) {
	s := testServer(newFake())
	if _, _, err := s.handleGetWindow(context.Background(), nil, WindowInput{}); err == nil {
		t.Error("get_window without id succeeded")
	}
	_, info, err := s.handleGetWindow(context.Background(), nil, WindowInput{ID: 4})
	if err != nil || info.Title != "Terminal" {
		t.Errorf("get_window = %+v, %v", info, err)
	}
}

func TestCloseWindow(t *testing.T) {
	f := newFake()
	s := testServer(f)

	res, out, err := s.handleCloseWindow(context.Background(), nil, WindowInput{ID: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.closed) != 1 || f.closed[0] != 3 {
		t.Errorf("closed = %v", f.closed)
	}
	if out.Title != "Editor" {
		t.Errorf("output = %+v", out)
	}
	text := res.Content[0].(*mcpsdk.TextContent).Text
	if !strings.Contains(text, `"Editor"`) {
		t.Errorf("text = %q", text)
	}

	if _, _, err := s.handleCloseWindow(context.Background(), nil, WindowInput{ID: 99}); err == nil {
		t.Error("closing unknown window succeeded")
	}
	if len(f.closed) != 1 {
		t.Errorf("unknown window was sent a close: %v", f.closed)
	}
}

func TestListOutputsNeverNil(t *testing.T) {
	s := testServer(newFake())
	_, out, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Outputs == nil {
		t.Error("outputs is nil")
	}
}

func TestCompositorErrorsPropagate(t *testing.T) {
	f := newFake()
	f.err = errors.New("failed to connect to compositor")
	s := testServer(f)
	if _, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{}); err == nil {
		t.Error("get_status succeeded")
	}
	if _, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{}); err == nil {
		t.Error("list_windows succeeded")
	}
}

func TestToolsOverSession(t *testing.T) {
	ctx := context.Background()
	s := testServer(newFake())

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	if _, err := s.mcpServer.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"get_status", "list_windows", "get_window", "get_seat", "list_outputs", "close_window"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "get_window",
		Arguments: map[string]any{"id": 99},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("get_window for an unknown id is not an error result")
	}
}
