//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/xdgrole/internal/x11"
)

// LinuxBackend runs the compositor nested on an X11 display: RandR CRTCs
// become outputs and the root-window cursor mirrors the seat cursor.
type LinuxBackend struct {
	mu   sync.Mutex
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display
// (empty means $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

func (b *LinuxBackend) Name() string { return "x11" }

// Close disconnects from the X server.
func (b *LinuxBackend) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	return nil
}

// Outputs returns all enabled monitors ordered by ID.
func (b *LinuxBackend) Outputs() ([]Output, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(monitors))
	for _, m := range monitors {
		outputs = append(outputs, outputFromMonitor(m))
	}
	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].ID < outputs[j].ID
	})
	return outputs, nil
}

func (b *LinuxBackend) CursorPosition() (Point, error) {
	conn, err := b.connection()
	if err != nil {
		return Point{}, err
	}
	x, y, err := conn.QueryPointer()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func (b *LinuxBackend) SetCursorShape(shape CursorShape) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetRootCursor(glyphForShape(shape))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil {
		return nil, fmt.Errorf("linux backend is nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil, fmt.Errorf("linux backend is not connected")
	}
	return b.conn, nil
}

func outputFromMonitor(m x11.Monitor) Output {
	bounds := Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	usable := Rect{X: m.Usable.X, Y: m.Usable.Y, Width: m.Usable.Width, Height: m.Usable.Height}
	if usable.Empty() {
		usable = bounds
	}
	// RandR CRTC indices start at 0; output IDs start at 1 so the zero
	// value means "no output".
	return Output{
		ID:     OutputID(m.ID + 1),
		Name:   m.Name,
		Bounds: bounds,
		Usable: usable,
	}
}

func glyphForShape(shape CursorShape) uint16 {
	switch shape {
	case CursorMove:
		return x11.GlyphMove
	case CursorResizeTop:
		return x11.GlyphTop
	case CursorResizeBottom:
		return x11.GlyphBottom
	case CursorResizeLeft:
		return x11.GlyphLeft
	case CursorResizeRight:
		return x11.GlyphRight
	case CursorResizeTopLeft:
		return x11.GlyphTopLeft
	case CursorResizeTopRight:
		return x11.GlyphTopRight
	case CursorResizeBottomLeft:
		return x11.GlyphBottomLeft
	case CursorResizeBottomRight:
		return x11.GlyphBottomRight
	default:
		return x11.GlyphDefault
	}
}
