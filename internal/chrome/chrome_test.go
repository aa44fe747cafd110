package chrome

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

func TestHitTest(t *testing.T) {
	l := Layout{TitlebarHeight: 30, Border: 5}
	// Frame covers x 95-504 and y 65-404.
	window := platform.Rect{X: 100, Y: 100, Width: 400, Height: 300}

	tests := []struct {
		name string
		p    platform.Point
		want Region
	}{
		{"client area", platform.Point{X: 200, Y: 200}, RegionNone},
		{"outside", platform.Point{X: 10, Y: 10}, RegionNone},
		{"titlebar", platform.Point{X: 200, Y: 80}, RegionTitlebar},
		{"top border", platform.Point{X: 200, Y: 66}, RegionTop},
		{"bottom border", platform.Point{X: 200, Y: 402}, RegionBottom},
		{"left border", platform.Point{X: 96, Y: 200}, RegionLeft},
		{"right border", platform.Point{X: 502, Y: 200}, RegionRight},
		{"top left corner", platform.Point{X: 96, Y: 66}, RegionTopLeft},
		{"top right corner", platform.Point{X: 503, Y: 67}, RegionTopRight},
		{"bottom left corner", platform.Point{X: 95, Y: 404}, RegionBottomLeft},
		{"bottom right corner", platform.Point{X: 504, Y: 404}, RegionBottomRight},
		{"left of titlebar", platform.Point{X: 97, Y: 80}, RegionLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.HitTest(window, tt.p); got != tt.want {
				t.Errorf("HitTest(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRegionEdges(t *testing.T) {
	if RegionTitlebar.IsBorder() || RegionNone.IsBorder() {
		t.Error("titlebar or none reported as border")
	}
	if RegionBottomRight.Edge() != toplevel.EdgeBottomRight || RegionTop.Edge() != toplevel.EdgeTop {
		t.Error("wrong edge for border region")
	}
}

type testSurface struct {
	id     platform.WindowID
	mapped bool
}

func (s *testSurface) ID() platform.WindowID { return s.id }
func (s *testSurface) HasBuffer() bool       { return s.mapped }
func (s *testSurface) Mapped() bool          { return s.mapped }
func (s *testSurface) SetMapped(m bool)      { s.mapped = m }
func (s *testSurface) DetachChildren()       {}

func (s *testSurface) Size() platform.Size {
	if !s.mapped {
		return platform.Size{}
	}
	return platform.Size{Width: 400, Height: 300}
}

type nopResource struct{}

func (nopResource) SendConfigure(uint32, platform.Size, toplevel.StateSet) {}
func (nopResource) SendDecorationMode(toplevel.DecorationMode)             {}
func (nopResource) SendWMCapabilities(toplevel.Capabilities)               {}
func (nopResource) SendConfigureBounds(platform.Size)                      {}
func (nopResource) SendClosed()                                            {}
func (nopResource) PostError(toplevel.ErrorCode, string)                   {}

// recordingHandler counts the requests decorations generate.
type recordingHandler struct {
	moves     int
	resizes   []toplevel.ResizeEdge
	maximizes int
}

func (h *recordingHandler) ConfigureRequest(*toplevel.Toplevel)                        {}
func (h *recordingHandler) SetMaximizedRequest(*toplevel.Toplevel)                     { h.maximizes++ }
func (h *recordingHandler) UnsetMaximizedRequest(*toplevel.Toplevel)                   {}
func (h *recordingHandler) SetFullscreenRequest(*toplevel.Toplevel, platform.OutputID) {}
func (h *recordingHandler) UnsetFullscreenRequest(*toplevel.Toplevel)                  {}
func (h *recordingHandler) SetMinimizedRequest(*toplevel.Toplevel)                     {}
func (h *recordingHandler) StartMoveRequest(*toplevel.Toplevel)                        { h.moves++ }
func (h *recordingHandler) ShowWindowMenuRequest(*toplevel.Toplevel, platform.Point)   {}

func (h *recordingHandler) StartResizeRequest(_ *toplevel.Toplevel, edge toplevel.ResizeEdge) {
	h.resizes = append(h.resizes, edge)
}

type serials struct{ n uint32 }

func (s *serials) NextSerial() uint32 {
	s.n++
	return s.n
}

type emptyScene struct{}

func (emptyScene) Toplevel(platform.WindowID) (*toplevel.Toplevel, bool) { return nil, false }
func (emptyScene) Position(platform.WindowID) platform.Point             { return platform.Point{} }
func (emptyScene) SetPosition(platform.WindowID, platform.Point)         {}

type focusRecorder struct{ focused []platform.WindowID }

func (f *focusRecorder) Focus(t *toplevel.Toplevel) { f.focused = append(f.focused, t.ID()) }

func newDecorations(t *testing.T, interval time.Duration) (*Decorations, *seat.Seat, *focusRecorder, *recordingHandler, *toplevel.Toplevel) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := seat.New(emptyScene{}, nil, logger)
	focuser := &focusRecorder{}
	handler := &recordingHandler{}
	surface := &testSurface{id: 1}
	tl := toplevel.New(toplevel.Options{
		Surface:  surface,
		Resource: nopResource{},
		Serials:  &serials{},
		Handler:  handler,
		Seat:     st,
		Logger:   logger,
	})
	// Apply the role, then show the window.
	if err := tl.Commit(); err != nil {
		t.Fatal(err)
	}
	surface.mapped = true
	return New(st, focuser, DefaultLayout, interval), st, focuser, handler, tl
}

func TestTitlebarDoubleClickInterval(t *testing.T) {
	tests := []struct {
		name          string
		gap           uint32
		wantMaximizes int
		wantMoves     int
	}{
		{"150ms toggles maximize", 150, 1, 1},
		{"400ms starts another move", 400, 0, 2},
		{"exactly the interval is too slow", 220, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, focuser, handler, tl := newDecorations(t, 0)

			d.Press(tl, RegionTitlebar, 1000)
			d.Press(tl, RegionTitlebar, 1000+tt.gap)

			if handler.maximizes != tt.wantMaximizes || handler.moves != tt.wantMoves {
				t.Errorf("maximizes=%d moves=%d, want %d and %d", handler.maximizes, handler.moves, tt.wantMaximizes, tt.wantMoves)
			}
			if len(focuser.focused) != 2 {
				t.Errorf("focus calls = %d, want 2", len(focuser.focused))
			}
		})
	}
}

func TestDoubleClickNeedsTwoTitlebarPresses(t *testing.T) {
	d, _, _, handler, tl := newDecorations(t, 0)

	d.Press(tl, RegionTitlebar, 1000)
	d.Press(tl, RegionLeft, 1050)
	d.Press(tl, RegionTitlebar, 1100)
	if handler.maximizes != 0 {
		t.Errorf("border press between titlebar presses still toggled maximize")
	}
	if len(handler.resizes) != 1 || handler.resizes[0] != toplevel.EdgeLeft {
		t.Errorf("resizes = %v, want [left]", handler.resizes)
	}
}

func TestCustomInterval(t *testing.T) {
	d, _, _, handler, tl := newDecorations(t, 500*time.Millisecond)
	d.Press(tl, RegionTitlebar, 1000)
	d.Press(tl, RegionTitlebar, 1400)
	if handler.maximizes != 1 {
		t.Errorf("maximizes = %d, want 1", handler.maximizes)
	}
}

func TestHoverCursor(t *testing.T) {
	d, st, _, _, _ := newDecorations(t, 0)

	d.Hover(1, RegionBottomRight)
	if st.CursorShape() != platform.CursorResizeBottomRight || st.CursorOwner() != 1 {
		t.Fatalf("cursor = %v owner %d", st.CursorShape(), st.CursorOwner())
	}
	d.Hover(1, RegionTitlebar)
	if st.CursorShape() != platform.CursorDefault {
		t.Errorf("titlebar hover cursor = %v", st.CursorShape())
	}

	d.Hover(1, RegionTop)
	d.Leave(2)
	if st.CursorShape() != platform.CursorResizeTop {
		t.Error("leaving another frame reset the cursor")
	}
	d.Forget(1)
	if st.CursorShape() != platform.CursorDefault {
		t.Error("forgetting the owner kept its cursor")
	}
}
