package focus

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

type testSurface struct {
	id     platform.WindowID
	buffer *platform.Size
	mapped bool
}

func (s *testSurface) ID() platform.WindowID { return s.id }
func (s *testSurface) HasBuffer() bool       { return s.buffer != nil }
func (s *testSurface) Mapped() bool          { return s.mapped }
func (s *testSurface) SetMapped(m bool)      { s.mapped = m }
func (s *testSurface) DetachChildren()       {}

func (s *testSurface) Size() platform.Size {
	if s.buffer == nil {
		return platform.Size{}
	}
	return *s.buffer
}

type testResource struct{ configures []toplevel.Configuration }

func (r *testResource) SendConfigure(serial uint32, size platform.Size, states toplevel.StateSet) {
	r.configures = append(r.configures, toplevel.Configuration{Serial: serial, Size: size, States: states})
}
func (r *testResource) SendDecorationMode(toplevel.DecorationMode) {}
func (r *testResource) SendWMCapabilities(toplevel.Capabilities)   {}
func (r *testResource) SendConfigureBounds(platform.Size)          {}
func (r *testResource) SendClosed()                                {}
func (r *testResource) PostError(toplevel.ErrorCode, string)       {}

func (r *testResource) last() toplevel.Configuration { return r.configures[len(r.configures)-1] }

type nopHandler struct{}

func (nopHandler) ConfigureRequest(*toplevel.Toplevel)                        {}
func (nopHandler) SetMaximizedRequest(*toplevel.Toplevel)                     {}
func (nopHandler) UnsetMaximizedRequest(*toplevel.Toplevel)                   {}
func (nopHandler) SetFullscreenRequest(*toplevel.Toplevel, platform.OutputID) {}
func (nopHandler) UnsetFullscreenRequest(*toplevel.Toplevel)                  {}
func (nopHandler) SetMinimizedRequest(*toplevel.Toplevel)                     {}
func (nopHandler) StartMoveRequest(*toplevel.Toplevel)                        {}
func (nopHandler) StartResizeRequest(*toplevel.Toplevel, toplevel.ResizeEdge) {}
func (nopHandler) ShowWindowMenuRequest(*toplevel.Toplevel, platform.Point)   {}

type window struct {
	t       *toplevel.Toplevel
	surface *testSurface
	res     *testResource
}

func (w *window) ackAndCommit(t *testing.T, size platform.Size) {
	t.Helper()
	w.t.AckConfigure(w.res.last().Serial)
	w.surface.buffer = &size
	if err := w.t.Commit(); err != nil {
		t.Fatal(err)
	}
}

type testScene struct {
	serial    uint32
	windows   map[platform.WindowID]*window
	positions map[platform.WindowID]platform.Point
	minimized map[platform.WindowID]bool
	raised    []platform.WindowID
	output    platform.Output
}

func (s *testScene) NextSerial() uint32 {
	s.serial++
	return s.serial
}

func (s *testScene) Toplevel(id platform.WindowID) (*toplevel.Toplevel, bool) {
	w, ok := s.windows[id]
	if !ok {
		return nil, false
	}
	return w.t, true
}

func (s *testScene) Position(id platform.WindowID) platform.Point { return s.positions[id] }

func (s *testScene) SetPosition(id platform.WindowID, p platform.Point) { s.positions[id] = p }

func (s *testScene) SetMinimized(id platform.WindowID, m bool) { s.minimized[id] = m }

func (s *testScene) Raise(id platform.WindowID) { s.raised = append(s.raised, id) }

func (s *testScene) OutputFor(*toplevel.Toplevel) (platform.Output, bool) { return s.output, true }

type harness struct {
	scene *testScene
	seat  *seat.Seat
	coord *Coordinator
}

func newHarness() *harness {
	scene := &testScene{
		windows:   make(map[platform.WindowID]*window),
		positions: make(map[platform.WindowID]platform.Point),
		minimized: make(map[platform.WindowID]bool),
		output: platform.Output{
			ID:     1,
			Bounds: platform.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := seat.New(scene, nil, logger)
	return &harness{scene: scene, seat: st, coord: New(scene, st, logger)}
}

// addWindow maps a window whose initial configure activates it.
func (h *harness) addWindow(t *testing.T, id platform.WindowID, geometry platform.Rect) *window {
	t.Helper()
	w := &window{surface: &testSurface{id: id}, res: &testResource{}}
	w.t = toplevel.New(toplevel.Options{
		Surface:  w.surface,
		Resource: w.res,
		Serials:  h.scene,
		Handler:  nopHandler{},
		Seat:     h.seat,
	})
	w.t.AddListener(h.coord)
	h.scene.windows[id] = w

	if !geometry.Empty() {
		w.t.SetWindowGeometry(geometry)
	}
	if err := w.t.Commit(); err != nil {
		t.Fatal(err)
	}
	h.coord.Activate(w.t)
	w.ackAndCommit(t, platform.Size{Width: 400, Height: 300})
	return w
}

func TestActivateSkipsWhenAlreadyPending(t *testing.T) {
	h := newHarness()
	w := h.addWindow(t, 1, platform.Rect{})
	sent := len(w.res.configures)

	h.coord.Activate(w.t)
	if len(w.res.configures) != sent {
		t.Errorf("Activate configured an already active window")
	}
}

func TestActivatedChangedMovesKeyboardFocus(t *testing.T) {
	h := newHarness()
	a := h.addWindow(t, 1, platform.Rect{})
	if h.seat.ActiveToplevel() != 1 || h.seat.KeyboardFocus() != 1 {
		t.Fatalf("first window not active")
	}

	b := h.addWindow(t, 2, platform.Rect{})
	if h.seat.ActiveToplevel() != 2 || h.seat.KeyboardFocus() != 2 {
		t.Fatalf("second window not active")
	}
	if a.res.last().States.Has(toplevel.Activated) {
		t.Error("previous window not asked to deactivate")
	}
	if !b.t.Activated() {
		t.Error("second window not activated")
	}

	a.ackAndCommit(t, platform.Size{Width: 400, Height: 300})
	if a.t.Activated() || h.seat.ActiveToplevel() != 2 {
		t.Errorf("deactivating %d disturbed %d", a.t.ID(), b.t.ID())
	}
}

func TestFocusRaisesAndFocuses(t *testing.T) {
	h := newHarness()
	w := h.addWindow(t, 1, platform.Rect{})
	h.scene.raised = nil

	h.coord.Focus(w.t)
	if h.seat.PointerFocus() != 1 || h.seat.KeyboardFocus() != 1 {
		t.Error("Focus did not move seat focus")
	}
	if !slices.Equal(h.scene.raised, []platform.WindowID{1}) {
		t.Errorf("raised = %v", h.scene.raised)
	}
}

func TestMaximizedChangedPlacesGeometryAtOutputOrigin(t *testing.T) {
	h := newHarness()
	w := h.addWindow(t, 1, platform.Rect{X: 10, Y: 20, Width: 380, Height: 260})
	h.scene.minimized[1] = true

	w.t.Configure(platform.Size{Width: 1280, Height: 1024}, toplevel.States(toplevel.Activated, toplevel.Maximized))
	w.ackAndCommit(t, platform.Size{Width: 1300, Height: 1060})

	if got := h.scene.positions[1]; got != (platform.Point{X: 1910, Y: -20}) {
		t.Errorf("position = %v, want 1910,-20", got)
	}
	if h.scene.minimized[1] {
		t.Error("maximized window still minimized")
	}
	if len(h.scene.raised) == 0 || h.scene.raised[len(h.scene.raised)-1] != 1 {
		t.Errorf("window not raised: %v", h.scene.raised)
	}
}

func TestFullscreenLeaveClearsTargetOutput(t *testing.T) {
	h := newHarness()
	w := h.addWindow(t, 1, platform.Rect{})

	w.t.SetTargetOutput(1)
	w.t.Configure(platform.Size{Width: 1280, Height: 1024}, toplevel.States(toplevel.Activated, toplevel.Fullscreen))
	w.ackAndCommit(t, platform.Size{Width: 1280, Height: 1024})
	if got := h.scene.positions[1]; got != (platform.Point{X: 1920}) {
		t.Errorf("fullscreen position = %v, want 1920,0", got)
	}

	w.t.ConfigureStates(w.t.PendingStates().Without(toplevel.Fullscreen))
	w.ackAndCommit(t, platform.Size{Width: 400, Height: 300})
	if w.t.TargetOutput() != 0 {
		t.Errorf("target output = %d after leaving fullscreen", w.t.TargetOutput())
	}
}
