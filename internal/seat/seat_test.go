package seat

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/xdgrole/internal/platform"
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

type configure struct {
	serial uint32
	size   platform.Size
	states toplevel.StateSet
}

type testResource struct{ configures []configure }

func (r *testResource) SendConfigure(serial uint32, size platform.Size, states toplevel.StateSet) {
	r.configures = append(r.configures, configure{serial, size, states})
}
func (r *testResource) SendDecorationMode(toplevel.DecorationMode) {}
func (r *testResource) SendWMCapabilities(toplevel.Capabilities)   {}
func (r *testResource) SendConfigureBounds(platform.Size)          {}
func (r *testResource) SendClosed()                                {}
func (r *testResource) PostError(toplevel.ErrorCode, string)       {}

func (r *testResource) last() configure { return r.configures[len(r.configures)-1] }

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

type serials struct{ n uint32 }

func (s *serials) NextSerial() uint32 {
	s.n++
	return s.n
}

type window struct {
	t       *toplevel.Toplevel
	surface *testSurface
	res     *testResource
}

type testScene struct {
	serials   serials
	windows   map[platform.WindowID]*window
	positions map[platform.WindowID]platform.Point
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

type testCursor struct{ shapes []platform.CursorShape }

func (c *testCursor) SetCursorShape(shape platform.CursorShape) error {
	c.shapes = append(c.shapes, shape)
	return nil
}

func (c *testCursor) current() platform.CursorShape {
	if len(c.shapes) == 0 {
		return platform.CursorDefault
	}
	return c.shapes[len(c.shapes)-1]
}

func newTestSeat() (*Seat, *testScene, *testCursor) {
	scene := &testScene{
		windows:   make(map[platform.WindowID]*window),
		positions: make(map[platform.WindowID]platform.Point),
	}
	cursor := &testCursor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(scene, cursor, logger), scene, cursor
}

// addWindow maps a window of the given size at pos.
func addWindow(t *testing.T, st *Seat, scene *testScene, id platform.WindowID, pos platform.Point, size platform.Size) *window {
	t.Helper()
	w := &window{surface: &testSurface{id: id}, res: &testResource{}}
	w.t = toplevel.New(toplevel.Options{
		Surface:  w.surface,
		Resource: w.res,
		Serials:  &scene.serials,
		Handler:  nopHandler{},
		Seat:     st,
	})
	scene.windows[id] = w
	scene.positions[id] = pos

	if err := w.t.Commit(); err != nil {
		t.Fatal(err)
	}
	w.ackAndCommit(t, size)
	if w.t.Phase() != toplevel.PhaseMapped {
		t.Fatalf("window %d not mapped", id)
	}
	return w
}

func (w *window) ackAndCommit(t *testing.T, size platform.Size) {
	t.Helper()
	w.t.AckConfigure(w.res.last().serial)
	w.surface.buffer = &size
	if err := w.t.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestGrabRequiresPointerFocus(t *testing.T) {
	st, scene, _ := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{}, platform.Size{Width: 300, Height: 200})

	if st.StartMove(w.t) {
		t.Fatal("move started without pointer focus")
	}
	st.SetPointerFocus(1)
	if !st.StartMove(w.t) {
		t.Fatal("move rejected with pointer focus")
	}
	if st.StartMove(w.t) {
		t.Error("second move grab accepted")
	}
	if !st.StartResize(w.t, toplevel.EdgeRight) {
		t.Error("resize rejected while only a move is active")
	}
}

func TestSecondResizeGrabIsIgnored(t *testing.T) {
	st, scene, _ := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{}, platform.Size{Width: 300, Height: 200})
	st.SetPointerFocus(1)

	if !st.StartResize(w.t, toplevel.EdgeRight) {
		t.Fatal("first resize rejected")
	}
	before := len(w.res.configures)
	if st.StartResize(w.t, toplevel.EdgeBottomLeft) {
		t.Error("second resize grab accepted")
	}
	g, ok := st.ResizeGrab()
	if !ok || g.Edge != toplevel.EdgeRight {
		t.Errorf("resize grab = %+v (%v), want right edge", g, ok)
	}
	if len(w.res.configures) != before {
		t.Errorf("configures = %d, want %d", len(w.res.configures), before)
	}
}

func TestGrabRejectsFullscreen(t *testing.T) {
	st, scene, _ := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{}, platform.Size{Width: 300, Height: 200})
	w.t.Configure(platform.Size{Width: 1920, Height: 1080}, toplevel.States(toplevel.Fullscreen))
	w.ackAndCommit(t, platform.Size{Width: 1920, Height: 1080})
	if !w.t.Fullscreen() {
		t.Fatal("window not fullscreen")
	}

	st.SetPointerFocus(1)
	if st.StartMove(w.t) || st.StartResize(w.t, toplevel.EdgeLeft) {
		t.Error("grab started on a fullscreen window")
	}
}

func TestMoveFollowsPointer(t *testing.T) {
	st, scene, cursor := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{X: 100, Y: 100}, platform.Size{Width: 300, Height: 200})

	st.PointerMotion(platform.Point{X: 150, Y: 110})
	st.SetPointerFocus(1)
	st.PointerButton(ButtonLeft, true, 10)
	if !st.StartMove(w.t) {
		t.Fatal("StartMove failed")
	}
	if cursor.current() != platform.CursorMove {
		t.Errorf("cursor = %v, want move", cursor.current())
	}

	st.PointerMotion(platform.Point{X: 170, Y: 90})
	if got := scene.positions[1]; got != (platform.Point{X: 120, Y: 80}) {
		t.Errorf("position = %v, want 120,80", got)
	}

	st.PointerButton(ButtonLeft, false, 20)
	if _, ok := st.MoveGrab(); ok {
		t.Error("move survived the release")
	}
	if cursor.current() != platform.CursorDefault {
		t.Errorf("cursor = %v, want default", cursor.current())
	}
	st.PointerMotion(platform.Point{X: 400, Y: 400})
	if got := scene.positions[1]; got != (platform.Point{X: 120, Y: 80}) {
		t.Errorf("window moved after release: %v", got)
	}
}

func TestResizeConfiguresClient(t *testing.T) {
	st, scene, cursor := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{X: 100, Y: 100}, platform.Size{Width: 300, Height: 200})

	st.PointerMotion(platform.Point{X: 400, Y: 300})
	st.SetPointerFocus(1)
	st.PointerButton(ButtonLeft, true, 10)
	if !st.StartResize(w.t, toplevel.EdgeBottomRight) {
		t.Fatal("StartResize failed")
	}
	if !w.res.last().states.Has(toplevel.Resizing) || !w.res.last().states.Has(toplevel.Activated) {
		t.Errorf("resize start states = %v", w.res.last().states)
	}
	if cursor.current() != platform.CursorResizeBottomRight {
		t.Errorf("cursor = %v", cursor.current())
	}

	st.PointerMotion(platform.Point{X: 410, Y: 320})
	if got := w.res.last().size; got != (platform.Size{Width: 310, Height: 220}) {
		t.Errorf("resize size = %v, want 310x220", got)
	}

	st.PointerButton(ButtonLeft, false, 30)
	if w.res.last().states.Has(toplevel.Resizing) {
		t.Error("resize end kept the resizing state")
	}
	if cursor.current() != platform.CursorDefault {
		t.Errorf("cursor = %v, want default", cursor.current())
	}
}

func TestResizeSizeStaysPositive(t *testing.T) {
	st, scene, _ := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{}, platform.Size{Width: 300, Height: 200})

	st.SetPointerFocus(1)
	if !st.StartResize(w.t, toplevel.EdgeRight) {
		t.Fatal("StartResize failed")
	}
	st.PointerMotion(platform.Point{X: -1000})
	if got := w.res.last().size; got.Width != 1 || got.Height != 200 {
		t.Errorf("size = %v, want 1x200", got)
	}
}

func TestResizeKeepsOppositeEdge(t *testing.T) {
	st, scene, _ := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{X: 100, Y: 100}, platform.Size{Width: 300, Height: 200})

	st.PointerMotion(platform.Point{X: 100, Y: 100})
	st.SetPointerFocus(1)
	if !st.StartResize(w.t, toplevel.EdgeTopLeft) {
		t.Fatal("StartResize failed")
	}
	st.PointerMotion(platform.Point{X: 90, Y: 80})
	size := w.res.last().size
	if size != (platform.Size{Width: 310, Height: 220}) {
		t.Fatalf("size = %v, want 310x220", size)
	}
	w.ackAndCommit(t, size)
	st.UpdateResizePosition(w.t)
	if got := scene.positions[1]; got != (platform.Point{X: 90, Y: 80}) {
		t.Errorf("position = %v, want 90,80", got)
	}
}

func TestPointerFocusChangeCancelsGrab(t *testing.T) {
	st, scene, _ := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{}, platform.Size{Width: 300, Height: 200})
	addWindow(t, st, scene, 2, platform.Point{X: 500}, platform.Size{Width: 300, Height: 200})

	st.SetPointerFocus(1)
	st.StartMove(w.t)
	st.SetPointerFocus(2)
	if _, ok := st.MoveGrab(); ok {
		t.Error("move survived losing pointer focus")
	}
}

func TestForgetDropsEveryReference(t *testing.T) {
	st, scene, cursor := newTestSeat()
	w := addWindow(t, st, scene, 1, platform.Point{}, platform.Size{Width: 300, Height: 200})

	st.SetPointerFocus(1)
	st.SetKeyboardFocus(1)
	st.SetActiveToplevel(1)
	st.StartMove(w.t)

	st.Forget(1)
	if st.PointerFocus() != 0 || st.KeyboardFocus() != 0 || st.ActiveToplevel() != 0 {
		t.Errorf("focus survived: pointer=%d keyboard=%d active=%d", st.PointerFocus(), st.KeyboardFocus(), st.ActiveToplevel())
	}
	if _, ok := st.MoveGrab(); ok {
		t.Error("grab survived")
	}
	if cursor.current() != platform.CursorDefault {
		t.Errorf("cursor = %v, want default", cursor.current())
	}
}

func TestCursorOwnership(t *testing.T) {
	st, _, cursor := newTestSeat()

	st.SetCursor(platform.CursorResizeLeft, 7)
	st.ResetCursor(8)
	if cursor.current() != platform.CursorResizeLeft {
		t.Error("non-owner reset the cursor")
	}
	st.ResetCursor(7)
	if cursor.current() != platform.CursorDefault || st.CursorOwner() != 0 {
		t.Error("owner could not reset the cursor")
	}
}

func TestPressTimestampsAreMonotonic(t *testing.T) {
	st, _, _ := newTestSeat()
	st.PointerButton(ButtonLeft, true, 100)
	st.PointerButton(ButtonLeft, false, 110)
	st.PointerButton(ButtonLeft, true, 50)
	if got, ok := st.LastPressTime(); !ok || got != 100 {
		t.Errorf("LastPressTime = %d, %v; want 100", got, ok)
	}
}

func TestCursorForEdge(t *testing.T) {
	tests := []struct {
		edge toplevel.ResizeEdge
		want platform.CursorShape
	}{
		{toplevel.EdgeNone, platform.CursorDefault},
		{toplevel.EdgeTop, platform.CursorResizeTop},
		{toplevel.EdgeBottomLeft, platform.CursorResizeBottomLeft},
		{toplevel.EdgeRight, platform.CursorResizeRight},
	}
	for _, tt := range tests {
		if got := CursorForEdge(tt.edge); got != tt.want {
			t.Errorf("CursorForEdge(%v) = %v, want %v", tt.edge, got, tt.want)
		}
	}
}
