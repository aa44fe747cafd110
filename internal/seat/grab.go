package seat

import (
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// GrabKind distinguishes move grabs from resize grabs.
type GrabKind int

const (
	GrabMove GrabKind = iota
	GrabResize
)

func (k GrabKind) String() string {
	switch k {
	case GrabMove:
		return "move"
	case GrabResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Grab is an interactive operation in which pointer motion drives a
// window's position or size.
type Grab struct {
	Kind          GrabKind
	Window        platform.WindowID
	Edge          toplevel.ResizeEdge
	InitialPos    platform.Point
	InitialSize   platform.Size
	InitialCursor platform.Point
}

// MoveGrab returns the active move grab.
func (s *Seat) MoveGrab() (Grab, bool) {
	if s.move == nil {
		return Grab{}, false
	}
	return *s.move, true
}

// ResizeGrab returns the active resize grab.
func (s *Seat) ResizeGrab() (Grab, bool) {
	if s.resize == nil {
		return Grab{}, false
	}
	return *s.resize, true
}

// canGrab is the acquisition gate shared by move and resize: the window must
// not be fullscreen and must hold pointer focus.
func (s *Seat) canGrab(t *toplevel.Toplevel) bool {
	if t == nil || t.Destroyed() {
		return false
	}
	return !t.Fullscreen() && s.pointerFocus == t.ID()
}

// StartMove begins an interactive move of t. It fails when a move is
// already in progress or the acquisition gate rejects t.
func (s *Seat) StartMove(t *toplevel.Toplevel) bool {
	if s.move != nil || !s.canGrab(t) {
		return false
	}
	s.move = &Grab{
		Kind:          GrabMove,
		Window:        t.ID(),
		InitialPos:    s.scene.Position(t.ID()),
		InitialSize:   t.Size(),
		InitialCursor: s.pointerPos,
	}
	s.SetCursor(platform.CursorMove, 0)
	s.logger.Debug("move grab started", "window", uint32(t.ID()))
	return true
}

// StartResize begins an interactive resize of t along edge.
func (s *Seat) StartResize(t *toplevel.Toplevel, edge toplevel.ResizeEdge) bool {
	if s.resize != nil || !edge.Valid() || !s.canGrab(t) {
		return false
	}
	s.resize = &Grab{
		Kind:          GrabResize,
		Window:        t.ID(),
		Edge:          edge,
		InitialPos:    s.scene.Position(t.ID()),
		InitialSize:   t.Size(),
		InitialCursor: s.pointerPos,
	}
	t.ConfigureStates(t.PendingStates().With(toplevel.Activated, toplevel.Resizing))
	s.SetCursor(CursorForEdge(edge), 0)
	s.logger.Debug("resize grab started", "window", uint32(t.ID()), "edge", edge.String())
	return true
}

// StopMove ends the move grab, if any.
func (s *Seat) StopMove() {
	if s.move == nil {
		return
	}
	s.move = nil
	s.grabCursorDone()
}

// StopResize ends the resize grab, if any, and tells the client the resize
// is over.
func (s *Seat) StopResize() {
	g := s.resize
	if g == nil {
		return
	}
	s.resize = nil
	if t, ok := s.scene.Toplevel(g.Window); ok && !t.Destroyed() {
		t.ConfigureStates(t.PendingStates().Without(toplevel.Resizing))
	}
	s.grabCursorDone()
}

// CancelGrabs ends every grab on id.
func (s *Seat) CancelGrabs(id platform.WindowID) {
	if s.move != nil && s.move.Window == id {
		s.StopMove()
	}
	if s.resize != nil && s.resize.Window == id {
		s.StopResize()
	}
}

func (s *Seat) grabCursorDone() {
	if s.move != nil || s.resize != nil {
		return
	}
	s.SetCursor(platform.CursorDefault, 0)
}

func (s *Seat) updateMove() {
	g := s.move
	if _, ok := s.scene.Toplevel(g.Window); !ok {
		s.StopMove()
		return
	}
	pos := g.InitialPos.Add(s.pointerPos.Sub(g.InitialCursor))
	s.scene.SetPosition(g.Window, pos)
}

func (s *Seat) updateResize() {
	g := s.resize
	t, ok := s.scene.Toplevel(g.Window)
	if !ok || t.Destroyed() {
		s.resize = nil
		s.grabCursorDone()
		return
	}
	size := toplevel.CalculateResizeSize(s.pointerPos.Sub(g.InitialCursor), g.InitialSize, g.Edge)
	size.Width = max(1, size.Width)
	size.Height = max(1, size.Height)
	t.Configure(size, t.PendingStates().With(toplevel.Activated, toplevel.Resizing))
}

// UpdateResizePosition repositions the window being resized after its
// client committed a new size, keeping the edge opposite the grabbed one in
// place. It does nothing unless t is the resize grab's window.
func (s *Seat) UpdateResizePosition(t *toplevel.Toplevel) {
	g := s.resize
	if g == nil || g.Window != t.ID() {
		return
	}
	pos := toplevel.ResizePosition(g.InitialPos, g.InitialSize, t.Size(), g.Edge)
	s.scene.SetPosition(g.Window, pos)
}

// CursorForEdge returns the cursor shown while dragging edge.
func CursorForEdge(edge toplevel.ResizeEdge) platform.CursorShape {
	switch edge {
	case toplevel.EdgeTop:
		return platform.CursorResizeTop
	case toplevel.EdgeBottom:
		return platform.CursorResizeBottom
	case toplevel.EdgeLeft:
		return platform.CursorResizeLeft
	case toplevel.EdgeRight:
		return platform.CursorResizeRight
	case toplevel.EdgeTopLeft:
		return platform.CursorResizeTopLeft
	case toplevel.EdgeTopRight:
		return platform.CursorResizeTopRight
	case toplevel.EdgeBottomLeft:
		return platform.CursorResizeBottomLeft
	case toplevel.EdgeBottomRight:
		return platform.CursorResizeBottomRight
	default:
		return platform.CursorDefault
	}
}
