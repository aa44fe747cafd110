package seat

import (
	"log/slog"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// ButtonLeft is the evdev code of the primary pointer button.
const ButtonLeft uint32 = 0x110

// Scene is the compositor state the seat reads and moves windows in.
type Scene interface {
	Toplevel(id platform.WindowID) (*toplevel.Toplevel, bool)
	Position(id platform.WindowID) platform.Point
	SetPosition(id platform.WindowID, p platform.Point)
}

// Cursor shows a cursor glyph. Errors are the backend's concern.
type Cursor interface {
	SetCursorShape(shape platform.CursorShape) error
}

// Seat is the single input seat: pointer and keyboard focus, the active
// toplevel and interactive move/resize grabs. It is not safe for concurrent
// use; the compositor drives it from its main turn.
type Seat struct {
	scene  Scene
	cursor Cursor
	logger *slog.Logger

	pointerPos     platform.Point
	pointerFocus   platform.WindowID
	keyboardFocus  platform.WindowID
	activeToplevel platform.WindowID

	move   *Grab
	resize *Grab

	lastPress    uint32
	hasPress     bool
	pressedCount int

	shape       platform.CursorShape
	cursorOwner platform.WindowID
}

var _ toplevel.Seat = (*Seat)(nil)

// New creates a seat. cursor may be nil.
func New(scene Scene, cursor Cursor, logger *slog.Logger) *Seat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seat{
		scene:  scene,
		cursor: cursor,
		logger: logger.With("component", "seat"),
	}
}

// PointerPosition returns the last known cursor position.
func (s *Seat) PointerPosition() platform.Point { return s.pointerPos }

// PointerFocus returns the surface under pointer focus, 0 when none.
func (s *Seat) PointerFocus() platform.WindowID { return s.pointerFocus }

// KeyboardFocus returns the surface receiving key events, 0 when none.
func (s *Seat) KeyboardFocus() platform.WindowID { return s.keyboardFocus }

// ActiveToplevel returns the activated toplevel, 0 when none.
func (s *Seat) ActiveToplevel() platform.WindowID { return s.activeToplevel }

// SetActiveToplevel records which toplevel is active.
func (s *Seat) SetActiveToplevel(id platform.WindowID) { s.activeToplevel = id }

// SetPointerFocus moves pointer focus. Taking focus away from a grabbed
// window ends its grabs.
func (s *Seat) SetPointerFocus(id platform.WindowID) {
	if id == s.pointerFocus {
		return
	}
	prev := s.pointerFocus
	s.pointerFocus = id
	if prev != 0 {
		s.CancelGrabs(prev)
	}
}

// SetKeyboardFocus moves keyboard focus.
func (s *Seat) SetKeyboardFocus(id platform.WindowID) {
	if id == s.keyboardFocus {
		return
	}
	s.logger.Debug("keyboard focus", "from", uint32(s.keyboardFocus), "to", uint32(id))
	s.keyboardFocus = id
}

// LastPressTime returns the timestamp in milliseconds of the most recent
// button press.
func (s *Seat) LastPressTime() (uint32, bool) { return s.lastPress, s.hasPress }

// PointerMotion moves the cursor and drives any active grab.
func (s *Seat) PointerMotion(p platform.Point) {
	s.pointerPos = p
	if s.move != nil {
		s.updateMove()
	}
	if s.resize != nil {
		s.updateResize()
	}
}

// PointerButton records a button event. timeMs must come from a monotonic
// clock; a timestamp older than the previous press is clamped to it. Releasing
// the last held button ends every grab.
func (s *Seat) PointerButton(button uint32, pressed bool, timeMs uint32) {
	if pressed {
		if s.hasPress && timeMs < s.lastPress {
			timeMs = s.lastPress
		}
		s.lastPress = timeMs
		s.hasPress = true
		s.pressedCount++
		return
	}

	if s.pressedCount > 0 {
		s.pressedCount--
	}
	if s.pressedCount == 0 {
		s.StopMove()
		s.StopResize()
	}
}

// SetCursor shows shape on behalf of owner (0 for the seat itself).
func (s *Seat) SetCursor(shape platform.CursorShape, owner platform.WindowID) {
	s.cursorOwner = owner
	s.applyCursor(shape)
}

// ResetCursor reverts to the default cursor if owner still owns it.
func (s *Seat) ResetCursor(owner platform.WindowID) {
	if s.cursorOwner != owner {
		return
	}
	s.cursorOwner = 0
	s.applyCursor(platform.CursorDefault)
}

// CursorShape returns the shape currently shown.
func (s *Seat) CursorShape() platform.CursorShape { return s.shape }

// CursorOwner returns the window that set the current cursor, 0 when none.
func (s *Seat) CursorOwner() platform.WindowID { return s.cursorOwner }

func (s *Seat) applyCursor(shape platform.CursorShape) {
	if shape == s.shape {
		return
	}
	s.shape = shape
	if s.cursor == nil {
		return
	}
	if err := s.cursor.SetCursorShape(shape); err != nil {
		s.logger.Warn("failed to set cursor", "shape", shape.String(), "error", err)
	}
}

// DropFocus clears pointer and keyboard focus held by id.
func (s *Seat) DropFocus(id platform.WindowID) {
	if s.pointerFocus == id {
		s.SetPointerFocus(0)
	}
	if s.keyboardFocus == id {
		s.SetKeyboardFocus(0)
	}
}

// Release drops focus and grabs held by id. Used when a window is
// minimized.
func (s *Seat) Release(id platform.WindowID) {
	s.DropFocus(id)
	s.CancelGrabs(id)
}

// Forget drops every reference to id: focus, grabs, the active toplevel and
// cursor ownership.
func (s *Seat) Forget(id platform.WindowID) {
	if id == 0 {
		return
	}
	s.Release(id)
	if s.activeToplevel == id {
		s.activeToplevel = 0
	}
	if s.cursorOwner == id {
		s.ResetCursor(id)
	}
}
