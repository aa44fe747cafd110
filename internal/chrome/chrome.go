// Package chrome handles pointer input on server-side window decorations:
// the titlebar and the resize borders drawn around a window.
package chrome

import (
	"time"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// DefaultDoubleClickInterval is the longest gap between two titlebar
// presses that still counts as a double click.
const DefaultDoubleClickInterval = 220 * time.Millisecond

// Region is a part of a window frame.
type Region int

const (
	// RegionNone is outside the frame or on the client area.
	RegionNone Region = iota
	RegionTitlebar
	RegionTop
	RegionBottom
	RegionLeft
	RegionRight
	RegionTopLeft
	RegionTopRight
	RegionBottomLeft
	RegionBottomRight
)

func (r Region) String() string {
	switch r {
	case RegionNone:
		return "none"
	case RegionTitlebar:
		return "titlebar"
	default:
		return r.Edge().String()
	}
}

// Edge returns the resize edge a border region drags.
func (r Region) Edge() toplevel.ResizeEdge {
	switch r {
	case RegionTop:
		return toplevel.EdgeTop
	case RegionBottom:
		return toplevel.EdgeBottom
	case RegionLeft:
		return toplevel.EdgeLeft
	case RegionRight:
		return toplevel.EdgeRight
	case RegionTopLeft:
		return toplevel.EdgeTopLeft
	case RegionTopRight:
		return toplevel.EdgeTopRight
	case RegionBottomLeft:
		return toplevel.EdgeBottomLeft
	case RegionBottomRight:
		return toplevel.EdgeBottomRight
	default:
		return toplevel.EdgeNone
	}
}

// IsBorder reports whether r is one of the eight resize regions.
func (r Region) IsBorder() bool { return r.Edge() != toplevel.EdgeNone }

// Layout sizes the frame drawn around a window.
type Layout struct {
	TitlebarHeight int
	Border         int
}

// DefaultLayout matches a typical titlebar and a thin grab border.
var DefaultLayout = Layout{TitlebarHeight: 32, Border: 6}

// Frame returns the outer bounds of the decorated window whose geometry
// occupies window (global coordinates).
func (l Layout) Frame(window platform.Rect) platform.Rect {
	return platform.Rect{
		X:      window.X - l.Border,
		Y:      window.Y - l.TitlebarHeight - l.Border,
		Width:  window.Width + 2*l.Border,
		Height: window.Height + l.TitlebarHeight + 2*l.Border,
	}
}

// HitTest classifies p against the frame around window. The client area
// and anything outside the frame are RegionNone.
func (l Layout) HitTest(window platform.Rect, p platform.Point) Region {
	frame := l.Frame(window)
	if !frame.Contains(p) || window.Contains(p) {
		return RegionNone
	}

	top := p.Y < frame.Y+l.Border
	bottom := p.Y >= frame.Y+frame.Height-l.Border
	left := p.X < frame.X+l.Border
	right := p.X >= frame.X+frame.Width-l.Border

	switch {
	case top && left:
		return RegionTopLeft
	case top && right:
		return RegionTopRight
	case bottom && left:
		return RegionBottomLeft
	case bottom && right:
		return RegionBottomRight
	case top:
		return RegionTop
	case bottom:
		return RegionBottom
	case left:
		return RegionLeft
	case right:
		return RegionRight
	default:
		return RegionTitlebar
	}
}

// Focuser gives a window focus the way a click does.
type Focuser interface {
	Focus(t *toplevel.Toplevel)
}

// Decorations routes presses and hovers on window frames.
type Decorations struct {
	seat     *seat.Seat
	focuser  Focuser
	layout   Layout
	interval uint32

	lastTitlebarPress map[platform.WindowID]uint32
}

// New creates a decoration input handler. A non-positive interval selects
// DefaultDoubleClickInterval.
func New(st *seat.Seat, focuser Focuser, layout Layout, interval time.Duration) *Decorations {
	if interval <= 0 {
		interval = DefaultDoubleClickInterval
	}
	return &Decorations{
		seat:              st,
		focuser:           focuser,
		layout:            layout,
		interval:          uint32(interval / time.Millisecond),
		lastTitlebarPress: make(map[platform.WindowID]uint32),
	}
}

// Layout returns the frame layout.
func (d *Decorations) Layout() Layout { return d.layout }

// Press handles a primary-button press at nowMs (the seat's press
// timestamp) on region of t's frame. A titlebar press starts a move unless
// it follows the previous titlebar press within the double-click interval,
// in which case it toggles maximize instead.
func (d *Decorations) Press(t *toplevel.Toplevel, region Region, nowMs uint32) {
	if region == RegionNone {
		return
	}
	id := t.ID()
	d.focuser.Focus(t)

	if region.IsBorder() {
		delete(d.lastTitlebarPress, id)
		t.RequestResize(region.Edge())
		return
	}

	last, ok := d.lastTitlebarPress[id]
	if ok && nowMs-last < d.interval {
		delete(d.lastTitlebarPress, id)
		if t.Maximized() {
			t.RequestUnsetMaximize()
		} else {
			t.RequestMaximize()
		}
		return
	}
	d.lastTitlebarPress[id] = nowMs
	t.RequestMove()
}

// Hover shows the resize cursor for border regions of id's frame and the
// default cursor elsewhere. Nothing changes while a grab owns the cursor.
func (d *Decorations) Hover(id platform.WindowID, region Region) {
	if d.grabActive() {
		return
	}
	if region.IsBorder() {
		d.seat.SetCursor(seat.CursorForEdge(region.Edge()), id)
		return
	}
	d.seat.ResetCursor(id)
}

// Leave is called when the pointer leaves id's frame.
func (d *Decorations) Leave(id platform.WindowID) {
	if d.grabActive() {
		return
	}
	d.seat.ResetCursor(id)
}

// Forget drops state for a destroyed window and gives back the cursor if
// its frame owned it.
func (d *Decorations) Forget(id platform.WindowID) {
	delete(d.lastTitlebarPress, id)
	d.seat.ResetCursor(id)
}

func (d *Decorations) grabActive() bool {
	_, moving := d.seat.MoveGrab()
	_, resizing := d.seat.ResizeGrab()
	return moving || resizing
}
