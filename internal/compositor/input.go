package compositor

import (
	"github.com/1broseidon/xdgrole/internal/chrome"
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// hit is the result of picking the window under a point.
type hit struct {
	t      *toplevel.Toplevel
	region chrome.Region
}

// WindowRect returns a toplevel's window geometry in global coordinates.
func (c *Compositor) WindowRect(t *toplevel.Toplevel) platform.Rect {
	origin := t.RolePosition(c.Position(t.ID()))
	size := t.Size()
	return platform.Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
}

// decorated reports whether the compositor draws a frame around t.
func decorated(t *toplevel.Toplevel) bool {
	return t.DecorationMode() == toplevel.DecorationServerSide && !t.Fullscreen()
}

// pick finds the topmost visible toplevel under p, including its frame.
func (c *Compositor) pick(p platform.Point) (hit, bool) {
	layout := c.decorations.Layout()
	for i := len(c.stack) - 1; i >= 0; i-- {
		s, ok := c.surfaces[c.stack[i]]
		if !ok || s.role == nil || !s.mapped || s.minimized {
			continue
		}
		rect := c.WindowRect(s.role)
		if rect.Contains(p) {
			return hit{t: s.role}, true
		}
		if decorated(s.role) {
			if region := layout.HitTest(rect, p); region != chrome.RegionNone {
				return hit{t: s.role, region: region}, true
			}
		}
	}
	return hit{}, false
}

// PointerMotion moves the cursor to p. While a grab is active the grab
// owns the pointer; otherwise pointer focus follows the window under the
// cursor and frame borders show resize cursors.
func (c *Compositor) PointerMotion(p platform.Point) {
	c.seat.PointerMotion(p)
	if c.grabActive() {
		return
	}

	h, ok := c.pick(p)
	var id platform.WindowID
	if ok {
		id = h.t.ID()
	}
	if c.hovered != 0 && (c.hovered != id || h.region == chrome.RegionNone) {
		c.decorations.Leave(c.hovered)
		c.hovered = 0
	}
	c.seat.SetPointerFocus(id)
	if ok && h.region != chrome.RegionNone {
		c.hovered = id
		c.decorations.Hover(id, h.region)
	}
}

// PointerButton delivers a button event stamped timeMs (milliseconds from a
// monotonic clock). A primary press on a frame goes to the decorations; on
// a window it focuses the window.
func (c *Compositor) PointerButton(button uint32, pressed bool, timeMs uint32) {
	c.seat.PointerButton(button, pressed, timeMs)
	if !pressed || button != seat.ButtonLeft || c.grabActive() {
		return
	}

	h, ok := c.pick(c.seat.PointerPosition())
	if !ok {
		return
	}
	if h.region != chrome.RegionNone {
		now, _ := c.seat.LastPressTime()
		c.decorations.Press(h.t, h.region, now)
		return
	}
	c.focus.Focus(h.t)
}

func (c *Compositor) grabActive() bool {
	_, moving := c.seat.MoveGrab()
	_, resizing := c.seat.ResizeGrab()
	return moving || resizing
}
