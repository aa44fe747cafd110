package compositor

import (
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// WindowMenu is the last window menu a client asked for.
type WindowMenu struct {
	Window platform.WindowID
	// At is in global coordinates.
	At platform.Point
}

// DefaultHandler is the stock window-management policy: windows open
// activated at a size of their choosing, maximize and fullscreen cover the
// target output and interactive grabs go through the seat.
//
// Embed it to override individual requests.
type DefaultHandler struct {
	c *Compositor
}

var _ toplevel.Handler = (*DefaultHandler)(nil)

// NewDefaultHandler returns the default policy bound to c.
func NewDefaultHandler(c *Compositor) *DefaultHandler {
	return &DefaultHandler{c: c}
}

// ConfigureRequest advertises capabilities, bounds the window to the output
// under the cursor, proposes a decoration mode and lets the client pick its
// own size.
func (h *DefaultHandler) ConfigureRequest(t *toplevel.Toplevel) {
	policy := h.c.policy
	t.SetWMCapabilities(policy.Capabilities)
	if out, ok := h.c.CursorOutput(); ok {
		t.SetConfigureBounds(out.Usable.Size())
	}

	mode := policy.Decoration
	if policy.HonourPreference && t.PreferredDecorationMode().Valid() {
		mode = t.PreferredDecorationMode()
	}
	t.SetDecorationMode(mode)

	t.Configure(platform.Size{}, t.PendingStates().With(toplevel.Activated))
}

// SetMaximizedRequest configures the window in two steps, activated first
// and then maximized, both at the size of the output under the cursor.
func (h *DefaultHandler) SetMaximizedRequest(t *toplevel.Toplevel) {
	out, ok := h.c.CursorOutput()
	if !ok {
		h.c.logger.Warn("no output to maximize on", "window", uint32(t.ID()))
		return
	}
	t.SetTargetOutput(out.ID)
	size := out.Bounds.Size()
	t.Configure(size, toplevel.States(toplevel.Activated))
	t.Configure(size, toplevel.States(toplevel.Activated, toplevel.Maximized))
}

func (h *DefaultHandler) UnsetMaximizedRequest(t *toplevel.Toplevel) {
	t.ConfigureStates(t.PendingStates().Without(toplevel.Maximized))
}

// SetFullscreenRequest covers output, or the output under the cursor when
// output is 0.
func (h *DefaultHandler) SetFullscreenRequest(t *toplevel.Toplevel, output platform.OutputID) {
	out, ok := h.c.Output(output)
	if !ok {
		out, ok = h.c.CursorOutput()
	}
	if !ok {
		h.c.logger.Warn("no output to fullscreen on", "window", uint32(t.ID()))
		return
	}
	t.SetTargetOutput(out.ID)
	t.Configure(out.Bounds.Size(), toplevel.States(toplevel.Activated, toplevel.Fullscreen))
}

func (h *DefaultHandler) UnsetFullscreenRequest(t *toplevel.Toplevel) {
	t.ConfigureStates(t.PendingStates().Without(toplevel.Fullscreen))
}

// SetMinimizedRequest hides the window and releases the seat's hold on it.
func (h *DefaultHandler) SetMinimizedRequest(t *toplevel.Toplevel) {
	h.c.SetMinimized(t.ID(), true)
	h.c.seat.Release(t.ID())
}

func (h *DefaultHandler) StartMoveRequest(t *toplevel.Toplevel) {
	h.c.seat.StartMove(t)
}

func (h *DefaultHandler) StartResizeRequest(t *toplevel.Toplevel, edge toplevel.ResizeEdge) {
	h.c.seat.StartResize(t, edge)
}

// ShowWindowMenuRequest records the request; drawing the menu is up to the
// renderer.
func (h *DefaultHandler) ShowWindowMenuRequest(t *toplevel.Toplevel, at platform.Point) {
	global := h.c.Position(t.ID()).Add(at)
	h.c.menu = &WindowMenu{Window: t.ID(), At: global}
	h.c.logger.Info("window menu requested", "window", uint32(t.ID()), "at", global.String())
}
