package focus

import (
	"log/slog"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// Scene is the window arrangement the coordinator rearranges.
type Scene interface {
	Toplevel(id platform.WindowID) (*toplevel.Toplevel, bool)
	Raise(id platform.WindowID)
	SetPosition(id platform.WindowID, p platform.Point)
	SetMinimized(id platform.WindowID, minimized bool)
	// OutputFor returns the output a window is maximized or fullscreen on:
	// its target output when that still exists, else the output under the
	// cursor.
	OutputFor(t *toplevel.Toplevel) (platform.Output, bool)
}

// Coordinator keeps stacking, position, activation and keyboard focus
// consistent with the states clients acknowledge.
type Coordinator struct {
	scene  Scene
	seat   *seat.Seat
	logger *slog.Logger
}

var _ toplevel.Listener = (*Coordinator)(nil)

// New creates a coordinator.
func New(scene Scene, st *seat.Seat, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		scene:  scene,
		seat:   st,
		logger: logger.With("component", "focus"),
	}
}

// Focus gives t pointer and keyboard focus, activates it if needed and
// raises it. This is what a click on a window does.
func (c *Coordinator) Focus(t *toplevel.Toplevel) {
	id := t.ID()
	c.seat.SetPointerFocus(id)
	c.seat.SetKeyboardFocus(id)
	c.Activate(t)
	c.scene.Raise(id)
}

// Activate asks the client to show t as the active window unless it is
// already active or about to be.
func (c *Coordinator) Activate(t *toplevel.Toplevel) {
	if t.PendingStates().Has(toplevel.Activated) {
		return
	}
	t.ConfigureStates(t.PendingStates().With(toplevel.Activated))
}

func (c *Coordinator) moveToOutput(t *toplevel.Toplevel) {
	out, ok := c.scene.OutputFor(t)
	if !ok {
		c.logger.Warn("no output to place window on", "window", uint32(t.ID()))
		return
	}
	// Place the window geometry, not the surface, at the output origin.
	c.scene.SetPosition(t.ID(), out.Bounds.Origin().Sub(t.WindowGeometry().Origin()))
}

func (c *Coordinator) MaximizedChanged(t *toplevel.Toplevel) {
	if !t.Maximized() {
		return
	}
	c.scene.Raise(t.ID())
	c.moveToOutput(t)
	c.scene.SetMinimized(t.ID(), false)
}

func (c *Coordinator) FullscreenChanged(t *toplevel.Toplevel) {
	if !t.Fullscreen() {
		t.SetTargetOutput(0)
		return
	}
	c.moveToOutput(t)
	c.scene.Raise(t.ID())
}

// ActivatedChanged keeps a single active toplevel: the newly activated one
// gets keyboard focus and the previous one is asked to deactivate.
func (c *Coordinator) ActivatedChanged(t *toplevel.Toplevel) {
	id := t.ID()
	if !t.Activated() {
		if c.seat.ActiveToplevel() == id {
			c.seat.SetActiveToplevel(0)
		}
		return
	}

	c.seat.SetKeyboardFocus(id)
	prev := c.seat.ActiveToplevel()
	c.seat.SetActiveToplevel(id)
	if prev == 0 || prev == id {
		return
	}
	if other, ok := c.scene.Toplevel(prev); ok && !other.Destroyed() {
		if other.PendingStates().Has(toplevel.Activated) {
			other.ConfigureStates(other.PendingStates().Without(toplevel.Activated))
		}
	}
}

// GeometryChanged keeps the anchored edge in place during a resize.
func (c *Coordinator) GeometryChanged(t *toplevel.Toplevel) {
	c.seat.UpdateResizePosition(t)
}

func (c *Coordinator) TitleChanged(t *toplevel.Toplevel)          {}
func (c *Coordinator) AppIDChanged(t *toplevel.Toplevel)          {}
func (c *Coordinator) MinSizeChanged(t *toplevel.Toplevel)        {}
func (c *Coordinator) MaxSizeChanged(t *toplevel.Toplevel)        {}
func (c *Coordinator) DecorationModeChanged(t *toplevel.Toplevel) {}
