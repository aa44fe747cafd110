package toplevel

import "github.com/1broseidon/xdgrole/internal/platform"

// Client requests. Each one is either applied immediately (title, app ID),
// queued for the next commit (sizes, geometry, acknowledgements) or routed
// to the Handler.

// SetTitle updates the window title. Surrounding whitespace is dropped and a
// no-op update does not notify.
func (t *Toplevel) SetTitle(title string) {
	if t.destroyed {
		return
	}
	t.setTitle(title)
}

// SetAppID updates the application identifier, normalised like SetTitle.
func (t *Toplevel) SetAppID(appID string) {
	if t.destroyed {
		return
	}
	t.setAppID(appID)
}

// SetMinSize queues a new minimum size. Negative sizes are rejected.
func (t *Toplevel) SetMinSize(size platform.Size) {
	if size.Width < 0 || size.Height < 0 {
		t.logger.Debug("rejecting negative min size", "size", size.String())
		return
	}
	t.pendingMinSize = &size
}

// SetMaxSize queues a new maximum size. Negative sizes are rejected.
func (t *Toplevel) SetMaxSize(size platform.Size) {
	if size.Width < 0 || size.Height < 0 {
		t.logger.Debug("rejecting negative max size", "size", size.String())
		return
	}
	t.pendingMaxSize = &size
}

// SetWindowGeometry queues the visible window bounds in surface-local
// coordinates. An empty rect reverts to the whole surface.
func (t *Toplevel) SetWindowGeometry(rect platform.Rect) {
	t.pendingGeometry = &rect
}

// AckConfigure records the client's acknowledgement of a configure. It takes
// effect on the next commit; a later acknowledgement replaces it.
func (t *Toplevel) AckConfigure(serial uint32) {
	t.pendingAck = serial
	t.hasPendingAck = true
}

// RequestMaximize asks for the window to be maximized. Before the role is
// applied the request is remembered and replayed on the first commit.
func (t *Toplevel) RequestMaximize() {
	if t.destroyed {
		return
	}
	if !t.roleApplied {
		t.prevRole = roleRequestMaximize
		t.prevRoleOutput = 0
		return
	}
	t.handler.SetMaximizedRequest(t)
}

// RequestUnsetMaximize asks for the window to leave the maximized state.
func (t *Toplevel) RequestUnsetMaximize() {
	if t.destroyed {
		return
	}
	if !t.roleApplied {
		if t.prevRole == roleRequestMaximize {
			t.prevRole = roleRequestNone
		}
		return
	}
	t.handler.UnsetMaximizedRequest(t)
}

// RequestFullscreen asks for the window to cover output, or the output under
// the pointer when output is 0 or unknown.
func (t *Toplevel) RequestFullscreen(output platform.OutputID) {
	if t.destroyed {
		return
	}
	if !t.roleApplied {
		t.prevRole = roleRequestFullscreen
		t.prevRoleOutput = output
		return
	}
	if output != 0 && !t.outputExists(output) {
		output = 0
	}
	t.handler.SetFullscreenRequest(t, output)
}

// RequestUnsetFullscreen asks for the window to leave fullscreen.
func (t *Toplevel) RequestUnsetFullscreen() {
	if t.destroyed {
		return
	}
	if !t.roleApplied {
		if t.prevRole == roleRequestFullscreen {
			t.prevRole = roleRequestNone
			t.prevRoleOutput = 0
		}
		return
	}
	t.handler.UnsetFullscreenRequest(t)
}

// RequestMinimize asks for the window to be minimized.
func (t *Toplevel) RequestMinimize() {
	if t.destroyed || !t.surface.Mapped() {
		return
	}
	t.handler.SetMinimizedRequest(t)
}

// RequestMove asks for an interactive move driven by the pointer.
func (t *Toplevel) RequestMove() {
	if t.destroyed || !t.surface.Mapped() {
		return
	}
	t.handler.StartMoveRequest(t)
}

// RequestResize asks for an interactive resize of the given edge.
func (t *Toplevel) RequestResize(edge ResizeEdge) {
	if t.destroyed || !t.surface.Mapped() || !edge.Valid() {
		return
	}
	t.handler.StartResizeRequest(t, edge)
}

// RequestWindowMenu asks for the window menu at a surface-local position.
func (t *Toplevel) RequestWindowMenu(at platform.Point) {
	if t.destroyed || !t.surface.Mapped() {
		return
	}
	t.handler.ShowWindowMenuRequest(t, at)
}

// SetPreferredDecorationMode records which decoration mode the client would
// like. The compositor still decides through SetDecorationMode.
func (t *Toplevel) SetPreferredDecorationMode(mode DecorationMode) {
	if !mode.Valid() {
		return
	}
	t.preferredDecoration = mode
}
