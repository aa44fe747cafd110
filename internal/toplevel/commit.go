package toplevel

import (
	"fmt"

	"github.com/1broseidon/xdgrole/internal/platform"
)

// Commit applies the double-buffered state the client queued since the last
// commit. The surface must already have applied its own buffer state.
//
// ErrAlreadyConstructed is fatal for the client: the protocol error has been
// posted and the caller must disconnect it. Every other problem is logged
// and ignored.
func (t *Toplevel) Commit() error {
	if t.destroyed {
		return nil
	}
	if !t.roleApplied {
		return t.applyRole()
	}

	prevStates := t.States()
	prevDecoration := t.decoration

	minChanged := t.applyPendingMinSize()
	maxChanged := t.applyPendingMaxSize()
	geometryChanged := t.applyPendingGeometry()
	t.applyPendingAck()

	changed := prevStates.Changed(t.States())
	if changed.Has(Maximized) {
		t.notify(func(l Listener) { l.MaximizedChanged(t) })
	}
	if changed.Has(Fullscreen) {
		t.notify(func(l Listener) { l.FullscreenChanged(t) })
	}
	if changed.Has(Activated) {
		t.notify(func(l Listener) { l.ActivatedChanged(t) })
	}
	if t.decoration != prevDecoration {
		t.notify(func(l Listener) { l.DecorationModeChanged(t) })
	}
	if minChanged {
		t.notify(func(l Listener) { l.MinSizeChanged(t) })
	}
	if maxChanged {
		t.notify(func(l Listener) { l.MaxSizeChanged(t) })
	}
	if geometryChanged {
		t.notify(func(l Listener) { l.GeometryChanged(t) })
	}

	// A listener may have destroyed the window.
	if t.destroyed {
		return nil
	}

	mapped := t.surface.Mapped()
	hasBuffer := t.surface.HasBuffer()
	switch {
	case !mapped && !hasBuffer:
		t.requestInitialConfigure()
	case mapped && !hasBuffer:
		t.unmap()
	case !mapped && hasBuffer:
		t.surface.SetMapped(true)
		t.phase = PhaseMapped
		t.logger.Debug("toplevel mapped", "size", t.geometry.Size().String())
	}
	return nil
}

func (t *Toplevel) applyRole() error {
	if p := t.pendingMinSize; p != nil {
		t.minSize = *p
		t.pendingMinSize = nil
	}
	if p := t.pendingMaxSize; p != nil {
		t.maxSize = *p
		t.pendingMaxSize = nil
	}
	t.applyPendingGeometry()

	if t.surface.HasBuffer() {
		msg := "given surface already has a buffer attached"
		t.resource.PostError(ErrorAlreadyConstructed, msg)
		return fmt.Errorf("apply toplevel role to window %d: %w", t.ID(), ErrAlreadyConstructed)
	}

	t.roleApplied = true
	t.requestInitialConfigure()
	t.replayRoleRequest()
	return nil
}

// requestInitialConfigure lets the handler pick the first configuration and
// guarantees one goes out even when the handler sent nothing.
func (t *Toplevel) requestInitialConfigure() {
	before := t.ledger.SentCount()
	t.handler.ConfigureRequest(t)
	if t.destroyed {
		return
	}
	if t.ledger.SentCount() == before {
		t.flush(true)
	}
}

// replayRoleRequest honours a maximize or fullscreen request that arrived
// before the role was applied. Only the last such request survives and it
// is replayed once.
func (t *Toplevel) replayRoleRequest() {
	req, output := t.prevRole, t.prevRoleOutput
	t.prevRole = roleRequestNone
	t.prevRoleOutput = 0

	switch req {
	case roleRequestMaximize:
		t.handler.SetMaximizedRequest(t)
	case roleRequestFullscreen:
		if output != 0 && !t.outputExists(output) {
			output = 0
		}
		t.handler.SetFullscreenRequest(t, output)
	}
}

func (t *Toplevel) outputExists(id platform.OutputID) bool {
	if t.outputs == nil {
		return false
	}
	_, ok := t.outputs.Output(id)
	return ok
}

func (t *Toplevel) applyPendingMinSize() bool {
	p := t.pendingMinSize
	if p == nil {
		return false
	}
	t.pendingMinSize = nil
	if *p == t.minSize {
		return false
	}
	t.minSize = *p
	return true
}

func (t *Toplevel) applyPendingMaxSize() bool {
	p := t.pendingMaxSize
	if p == nil {
		return false
	}
	t.pendingMaxSize = nil
	if *p == t.maxSize {
		return false
	}
	t.maxSize = *p
	return true
}

// applyPendingGeometry commits the client's window geometry. A window that
// never set one (or cleared it) uses its whole surface.
func (t *Toplevel) applyPendingGeometry() bool {
	prev := t.geometry
	if p := t.pendingGeometry; p != nil {
		t.pendingGeometry = nil
		if p.Empty() {
			t.geometrySet = false
		} else {
			t.geometrySet = true
			t.geometry = *p
		}
	}
	if !t.geometrySet {
		size := t.surface.Size()
		t.geometry = platform.Rect{Width: size.Width, Height: size.Height}
	}
	return t.geometry != prev
}

func (t *Toplevel) applyPendingAck() {
	if !t.hasPendingAck {
		return
	}
	serial := t.pendingAck
	t.hasPendingAck = false

	if _, err := t.ledger.Acknowledge(serial); err != nil {
		t.logger.Warn("ignoring configure acknowledgement", "serial", serial, "error", err)
		return
	}
	if t.decorationInFlight && serial >= t.decorationSerial {
		t.decorationInFlight = false
		t.decoration = t.sentDecoration
	}
}

// unmap returns the window to a pristine, unconfigured-looking state after
// the client committed a null buffer.
func (t *Toplevel) unmap() {
	t.surface.SetMapped(false)
	t.surface.DetachChildren()
	t.seat.Forget(t.ID())

	t.setAppID("")
	t.setTitle("")

	t.ledger.Reset()
	t.minSize = platform.Size{}
	t.maxSize = platform.Size{}
	t.pendingMinSize = nil
	t.pendingMaxSize = nil
	t.geometry = platform.Rect{}
	t.pendingGeometry = nil
	t.geometrySet = false
	t.hasPendingAck = false
	t.decorationInFlight = false
	t.targetOutput = 0

	t.phase = PhaseUnmapped
	t.logger.Debug("toplevel unmapped")
}
