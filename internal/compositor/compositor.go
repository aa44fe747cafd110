package compositor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/1broseidon/xdgrole/internal/chrome"
	"github.com/1broseidon/xdgrole/internal/focus"
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

var (
	ErrNoSuchSurface = errors.New("no such surface")
	ErrRoleExists    = errors.New("surface already has a role")
	ErrNotToplevel   = errors.New("surface has no toplevel role")
	ErrClientGone    = errors.New("client disconnected")
)

// Policy holds the window-management choices the default handler makes.
type Policy struct {
	// Decoration is proposed to every new window.
	Decoration toplevel.DecorationMode
	// HonourPreference lets a client's preferred decoration mode win.
	HonourPreference bool
	Capabilities     toplevel.Capabilities
	// DoubleClick is the titlebar double-click interval.
	DoubleClick time.Duration
	Layout      chrome.Layout
}

// DefaultPolicy mirrors a conventional desktop: client-side decorations,
// every capability advertised.
func DefaultPolicy() Policy {
	return Policy{
		Decoration:   toplevel.DecorationClientSide,
		Capabilities: toplevel.AllCapabilities,
		DoubleClick:  chrome.DefaultDoubleClickInterval,
		Layout:       chrome.DefaultLayout,
	}
}

// Options configures a Compositor.
type Options struct {
	Backend platform.Backend
	Policy  Policy
	Logger  *slog.Logger
	// Handler overrides the default request policy. It usually embeds
	// *DefaultHandler.
	Handler toplevel.Handler
}

// Compositor owns every surface, client and output, the input seat and the
// glue between them. Surfaces live in a registry keyed by a stable ID; all
// cross references are IDs that are cleared when their target goes away.
// A Compositor is not safe for concurrent use: wrap it in a Loop.
type Compositor struct {
	logger  *slog.Logger
	backend platform.Backend
	policy  Policy

	handler     toplevel.Handler
	seat        *seat.Seat
	focus       *focus.Coordinator
	decorations *chrome.Decorations
	listeners   []toplevel.Listener

	serial   uint32
	nextID   platform.WindowID
	surfaces map[platform.WindowID]*Surface
	// stack orders toplevel surfaces bottom to top.
	stack []platform.WindowID

	outputs      []platform.Output
	nextOutputID platform.OutputID

	clients map[string]*Client
	menu    *WindowMenu
	// hovered is the window whose frame the pointer is over.
	hovered platform.WindowID
	started time.Time
}

// New creates a compositor and loads the backend's outputs.
func New(opts Options) (*Compositor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.Policy
	if policy.Capabilities == 0 && policy.Decoration == toplevel.DecorationUnset {
		policy = DefaultPolicy()
	}

	c := &Compositor{
		logger:   logger,
		backend:  opts.Backend,
		policy:   policy,
		surfaces: make(map[platform.WindowID]*Surface),
		clients:  make(map[string]*Client),
		started:  time.Now(),
	}

	var cursor seat.Cursor
	if opts.Backend != nil {
		cursor = opts.Backend
	}
	c.seat = seat.New(c, cursor, logger)
	c.focus = focus.New(c, c.seat, logger)
	c.decorations = chrome.New(c.seat, c.focus, policy.Layout, policy.DoubleClick)

	if opts.Handler != nil {
		c.handler = opts.Handler
	} else {
		c.handler = NewDefaultHandler(c)
	}

	if opts.Backend != nil {
		outputs, err := opts.Backend.Outputs()
		if err != nil {
			return nil, fmt.Errorf("load outputs from %s backend: %w", opts.Backend.Name(), err)
		}
		for _, o := range outputs {
			c.AddOutput(o)
		}
		if p, err := opts.Backend.CursorPosition(); err == nil {
			c.seat.PointerMotion(p)
		}
	}
	return c, nil
}

// Seat returns the input seat.
func (c *Compositor) Seat() *seat.Seat { return c.seat }

// Focus returns the focus coordinator.
func (c *Compositor) Focus() *focus.Coordinator { return c.focus }

// Decorations returns the server-side decoration input handler.
func (c *Compositor) Decorations() *chrome.Decorations { return c.decorations }

// Policy returns the active window-management policy.
func (c *Compositor) Policy() Policy { return c.policy }

// Logger returns the compositor's logger.
func (c *Compositor) Logger() *slog.Logger { return c.logger }

// BackendName names the backend, "none" when running without one.
func (c *Compositor) BackendName() string {
	if c.backend == nil {
		return "none"
	}
	return c.backend.Name()
}

// AddListener subscribes l to every toplevel created from now on.
func (c *Compositor) AddListener(l toplevel.Listener) {
	c.listeners = append(c.listeners, l)
}

// NextSerial returns a fresh display-wide serial.
func (c *Compositor) NextSerial() uint32 {
	c.serial++
	return c.serial
}

// Serial returns the last serial handed out.
func (c *Compositor) Serial() uint32 { return c.serial }

// Now returns milliseconds since the compositor started, from the
// monotonic clock. Input backends without their own timestamps use it.
func (c *Compositor) Now() uint32 {
	return uint32(time.Since(c.started) / time.Millisecond)
}

// AddOutput registers an output. A zero ID gets a fresh one; the assigned
// ID is returned.
func (c *Compositor) AddOutput(o platform.Output) platform.OutputID {
	if o.ID == 0 {
		c.nextOutputID++
		o.ID = c.nextOutputID
	} else if o.ID > c.nextOutputID {
		c.nextOutputID = o.ID
	}
	if o.Usable.Empty() {
		o.Usable = o.Bounds
	}
	c.outputs = append(c.outputs, o)
	c.logger.Info("output added", "output", uint32(o.ID), "name", o.Name, "bounds", o.Bounds.String())
	return o.ID
}

// RemoveOutput unplugs an output and clears every window's reference to it.
// A fullscreen configure sent for that output and not yet acknowledged is
// withdrawn by sending the window's committed size without fullscreen.
func (c *Compositor) RemoveOutput(id platform.OutputID) bool {
	idx := slices.IndexFunc(c.outputs, func(o platform.Output) bool { return o.ID == id })
	if idx < 0 {
		return false
	}
	c.outputs = slices.Delete(c.outputs, idx, idx+1)
	for _, s := range c.surfaces {
		t := s.role
		if t == nil {
			continue
		}
		inFlight := t.TargetOutput() == id && t.Phase() == toplevel.PhaseMapped &&
			t.PendingStates().Has(toplevel.Fullscreen) && !t.Fullscreen()
		t.ForgetOutput(id)
		if inFlight && !t.Destroyed() {
			c.logger.Debug("dropping fullscreen request for removed output", "window", uint32(t.ID()), "output", uint32(id))
			t.Configure(t.Size(), t.PendingStates().Without(toplevel.Fullscreen))
		}
	}
	c.logger.Info("output removed", "output", uint32(id))
	return true
}

// Output implements toplevel.Outputs.
func (c *Compositor) Output(id platform.OutputID) (platform.Output, bool) {
	for _, o := range c.outputs {
		if o.ID == id {
			return o, true
		}
	}
	return platform.Output{}, false
}

// Outputs returns a copy of the connected outputs.
func (c *Compositor) Outputs() []platform.Output {
	return slices.Clone(c.outputs)
}

// CursorOutput returns the output under the pointer, falling back to the
// first output.
func (c *Compositor) CursorOutput() (platform.Output, bool) {
	pos := c.seat.PointerPosition()
	for _, o := range c.outputs {
		if o.Bounds.Contains(pos) {
			return o, true
		}
	}
	if len(c.outputs) > 0 {
		return c.outputs[0], true
	}
	return platform.Output{}, false
}

// OutputFor implements focus.Scene.
func (c *Compositor) OutputFor(t *toplevel.Toplevel) (platform.Output, bool) {
	if id := t.TargetOutput(); id != 0 {
		if o, ok := c.Output(id); ok {
			return o, true
		}
	}
	return c.CursorOutput()
}

// Surface looks up a surface by ID.
func (c *Compositor) Surface(id platform.WindowID) (*Surface, bool) {
	s, ok := c.surfaces[id]
	return s, ok
}

// Toplevel implements seat.Scene and focus.Scene.
func (c *Compositor) Toplevel(id platform.WindowID) (*toplevel.Toplevel, bool) {
	s, ok := c.surfaces[id]
	if !ok || s.role == nil {
		return nil, false
	}
	return s.role, true
}

// Position returns a surface's global position.
func (c *Compositor) Position(id platform.WindowID) platform.Point {
	if s, ok := c.surfaces[id]; ok {
		return s.pos
	}
	return platform.Point{}
}

// SetPosition moves a surface.
func (c *Compositor) SetPosition(id platform.WindowID, p platform.Point) {
	if s, ok := c.surfaces[id]; ok {
		s.pos = p
	}
}

// SetMinimized minimizes or restores a surface.
func (c *Compositor) SetMinimized(id platform.WindowID, minimized bool) {
	if s, ok := c.surfaces[id]; ok {
		s.minimized = minimized
	}
}

// Raise moves a toplevel to the top of the stack.
func (c *Compositor) Raise(id platform.WindowID) {
	idx := slices.Index(c.stack, id)
	if idx < 0 || idx == len(c.stack)-1 {
		return
	}
	c.stack = append(slices.Delete(c.stack, idx, idx+1), id)
}

// Stack returns toplevel IDs bottom to top.
func (c *Compositor) Stack() []platform.WindowID {
	return slices.Clone(c.stack)
}

// WindowMenu returns the most recent window menu request.
func (c *Compositor) WindowMenu() (WindowMenu, bool) {
	if c.menu == nil {
		return WindowMenu{}, false
	}
	return *c.menu, true
}

// Client looks up a connected client.
func (c *Compositor) Client(id string) (*Client, bool) {
	cl, ok := c.clients[id]
	return cl, ok
}

// CloseWindow asks the client owning a toplevel to close it.
func (c *Compositor) CloseWindow(id platform.WindowID) error {
	t, ok := c.Toplevel(id)
	if !ok {
		return fmt.Errorf("close window %d: %w", id, ErrNotToplevel)
	}
	t.Close()
	return nil
}

func (c *Compositor) newSurfaceID() platform.WindowID {
	c.nextID++
	return c.nextID
}

// destroySurface removes a surface from the registry, tearing down its role
// and re-homing its children.
func (c *Compositor) destroySurface(s *Surface) {
	if s.role != nil {
		s.role.Destroy()
		c.decorations.Forget(s.id)
	}
	if c.hovered == s.id {
		c.hovered = 0
	}
	if c.menu != nil && c.menu.Window == s.id {
		c.menu = nil
	}
	s.DetachChildren()
	c.seat.Forget(s.id)

	if idx := slices.Index(c.stack, s.id); idx >= 0 {
		c.stack = slices.Delete(c.stack, idx, idx+1)
	}
	delete(c.surfaces, s.id)
	if s.client != nil {
		s.client.dropSurface(s.id)
	}
}
