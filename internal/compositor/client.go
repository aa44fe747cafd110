package compositor

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// Transport delivers events to a client connection.
type Transport interface {
	SendConfigure(window platform.WindowID, serial uint32, size platform.Size, states toplevel.StateSet)
	SendDecorationMode(window platform.WindowID, mode toplevel.DecorationMode)
	SendWMCapabilities(window platform.WindowID, caps toplevel.Capabilities)
	SendConfigureBounds(window platform.WindowID, size platform.Size)
	SendClosed(window platform.WindowID)
	PostError(window platform.WindowID, code toplevel.ErrorCode, message string)
	// Disconnect closes the connection after a fatal protocol error.
	Disconnect(reason error)
}

// Client is one client connection and the surfaces it created.
type Client struct {
	id        string
	c         *Compositor
	transport Transport
	logger    *slog.Logger
	surfaces  []platform.WindowID
	gone      bool
}

// Connect registers a new client.
func (c *Compositor) Connect(t Transport) *Client {
	cl := &Client{
		id:        uuid.NewString(),
		c:         c,
		transport: t,
	}
	cl.logger = c.logger.With("client", cl.id)
	c.clients[cl.id] = cl
	cl.logger.Info("client connected")
	return cl
}

// ID returns the client's connection ID.
func (cl *Client) ID() string { return cl.id }

// Gone reports whether the client was disconnected.
func (cl *Client) Gone() bool { return cl.gone }

// Surfaces returns the IDs of the client's live surfaces.
func (cl *Client) Surfaces() []platform.WindowID { return slices.Clone(cl.surfaces) }

func (cl *Client) dropSurface(id platform.WindowID) {
	if idx := slices.Index(cl.surfaces, id); idx >= 0 {
		cl.surfaces = slices.Delete(cl.surfaces, idx, idx+1)
	}
}

func (cl *Client) surface(id platform.WindowID) (*Surface, error) {
	if cl.gone {
		return nil, ErrClientGone
	}
	s, ok := cl.c.surfaces[id]
	if !ok || s.client != cl {
		return nil, fmt.Errorf("surface %d: %w", id, ErrNoSuchSurface)
	}
	return s, nil
}

func (cl *Client) toplevel(id platform.WindowID) (*toplevel.Toplevel, error) {
	s, err := cl.surface(id)
	if err != nil {
		return nil, err
	}
	if s.role == nil {
		return nil, fmt.Errorf("surface %d: %w", id, ErrNotToplevel)
	}
	return s.role, nil
}

// CreateSurface creates a role-less surface.
func (cl *Client) CreateSurface() (platform.WindowID, error) {
	if cl.gone {
		return 0, ErrClientGone
	}
	c := cl.c
	s := &Surface{id: c.newSurfaceID(), c: c, client: cl}
	c.surfaces[s.id] = s
	cl.surfaces = append(cl.surfaces, s.id)
	return s.id, nil
}

// CreateSubsurface creates a surface positioned relative to parent.
func (cl *Client) CreateSubsurface(parent platform.WindowID, offset platform.Point) (platform.WindowID, error) {
	p, err := cl.surface(parent)
	if err != nil {
		return 0, err
	}
	id, err := cl.CreateSurface()
	if err != nil {
		return 0, err
	}
	s := cl.c.surfaces[id]
	s.subsurface = true
	s.parent = p.id
	s.pos = offset
	p.children = append(p.children, id)
	return id, nil
}

// CreateToplevel gives a surface the toplevel role. The role is applied on
// the surface's next commit.
func (cl *Client) CreateToplevel(id platform.WindowID) (*toplevel.Toplevel, error) {
	s, err := cl.surface(id)
	if err != nil {
		return nil, err
	}
	if s.role != nil || s.subsurface {
		return nil, fmt.Errorf("surface %d: %w", id, ErrRoleExists)
	}
	c := cl.c
	t := toplevel.New(toplevel.Options{
		Surface:  s,
		Resource: &resource{client: cl, window: id},
		Serials:  c,
		Handler:  c.handler,
		Seat:     c.seat,
		Outputs:  c,
		Logger:   cl.logger,
	})
	t.AddListener(c.focus)
	for _, l := range c.listeners {
		t.AddListener(l)
	}
	s.role = t
	return t, nil
}

// Attach queues a buffer of the given size for the next commit. A zero size
// attaches a null buffer, which unmaps a mapped window.
func (cl *Client) Attach(id platform.WindowID, size platform.Size) error {
	s, err := cl.surface(id)
	if err != nil {
		return err
	}
	if size.Width < 0 || size.Height < 0 {
		return fmt.Errorf("attach %s buffer to surface %d: negative size", size, id)
	}
	s.pendingBuffer = &size
	return nil
}

// Commit latches the surface's pending state. A fatal protocol error
// disconnects the client.
func (cl *Client) Commit(id platform.WindowID) error {
	s, err := cl.surface(id)
	if err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		cl.Disconnect(err)
		return err
	}
	return nil
}

// SetWindowGeometry queues the window geometry for the next commit.
func (cl *Client) SetWindowGeometry(id platform.WindowID, rect platform.Rect) error {
	t, err := cl.toplevel(id)
	if err != nil {
		return err
	}
	t.SetWindowGeometry(rect)
	return nil
}

// AckConfigure acknowledges a configure serial; it applies on commit.
func (cl *Client) AckConfigure(id platform.WindowID, serial uint32) error {
	t, err := cl.toplevel(id)
	if err != nil {
		return err
	}
	t.AckConfigure(serial)
	return nil
}

// RequestKind names a client toplevel request.
type RequestKind int

const (
	RequestSetTitle RequestKind = iota
	RequestSetAppID
	RequestSetMinSize
	RequestSetMaxSize
	RequestSetMaximized
	RequestUnsetMaximized
	RequestSetFullscreen
	RequestUnsetFullscreen
	RequestSetMinimized
	RequestMove
	RequestResize
	RequestShowWindowMenu
	RequestSetDecorationMode
)

var requestNames = map[RequestKind]string{
	RequestSetTitle:          "set_title",
	RequestSetAppID:          "set_app_id",
	RequestSetMinSize:        "set_min_size",
	RequestSetMaxSize:        "set_max_size",
	RequestSetMaximized:      "set_maximized",
	RequestUnsetMaximized:    "unset_maximized",
	RequestSetFullscreen:     "set_fullscreen",
	RequestUnsetFullscreen:   "unset_fullscreen",
	RequestSetMinimized:      "set_minimized",
	RequestMove:              "move",
	RequestResize:            "resize",
	RequestShowWindowMenu:    "show_window_menu",
	RequestSetDecorationMode: "set_decoration_mode",
}

func (k RequestKind) String() string {
	if name, ok := requestNames[k]; ok {
		return name
	}
	return fmt.Sprintf("request(%d)", int(k))
}

// ParseRequestKind parses the snake_case name of a request.
func ParseRequestKind(s string) (RequestKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range requestNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown request %q", s)
}

// Request is a client toplevel request with its parameters. Only the
// fields the kind uses are read.
type Request struct {
	Kind       RequestKind
	Text       string
	Size       platform.Size
	Output     platform.OutputID
	Edge       toplevel.ResizeEdge
	Point      platform.Point
	Decoration toplevel.DecorationMode
}

// Request delivers a toplevel request.
func (cl *Client) Request(id platform.WindowID, req Request) error {
	t, err := cl.toplevel(id)
	if err != nil {
		return err
	}
	switch req.Kind {
	case RequestSetTitle:
		t.SetTitle(req.Text)
	case RequestSetAppID:
		t.SetAppID(req.Text)
	case RequestSetMinSize:
		t.SetMinSize(req.Size)
	case RequestSetMaxSize:
		t.SetMaxSize(req.Size)
	case RequestSetMaximized:
		t.RequestMaximize()
	case RequestUnsetMaximized:
		t.RequestUnsetMaximize()
	case RequestSetFullscreen:
		t.RequestFullscreen(req.Output)
	case RequestUnsetFullscreen:
		t.RequestUnsetFullscreen()
	case RequestSetMinimized:
		t.RequestMinimize()
	case RequestMove:
		t.RequestMove()
	case RequestResize:
		t.RequestResize(req.Edge)
	case RequestShowWindowMenu:
		t.RequestWindowMenu(req.Point)
	case RequestSetDecorationMode:
		t.SetPreferredDecorationMode(req.Decoration)
		if cl.c.policy.HonourPreference && t.RoleApplied() {
			t.SetDecorationMode(req.Decoration)
			t.ConfigureStates(t.PendingStates())
		}
	default:
		return fmt.Errorf("surface %d: unknown request %s", id, req.Kind)
	}
	return nil
}

// DestroyToplevel removes the toplevel role but keeps the surface.
func (cl *Client) DestroyToplevel(id platform.WindowID) error {
	s, err := cl.surface(id)
	if err != nil {
		return err
	}
	if s.role == nil {
		return fmt.Errorf("surface %d: %w", id, ErrNotToplevel)
	}
	s.role.Destroy()
	cl.c.decorations.Forget(id)
	s.role = nil
	return nil
}

// DestroySurface destroys a surface and its role.
func (cl *Client) DestroySurface(id platform.WindowID) error {
	s, err := cl.surface(id)
	if err != nil {
		return err
	}
	cl.c.destroySurface(s)
	return nil
}

// Disconnect destroys every surface of the client. reason is nil for an
// orderly close.
func (cl *Client) Disconnect(reason error) {
	if cl.gone {
		return
	}
	for _, id := range slices.Clone(cl.surfaces) {
		if s, ok := cl.c.surfaces[id]; ok {
			cl.c.destroySurface(s)
		}
	}
	cl.gone = true
	delete(cl.c.clients, cl.id)
	if reason != nil {
		cl.logger.Warn("client disconnected", "error", reason)
	} else {
		cl.logger.Info("client disconnected")
	}
	if cl.transport != nil {
		cl.transport.Disconnect(reason)
	}
}

// resource routes a toplevel's events to its client's transport.
type resource struct {
	client *Client
	window platform.WindowID
}

func (r *resource) live() bool { return !r.client.gone && r.client.transport != nil }

func (r *resource) SendConfigure(serial uint32, size platform.Size, states toplevel.StateSet) {
	if r.live() {
		r.client.transport.SendConfigure(r.window, serial, size, states)
	}
}

func (r *resource) SendDecorationMode(mode toplevel.DecorationMode) {
	if r.live() {
		r.client.transport.SendDecorationMode(r.window, mode)
	}
}

func (r *resource) SendWMCapabilities(caps toplevel.Capabilities) {
	if r.live() {
		r.client.transport.SendWMCapabilities(r.window, caps)
	}
}

func (r *resource) SendConfigureBounds(size platform.Size) {
	if r.live() {
		r.client.transport.SendConfigureBounds(r.window, size)
	}
}

func (r *resource) SendClosed() {
	if r.live() {
		r.client.transport.SendClosed(r.window)
	}
}

func (r *resource) PostError(code toplevel.ErrorCode, message string) {
	if r.live() {
		r.client.transport.PostError(r.window, code, message)
	}
}
