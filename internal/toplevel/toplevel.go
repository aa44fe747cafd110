package toplevel

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/1broseidon/xdgrole/internal/platform"
)

// ErrorCode is a protocol error posted to a client.
type ErrorCode int

const (
	// ErrorAlreadyConstructed: the surface had a buffer attached before its
	// role was applied.
	ErrorAlreadyConstructed ErrorCode = 2
)

// ErrAlreadyConstructed is returned by Commit for the fatal
// buffer-before-role violation. The caller must disconnect the client.
var ErrAlreadyConstructed = errors.New("surface already has a buffer attached")

// Phase is the lifecycle phase of a toplevel.
type Phase int

const (
	// PhaseUnconfigured: the role exists but the window was never mapped.
	PhaseUnconfigured Phase = iota
	// PhaseMapped: the window has content and is visible.
	PhaseMapped
	// PhaseUnmapped: the window was mapped once and lost its buffer.
	PhaseUnmapped
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseMapped:
		return "mapped"
	case PhaseUnmapped:
		return "unmapped"
	default:
		return "unknown"
	}
}

// Surface is the part of the underlying surface a toplevel role drives.
type Surface interface {
	ID() platform.WindowID
	// Size is the size of the committed buffer, zero when none.
	Size() platform.Size
	HasBuffer() bool
	Mapped() bool
	SetMapped(mapped bool)
	// DetachChildren hands every child to this surface's parent, unmapping
	// subsurface children, then detaches the surface from its parent.
	DetachChildren()
}

// Resource is the client-side object events are delivered to.
type Resource interface {
	SendConfigure(serial uint32, size platform.Size, states StateSet)
	SendDecorationMode(mode DecorationMode)
	SendWMCapabilities(caps Capabilities)
	SendConfigureBounds(size platform.Size)
	SendClosed()
	PostError(code ErrorCode, message string)
}

// Seat drops every reference the input seat holds to a window: pointer and
// keyboard focus, move/resize grabs and the active toplevel.
type Seat interface {
	Forget(id platform.WindowID)
}

// Outputs resolves output IDs.
type Outputs interface {
	Output(id platform.OutputID) (platform.Output, bool)
}

// Handler decides how client requests are honoured. The compositor package
// provides the default policy.
type Handler interface {
	ConfigureRequest(t *Toplevel)
	SetMaximizedRequest(t *Toplevel)
	UnsetMaximizedRequest(t *Toplevel)
	// SetFullscreenRequest receives 0 when the client named no output or the
	// named output is gone.
	SetFullscreenRequest(t *Toplevel, output platform.OutputID)
	UnsetFullscreenRequest(t *Toplevel)
	SetMinimizedRequest(t *Toplevel)
	StartMoveRequest(t *Toplevel)
	StartResizeRequest(t *Toplevel, edge ResizeEdge)
	ShowWindowMenuRequest(t *Toplevel, at platform.Point)
}

type roleRequest int

const (
	roleRequestNone roleRequest = iota
	roleRequestMaximize
	roleRequestFullscreen
)

// Options wires a toplevel to its collaborators.
type Options struct {
	Surface  Surface
	Resource Resource
	Serials  SerialSource
	Handler  Handler
	Seat     Seat
	Outputs  Outputs
	Logger   *slog.Logger
}

// Toplevel is the toplevel role of a surface: a regular application window.
// All methods must be called from the compositor's main turn.
type Toplevel struct {
	surface  Surface
	resource Resource
	handler  Handler
	seat     Seat
	outputs  Outputs
	logger   *slog.Logger

	ledger    *Ledger
	listeners []Listener

	phase       Phase
	roleApplied bool
	destroyed   bool

	appID string
	title string

	minSize        platform.Size
	maxSize        platform.Size
	pendingMinSize *platform.Size
	pendingMaxSize *platform.Size

	geometry        platform.Rect
	pendingGeometry *platform.Rect
	geometrySet     bool

	pendingAck    uint32
	hasPendingAck bool

	decoration          DecorationMode
	pendingDecoration   DecorationMode
	preferredDecoration DecorationMode
	sentDecoration      DecorationMode
	decorationSerial    uint32
	decorationInFlight  bool

	caps        Capabilities
	capsDirty   bool
	bounds      platform.Size
	boundsDirty bool

	prevRole       roleRequest
	prevRoleOutput platform.OutputID

	targetOutput platform.OutputID
}

// New creates the toplevel role for a surface. The role is applied on the
// surface's next commit.
func New(opts Options) *Toplevel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Toplevel{
		surface:  opts.Surface,
		resource: opts.Resource,
		handler:  opts.Handler,
		seat:     opts.Seat,
		outputs:  opts.Outputs,
		logger:   logger.With("window", uint32(opts.Surface.ID())),
		ledger:   NewLedger(opts.Serials),
	}
}

// AddListener subscribes l to change notifications.
func (t *Toplevel) AddListener(l Listener) {
	t.listeners = append(t.listeners, l)
}

// ID returns the ID of the underlying surface.
func (t *Toplevel) ID() platform.WindowID { return t.surface.ID() }

// Phase returns the lifecycle phase.
func (t *Toplevel) Phase() Phase { return t.phase }

// RoleApplied reports whether the first commit after role creation happened.
func (t *Toplevel) RoleApplied() bool { return t.roleApplied }

// Destroyed reports whether Destroy has run.
func (t *Toplevel) Destroyed() bool { return t.destroyed }

func (t *Toplevel) AppID() string { return t.appID }
func (t *Toplevel) Title() string { return t.title }

// MinSize is the committed minimum size; 0 per axis means unconstrained.
func (t *Toplevel) MinSize() platform.Size { return t.minSize }

// MaxSize is the committed maximum size; 0 per axis means unconstrained.
func (t *Toplevel) MaxSize() platform.Size { return t.maxSize }

// WindowGeometry is the committed window geometry in surface-local
// coordinates.
func (t *Toplevel) WindowGeometry() platform.Rect { return t.geometry }

// Size is the committed window geometry size.
func (t *Toplevel) Size() platform.Size { return t.geometry.Size() }

// States returns the flags of the last acknowledged configuration.
func (t *Toplevel) States() StateSet { return t.ledger.Current().States }

// PendingStates returns the flags of the most recently enqueued
// configuration.
func (t *Toplevel) PendingStates() StateSet { return t.ledger.Pending().States }

// PendingSize returns the size of the most recently enqueued configuration.
func (t *Toplevel) PendingSize() platform.Size { return t.ledger.Pending().Size }

func (t *Toplevel) Activated() bool  { return t.States().Has(Activated) }
func (t *Toplevel) Maximized() bool  { return t.States().Has(Maximized) }
func (t *Toplevel) Fullscreen() bool { return t.States().Has(Fullscreen) }
func (t *Toplevel) Resizing() bool   { return t.States().Has(Resizing) }

// Ledger exposes the configuration ledger for inspection.
func (t *Toplevel) Ledger() *Ledger { return t.ledger }

func (t *Toplevel) DecorationMode() DecorationMode          { return t.decoration }
func (t *Toplevel) PreferredDecorationMode() DecorationMode { return t.preferredDecoration }

// Capabilities returns the advertised window-management capabilities.
func (t *Toplevel) Capabilities() Capabilities { return t.caps }

// TargetOutput is the output the window was last maximized or made
// fullscreen on, 0 when none.
func (t *Toplevel) TargetOutput() platform.OutputID { return t.targetOutput }

// SetTargetOutput records the output a maximize or fullscreen configure
// targets.
func (t *Toplevel) SetTargetOutput(id platform.OutputID) { t.targetOutput = id }

// ForgetOutput clears references to an output that went away.
func (t *Toplevel) ForgetOutput(id platform.OutputID) {
	if t.targetOutput == id {
		t.targetOutput = 0
	}
	if t.prevRoleOutput == id {
		t.prevRoleOutput = 0
	}
}

// RolePosition converts a surface position into the position of the window
// geometry's top-left corner.
func (t *Toplevel) RolePosition(surfacePos platform.Point) platform.Point {
	return surfacePos.Add(t.geometry.Origin())
}

// SizeInRange reports whether size satisfies the committed min/max
// constraints. Bounds are inclusive and 0 means unconstrained.
func (t *Toplevel) SizeInRange(size platform.Size) bool {
	return axisInRange(size.Width, t.minSize.Width, t.maxSize.Width) &&
		axisInRange(size.Height, t.minSize.Height, t.maxSize.Height)
}

func axisInRange(v, lo, hi int) bool {
	return (lo == 0 || lo <= v) && (hi == 0 || hi >= v)
}

func clampAxis(v, lo, hi int) int {
	if v == 0 {
		return 0
	}
	if lo != 0 && v < lo {
		v = lo
	}
	if hi != 0 && v > hi {
		v = hi
	}
	return v
}

// ClampSize brings a requested size inside the committed min/max range.
// Zero components are left alone: they let the client choose.
func (t *Toplevel) ClampSize(size platform.Size) platform.Size {
	return platform.Size{
		Width:  clampAxis(size.Width, t.minSize.Width, t.maxSize.Width),
		Height: clampAxis(size.Height, t.minSize.Height, t.maxSize.Height),
	}
}

// Configure asks the client to adopt size and states and sends it right
// away. The size is clamped to the committed min/max range.
func (t *Toplevel) Configure(size platform.Size, states StateSet) uint32 {
	serial := t.ledger.Enqueue(t.ClampSize(size), states)
	t.flush(false)
	return serial
}

// ConfigureStates asks the client to adopt states at the pending size.
func (t *Toplevel) ConfigureStates(states StateSet) uint32 {
	return t.Configure(t.PendingSize(), states)
}

// Flush transmits the pending configuration if one is queued.
func (t *Toplevel) Flush() bool { return t.flush(false) }

func (t *Toplevel) flush(force bool) bool {
	if t.destroyed {
		return false
	}
	conf, ok := t.ledger.Flush(force)
	if !ok {
		return false
	}
	if t.capsDirty {
		t.capsDirty = false
		t.resource.SendWMCapabilities(t.caps)
	}
	if t.boundsDirty {
		t.boundsDirty = false
		t.resource.SendConfigureBounds(t.bounds)
	}
	if t.pendingDecoration.Valid() {
		t.resource.SendDecorationMode(t.pendingDecoration)
		t.sentDecoration = t.pendingDecoration
		t.pendingDecoration = DecorationUnset
		t.decorationSerial = conf.Serial
		t.decorationInFlight = true
	}
	t.resource.SendConfigure(conf.Serial, conf.Size, conf.States)
	t.logger.Debug("configure sent", "serial", conf.Serial, "size", conf.Size.String(), "states", conf.States.String())
	return true
}

// SetWMCapabilities queues the capability set for the next configure.
func (t *Toplevel) SetWMCapabilities(caps Capabilities) {
	if caps == t.caps {
		return
	}
	t.caps = caps
	t.capsDirty = true
}

// SetConfigureBounds queues a size hint the client should not exceed.
func (t *Toplevel) SetConfigureBounds(size platform.Size) {
	if size == t.bounds {
		return
	}
	t.bounds = size
	t.boundsDirty = true
}

// SetDecorationMode queues a decoration mode change for the next configure.
// Modes other than client-side and server-side are ignored.
func (t *Toplevel) SetDecorationMode(mode DecorationMode) {
	if !mode.Valid() {
		return
	}
	if mode == t.decoration && !t.decorationInFlight {
		t.pendingDecoration = DecorationUnset
		return
	}
	t.pendingDecoration = mode
}

// Close asks the client to close the window.
func (t *Toplevel) Close() {
	if t.destroyed {
		return
	}
	t.resource.SendClosed()
}

// Destroy tears the role down: unmaps the surface and releases every seat
// reference to the window. Further calls are no-ops.
func (t *Toplevel) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.listeners = nil
	if t.surface.Mapped() {
		t.surface.SetMapped(false)
	}
	t.seat.Forget(t.ID())
}

func (t *Toplevel) setAppID(appID string) {
	appID = strings.TrimSpace(appID)
	if appID == t.appID {
		return
	}
	t.appID = appID
	t.notify(func(l Listener) { l.AppIDChanged(t) })
}

func (t *Toplevel) setTitle(title string) {
	title = strings.TrimSpace(title)
	if title == t.title {
		return
	}
	t.title = title
	t.notify(func(l Listener) { l.TitleChanged(t) })
}

func (t *Toplevel) notify(fn func(Listener)) {
	for _, l := range t.listeners {
		fn(l)
	}
}
