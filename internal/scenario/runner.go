package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/config"
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/seat"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// defaultBufferSize is what a simulated client draws when the compositor
// lets it choose.
var defaultBufferSize = platform.Size{Width: 640, Height: 480}

// clockStart keeps the first press well clear of zero.
const clockStart = 1000

var actions = map[string]func(*Runner, Step) error{
	"connect":          (*Runner).connect,
	"disconnect":       (*Runner).disconnect,
	"surface":          (*Runner).surface,
	"subsurface":       (*Runner).subsurface,
	"toplevel":         (*Runner).toplevel,
	"destroy_toplevel": (*Runner).destroyToplevel,
	"destroy_surface":  (*Runner).destroySurface,
	"request":          (*Runner).request,
	"geometry":         (*Runner).geometry,
	"place":            (*Runner).place,
	"attach":           (*Runner).attach,
	"commit":           (*Runner).commit,
	"ack":              (*Runner).ack,
	"respond":          (*Runner).respond,
	"motion":           (*Runner).motion,
	"press":            (*Runner).press,
	"release":          (*Runner).release,
	"click":            (*Runner).click,
	"add_output":       (*Runner).addOutput,
	"remove_output":    (*Runner).removeOutput,
	"close":            (*Runner).closeWindow,
	"expect":           (*Runner).expect,
}

type surfaceRef struct {
	client *simClient
	id     platform.WindowID
}

// Runner plays scenario steps against one compositor. It is not safe for
// concurrent use; run it on the compositor's turn.
type Runner struct {
	c        *compositor.Compositor
	logger   *slog.Logger
	clients  map[string]*simClient
	surfaces map[string]surfaceRef
	clock    uint32
}

// NewRunner returns a runner driving c.
func NewRunner(c *compositor.Compositor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		c:        c,
		logger:   logger.With("component", "scenario"),
		clients:  make(map[string]*simClient),
		surfaces: make(map[string]surfaceRef),
		clock:    clockStart,
	}
}

// Run plays every step directly. The caller must own the compositor.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	r.logger.Info("scenario started", "name", sc.Name, "steps", len(sc.Steps))
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Apply(st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Do, err)
		}
	}
	r.logger.Info("scenario finished", "name", sc.Name)
	return nil
}

// RunOn plays every step on loop's turn, one step per call.
func (r *Runner) RunOn(ctx context.Context, loop *compositor.Loop, sc *Scenario) error {
	r.logger.Info("scenario started", "name", sc.Name, "steps", len(sc.Steps))
	for i, st := range sc.Steps {
		err := loop.Do(ctx, func(*compositor.Compositor) error { return r.Apply(st) })
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Do, err)
		}
	}
	r.logger.Info("scenario finished", "name", sc.Name)
	return nil
}

// Apply runs a single step.
func (r *Runner) Apply(st Step) error {
	fn, ok := actions[st.Do]
	if !ok {
		return fmt.Errorf("unknown action %q", st.Do)
	}
	r.clock += st.Wait
	r.logger.Debug("step", "do", st.Do, "client", st.Client, "surface", st.Surface)
	return fn(r, st)
}

func (r *Runner) client(name string) (*simClient, error) {
	if name == "" {
		return nil, fmt.Errorf("client is required")
	}
	sc, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown client %q", name)
	}
	return sc, nil
}

func (r *Runner) ref(name string) (surfaceRef, error) {
	if name == "" {
		return surfaceRef{}, fmt.Errorf("surface is required")
	}
	ref, ok := r.surfaces[name]
	if !ok {
		return surfaceRef{}, fmt.Errorf("unknown surface %q", name)
	}
	return ref, nil
}

func (r *Runner) connect(st Step) error {
	if _, dup := r.clients[st.Client]; dup {
		return fmt.Errorf("client %q already connected", st.Client)
	}
	if st.Client == "" {
		return fmt.Errorf("client is required")
	}
	sc := newSimClient(st.Client)
	sc.cl = r.c.Connect(sc)
	r.clients[st.Client] = sc
	return nil
}

func (r *Runner) disconnect(st Step) error {
	sc, err := r.client(st.Client)
	if err != nil {
		return err
	}
	sc.cl.Disconnect(nil)
	return nil
}

func (r *Runner) newSurface(st Step, create func(*simClient) (platform.WindowID, error)) error {
	sc, err := r.client(st.Client)
	if err != nil {
		return err
	}
	if st.Surface == "" {
		return fmt.Errorf("surface is required")
	}
	if _, dup := r.surfaces[st.Surface]; dup {
		return fmt.Errorf("surface %q already exists", st.Surface)
	}
	id, err := create(sc)
	if err != nil {
		return err
	}
	r.surfaces[st.Surface] = surfaceRef{client: sc, id: id}
	sc.names[id] = st.Surface
	return nil
}

func (r *Runner) surface(st Step) error {
	return r.newSurface(st, func(sc *simClient) (platform.WindowID, error) {
		return sc.cl.CreateSurface()
	})
}

func (r *Runner) subsurface(st Step) error {
	parent, err := r.ref(st.Parent)
	if err != nil {
		return err
	}
	var offset platform.Point
	if st.At != "" {
		if offset, err = parsePoint(st.At); err != nil {
			return err
		}
	}
	return r.newSurface(st, func(sc *simClient) (platform.WindowID, error) {
		return sc.cl.CreateSubsurface(parent.id, offset)
	})
}

func (r *Runner) toplevel(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	_, err = ref.client.cl.CreateToplevel(ref.id)
	return err
}

func (r *Runner) destroyToplevel(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	return ref.client.cl.DestroyToplevel(ref.id)
}

func (r *Runner) destroySurface(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	if err := ref.client.cl.DestroySurface(ref.id); err != nil {
		return err
	}
	delete(r.surfaces, st.Surface)
	return nil
}

func (r *Runner) request(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	kind, err := compositor.ParseRequestKind(st.Request)
	if err != nil {
		return err
	}
	req := compositor.Request{Kind: kind, Text: st.Text}
	if st.Size != "" {
		if req.Size, err = parseSize(st.Size); err != nil {
			return err
		}
	}
	if st.At != "" {
		if req.Point, err = parsePoint(st.At); err != nil {
			return err
		}
	}
	if st.Edge != "" {
		if req.Edge, err = parseEdge(st.Edge); err != nil {
			return err
		}
	}
	if st.Mode != "" {
		if req.Decoration, err = config.ParseDecorationMode(st.Mode); err != nil {
			return err
		}
	}
	if st.Output != "" {
		id, ok := r.outputByName(st.Output)
		if !ok {
			return fmt.Errorf("unknown output %q", st.Output)
		}
		req.Output = id
	}
	return ref.client.cl.Request(ref.id, req)
}

func (r *Runner) geometry(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	at, err := parsePoint(st.At)
	if err != nil {
		return err
	}
	size, err := parseSize(st.Size)
	if err != nil {
		return err
	}
	return ref.client.cl.SetWindowGeometry(ref.id, platform.Rect{X: at.X, Y: at.Y, Width: size.Width, Height: size.Height})
}

// place moves a window the way a compositor-side placement policy would.
func (r *Runner) place(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	at, err := parsePoint(st.At)
	if err != nil {
		return err
	}
	r.c.SetPosition(ref.id, at)
	return nil
}

func (r *Runner) attach(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	size := platform.Size{}
	if st.Size != "" {
		if size, err = parseSize(st.Size); err != nil {
			return err
		}
	}
	return ref.client.cl.Attach(ref.id, size)
}

// commit errors on a fatal protocol error; the client is gone afterwards.
func (r *Runner) commit(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	return ref.client.cl.Commit(ref.id)
}

func (r *Runner) ack(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	last, ok := ref.client.configures[ref.id]
	if !ok {
		return fmt.Errorf("surface %q has not been configured", st.Surface)
	}
	ref.client.acked[ref.id] = last.serial
	return ref.client.cl.AckConfigure(ref.id, last.serial)
}

// respond behaves like a well-mannered client: acknowledge the newest
// configure, draw a buffer of the configured size and commit.
func (r *Runner) respond(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	sc := ref.client
	last, configured := sc.configures[ref.id]
	if configured && last.serial != sc.acked[ref.id] {
		sc.acked[ref.id] = last.serial
		if err := sc.cl.AckConfigure(ref.id, last.serial); err != nil {
			return err
		}
	}

	size := last.size
	if st.Size != "" {
		if size, err = parseSize(st.Size); err != nil {
			return err
		}
	}
	if size.Width == 0 || size.Height == 0 {
		size = defaultBufferSize
		if s, ok := r.c.Surface(ref.id); ok && s.HasBuffer() {
			size = s.Size()
		}
	}
	if err := sc.cl.Attach(ref.id, size); err != nil {
		return err
	}
	return sc.cl.Commit(ref.id)
}

func (r *Runner) motion(st Step) error {
	p, err := parsePoint(st.At)
	if err != nil {
		return err
	}
	r.c.PointerMotion(p)
	return nil
}

func (r *Runner) press(st Step) error {
	if st.At != "" {
		if err := r.motion(st); err != nil {
			return err
		}
	}
	r.c.PointerButton(seat.ButtonLeft, true, r.clock)
	return nil
}

func (r *Runner) release(st Step) error {
	if st.At != "" {
		if err := r.motion(st); err != nil {
			return err
		}
	}
	r.c.PointerButton(seat.ButtonLeft, false, r.clock)
	return nil
}

func (r *Runner) click(st Step) error {
	if err := r.press(st); err != nil {
		return err
	}
	r.clock++
	return r.release(Step{})
}

func (r *Runner) addOutput(st Step) error {
	if st.Output == "" {
		return fmt.Errorf("output name is required")
	}
	var at platform.Point
	var err error
	if st.At != "" {
		if at, err = parsePoint(st.At); err != nil {
			return err
		}
	}
	size, err := parseSize(st.Size)
	if err != nil {
		return err
	}
	r.c.AddOutput(platform.Output{
		Name:   st.Output,
		Bounds: platform.Rect{X: at.X, Y: at.Y, Width: size.Width, Height: size.Height},
	})
	return nil
}

func (r *Runner) removeOutput(st Step) error {
	id, ok := r.outputByName(st.Output)
	if !ok {
		return fmt.Errorf("unknown output %q", st.Output)
	}
	r.c.RemoveOutput(id)
	return nil
}

func (r *Runner) outputByName(name string) (platform.OutputID, bool) {
	for _, o := range r.c.Outputs() {
		if o.Name == name {
			return o.ID, true
		}
	}
	return 0, false
}

func (r *Runner) closeWindow(st Step) error {
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}
	return r.c.CloseWindow(ref.id)
}

// configure is the newest configure event a simulated client received.
type configure struct {
	serial uint32
	size   platform.Size
	states toplevel.StateSet
}

// simClient is the client end of a scripted connection. It records what
// the compositor sends.
type simClient struct {
	name       string
	cl         *compositor.Client
	names      map[platform.WindowID]string
	configures map[platform.WindowID]configure
	acked      map[platform.WindowID]uint32
	closed     map[platform.WindowID]bool
	errors     []string
	reason     error
}

func newSimClient(name string) *simClient {
	return &simClient{
		name:       name,
		names:      make(map[platform.WindowID]string),
		configures: make(map[platform.WindowID]configure),
		acked:      make(map[platform.WindowID]uint32),
		closed:     make(map[platform.WindowID]bool),
	}
}

func (s *simClient) SendConfigure(window platform.WindowID, serial uint32, size platform.Size, states toplevel.StateSet) {
	s.configures[window] = configure{serial: serial, size: size, states: states}
}

func (s *simClient) SendDecorationMode(platform.WindowID, toplevel.DecorationMode) {}
func (s *simClient) SendWMCapabilities(platform.WindowID, toplevel.Capabilities)   {}
func (s *simClient) SendConfigureBounds(platform.WindowID, platform.Size)          {}

func (s *simClient) SendClosed(window platform.WindowID) { s.closed[window] = true }

func (s *simClient) PostError(window platform.WindowID, code toplevel.ErrorCode, message string) {
	s.errors = append(s.errors, fmt.Sprintf("%s: error %d: %s", s.names[window], code, message))
}

func (s *simClient) Disconnect(reason error) { s.reason = reason }
