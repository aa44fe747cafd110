package scenario

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

func newCompositor(t *testing.T, mode toplevel.DecorationMode) *compositor.Compositor {
	t.Helper()
	backend := platform.NewHeadlessBackend([]platform.Output{
		{Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}},
		{Name: "DP-2", Bounds: platform.Rect{X: 1920, Width: 1280, Height: 1024}},
	})
	policy := compositor.DefaultPolicy()
	policy.Decoration = mode
	c, err := compositor.New(compositor.Options{
		Backend: backend,
		Policy:  policy,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mustParse(t *testing.T, data string) *Scenario {
	t.Helper()
	sc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return sc
}

const openWindow = `
  - do: connect
    client: app
  - do: surface
    client: app
    surface: main
  - do: toplevel
    surface: main
  - do: request
    surface: main
    request: set_title
    text: "Editor  "
  - do: commit
    surface: main
  - do: respond
    surface: main
    size: 400x300
`

func TestMapAndMaximize(t *testing.T) {
	sc := mustParse(t, "name: maximize\nsteps:"+openWindow+`
  - do: expect
    surface: main
    expect:
      phase: mapped
      states: [activated]
      size: 400x300
      position: 0,0
      title: Editor
      focused: true
  - do: motion
    at: 2000,100
  - do: request
    surface: main
    request: set_maximized
  - do: respond
    surface: main
  - do: expect
    surface: main
    expect:
      states: [maximized, activated]
      size: 1280x1024
      position: 1920,0
`)
	r := NewRunner(newCompositor(t, toplevel.DecorationClientSide), nil)
	if err := r.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestTitlebarDoubleClickMaximizes(t *testing.T) {
	sc := mustParse(t, "steps:"+openWindow+`
  - do: place
    surface: main
    at: 100,100
  - do: click
    at: 200,80
  - do: click
    wait: 50
  - do: respond
    surface: main
  - do: expect
    surface: main
    expect:
      states: [activated, maximized]
      size: 1920x1080
      position: 0,0
      decoration: server
`)
	r := NewRunner(newCompositor(t, toplevel.DecorationServerSide), nil)
	if err := r.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestBufferBeforeFirstCommitIsFatal(t *testing.T) {
	sc := mustParse(t, `
steps:
  - do: connect
    client: app
  - do: surface
    client: app
    surface: main
  - do: toplevel
    surface: main
  - do: attach
    surface: main
    size: 100x100
  - do: commit
    surface: main
`)
	r := NewRunner(newCompositor(t, toplevel.DecorationClientSide), nil)
	err := r.Run(context.Background(), sc)
	if !errors.Is(err, toplevel.ErrAlreadyConstructed) {
		t.Fatalf("Run = %v, want ErrAlreadyConstructed", err)
	}
	if !strings.Contains(err.Error(), "step 5 (commit)") {
		t.Errorf("error %q does not name the step", err)
	}

	gone := true
	check := Step{Do: "expect", Client: "app", Surface: "main", Expect: &Expect{ClientGone: &gone, Exists: new(bool)}}
	if err := r.Apply(check); err != nil {
		t.Errorf("expect after disconnect: %v", err)
	}
	if errs := r.clients["app"].errors; len(errs) != 1 {
		t.Errorf("posted errors = %v", errs)
	}
}

func TestExpectReportsEveryMismatch(t *testing.T) {
	sc := mustParse(t, "steps:"+openWindow)
	r := NewRunner(newCompositor(t, toplevel.DecorationClientSide), nil)
	if err := r.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	err := r.Apply(Step{Do: "expect", Surface: "main", Expect: &Expect{
		Title: "Other",
		Size:  "10x10",
		Phase: "mapped",
	}})
	if err == nil {
		t.Fatal("expect passed with wrong title and size")
	}
	msg := err.Error()
	if !strings.Contains(msg, `title = "Editor", want "Other"`) || !strings.Contains(msg, "size = 400x300, want 10x10") {
		t.Errorf("error = %q", msg)
	}
	if strings.Contains(msg, "phase") {
		t.Errorf("matching phase reported: %q", msg)
	}
}

func TestCloseAndDisconnect(t *testing.T) {
	sc := mustParse(t, "steps:"+openWindow+`
  - do: close
    surface: main
  - do: expect
    surface: main
    expect:
      closed: true
      exists: true
  - do: destroy_toplevel
    surface: main
  - do: expect
    surface: main
    expect:
      exists: false
  - do: disconnect
    client: app
  - do: expect
    client: app
    expect:
      client_gone: true
`)
	c := newCompositor(t, toplevel.DecorationClientSide)
	r := NewRunner(c, nil)
	if err := r.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st := c.Status(); st.Clients != 0 || st.Windows != 0 {
		t.Errorf("status after disconnect = %+v", st)
	}
}

func TestRunOnLoop(t *testing.T) {
	c := newCompositor(t, toplevel.DecorationClientSide)
	loop := compositor.NewLoop(c)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Serve(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	sc := mustParse(t, "steps:"+openWindow)
	if err := NewRunner(c, nil).RunOn(ctx, loop, sc); err != nil {
		t.Fatalf("RunOn: %v", err)
	}

	var windows []compositor.WindowInfo
	err := loop.Do(ctx, func(c *compositor.Compositor) error {
		windows = c.Windows()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(windows) != 1 || windows[0].Title != "Editor" {
		t.Errorf("windows = %+v", windows)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "empty"},
		{"no steps", "name: x\n", "no steps"},
		{"unknown action", "steps:\n  - do: teleport\n", `unknown action "teleport"`},
		{"unknown key", "steps:\n  - do: commit\n    colour: red\n", "colour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadNamesScenarioAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte("steps:\n  - do: connect\n    client: a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sc.Name != path || len(sc.Steps) != 1 {
		t.Errorf("scenario = %+v", sc)
	}
}

func TestParseHelpers(t *testing.T) {
	if s, err := parseSize("800x600"); err != nil || s != (platform.Size{Width: 800, Height: 600}) {
		t.Errorf("parseSize = %v, %v", s, err)
	}
	if _, err := parseSize("800"); err == nil {
		t.Error("parseSize accepted 800")
	}
	if p, err := parsePoint("-5, 7"); err != nil || p != (platform.Point{X: -5, Y: 7}) {
		t.Errorf("parsePoint = %v, %v", p, err)
	}
	if e, err := parseEdge("bottom_right"); err != nil || e != toplevel.EdgeBottomRight {
		t.Errorf("parseEdge = %v, %v", e, err)
	}
	if _, err := parseEdge("middle"); err == nil {
		t.Error("parseEdge accepted middle")
	}
}
