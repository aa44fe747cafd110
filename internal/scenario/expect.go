package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// expect checks the step's assertions and reports every mismatch at once.
func (r *Runner) expect(st Step) error {
	if st.Expect == nil {
		return fmt.Errorf("expect step without expectations")
	}
	e := st.Expect
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if e.Cursor != "" {
		if got := r.c.Seat().CursorShape().String(); got != e.Cursor {
			fail("cursor = %s, want %s", got, e.Cursor)
		}
	}

	if e.ClientGone != nil {
		sc, err := r.client(st.Client)
		if err != nil {
			return err
		}
		if sc.cl.Gone() != *e.ClientGone {
			fail("client %s gone = %v, want %v", sc.name, sc.cl.Gone(), *e.ClientGone)
		}
	}

	if st.Surface == "" {
		return errors.Join(errs...)
	}
	ref, err := r.ref(st.Surface)
	if err != nil {
		return err
	}

	info, exists := r.c.Window(ref.id)
	if e.Exists != nil && exists != *e.Exists {
		fail("%s exists = %v, want %v", st.Surface, exists, *e.Exists)
	}
	if e.Closed != nil && ref.client.closed[ref.id] != *e.Closed {
		fail("%s closed = %v, want %v", st.Surface, ref.client.closed[ref.id], *e.Closed)
	}
	if e.Focused != nil {
		focused := r.c.Seat().KeyboardFocus() == ref.id
		if focused != *e.Focused {
			fail("%s focused = %v, want %v", st.Surface, focused, *e.Focused)
		}
	}
	if !exists {
		if e.needsWindow() {
			fail("%s has no toplevel role", st.Surface)
		}
		return errors.Join(errs...)
	}

	if e.Phase != "" && info.Phase != e.Phase {
		fail("%s phase = %s, want %s", st.Surface, info.Phase, e.Phase)
	}
	if e.States != nil && !sameStates(info.States, e.States) {
		fail("%s states = [%s], want [%s]", st.Surface, strings.Join(info.States, " "), strings.Join(e.States, " "))
	}
	if e.Size != "" {
		want, err := parseSize(e.Size)
		if err != nil {
			return err
		}
		if info.Width != want.Width || info.Height != want.Height {
			fail("%s size = %dx%d, want %s", st.Surface, info.Width, info.Height, want)
		}
	}
	if e.Position != "" {
		want, err := parsePoint(e.Position)
		if err != nil {
			return err
		}
		if info.X != want.X || info.Y != want.Y {
			fail("%s position = %d,%d, want %s", st.Surface, info.X, info.Y, want)
		}
	}
	if e.Title != "" && info.Title != e.Title {
		fail("%s title = %q, want %q", st.Surface, info.Title, e.Title)
	}
	if e.AppID != "" && info.AppID != e.AppID {
		fail("%s app_id = %q, want %q", st.Surface, info.AppID, e.AppID)
	}
	if e.Decoration != "" && info.Decoration != e.Decoration {
		fail("%s decoration = %s, want %s", st.Surface, info.Decoration, e.Decoration)
	}
	if e.Minimized != nil && info.Minimized != *e.Minimized {
		fail("%s minimized = %v, want %v", st.Surface, info.Minimized, *e.Minimized)
	}
	return errors.Join(errs...)
}

func (e *Expect) needsWindow() bool {
	return e.Phase != "" || e.States != nil || e.Size != "" || e.Position != "" ||
		e.Title != "" || e.AppID != "" || e.Decoration != "" || e.Minimized != nil
}

// sameStates compares state names ignoring order.
func sameStates(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	a := slices.Clone(got)
	b := make([]string, len(want))
	for i, w := range want {
		b[i] = strings.ToLower(strings.TrimSpace(w))
	}
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
