package compositor

import "context"

type call struct {
	fn   func(*Compositor) error
	done chan error
}

// Loop serializes access to a Compositor: every closure passed to Do runs
// on the goroutine executing Serve. It is a suture service.
type Loop struct {
	c     *Compositor
	calls chan call
}

// NewLoop wraps c. Nothing else may touch c once Serve is running.
func NewLoop(c *Compositor) *Loop {
	return &Loop{
		c:     c,
		calls: make(chan call),
	}
}

func (l *Loop) String() string { return "compositor" }

// Serve runs closures until ctx is cancelled.
func (l *Loop) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cl := <-l.calls:
			cl.done <- cl.fn(l.c)
		}
	}
}

// Do runs fn on the compositor's turn and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*Compositor) error) error {
	cl := call{fn: fn, done: make(chan error, 1)}
	select {
	case l.calls <- cl:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cl.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
