// Package daemon keeps a running compositor in step with its host backend.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/platform"
)

const (
	DefaultOutputInterval  = 5 * time.Second
	DefaultPointerInterval = 50 * time.Millisecond
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	OutputInterval  time.Duration
	PointerInterval time.Duration
	Logger          *slog.Logger
}

// Reconciler periodically reads the backend's outputs and physical pointer
// and feeds any drift into the compositor.
type Reconciler struct {
	outputInterval  time.Duration
	pointerInterval time.Duration
	backend         platform.Backend
	loop            *compositor.Loop
	logger          *slog.Logger

	lastPointer platform.Point
	havePointer bool
}

// NewReconciler creates a reconciler that applies changes through loop.
func NewReconciler(cfg ReconcilerConfig, backend platform.Backend, loop *compositor.Loop) *Reconciler {
	outputInterval := cfg.OutputInterval
	if outputInterval <= 0 {
		outputInterval = DefaultOutputInterval
	}
	pointerInterval := cfg.PointerInterval
	if pointerInterval <= 0 {
		pointerInterval = DefaultPointerInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		outputInterval:  outputInterval,
		pointerInterval: pointerInterval,
		backend:         backend,
		loop:            loop,
		logger:          logger.With("component", "reconciler"),
	}
}

func (r *Reconciler) String() string { return "reconciler" }

// Serve runs the reconciliation loop until ctx is cancelled. It is a suture
// service.
func (r *Reconciler) Serve(ctx context.Context) error {
	outputs := time.NewTicker(r.outputInterval)
	defer outputs.Stop()
	pointer := time.NewTicker(r.pointerInterval)
	defer pointer.Stop()

	r.logger.Info("reconciler started", "outputs", r.outputInterval, "pointer", r.pointerInterval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return ctx.Err()
		case <-outputs.C:
			r.syncOutputs(ctx)
		case <-pointer.C:
			r.syncPointer(ctx)
		}
	}
}

// ReconcileNow runs one pass of both checks immediately.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.syncOutputs(ctx)
	r.syncPointer(ctx)
}

func (r *Reconciler) syncOutputs(ctx context.Context) {
	actual, err := r.backend.Outputs()
	if err != nil {
		r.logger.Warn("failed to read outputs", "error", err)
		return
	}

	err = r.loop.Do(ctx, func(c *compositor.Compositor) error {
		add, remove := diffOutputs(c.Outputs(), actual)
		for _, id := range remove {
			c.RemoveOutput(id)
		}
		for _, o := range add {
			c.AddOutput(o)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		r.logger.Warn("failed to apply outputs", "error", err)
	}
}

// syncPointer injects motion when the physical pointer moved since the
// previous poll. The first poll only records the position.
func (r *Reconciler) syncPointer(ctx context.Context) {
	p, err := r.backend.CursorPosition()
	if err != nil {
		r.logger.Debug("failed to read pointer", "error", err)
		return
	}
	if r.havePointer && p == r.lastPointer {
		return
	}
	first := !r.havePointer
	r.lastPointer, r.havePointer = p, true
	if first {
		return
	}

	err = r.loop.Do(ctx, func(c *compositor.Compositor) error {
		c.PointerMotion(p)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		r.logger.Warn("failed to apply pointer motion", "error", err)
	}
}

// diffOutputs matches outputs by name. An output whose geometry changed is
// removed and added again so windows drop their reference to it.
func diffOutputs(current, actual []platform.Output) (add []platform.Output, remove []platform.OutputID) {
	byName := make(map[string]platform.Output, len(current))
	for _, o := range current {
		byName[o.Name] = o
	}
	seen := make(map[string]bool, len(actual))
	for _, o := range actual {
		seen[o.Name] = true
		if o.Usable.Empty() {
			o.Usable = o.Bounds
		}
		cur, ok := byName[o.Name]
		if ok && cur.Bounds == o.Bounds && cur.Usable == o.Usable {
			continue
		}
		if ok {
			remove = append(remove, cur.ID)
		}
		o.ID = 0
		add = append(add, o)
	}
	for _, o := range current {
		if !seen[o.Name] {
			remove = append(remove, o.ID)
		}
	}
	return add, remove
}
