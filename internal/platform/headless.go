package platform

import (
	"fmt"
	"sync"
)

// HeadlessBackend serves a fixed output layout without touching any display
// server. It backs the simulator and tests.
type HeadlessBackend struct {
	mu      sync.Mutex
	outputs []Output
	cursor  Point
	shape   CursorShape
}

var _ Backend = (*HeadlessBackend)(nil)

// NewHeadlessBackend returns a backend exposing the given outputs. Outputs
// without a usable rect get their full bounds.
func NewHeadlessBackend(outputs []Output) *HeadlessBackend {
	copied := make([]Output, len(outputs))
	for i, o := range outputs {
		if o.Usable.Empty() {
			o.Usable = o.Bounds
		}
		copied[i] = o
	}
	return &HeadlessBackend{outputs: copied}
}

func (b *HeadlessBackend) Name() string { return "headless" }

func (b *HeadlessBackend) Outputs() ([]Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.outputs) == 0 {
		return nil, fmt.Errorf("no outputs configured")
	}
	out := make([]Output, len(b.outputs))
	copy(out, b.outputs)
	return out, nil
}

// SetOutputs replaces the output layout, as a monitor hotplug would.
func (b *HeadlessBackend) SetOutputs(outputs []Output) {
	copied := make([]Output, len(outputs))
	for i, o := range outputs {
		if o.Usable.Empty() {
			o.Usable = o.Bounds
		}
		copied[i] = o
	}
	b.mu.Lock()
	b.outputs = copied
	b.mu.Unlock()
}

func (b *HeadlessBackend) CursorPosition() (Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor, nil
}

// WarpCursor moves the simulated physical pointer.
func (b *HeadlessBackend) WarpCursor(p Point) {
	b.mu.Lock()
	b.cursor = p
	b.mu.Unlock()
}

func (b *HeadlessBackend) SetCursorShape(shape CursorShape) error {
	b.mu.Lock()
	b.shape = shape
	b.mu.Unlock()
	return nil
}

// CursorShape returns the last shape requested.
func (b *HeadlessBackend) CursorShape() CursorShape {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shape
}

func (b *HeadlessBackend) Close() error { return nil }
