package platform

import "fmt"

// WindowID is a platform-neutral surface identifier. Every surface the
// compositor tracks, with or without a toplevel role, gets one.
type WindowID uint32

// OutputID identifies a connected output. IDs are never reused while the
// process runs, so a stale ID simply fails to resolve.
type OutputID uint32

// Point is a position in compositor-global coordinates.
type Point struct {
	X int
	Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the displacement from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// Size is a width/height pair. A zero component means "unspecified".
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether both components are zero.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Sub returns the per-axis difference s - o.
func (s Size) Sub(o Size) Size { return Size{Width: s.Width - o.Width, Height: s.Height - o.Height} }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (right/bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersect returns the overlap of r and o, or the zero Rect when they do
// not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (r Rect) String() string { return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y) }

// Output describes a physical display and its usable work area.
type Output struct {
	ID     OutputID
	Name   string
	Bounds Rect
	Usable Rect
}

// CursorShape names a cursor glyph the backend can show.
type CursorShape int

const (
	CursorDefault CursorShape = iota
	CursorMove
	CursorResizeTop
	CursorResizeBottom
	CursorResizeLeft
	CursorResizeRight
	CursorResizeTopLeft
	CursorResizeTopRight
	CursorResizeBottomLeft
	CursorResizeBottomRight
)

func (c CursorShape) String() string {
	switch c {
	case CursorDefault:
		return "default"
	case CursorMove:
		return "move"
	case CursorResizeTop:
		return "n-resize"
	case CursorResizeBottom:
		return "s-resize"
	case CursorResizeLeft:
		return "w-resize"
	case CursorResizeRight:
		return "e-resize"
	case CursorResizeTopLeft:
		return "nw-resize"
	case CursorResizeTopRight:
		return "ne-resize"
	case CursorResizeBottomLeft:
		return "sw-resize"
	case CursorResizeBottomRight:
		return "se-resize"
	default:
		return fmt.Sprintf("cursor(%d)", int(c))
	}
}

// Backend abstracts the host the compositor runs on: where its outputs are,
// where the physical pointer sits and how the cursor glyph is shown.
type Backend interface {
	Name() string
	Outputs() ([]Output, error)
	CursorPosition() (Point, error)
	SetCursorShape(shape CursorShape) error
	Close() error
}
