package toplevel

import "github.com/1broseidon/xdgrole/internal/platform"

// CalculateResizeSize returns the window size after the pointer moved by
// delta since an interactive resize of edge started at initial. Right and
// bottom edges follow the pointer outward; left and top edges grow when the
// pointer moves up or left.
func CalculateResizeSize(delta platform.Point, initial platform.Size, edge ResizeEdge) platform.Size {
	size := initial
	if edge.Touches(EdgeLeft) {
		size.Width = initial.Width - delta.X
	} else if edge.Touches(EdgeRight) {
		size.Width = initial.Width + delta.X
	}
	if edge.Touches(EdgeTop) {
		size.Height = initial.Height - delta.Y
	} else if edge.Touches(EdgeBottom) {
		size.Height = initial.Height + delta.Y
	}
	return size
}

// ResizePosition keeps the edge opposite the one being dragged in place: when
// a top or left edge is resized, the window origin shifts by however much the
// committed size shrank or grew.
func ResizePosition(initialPos platform.Point, initialSize, committed platform.Size, edge ResizeEdge) platform.Point {
	pos := initialPos
	if edge.Touches(EdgeTop) {
		pos.Y = initialPos.Y + (initialSize.Height - committed.Height)
	}
	if edge.Touches(EdgeLeft) {
		pos.X = initialPos.X + (initialSize.Width - committed.Width)
	}
	return pos
}
