//go:build linux

package platform

import (
	"testing"

	"github.com/1broseidon/xdgrole/internal/x11"
)

func TestOutputFromMonitor(t *testing.T) {
	o := outputFromMonitor(x11.Monitor{
		ID: 0, Name: "DP-1", Width: 1920, Height: 1080,
		Usable: x11.Area{Y: 32, Width: 1920, Height: 1048},
	})
	if o.ID != 1 {
		t.Errorf("ID = %d, want 1", o.ID)
	}
	if o.Usable != (Rect{Y: 32, Width: 1920, Height: 1048}) {
		t.Errorf("usable = %v", o.Usable)
	}

	bare := outputFromMonitor(x11.Monitor{ID: 2, Name: "HDMI-1", X: 1920, Width: 800, Height: 600})
	if bare.Usable != bare.Bounds {
		t.Errorf("usable = %v, want bounds %v", bare.Usable, bare.Bounds)
	}
}

func TestGlyphForShapeDistinguishesEdges(t *testing.T) {
	seen := make(map[uint16]CursorShape)
	for s := CursorMove; s <= CursorResizeBottomRight; s++ {
		g := glyphForShape(s)
		if prev, dup := seen[g]; dup {
			t.Errorf("%v and %v share glyph %d", prev, s, g)
		}
		seen[g] = s
	}
}
