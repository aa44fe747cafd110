package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestStrutsClipToMonitor(t *testing.T) {
	// Two monitors side by side; a 32px top panel spans only the left one.
	left := Area{Width: 1920, Height: 1080}
	right := Area{X: 1920, Width: 1280, Height: 1024}
	panel := &ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}

	var sl, sr struts
	sl.add(left, 3200, 1080, panel)
	sr.add(right, 3200, 1080, panel)

	if sl.top != 32 {
		t.Errorf("left top = %d, want 32", sl.top)
	}
	if sr.top != 0 {
		t.Errorf("right top = %d, want 0", sr.top)
	}
}

func TestStrutsKeepLargestPerSide(t *testing.T) {
	mon := Area{Width: 1920, Height: 1080}
	var s struts
	s.add(mon, 1920, 1080, &ewmh.WmStrutPartial{Bottom: 24, BottomStartX: 0, BottomEndX: 1919})
	s.add(mon, 1920, 1080, &ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 0, BottomEndX: 959})
	s.add(mon, 1920, 1080, &ewmh.WmStrutPartial{Left: 64, LeftStartY: 0, LeftEndY: 1079})
	if s.bottom != 48 || s.left != 64 || s.top != 0 || s.right != 0 {
		t.Errorf("struts = %+v", s)
	}
}

func TestAreaIntersect(t *testing.T) {
	a := Area{X: 0, Y: 0, Width: 100, Height: 100}
	if got := a.intersect(Area{X: 90, Y: 90, Width: 50, Height: 50}); got != (Area{X: 90, Y: 90, Width: 10, Height: 10}) {
		t.Errorf("intersect = %+v", got)
	}
	if !a.intersect(Area{X: 200, Width: 10, Height: 10}).empty() {
		t.Error("disjoint areas intersect")
	}
}
