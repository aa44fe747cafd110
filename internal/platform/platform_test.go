package platform

import "testing"

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 100, 100}, Rect{50, 60, 100, 100}, Rect{50, 60, 50, 40}},
		{"contained", Rect{0, 0, 1920, 1080}, Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}},
		{"touching edges", Rect{0, 0, 100, 100}, Rect{100, 0, 50, 50}, Rect{}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{-50, -50, 10, 10}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContainsExcludesFarEdges(t *testing.T) {
	r := Rect{X: 1920, Width: 1280, Height: 1024}
	if !r.Contains(Point{X: 1920, Y: 0}) {
		t.Error("origin not contained")
	}
	if r.Contains(Point{X: 3200, Y: 10}) || r.Contains(Point{X: 2000, Y: 1024}) {
		t.Error("right or bottom edge contained")
	}
}

func TestHeadlessBackend(t *testing.T) {
	b := NewHeadlessBackend([]Output{
		{Name: "DP-1", Bounds: Rect{Width: 1920, Height: 1080}},
		{Name: "DP-2", Bounds: Rect{X: 1920, Width: 1280, Height: 1024}, Usable: Rect{X: 1920, Y: 24, Width: 1280, Height: 1000}},
	})

	outputs, err := b.Outputs()
	if err != nil {
		t.Fatal(err)
	}
	if outputs[0].Usable != outputs[0].Bounds {
		t.Errorf("usable = %v, want bounds", outputs[0].Usable)
	}
	if outputs[1].Usable.Y != 24 {
		t.Errorf("explicit usable replaced: %v", outputs[1].Usable)
	}

	outputs[0].Name = "changed"
	if again, _ := b.Outputs(); again[0].Name != "DP-1" {
		t.Error("Outputs returned the backend's own slice")
	}

	b.WarpCursor(Point{X: 5, Y: 6})
	if p, _ := b.CursorPosition(); p != (Point{X: 5, Y: 6}) {
		t.Errorf("cursor = %v", p)
	}
	if err := b.SetCursorShape(CursorResizeTopLeft); err != nil {
		t.Fatal(err)
	}
	if b.CursorShape().String() != "nw-resize" {
		t.Errorf("shape = %v", b.CursorShape())
	}

	b.SetOutputs(nil)
	if _, err := b.Outputs(); err == nil {
		t.Error("empty layout did not error")
	}
}
