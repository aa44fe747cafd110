package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is an enabled RandR CRTC together with the part of it that is not
// covered by docks and panels.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	Usable Area
}

// Area is a rectangle in root-window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (a Area) x2() int { return a.X + a.Width }
func (a Area) y2() int { return a.Y + a.Height }

func (a Area) intersect(b Area) Area {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.x2(), b.x2())
	y2 := min(a.y2(), b.y2())
	if x2 <= x1 || y2 <= y1 {
		return Area{}
	}
	return Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (a Area) empty() bool { return a.Width <= 0 || a.Height <= 0 }

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		m := Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		m.Usable = c.usableArea(m)
		monitors = append(monitors, m)
	}

	return monitors, nil
}

// usableArea shrinks a monitor by dock struts, falling back to the EWMH
// work area of the current desktop when no dock publishes struts.
func (c *Connection) usableArea(m Monitor) Area {
	bounds := Area{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}

	if usable, ok := c.strutArea(bounds); ok {
		return usable
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return bounds
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workArea) {
		idx = int(desktop)
	}
	wa := workArea[idx]
	usable := bounds.intersect(Area{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)})
	if usable.empty() {
		return bounds
	}
	return usable
}

type struts struct {
	left, right, top, bottom int
}

func (c *Connection) strutArea(bounds Area) (Area, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Area{}, false
	}
	rootW := int(rootGeom.Width)
	rootH := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return Area{}, false
	}

	var acc struts
	for _, win := range clients {
		if !isDock(c, win) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			acc.add(bounds, rootW, rootH, sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			acc.add(bounds, rootW, rootH, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootH - 1),
				RightEndY:  uint(rootH - 1),
				TopEndX:    uint(rootW - 1),
				BottomEndX: uint(rootW - 1),
			})
		}
	}

	if acc == (struts{}) {
		return Area{}, false
	}

	usable := Area{
		X:      bounds.X + acc.left,
		Y:      bounds.Y + acc.top,
		Width:  max(1, bounds.Width-acc.left-acc.right),
		Height: max(1, bounds.Height-acc.top-acc.bottom),
	}
	return usable, true
}

func isDock(c *Connection, win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// add folds one dock's reserved strips into the accumulated struts for the
// monitor, keeping the largest overlap per side.
func (s *struts) add(mon Area, rootW, rootH int, sp *ewmh.WmStrutPartial) {
	if sp.Top > 0 {
		strip := Area{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		s.top = max(s.top, mon.intersect(strip).Height)
	}
	if sp.Bottom > 0 {
		strip := Area{X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom), Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom)}
		s.bottom = max(s.bottom, mon.intersect(strip).Height)
	}
	if sp.Left > 0 {
		strip := Area{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		s.left = max(s.left, mon.intersect(strip).Width)
	}
	if sp.Right > 0 {
		strip := Area{X: rootW - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY)}
		s.right = max(s.right, mon.intersect(strip).Width)
	}
}
