package compositor

import (
	"slices"
	"time"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// WindowInfo describes one toplevel for IPC and MCP consumers.
type WindowInfo struct {
	ID          uint32   `json:"id"`
	Client      string   `json:"client"`
	Title       string   `json:"title"`
	AppID       string   `json:"app_id"`
	Phase       string   `json:"phase"`
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	States      []string `json:"states"`
	Pending     []string `json:"pending_states"`
	Decoration  string   `json:"decoration"`
	Minimized   bool     `json:"minimized"`
	StackIndex  int      `json:"stack_index"`
	LastSerial  uint32   `json:"last_serial"`
	Outstanding int      `json:"outstanding_configures"`
}

// SeatInfo describes the input seat.
type SeatInfo struct {
	PointerX       int    `json:"pointer_x"`
	PointerY       int    `json:"pointer_y"`
	PointerFocus   uint32 `json:"pointer_focus"`
	KeyboardFocus  uint32 `json:"keyboard_focus"`
	ActiveToplevel uint32 `json:"active_toplevel"`
	MoveGrab       uint32 `json:"move_grab,omitempty"`
	ResizeGrab     uint32 `json:"resize_grab,omitempty"`
	ResizeEdge     string `json:"resize_edge,omitempty"`
	Cursor         string `json:"cursor"`
}

// OutputInfo describes a connected output.
type OutputInfo struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Status summarises the compositor.
type Status struct {
	Backend       string `json:"backend"`
	Clients       int    `json:"clients"`
	Windows       int    `json:"windows"`
	Outputs       int    `json:"outputs"`
	Serial        uint32 `json:"serial"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Windows lists every toplevel, bottom of the stack first. Toplevels that
// are not stacked (never mapped) follow in ID order.
func (c *Compositor) Windows() []WindowInfo {
	var ids []platform.WindowID
	for id, s := range c.surfaces {
		if s.role != nil {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b platform.WindowID) int {
		ia, ib := slices.Index(c.stack, a), slices.Index(c.stack, b)
		if ia < 0 {
			ia = len(c.stack) + int(a)
		}
		if ib < 0 {
			ib = len(c.stack) + int(b)
		}
		return ia - ib
	})

	out := make([]WindowInfo, 0, len(ids))
	for _, id := range ids {
		info, _ := c.Window(id)
		out = append(out, info)
	}
	return out
}

// Window describes one toplevel.
func (c *Compositor) Window(id platform.WindowID) (WindowInfo, bool) {
	s, ok := c.surfaces[id]
	if !ok || s.role == nil {
		return WindowInfo{}, false
	}
	t := s.role
	rect := c.WindowRect(t)
	info := WindowInfo{
		ID:          uint32(id),
		Title:       t.Title(),
		AppID:       t.AppID(),
		Phase:       t.Phase().String(),
		X:           rect.X,
		Y:           rect.Y,
		Width:       rect.Width,
		Height:      rect.Height,
		States:      stateNames(t.States().List()),
		Pending:     stateNames(t.PendingStates().List()),
		Decoration:  t.DecorationMode().String(),
		Minimized:   s.minimized,
		StackIndex:  slices.Index(c.stack, id),
		LastSerial:  t.Ledger().Last().Serial,
		Outstanding: len(t.Ledger().Sent()),
	}
	if s.client != nil {
		info.Client = s.client.id
	}
	return info, true
}

// SeatInfo describes the seat.
func (c *Compositor) SeatInfo() SeatInfo {
	st := c.seat
	pos := st.PointerPosition()
	info := SeatInfo{
		PointerX:       pos.X,
		PointerY:       pos.Y,
		PointerFocus:   uint32(st.PointerFocus()),
		KeyboardFocus:  uint32(st.KeyboardFocus()),
		ActiveToplevel: uint32(st.ActiveToplevel()),
		Cursor:         st.CursorShape().String(),
	}
	if g, ok := st.MoveGrab(); ok {
		info.MoveGrab = uint32(g.Window)
	}
	if g, ok := st.ResizeGrab(); ok {
		info.ResizeGrab = uint32(g.Window)
		info.ResizeEdge = g.Edge.String()
	}
	return info
}

// OutputInfos describes the connected outputs.
func (c *Compositor) OutputInfos() []OutputInfo {
	out := make([]OutputInfo, 0, len(c.outputs))
	for _, o := range c.outputs {
		out = append(out, OutputInfo{
			ID:     uint32(o.ID),
			Name:   o.Name,
			X:      o.Bounds.X,
			Y:      o.Bounds.Y,
			Width:  o.Bounds.Width,
			Height: o.Bounds.Height,
		})
	}
	return out
}

// Status summarises the compositor.
func (c *Compositor) Status() Status {
	windows := 0
	for _, s := range c.surfaces {
		if s.role != nil {
			windows++
		}
	}
	return Status{
		Backend:       c.BackendName(),
		Clients:       len(c.clients),
		Windows:       windows,
		Outputs:       len(c.outputs),
		Serial:        c.serial,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
	}
}

func stateNames(states []toplevel.State) []string {
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, s.String())
	}
	return names
}
