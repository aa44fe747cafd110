package toplevel

import "strings"

// State is a single toplevel state flag.
type State uint8

const (
	// Activated means the window is the focused, active window.
	Activated State = 1 << iota
	// Maximized means the window fills its output.
	Maximized
	// Fullscreen means the window covers its output without chrome.
	Fullscreen
	// Resizing means an interactive resize is in progress.
	Resizing
)

var stateNames = []struct {
	state State
	name  string
}{
	{Activated, "activated"},
	{Maximized, "maximized"},
	{Fullscreen, "fullscreen"},
	{Resizing, "resizing"},
}

func (s State) String() string {
	for _, n := range stateNames {
		if n.state == s {
			return n.name
		}
	}
	return "unknown"
}

// StateSet is an immutable set of State flags. The zero value is empty.
type StateSet struct {
	bits State
}

// States builds a set from the given flags.
func States(states ...State) StateSet {
	var set StateSet
	for _, s := range states {
		set.bits |= s
	}
	return set
}

// Has reports whether s is in the set.
func (set StateSet) Has(s State) bool { return set.bits&s == s && s != 0 }

// With returns a copy of the set with the given flags added.
func (set StateSet) With(states ...State) StateSet { return set.Union(States(states...)) }

// Without returns a copy of the set with the given flags removed.
func (set StateSet) Without(states ...State) StateSet { return set.Difference(States(states...)) }

// Union returns the flags present in either set.
func (set StateSet) Union(o StateSet) StateSet { return StateSet{bits: set.bits | o.bits} }

// Difference returns the flags in set that are not in o.
func (set StateSet) Difference(o StateSet) StateSet { return StateSet{bits: set.bits &^ o.bits} }

// Changed returns the flags that differ between the two sets.
func (set StateSet) Changed(o StateSet) StateSet { return StateSet{bits: set.bits ^ o.bits} }

// Empty reports whether no flag is set.
func (set StateSet) Empty() bool { return set.bits == 0 }

// List returns the flags in a stable order.
func (set StateSet) List() []State {
	var out []State
	for _, n := range stateNames {
		if set.Has(n.state) {
			out = append(out, n.state)
		}
	}
	return out
}

func (set StateSet) String() string {
	if set.Empty() {
		return "none"
	}
	names := make([]string, 0, 4)
	for _, s := range set.List() {
		names = append(names, s.String())
	}
	return strings.Join(names, "|")
}

// ResizeEdge selects which window edges follow the pointer during a resize.
type ResizeEdge int

const (
	EdgeNone        ResizeEdge = 0
	EdgeTop         ResizeEdge = 1
	EdgeBottom      ResizeEdge = 2
	EdgeLeft        ResizeEdge = 4
	EdgeTopLeft     ResizeEdge = 5
	EdgeBottomLeft  ResizeEdge = 6
	EdgeRight       ResizeEdge = 8
	EdgeTopRight    ResizeEdge = 9
	EdgeBottomRight ResizeEdge = 10
)

// Valid reports whether e is one of the nine defined edges.
func (e ResizeEdge) Valid() bool {
	switch e {
	case EdgeNone, EdgeTop, EdgeBottom, EdgeLeft, EdgeTopLeft, EdgeBottomLeft,
		EdgeRight, EdgeTopRight, EdgeBottomRight:
		return true
	}
	return false
}

// Touches reports whether e includes the given single edge.
func (e ResizeEdge) Touches(single ResizeEdge) bool {
	return single != EdgeNone && e&single == single
}

func (e ResizeEdge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	case EdgeTopLeft:
		return "top-left"
	case EdgeBottomLeft:
		return "bottom-left"
	case EdgeRight:
		return "right"
	case EdgeTopRight:
		return "top-right"
	case EdgeBottomRight:
		return "bottom-right"
	default:
		return "invalid"
	}
}

// DecorationMode says who draws the window frame.
type DecorationMode int

const (
	DecorationUnset DecorationMode = iota
	DecorationClientSide
	DecorationServerSide
)

// Valid reports whether m may be assigned to a window.
func (m DecorationMode) Valid() bool {
	return m == DecorationClientSide || m == DecorationServerSide
}

func (m DecorationMode) String() string {
	switch m {
	case DecorationClientSide:
		return "client"
	case DecorationServerSide:
		return "server"
	default:
		return "unset"
	}
}

// Capability is a window-management feature the compositor advertises.
type Capability uint8

const (
	CapWindowMenu Capability = 1 << iota
	CapMaximize
	CapFullscreen
	CapMinimize
)

// Capabilities is a set of advertised window-management features.
type Capabilities uint8

// Has reports whether c is advertised.
func (caps Capabilities) Has(c Capability) bool { return caps&Capabilities(c) != 0 }

// AllCapabilities advertises everything.
const AllCapabilities = Capabilities(CapWindowMenu | CapMaximize | CapFullscreen | CapMinimize)
