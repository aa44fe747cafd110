package compositor

import (
	"slices"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// Surface is a client surface with double-buffered buffer state and an
// optional role. Only the buffer size matters here; pixel content belongs
// to the renderer.
type Surface struct {
	id     platform.WindowID
	c      *Compositor
	client *Client

	pendingBuffer *platform.Size
	buffer        *platform.Size

	pos       platform.Point
	mapped    bool
	minimized bool

	parent     platform.WindowID
	children   []platform.WindowID
	subsurface bool

	role *toplevel.Toplevel
}

var _ toplevel.Surface = (*Surface)(nil)

func (s *Surface) ID() platform.WindowID { return s.id }

// Size is the committed buffer size, zero when no buffer is attached.
func (s *Surface) Size() platform.Size {
	if s.buffer == nil {
		return platform.Size{}
	}
	return *s.buffer
}

func (s *Surface) HasBuffer() bool           { return s.buffer != nil }
func (s *Surface) Mapped() bool              { return s.mapped }
func (s *Surface) Minimized() bool           { return s.minimized }
func (s *Surface) Position() platform.Point  { return s.pos }
func (s *Surface) Parent() platform.WindowID { return s.parent }
func (s *Surface) IsSubsurface() bool        { return s.subsurface }

// Children returns the IDs of child surfaces.
func (s *Surface) Children() []platform.WindowID { return slices.Clone(s.children) }

// Toplevel returns the surface's toplevel role, nil when it has none.
func (s *Surface) Toplevel() *toplevel.Toplevel { return s.role }

// SetMapped shows or hides the surface. Mapping a toplevel puts it on top
// of the stack; unmapping takes it off.
func (s *Surface) SetMapped(mapped bool) {
	if s.mapped == mapped {
		return
	}
	s.mapped = mapped
	if s.role == nil {
		return
	}
	c := s.c
	if mapped {
		if !slices.Contains(c.stack, s.id) {
			c.stack = append(c.stack, s.id)
		}
		c.logger.Info("window mapped", "window", uint32(s.id), "title", s.role.Title())
		return
	}
	if idx := slices.Index(c.stack, s.id); idx >= 0 {
		c.stack = slices.Delete(c.stack, idx, idx+1)
	}
	s.minimized = false
	c.logger.Info("window unmapped", "window", uint32(s.id))
}

// DetachChildren hands children to this surface's parent and detaches the
// surface from its own parent. Subsurface children are unmapped since their
// position was relative to this surface.
func (s *Surface) DetachChildren() {
	c := s.c
	for _, id := range s.children {
		child, ok := c.surfaces[id]
		if !ok {
			continue
		}
		if child.subsurface {
			child.mapped = false
		}
		child.parent = s.parent
		if p, ok := c.surfaces[s.parent]; ok {
			p.children = append(p.children, id)
		}
	}
	s.children = nil

	if p, ok := c.surfaces[s.parent]; ok {
		if idx := slices.Index(p.children, s.id); idx >= 0 {
			p.children = slices.Delete(p.children, idx, idx+1)
		}
	}
	s.parent = 0
}

// commit latches the pending buffer and runs the role's commit.
func (s *Surface) commit() error {
	if s.pendingBuffer != nil {
		if s.pendingBuffer.IsZero() {
			s.buffer = nil
		} else {
			size := *s.pendingBuffer
			s.buffer = &size
		}
		s.pendingBuffer = nil
	}
	if s.role != nil {
		return s.role.Commit()
	}
	if s.subsurface {
		p, ok := s.c.surfaces[s.parent]
		s.mapped = s.buffer != nil && ok && p.mapped
	}
	return nil
}
