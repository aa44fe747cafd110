package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// Glyphs from the core cursor font.
const (
	GlyphDefault     = xcursor.LeftPtr
	GlyphMove        = xcursor.Fleur
	GlyphTop         = xcursor.TopSide
	GlyphBottom      = xcursor.BottomSide
	GlyphLeft        = xcursor.LeftSide
	GlyphRight       = xcursor.RightSide
	GlyphTopLeft     = xcursor.TopLeftCorner
	GlyphTopRight    = xcursor.TopRightCorner
	GlyphBottomLeft  = xcursor.BottomLeftCorner
	GlyphBottomRight = xcursor.BottomRightCorner
)

// QueryPointer returns the pointer position relative to the root window.
func (c *Connection) QueryPointer() (int, int, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// SetRootCursor shows the given cursor-font glyph over the root window.
// Cursors are created once per glyph and cached until Close.
func (c *Connection) SetRootCursor(glyph uint16) error {
	cur, ok := c.cursors[glyph]
	if !ok {
		var err error
		cur, err = xcursor.CreateCursor(c.XUtil, glyph)
		if err != nil {
			return fmt.Errorf("create cursor %d: %w", glyph, err)
		}
		c.cursors[glyph] = cur
	}

	err := xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(),
		c.Root,
		xproto.CwCursor,
		[]uint32{uint32(cur)},
	).Check()
	if err != nil {
		return fmt.Errorf("set root cursor: %w", err)
	}
	return nil
}
