package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	cursors map[uint16]xproto.Cursor
}

// NewConnection establishes a connection to the X11 server. An empty display
// falls back to $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to X display %q: %w", display, err)
	}

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		cursors: make(map[uint16]xproto.Cursor),
	}, nil
}

// Close frees cached cursors and disconnects from the X11 server
func (c *Connection) Close() {
	for _, cur := range c.cursors {
		xproto.FreeCursor(c.XUtil.Conn(), cur)
	}
	c.cursors = nil
	c.XUtil.Conn().Close()
}
