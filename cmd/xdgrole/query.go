package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/xdgrole/internal/compositor"
	"github.com/1broseidon/xdgrole/internal/ipc"
	"github.com/1broseidon/xdgrole/internal/runtimepath"
)

// queryFlags are shared by the commands that talk to a running compositor.
type queryFlags struct {
	socket  *string
	jsonOut *bool
}

func newQueryFlags(fs *flag.FlagSet) queryFlags {
	return queryFlags{
		socket:  fs.String("socket", "", "Socket name or absolute path (default: from config)"),
		jsonOut: fs.Bool("json", false, "Print JSON"),
	}
}

func (q queryFlags) client() (*ipc.Client, error) {
	name := *q.socket
	if name == "" {
		res, err := loadConfig("")
		if err != nil {
			return nil, err
		}
		name = res.Config.IPC.SocketName
	}
	socketPath, err := runtimepath.SocketPathFor(name)
	if err != nil {
		return nil, err
	}
	return ipc.NewClientForSocket(socketPath), nil
}

func parseQuery(name, usage string, args []string, nargs int) (*flag.FlagSet, queryFlags, int, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	q := newQueryFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return fs, q, 0, false
		}
		return fs, q, 2, false
	}
	if fs.NArg() != nargs {
		fmt.Fprintf(os.Stderr, "%s takes %d argument(s)\n", name, nargs)
		fs.Usage()
		return fs, q, 2, false
	}
	return fs, q, 0, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	_, q, code, ok := parseQuery("status", "xdgrole status [--socket NAME] [--json]", args, 0)
	if !ok {
		return code
	}
	client, err := q.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *q.jsonOut {
		return printJSON(status)
	}
	fmt.Printf("backend:        %s\n", status.Backend)
	fmt.Printf("clients:        %d\n", status.Clients)
	fmt.Printf("windows:        %d\n", status.Windows)
	fmt.Printf("outputs:        %d\n", status.Outputs)
	fmt.Printf("serial:         %d\n", status.Serial)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runWindows(args []string) int {
	_, q, code, ok := parseQuery("windows", "xdgrole windows [--socket NAME] [--json]", args, 0)
	if !ok {
		return code
	}
	client, err := q.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	windows, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *q.jsonOut {
		return printJSON(windows)
	}
	writeWindows(os.Stdout, windows)
	return 0
}

func writeWindows(w io.Writer, windows []compositor.WindowInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPHASE\tGEOMETRY\tSTATES\tDECORATION\tAPP_ID\tTITLE")
	for _, win := range windows {
		states := strings.Join(win.States, ",")
		if win.Minimized {
			states = strings.TrimPrefix(states+",minimized", ",")
		}
		if states == "" {
			states = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%dx%d+%d+%d\t%s\t%s\t%s\t%s\n",
			win.ID, win.Phase, win.Width, win.Height, win.X, win.Y, states, win.Decoration, win.AppID, win.Title)
	}
	tw.Flush()
}

func runSeat(args []string) int {
	_, q, code, ok := parseQuery("seat", "xdgrole seat [--socket NAME] [--json]", args, 0)
	if !ok {
		return code
	}
	client, err := q.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	seat, err := client.GetSeat()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *q.jsonOut {
		return printJSON(seat)
	}
	fmt.Printf("pointer:         %d,%d\n", seat.PointerX, seat.PointerY)
	fmt.Printf("pointer_focus:   %d\n", seat.PointerFocus)
	fmt.Printf("keyboard_focus:  %d\n", seat.KeyboardFocus)
	fmt.Printf("active_toplevel: %d\n", seat.ActiveToplevel)
	if seat.MoveGrab != 0 {
		fmt.Printf("move_grab:       %d\n", seat.MoveGrab)
	}
	if seat.ResizeGrab != 0 {
		fmt.Printf("resize_grab:     %d (%s)\n", seat.ResizeGrab, seat.ResizeEdge)
	}
	fmt.Printf("cursor:          %s\n", seat.Cursor)
	return 0
}

func runOutputs(args []string) int {
	_, q, code, ok := parseQuery("outputs", "xdgrole outputs [--socket NAME] [--json]", args, 0)
	if !ok {
		return code
	}
	client, err := q.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	outputs, err := client.ListOutputs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *q.jsonOut {
		return printJSON(outputs)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGEOMETRY")
	for _, o := range outputs {
		fmt.Fprintf(tw, "%d\t%s\t%dx%d+%d+%d\n", o.ID, o.Name, o.Width, o.Height, o.X, o.Y)
	}
	tw.Flush()
	return 0
}

func runClose(args []string) int {
	fs, q, code, ok := parseQuery("close", "xdgrole close [--socket NAME] <window-id>", args, 1)
	if !ok {
		return code
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	client, err := q.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.CloseWindow(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}
