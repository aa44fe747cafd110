// Package scenario scripts clients and pointer input against a compositor.
//
// A scenario file is YAML:
//
//	name: drag a window
//	steps:
//	  - do: connect
//	    client: editor
//	  - do: surface
//	    client: editor
//	    surface: main
//	  - do: toplevel
//	    surface: main
//	  - do: commit
//	    surface: main
//	  - do: respond
//	    surface: main
//	    size: 800x600
//	  - do: expect
//	    surface: main
//	    expect:
//	      phase: mapped
//	      states: [activated]
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xdgrole/internal/platform"
	"github.com/1broseidon/xdgrole/internal/toplevel"
)

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Only the fields the action uses are read.
type Step struct {
	Do      string `yaml:"do"`
	Client  string `yaml:"client,omitempty"`
	Surface string `yaml:"surface,omitempty"`
	Parent  string `yaml:"parent,omitempty"`

	Request string `yaml:"request,omitempty"`
	Text    string `yaml:"text,omitempty"`
	Edge    string `yaml:"edge,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
	Output  string `yaml:"output,omitempty"`

	// Size is "WxH"; At is "X,Y".
	Size string `yaml:"size,omitempty"`
	At   string `yaml:"at,omitempty"`

	// Wait advances the input clock, in milliseconds, before the step runs.
	Wait uint32 `yaml:"wait,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists assertions on a window and the seat. Unset fields are not
// checked.
type Expect struct {
	Phase      string   `yaml:"phase,omitempty"`
	States     []string `yaml:"states,omitempty"`
	Size       string   `yaml:"size,omitempty"`
	Position   string   `yaml:"position,omitempty"`
	Title      string   `yaml:"title,omitempty"`
	AppID      string   `yaml:"app_id,omitempty"`
	Decoration string   `yaml:"decoration,omitempty"`
	Minimized  *bool    `yaml:"minimized,omitempty"`
	Focused    *bool    `yaml:"focused,omitempty"`
	Closed     *bool    `yaml:"closed,omitempty"`
	Exists     *bool    `yaml:"exists,omitempty"`
	Cursor     string   `yaml:"cursor,omitempty"`

	// ClientGone checks whether the step's client was disconnected.
	ClientGone *bool `yaml:"client_gone,omitempty"`
}

// Parse decodes a scenario, rejecting unknown keys.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario is empty")
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario has no steps")
	}
	for i, st := range sc.Steps {
		if _, ok := actions[st.Do]; !ok {
			return nil, fmt.Errorf("step %d: unknown action %q", i+1, st.Do)
		}
	}
	return &sc, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

func parseSize(s string) (platform.Size, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return platform.Size{}, fmt.Errorf("size %q is not WxH", s)
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width < 0 || height < 0 {
		return platform.Size{}, fmt.Errorf("size %q is not WxH", s)
	}
	return platform.Size{Width: width, Height: height}, nil
}

func parsePoint(s string) (platform.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return platform.Point{}, fmt.Errorf("point %q is not X,Y", s)
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(xs))
	y, err2 := strconv.Atoi(strings.TrimSpace(ys))
	if err1 != nil || err2 != nil {
		return platform.Point{}, fmt.Errorf("point %q is not X,Y", s)
	}
	return platform.Point{X: x, Y: y}, nil
}

var edges = []toplevel.ResizeEdge{
	toplevel.EdgeNone, toplevel.EdgeTop, toplevel.EdgeBottom, toplevel.EdgeLeft,
	toplevel.EdgeTopLeft, toplevel.EdgeBottomLeft, toplevel.EdgeRight,
	toplevel.EdgeTopRight, toplevel.EdgeBottomRight,
}

func parseEdge(s string) (toplevel.ResizeEdge, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, e := range edges {
		if e.String() == name {
			return e, nil
		}
	}
	return toplevel.EdgeNone, fmt.Errorf("unknown edge %q", s)
}
