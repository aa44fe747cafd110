package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

type Source struct {
	Kind   SourceKind
	Name   string // builtin preset, defaults, or environment variable
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source (file or env)
	// OutputPreset is the builtin preset supplying outputs, empty when the
	// outputs were listed explicitly.
	OutputPreset string
	Files        []string // all loaded files, in load order
}

// envOverrides maps environment variables to the key they override.
// Environment values win over every file.
var envOverrides = []struct {
	env  string
	path string
	set  func(*RawConfig, string) error
}{
	{"XDGROLE_LOG_LEVEL", "log_level", func(r *RawConfig, v string) error { r.LogLevel = &v; return nil }},
	{"XDGROLE_BACKEND", "backend", func(r *RawConfig, v string) error { r.Backend = &v; return nil }},
	{"XDGROLE_DISPLAY", "display", func(r *RawConfig, v string) error { r.Display = &v; return nil }},
	{"XDGROLE_DECORATION_MODE", "decoration_mode", func(r *RawConfig, v string) error { r.DecorationMode = &v; return nil }},
	{"XDGROLE_OUTPUT_PRESET", "output_preset", func(r *RawConfig, v string) error { r.OutputPreset = &v; return nil }},
	{"XDGROLE_DOUBLE_CLICK_MS", "double_click_ms", func(r *RawConfig, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not an integer: %q", v)
		}
		r.DoubleClickMs = &n
		return nil
	}},
}

// Load reads the merged configuration from the standard location and returns an
// effective config ready for use by the compositor.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns per-key sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path (missing is fine) plus its includes and the
// environment overrides.
func LoadFromPath(path string) (*LoadResult, error) {
	return loadFromPath(path, os.LookupEnv)
}

func loadFromPath(path string, lookupEnv func(string) (string, bool)) (*LoadResult, error) {
	merged := newLayer()

	_, err := os.Stat(path)
	switch {
	case err == nil:
		files, err := (&includeWalker{seen: make(map[string]bool)}).load(path)
		if err != nil {
			return nil, err
		}
		merged.apply(files)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	env, err := envLayer(lookupEnv)
	if err != nil {
		return nil, err
	}
	merged.apply(env)

	cfg, preset, err := BuildEffectiveConfig(merged.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, attachSourceContext(err, merged.sources)
	}

	return &LoadResult{
		Config:       cfg,
		Sources:      merged.sources,
		OutputPreset: preset,
		Files:        merged.files,
	}, nil
}

// layer is a partial configuration together with where each key came from.
type layer struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
}

func newLayer() layer {
	return layer{sources: make(map[string]Source)}
}

// apply puts top over l. Keys set in top win.
func (l *layer) apply(top layer) {
	l.raw = l.raw.merge(top.raw)
	maps.Copy(l.sources, top.sources)
	l.files = append(l.files, top.files...)
}

func envLayer(lookupEnv func(string) (string, bool)) (layer, error) {
	out := newLayer()
	if lookupEnv == nil {
		return out, nil
	}
	for _, o := range envOverrides {
		v, ok := lookupEnv(o.env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		src := Source{Kind: SourceEnv, Name: o.env}
		if err := o.set(&out.raw, v); err != nil {
			return layer{}, &ValidationError{Path: o.path, Source: src, Err: err}
		}
		out.sources[o.path] = src
	}
	return out, nil
}

// includeWalker loads a file on top of everything it includes. A file
// reached twice is merged once; reaching a file that is still loading is a
// cycle.
type includeWalker struct {
	seen    map[string]bool
	loading []string
}

func (w *includeWalker) load(path string) (layer, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return layer{}, err
	}
	if slices.Contains(w.loading, canon) {
		return layer{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(w.loading, " -> "), canon)
	}
	out := newLayer()
	if w.seen[canon] {
		return out, nil
	}
	w.seen[canon] = true

	data, err := os.ReadFile(canon)
	if err != nil {
		return layer{}, fmt.Errorf("%s: failed to read: %w", canon, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return layer{}, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	own := layer{sources: make(map[string]Source), files: []string{canon}}
	if err := decodeStrict(data, &own.raw); err != nil {
		return layer{}, fmt.Errorf("%s: %w", canon, err)
	}
	root := documentRoot(&doc)
	recordSources(root, canon, "", own.sources)

	w.loading = append(w.loading, canon)
	for _, ref := range includeRefs(root, canon) {
		paths, err := expandInclude(canon, ref.value)
		if err != nil {
			return layer{}, fmt.Errorf("%s:%d:%d: include %q: %w", ref.src.File, ref.src.Line, ref.src.Column, ref.value, err)
		}
		for _, p := range paths {
			inc, err := w.load(p)
			if err != nil {
				return layer{}, err
			}
			out.apply(inc)
		}
	}
	w.loading = w.loading[:len(w.loading)-1]

	out.apply(own)
	return out, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves include against baseFile. A directory expands to
// its *.yaml and *.yml files in name order.
func expandInclude(baseFile, include string) ([]string, error) {
	path, err := resolveInclude(baseFile, include)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, ent.Name()))
		}
	}
	return files, nil
}

func resolveInclude(baseFile, include string) (string, error) {
	switch {
	case include == "":
		return "", errors.New("path is empty")
	case include == "~" || strings.HasPrefix(include, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(include[1:], "/")), nil
	case filepath.IsAbs(include):
		return include, nil
	}
	return filepath.Join(filepath.Dir(baseFile), include), nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

func nodeSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

// recordSources notes the position of every key and sequence item under
// node, keyed by dotted path.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	join := func(key string) string {
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			path := join(node.Content[i].Value)
			val := node.Content[i+1]
			out[path] = nodeSource(file, val)
			recordSources(val, file, path, out)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			path := join(strconv.Itoa(i))
			out[path] = nodeSource(file, item)
			recordSources(item, file, path, out)
		}
	}
}

type includeRef struct {
	value string
	src   Source
}

// includeRefs returns the paths named by the top-level include key, which
// is a single path or a list of paths.
func includeRefs(root *yaml.Node, file string) []includeRef {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var refs []includeRef
		for _, n := range items {
			if n.Kind == yaml.ScalarNode {
				refs = append(refs, includeRef{value: n.Value, src: nodeSource(file, n)})
			}
		}
		return refs
	}
	return nil
}

// attachSourceContext points a validation error at the file position of
// its key, or of the nearest enclosing key.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	for path := verr.Path; ; {
		if src, ok := sources[path]; ok {
			verr.Source = src
			break
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
