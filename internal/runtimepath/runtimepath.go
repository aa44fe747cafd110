package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSocketName is the control socket's file name when the
// configuration does not override it.
const DefaultSocketName = "xdgrole.sock"

// Dir returns the runtime directory holding the control socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/xdgrole-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/xdgrole-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the default control socket path.
func SocketPath() (string, error) {
	return SocketPathFor(DefaultSocketName)
}

// SocketPathFor resolves a socket name inside the runtime directory. An
// absolute name is used as is; an empty one selects DefaultSocketName.
func SocketPathFor(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSocketName
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		return "", fmt.Errorf("socket name %q must not contain a path separator", name)
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, name), nil
}
