package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/xdgrole-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/xdgrole.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}

	custom, err := SocketPathFor("other.sock")
	if err != nil {
		t.Fatalf("SocketPathFor() error: %v", err)
	}
	if custom != filepath.Join(td, "other.sock") {
		t.Fatalf("SocketPathFor() = %q", custom)
	}

	abs := filepath.Join(td, "abs.sock")
	if got, _ := SocketPathFor(abs); got != abs {
		t.Fatalf("SocketPathFor(%q) = %q", abs, got)
	}

	if _, err := SocketPathFor("a/b.sock"); err == nil {
		t.Fatal("SocketPathFor accepted a relative path")
	}
}
