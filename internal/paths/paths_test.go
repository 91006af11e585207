package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}

	// Idempotent
	if err := EnsureDir(dir, 0); err != nil {
		t.Errorf("EnsureDir() second call error: %v", err)
	}
}

func TestDefaultInstallDir(t *testing.T) {
	dir := DefaultInstallDir()
	if dir == "" {
		t.Skip("no home directory in test environment")
	}
	if filepath.Base(dir) != DefaultInstallDirName {
		t.Errorf("DefaultInstallDir() = %q, want basename %q", dir, DefaultInstallDirName)
	}
}

func TestVenvPaths(t *testing.T) {
	install := "/opt/applio"

	if got := VenvPython(install); got != "/opt/applio/.venv/bin/python" {
		t.Errorf("VenvPython() = %q", got)
	}
	if got := VenvPip(install); got != "/opt/applio/.venv/bin/pip" {
		t.Errorf("VenvPip() = %q", got)
	}
	if got := Launcher(install); got != "/opt/applio/run-applio.sh" {
		t.Errorf("Launcher() = %q", got)
	}
}

func TestWrapperLogDir(t *testing.T) {
	dir := WrapperLogDir()
	if dir == "" {
		t.Skip("no home directory in test environment")
	}
	if !strings.HasSuffix(dir, filepath.Join("Library", "Logs", AppName)) {
		t.Errorf("WrapperLogDir() = %q", dir)
	}
}
