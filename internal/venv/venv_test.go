package venv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/logging"
	"github.com/rvctools/vcinstall/internal/paths"
)

func TestCreate(t *testing.T) {
	install := t.TempDir()
	f := execx.NewFake()
	b := NewBuilder(f, logging.NewDiscard(), install, "python3.10")

	if err := b.Create(context.Background()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	want := "python3.10 -m venv " + paths.Venv(install)
	if !f.Ran(want) {
		t.Errorf("invocations = %v, want %q", f.CommandLines(), want)
	}
}

func TestCreate_SkipsExisting(t *testing.T) {
	install := t.TempDir()
	// Simulate an existing venv interpreter.
	python := paths.VenvPython(install)
	if err := os.MkdirAll(filepath.Dir(python), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(python, []byte("#!"), 0o755); err != nil {
		t.Fatal(err)
	}

	f := execx.NewFake()
	b := NewBuilder(f, logging.ForTest(t), install, "python3.10")

	if err := b.Create(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.Calls) != 0 {
		t.Errorf("existing venv should not be recreated: %v", f.CommandLines())
	}
}

func TestInstallPins_OrderPreserved(t *testing.T) {
	install := t.TempDir()
	f := execx.NewFake()
	b := NewBuilder(f, logging.NewDiscard(), install, "python3.10")

	pins := []string{"numpy==1.23.5", "torch==2.2.2", "torchaudio==2.2.2", "faiss-cpu==1.7.3"}
	if err := b.InstallPins(context.Background(), pins); err != nil {
		t.Fatalf("InstallPins() error: %v", err)
	}

	lines := f.CommandLines()
	if len(lines) != len(pins) {
		t.Fatalf("got %d invocations, want %d", len(lines), len(pins))
	}
	for i, pin := range pins {
		if !strings.HasSuffix(lines[i], "install "+pin) {
			t.Errorf("invocation %d = %q, want pin %q", i, lines[i], pin)
		}
	}
}

func TestInstallPins_FailFast(t *testing.T) {
	install := t.TempDir()
	f := execx.NewFake()
	f.Errors[paths.VenvPip(install)+" install torch"] = errors.ErrCommandFailed
	b := NewBuilder(f, logging.NewDiscard(), install, "python3.10")

	err := b.InstallPins(context.Background(), []string{"numpy==1.23.5", "torch==2.2.2", "faiss-cpu==1.7.3"})
	if err == nil {
		t.Fatal("expected error")
	}
	// numpy ran, torch failed, faiss must not have been attempted.
	if len(f.Calls) != 2 {
		t.Errorf("got %d invocations, want 2 (fail-fast): %v", len(f.Calls), f.CommandLines())
	}
}

func TestInstallRequirements(t *testing.T) {
	install := t.TempDir()
	f := execx.NewFake()
	b := NewBuilder(f, logging.NewDiscard(), install, "python3.10")

	req := filepath.Join(install, "requirements_macos.txt")
	if err := b.InstallRequirements(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if !f.Ran(paths.VenvPip(install) + " install -r " + req) {
		t.Errorf("invocations = %v", f.CommandLines())
	}
}

func TestUpgradeTooling(t *testing.T) {
	install := t.TempDir()
	f := execx.NewFake()
	b := NewBuilder(f, logging.NewDiscard(), install, "python3.10")

	if err := b.UpgradeTooling(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !f.Ran(paths.VenvPip(install) + " install --upgrade pip setuptools wheel") {
		t.Errorf("invocations = %v", f.CommandLines())
	}
}
