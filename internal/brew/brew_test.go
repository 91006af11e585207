package brew

import (
	"context"
	"testing"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/logging"
)

func TestInstall_NoFormulas(t *testing.T) {
	f := execx.NewFake()
	c := NewClient(f, logging.NewDiscard())

	if err := c.Install(context.Background()); err != nil {
		t.Fatalf("Install() with no formulas should be a no-op: %v", err)
	}
	if len(f.Calls) != 0 {
		t.Errorf("expected no brew invocations, got %v", f.CommandLines())
	}
}

func TestInstall_SingleInvocation(t *testing.T) {
	f := execx.NewFake()
	c := NewClient(f, logging.ForTest(t))

	if err := c.Install(context.Background(), "git", "wget", "ffmpeg"); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if !f.Ran("brew install git wget ffmpeg") {
		t.Errorf("unexpected invocations: %v", f.CommandLines())
	}
}

func TestInstall_FailFast(t *testing.T) {
	f := execx.NewFake()
	f.Errors["brew install"] = errors.ErrCommandFailed
	c := NewClient(f, logging.NewDiscard())

	if err := c.Install(context.Background(), "ffmpeg"); err == nil {
		t.Fatal("expected error when brew install fails")
	}
}

func TestPrefix(t *testing.T) {
	f := execx.NewFake()
	f.Outputs["brew --prefix python@3.10"] = "/opt/homebrew/opt/python@3.10"
	c := NewClient(f, logging.NewDiscard())

	prefix, err := c.Prefix(context.Background(), "python@3.10")
	if err != nil {
		t.Fatalf("Prefix() error: %v", err)
	}
	if prefix != "/opt/homebrew/opt/python@3.10" {
		t.Errorf("Prefix() = %q", prefix)
	}
}

func TestPrefix_Empty(t *testing.T) {
	f := execx.NewFake()
	c := NewClient(f, logging.NewDiscard())

	if _, err := c.Prefix(context.Background(), "python@3.10"); err == nil {
		t.Fatal("expected error for empty prefix output")
	}
}
