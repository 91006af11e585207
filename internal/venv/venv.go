// Package venv builds the application's isolated Python environment.
package venv

import (
	"context"
	"log/slog"
	"os"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/paths"
)

// Builder creates a virtual environment and installs packages into it.
type Builder struct {
	runner     execx.Runner
	logger     *slog.Logger
	installDir string
	python     string // interpreter used to create the venv
}

// NewBuilder creates a Builder. python is the interpreter that seeds the
// virtual environment, e.g. /opt/homebrew/opt/python@3.10/bin/python3.10.
func NewBuilder(runner execx.Runner, logger *slog.Logger, installDir, python string) *Builder {
	return &Builder{
		runner:     runner,
		logger:     logger,
		installDir: installDir,
		python:     python,
	}
}

// Create creates the virtual environment if it does not already exist.
func (b *Builder) Create(ctx context.Context) error {
	venvDir := paths.Venv(b.installDir)
	if _, err := os.Stat(paths.VenvPython(b.installDir)); err == nil {
		b.logger.Debug("virtual environment already exists", "dir", venvDir)
		return nil
	}

	b.logger.Info("creating virtual environment", "dir", venvDir)
	cmd := execx.Cmd{Name: b.python, Args: []string{"-m", "venv", venvDir}}
	if err := b.runner.Run(ctx, cmd); err != nil {
		return errors.Wrap(err, "creating virtual environment")
	}
	return nil
}

// UpgradeTooling upgrades pip, setuptools, and wheel inside the venv so
// native-extension builds use current packaging tooling.
func (b *Builder) UpgradeTooling(ctx context.Context) error {
	cmd := execx.Cmd{
		Name: paths.VenvPip(b.installDir),
		Args: []string{"install", "--upgrade", "pip", "setuptools", "wheel"},
		Dir:  b.installDir,
	}
	if err := b.runner.Run(ctx, cmd); err != nil {
		return errors.Wrap(err, "upgrading pip tooling")
	}
	return nil
}

// InstallPins installs the pinned requirement specifiers one at a time,
// in order. The order is load-bearing: numpy must be present before torch
// builds its extensions, and torch before anything importing it at build
// time. Installing the filtered manifest afterwards leaves these versions
// in place because pip sees the pins as already satisfied.
func (b *Builder) InstallPins(ctx context.Context, pins []string) error {
	for _, pin := range pins {
		b.logger.Info("installing pinned package", "pin", pin)
		cmd := execx.Cmd{
			Name: paths.VenvPip(b.installDir),
			Args: []string{"install", pin},
			Dir:  b.installDir,
		}
		if err := b.runner.Run(ctx, cmd); err != nil {
			return errors.Wrapf(err, "installing pin %s", pin)
		}
	}
	return nil
}

// InstallRequirements installs the filtered manifest. Must run after
// InstallPins.
func (b *Builder) InstallRequirements(ctx context.Context, reqPath string) error {
	b.logger.Info("installing requirements", "manifest", reqPath)
	cmd := execx.Cmd{
		Name: paths.VenvPip(b.installDir),
		Args: []string{"install", "-r", reqPath},
		Dir:  b.installDir,
	}
	if err := b.runner.Run(ctx, cmd); err != nil {
		return errors.Wrap(err, "installing requirements")
	}
	return nil
}
