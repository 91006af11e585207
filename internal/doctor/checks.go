package doctor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/rvctools/vcinstall/internal/brew"
	"github.com/rvctools/vcinstall/internal/execx"
)

const (
	// minDiskBytes is the free space below which installation cannot
	// proceed. Torch alone unpacks to several GiB.
	minDiskBytes = 12 << 30

	// recommendedDiskBytes is the free space below which a warning is
	// emitted. Model downloads and PyInstaller staging need headroom.
	recommendedDiskBytes = 25 << 30
)

// OSCheck verifies the host platform is Apple Silicon macOS.
type OSCheck struct {
	goos   string
	goarch string
}

var _ Check = (*OSCheck)(nil)

// NewOSCheck creates an OS check for the current platform.
func NewOSCheck() *OSCheck {
	return &OSCheck{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

func (c *OSCheck) Name() string     { return "operating-system" }
func (c *OSCheck) Category() string { return "system" }

func (c *OSCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"os": c.goos, "arch": c.goarch},
	}

	if c.goos != "darwin" {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("unsupported operating system %s, macOS is required", c.goos)
		return result
	}

	if c.goarch != "arm64" {
		result.Status = SeverityWarning
		result.Message = "running on Intel macOS; MPS acceleration is unavailable"
		return result
	}

	result.Status = SeverityPass
	result.Message = "Apple Silicon macOS"
	return result
}

// XcodeToolsCheck verifies the Xcode command line tools are installed.
type XcodeToolsCheck struct {
	runner execx.Runner
}

var _ Check = (*XcodeToolsCheck)(nil)

// NewXcodeToolsCheck creates an Xcode command line tools check.
func NewXcodeToolsCheck(runner execx.Runner) *XcodeToolsCheck {
	return &XcodeToolsCheck{runner: runner}
}

func (c *XcodeToolsCheck) Name() string     { return "xcode-tools" }
func (c *XcodeToolsCheck) Category() string { return "toolchain" }

func (c *XcodeToolsCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	path, err := c.runner.Output(ctx, execx.Cmd{Name: "xcode-select", Args: []string{"-p"}})
	if err != nil || path == "" {
		result.Status = SeverityError
		result.Message = "Xcode command line tools are not installed"
		result.FixHint = "xcode-select --install"
		return result
	}

	result.Status = SeverityPass
	result.Message = "Xcode command line tools installed"
	result.Details = map[string]any{"path": path}
	return result
}

// BinaryCheck verifies a required binary is resolvable via PATH.
type BinaryCheck struct {
	binary   string
	category string
	fixHint  string
	lookPath func(string) bool
}

var _ Check = (*BinaryCheck)(nil)

// NewBinaryCheck creates a PATH presence check for the named binary.
func NewBinaryCheck(binary, category, fixHint string) *BinaryCheck {
	return &BinaryCheck{
		binary:   binary,
		category: category,
		fixHint:  fixHint,
		lookPath: execx.LookPath,
	}
}

func (c *BinaryCheck) Name() string     { return c.binary }
func (c *BinaryCheck) Category() string { return c.category }

func (c *BinaryCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if !c.lookPath(c.binary) {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%s not found in PATH", c.binary)
		result.FixHint = c.fixHint
		return result
	}

	result.Status = SeverityPass
	result.Message = c.binary + " found"
	return result
}

// NewBrewCheck creates the Homebrew presence check.
func NewBrewCheck() *BinaryCheck {
	return &BinaryCheck{
		binary:   "brew",
		category: "toolchain",
		fixHint:  `/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`,
		lookPath: func(string) bool { return brew.Available() },
	}
}

// DiskSpaceCheck verifies the filesystem holding the installation
// directory has enough free space.
type DiskSpaceCheck struct {
	path   string
	statfs func(path string) (free uint64, err error)
}

var _ Check = (*DiskSpaceCheck)(nil)

// NewDiskSpaceCheck creates a free-space check for the given path.
func NewDiskSpaceCheck(path string) *DiskSpaceCheck {
	return &DiskSpaceCheck{path: path, statfs: freeBytes}
}

func (c *DiskSpaceCheck) Name() string     { return "disk-space" }
func (c *DiskSpaceCheck) Category() string { return "system" }

func (c *DiskSpaceCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	free, err := c.statfs(c.path)
	if err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("cannot determine free space for %s: %v", c.path, err)
		return result
	}

	result.Details = map[string]any{"free_gib": free >> 30, "path": c.path}

	switch {
	case free < minDiskBytes:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("only %d GiB free, at least %d GiB required", free>>30, minDiskBytes>>30)
	case free < recommendedDiskBytes:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d GiB free, %d GiB recommended", free>>30, recommendedDiskBytes>>30)
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d GiB free", free>>30)
	}
	return result
}

// freeBytes reports the free space of the filesystem holding path,
// climbing to the nearest existing ancestor when path does not exist yet.
func freeBytes(path string) (uint64, error) {
	for {
		var st syscall.Statfs_t
		err := syscall.Statfs(path, &st)
		if err == nil {
			return st.Bavail * uint64(st.Bsize), nil
		}
		parent := filepath.Dir(path)
		if parent == path {
			return 0, err
		}
		path = parent
	}
}

// Preflight builds the standard check set for an installation run.
// pythonBinary is the interpreter the virtual environment will be built
// with; installDir is where the application will live.
func Preflight(runner execx.Runner, pythonBinary, installDir string) *Runner {
	r := NewRunner()
	r.AddCheck(NewOSCheck())
	r.AddCheck(NewXcodeToolsCheck(runner))
	r.AddCheck(NewBrewCheck())
	r.AddCheck(NewBinaryCheck("git", "toolchain", "brew install git"))
	r.AddCheck(NewBinaryCheck(pythonBinary, "toolchain", "brew install python@3.10"))
	r.AddCheck(NewDiskSpaceCheck(installDir))
	return r
}
