// Package launcher generates and runs the application start script.
package launcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/paths"
	"github.com/rvctools/vcinstall/pkg/fileutil"
)

// Env is the explicit environment handed to the launched application.
// Nothing is inherited implicitly; every variable the app depends on is
// listed here and rendered into the launcher script.
type Env struct {
	// MPSFallback enables CPU fallback for tensor operators that the
	// Metal backend does not implement.
	MPSFallback bool

	// MPSHighWatermarkRatio disables the Metal allocator's high
	// watermark when set to "0.0", avoiding OOM aborts on small GPUs.
	MPSHighWatermarkRatio string

	// ThreadLimit caps OMP and MKL thread pools. Zero means unlimited.
	ThreadLimit int

	// DisableForkSafety sets the Objective-C fork-safety override that
	// multiprocessing needs on macOS.
	DisableForkSafety bool

	// AllowDuplicateLibs tolerates the duplicate OpenMP runtime that
	// torch and faiss both bundle.
	AllowDuplicateLibs bool

	// Host and Port are the fixed address the web UI binds to.
	Host string
	Port int
}

// DefaultEnv returns the macOS launch environment for the given address.
func DefaultEnv(host string, port int) Env {
	return Env{
		MPSFallback:           true,
		MPSHighWatermarkRatio: "0.0",
		ThreadLimit:           4,
		DisableForkSafety:     true,
		AllowDuplicateLibs:    true,
		Host:                  host,
		Port:                  port,
	}
}

// Vars renders the environment as sorted KEY=VALUE assignments.
func (e Env) Vars() []string {
	vars := map[string]string{}

	if e.MPSFallback {
		vars["PYTORCH_ENABLE_MPS_FALLBACK"] = "1"
	}
	if e.MPSHighWatermarkRatio != "" {
		vars["PYTORCH_MPS_HIGH_WATERMARK_RATIO"] = e.MPSHighWatermarkRatio
	}
	if e.ThreadLimit > 0 {
		vars["OMP_NUM_THREADS"] = fmt.Sprintf("%d", e.ThreadLimit)
		vars["MKL_NUM_THREADS"] = fmt.Sprintf("%d", e.ThreadLimit)
	}
	if e.DisableForkSafety {
		vars["OBJC_DISABLE_INITIALIZE_FORK_SAFETY"] = "YES"
	}
	if e.AllowDuplicateLibs {
		vars["KMP_DUPLICATE_LIB_OK"] = "TRUE"
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+vars[k])
	}
	return out
}

// Generate writes the launcher script at the installation root with 0755
// permissions. The script activates the virtual environment, exports the
// launch environment, and starts the web UI on the fixed port.
func Generate(installDir string, env Env) (string, error) {
	script := render(installDir, env)
	path := paths.Launcher(installDir)

	if err := fileutil.AtomicWriteFile(path, []byte(script), 0o755); err != nil {
		return "", errors.Wrap(err, "writing launcher script")
	}
	return path, nil
}

func render(installDir string, env Env) string {
	var b strings.Builder

	b.WriteString("#!/bin/bash\n")
	b.WriteString("# Generated by vcinstall. Regenerate with: vcinstall launch\n")
	b.WriteString("set -e\n\n")
	fmt.Fprintf(&b, "cd %q\n\n", installDir)

	fmt.Fprintf(&b, "LOG_DIR=%q\n", paths.WrapperLogDir())
	b.WriteString("mkdir -p \"$LOG_DIR\"\n\n")

	for _, kv := range env.Vars() {
		fmt.Fprintf(&b, "export %s\n", kv)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "source %q\n", paths.Venv(installDir)+"/bin/activate")
	fmt.Fprintf(&b, "python app.py --host %s --port %d 2>&1 | tee -a \"$LOG_DIR/applio.log\"\n", env.Host, env.Port)

	return b.String()
}

// Run executes the generated launcher script, blocking until the
// application exits.
func Run(ctx context.Context, runner execx.Runner, installDir string) error {
	cmd := execx.Cmd{Name: paths.Launcher(installDir), Dir: installDir}
	if err := runner.Run(ctx, cmd); err != nil {
		return errors.Wrap(err, "running launcher")
	}
	return nil
}
