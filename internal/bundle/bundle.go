// Package bundle packages the installed application into a macOS app bundle.
package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"howett.net/plist"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/paths"
	"github.com/rvctools/vcinstall/pkg/fileutil"
)

const (
	appName    = "Applio"
	appVersion = "3.6.0"
	bundleID   = "com.iahispano.applio"
	entryPoint = "macos_wrapper.py"
	iconFile   = "assets/ICON.ico"

	micUsage  = "Applio needs microphone access to record audio for voice conversion."
	copyright = "Copyright © 2026 IAHispano. All rights reserved."
)

// collectAll lists packages whose data files PyInstaller must bundle wholesale.
var collectAll = []string{
	"torch",
	"torchaudio",
	"gradio",
	"gradio_client",
	"safehttpx",
	"groovy",
}

// hiddenImports lists modules PyInstaller's static analysis misses in the
// scientific stack.
var hiddenImports = []string{
	"uvicorn",
	"uvicorn.logging",
	"uvicorn.loops",
	"uvicorn.loops.auto",
	"uvicorn.protocols",
	"uvicorn.protocols.http",
	"uvicorn.protocols.http.auto",
	"uvicorn.protocols.websockets",
	"uvicorn.protocols.websockets.auto",
	"uvicorn.lifespan",
	"uvicorn.lifespan.on",
	"gradio.networking",
	"gradio.themes",
	"torch",
	"numpy",
	"tensorboard",
	"tensorboardX",
	"passlib.handlers.bcrypt",
	"scipy.signal",
	"scipy.special.cython_special",
	"scipy.linalg.cy_linalg",
	"sklearn.utils._typedefs",
	"fairseq.models.wav2vec.wav2vec2",
	"fairseq.tasks.audio_pretraining",
	"fairseq.modules.checkpoint_activations",
	"fairseq.dataclass.configs",
	"soundfile",
	"_soundfile",
	"webview.platforms.cocoa",
}

// dataMapping is a source path bundled into the app at dest.
type dataMapping struct {
	Source string
	Dest   string
}

var dataMappings = []dataMapping{
	{"assets", "assets"},
	{"logs", "logs"},
	{"rvc", "rvc"},
	{"tabs", "tabs"},
	{"core.py", "."},
	{"app.py", "."},
}

// Builder drives PyInstaller and patches the resulting bundle metadata.
type Builder struct {
	runner      execx.Runner
	logger      *slog.Logger
	sourceDir   string
	pyinstaller string
}

// NewBuilder creates a Builder for the installation at sourceDir. PyInstaller
// is resolved from the installation's virtual environment.
func NewBuilder(runner execx.Runner, logger *slog.Logger, sourceDir string) *Builder {
	return &Builder{
		runner:      runner,
		logger:      logger,
		sourceDir:   sourceDir,
		pyinstaller: filepath.Join(paths.Venv(sourceDir), "bin", "pyinstaller"),
	}
}

// Build runs the full packaging sequence: clean previous output, invoke
// PyInstaller, then patch the bundle's Info.plist. It returns the path to
// the produced .app bundle.
func (b *Builder) Build(ctx context.Context) (string, error) {
	for _, dir := range []string{"dist", "build"} {
		if err := os.RemoveAll(filepath.Join(b.sourceDir, dir)); err != nil {
			return "", errors.Wrapf(err, "cleaning %s", dir)
		}
	}

	b.logger.Info("packaging app bundle", "name", appName, "version", appVersion)

	cmd := execx.Cmd{
		Name: b.pyinstaller,
		Args: b.args(),
		Dir:  b.sourceDir,
	}
	if err := b.runner.Run(ctx, cmd); err != nil {
		return "", errors.Wrap(err, "running pyinstaller")
	}

	appPath := filepath.Join(b.sourceDir, "dist", appName+".app")
	infoPlist := filepath.Join(appPath, "Contents", "Info.plist")

	if _, err := os.Stat(infoPlist); err != nil {
		b.logger.Warn("Info.plist not found, skipping metadata patch", "path", infoPlist)
		return appPath, nil
	}
	if err := patchInfoPlist(infoPlist); err != nil {
		return "", err
	}

	b.logger.Info("app bundle ready", "path", appPath)
	return appPath, nil
}

// args assembles the PyInstaller command line. Data mappings whose source is
// missing are skipped with a warning rather than failing the build.
func (b *Builder) args() []string {
	args := []string{
		entryPoint,
		"--name=" + appName,
		"--windowed",
		"--noconfirm",
		"--clean",
		"--icon=" + iconFile,
	}
	for _, pkg := range collectAll {
		args = append(args, "--collect-all="+pkg)
	}
	args = append(args,
		"--target-arch=arm64",
		"--osx-bundle-identifier="+bundleID,
	)

	for _, d := range dataMappings {
		if _, err := os.Stat(filepath.Join(b.sourceDir, d.Source)); err != nil {
			b.logger.Warn("data source missing, skipping", "source", d.Source)
			continue
		}
		args = append(args, fmt.Sprintf("--add-data=%s:%s", d.Source, d.Dest))
	}

	for _, imp := range hiddenImports {
		args = append(args, "--hidden-import="+imp)
	}
	return args
}

// patchInfoPlist adds the microphone usage description and version metadata
// that PyInstaller does not emit on its own.
func patchInfoPlist(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading Info.plist")
	}

	var info map[string]any
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return errors.Wrap(err, "parsing Info.plist")
	}

	info["NSMicrophoneUsageDescription"] = micUsage
	info["CFBundleShortVersionString"] = appVersion
	info["CFBundleVersion"] = appVersion
	info["NSHumanReadableCopyright"] = copyright

	out, err := plist.MarshalIndent(info, plist.XMLFormat, "\t")
	if err != nil {
		return errors.Wrap(err, "encoding Info.plist")
	}
	if err := fileutil.AtomicWriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(err, "writing Info.plist")
	}
	return nil
}
