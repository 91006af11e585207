package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/rvctools/vcinstall/internal/errors"
)

// AppName is the display name of the application being installed.
const AppName = "Applio"

// DefaultInstallDirName is the directory name used under the home directory
// when no install directory is configured.
const DefaultInstallDirName = "Applio"

// Well-known locations inside an installation, relative to the install root.
const (
	// VenvDir is the virtual environment directory.
	VenvDir = ".venv"

	// DatasetsDir holds user-recorded audio datasets.
	DatasetsDir = "datasets"

	// EmbeddingsDir holds trained index embeddings.
	EmbeddingsDir = "embeddings"

	// WeightsDir holds trained and user-added model weights.
	WeightsDir = "weights"

	// LogsDir holds training logs.
	LogsDir = "logs"

	// PretrainedsDir holds the downloaded base models.
	PretrainedsDir = "rvc/models/pretraineds"

	// ConfigFile is the application's own configuration file.
	ConfigFile = "config.json"

	// LauncherName is the generated launcher script at the install root.
	LauncherName = "run-applio.sh"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// This is a thin wrapper around os.UserHomeDir for consistency.
// Note: It returns an empty string on error. Use ResolveHome for error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On macOS: ~/Library/Application Support
func ConfigHome() string {
	return xdg.ConfigHome
}

// DefaultInstallDir returns the default installation directory, ~/Applio.
func DefaultInstallDir() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, DefaultInstallDirName)
}

// WrapperLogDir returns the directory for launcher and wrapper logs.
// On macOS this is ~/Library/Logs/Applio, matching where the packaged app logs.
func WrapperLogDir() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "Library", "Logs", AppName)
}

// Launcher returns the path of the generated launcher script for an installation.
func Launcher(installDir string) string {
	return filepath.Join(installDir, LauncherName)
}

// Pretraineds returns the pretrained model directory for an installation.
func Pretraineds(installDir string) string {
	return filepath.Join(installDir, PretrainedsDir)
}

// Venv returns the virtual environment directory for an installation.
func Venv(installDir string) string {
	return filepath.Join(installDir, VenvDir)
}

// VenvPython returns the interpreter inside an installation's virtual environment.
func VenvPython(installDir string) string {
	return filepath.Join(installDir, VenvDir, "bin", "python")
}

// VenvPip returns the pip binary inside an installation's virtual environment.
func VenvPip(installDir string) string {
	return filepath.Join(installDir, VenvDir, "bin", "pip")
}
