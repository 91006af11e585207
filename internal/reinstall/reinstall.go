package reinstall

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/paths"
	"github.com/rvctools/vcinstall/pkg/fileutil"
)

// moveCategories are user-data subdirectories restored by moving the
// backup's copy back into the fresh clone. Order is cosmetic.
var moveCategories = []string{
	paths.DatasetsDir,
	paths.EmbeddingsDir,
	paths.LogsDir,
}

// Manager preserves user-generated data across a destructive reinstall.
//
// The lifecycle is: Backup renames the existing installation aside, the
// caller performs a fresh clone into the original path, Restore moves or
// merges each user-data category back, and Cleanup removes the backup
// directory. Cleanup runs unconditionally at the end of the same run;
// no durable backup is retained.
type Manager struct {
	installDir string
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager for the given installation directory.
func NewManager(installDir string, opts ...Option) *Manager {
	m := &Manager{
		installDir: installDir,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result summarizes a restore pass.
type Result struct {
	// Restored lists categories moved back from the backup.
	Restored []string

	// Skipped lists categories that were empty, missing, or unsafe.
	Skipped []string

	// MergedWeights is the number of weight files merged without clobber.
	MergedWeights int
}

// Backup renames the existing installation to a timestamped sibling
// directory and returns its path. The suffix is uniquified on collision.
// If the installation directory does not exist, Backup returns "" and no
// error: the caller proceeds with a plain clone.
func (m *Manager) Backup() (string, error) {
	if _, err := os.Stat(m.installDir); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "stat %s", m.installDir)
	}

	stamp := m.now().Format("20060102T150405")
	backupDir := m.installDir + ".backup-" + stamp
	for i := 1; ; i++ {
		if _, err := os.Stat(backupDir); os.IsNotExist(err) {
			break
		}
		backupDir = m.installDir + ".backup-" + stamp + "-" + strconv.Itoa(i)
	}

	if err := os.Rename(m.installDir, backupDir); err != nil {
		return "", errors.Wrap(err, "moving installation aside")
	}

	m.logger.Info("existing installation backed up", "backup", backupDir)
	return backupDir, nil
}

// Restore moves user-data categories from backupDir back into the fresh
// installation. Individual category failures are logged and skipped, never
// rolled back. The weights category is merged copy-without-clobber so the
// fresh clone's default models survive alongside user-added ones.
func (m *Manager) Restore(backupDir string) *Result {
	res := &Result{}

	for _, cat := range moveCategories {
		src := filepath.Join(backupDir, cat)
		dst := filepath.Join(m.installDir, cat)

		empty, err := fileutil.IsDirEmpty(src)
		if err != nil {
			m.logger.Warn("skipping category", "category", cat, "error", err)
			res.Skipped = append(res.Skipped, cat)
			continue
		}
		if empty {
			res.Skipped = append(res.Skipped, cat)
			continue
		}

		if err := SafeDestination(dst); err != nil {
			m.logger.Warn("unsafe restore destination, category skipped",
				"category", cat, "dest", dst, "error", err)
			res.Skipped = append(res.Skipped, cat)
			continue
		}

		// The fresh clone may ship a placeholder directory; replace it.
		if err := os.RemoveAll(dst); err != nil {
			m.logger.Warn("could not clear destination", "category", cat, "error", err)
			res.Skipped = append(res.Skipped, cat)
			continue
		}
		if err := fileutil.MoveDir(src, dst); err != nil {
			m.logger.Warn("restore failed", "category", cat, "error", err)
			res.Skipped = append(res.Skipped, cat)
			continue
		}
		res.Restored = append(res.Restored, cat)
	}

	m.mergeWeights(backupDir, res)
	m.restoreConfig(backupDir)

	return res
}

// mergeWeights merges the backup's weights into the fresh clone without
// overwriting either side on a name collision.
func (m *Manager) mergeWeights(backupDir string, res *Result) {
	src := filepath.Join(backupDir, paths.WeightsDir)
	dst := filepath.Join(m.installDir, paths.WeightsDir)

	empty, err := fileutil.IsDirEmpty(src)
	if err != nil || empty {
		res.Skipped = append(res.Skipped, paths.WeightsDir)
		return
	}

	if err := SafeDestination(dst); err != nil {
		m.logger.Warn("unsafe weights destination, merge skipped", "dest", dst, "error", err)
		res.Skipped = append(res.Skipped, paths.WeightsDir)
		return
	}

	n, err := fileutil.CopyDirNoClobber(src, dst)
	if err != nil {
		m.logger.Warn("weights merge incomplete", "error", err)
	}
	res.MergedWeights = n
}

// restoreConfig copies the application config file back if the backup has one.
// Best-effort: a missing or unreadable config never aborts the flow.
func (m *Manager) restoreConfig(backupDir string) {
	src := filepath.Join(backupDir, paths.ConfigFile)
	if _, err := os.Stat(src); err != nil {
		return
	}
	dst := filepath.Join(m.installDir, paths.ConfigFile)
	if err := fileutil.CopyFile(src, dst); err != nil {
		m.logger.Warn("config restore failed", "error", err)
	}
}

// Cleanup removes the backup directory. It runs whether or not individual
// restores succeeded.
func (m *Manager) Cleanup(backupDir string) error {
	if backupDir == "" {
		return nil
	}
	if err := os.RemoveAll(backupDir); err != nil {
		return errors.Wrap(err, "removing backup directory")
	}
	m.logger.Info("backup directory removed", "backup", backupDir)
	return nil
}

// SafeDestination rejects restore destinations that would make a
// destructive operation dangerous: the empty string, the filesystem
// root, and a volume root.
func SafeDestination(dest string) error {
	if dest == "" {
		return errors.Wrap(errors.ErrUnsafePath, "empty destination")
	}
	clean := filepath.Clean(dest)
	if clean == "/" || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return errors.Wrapf(errors.ErrUnsafePath, "refusing to operate on %q", clean)
	}
	return nil
}
