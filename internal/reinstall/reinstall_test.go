package reinstall

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/logging"
	"github.com/rvctools/vcinstall/internal/paths"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// seedInstall creates an installation with populated user-data categories.
func seedInstall(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, paths.DatasetsDir, "voice1", "rec.wav"), "audio")
	writeFile(t, filepath.Join(dir, paths.EmbeddingsDir, "voice1.index"), "index")
	writeFile(t, filepath.Join(dir, paths.LogsDir, "train.log"), "log")
	writeFile(t, filepath.Join(dir, paths.WeightsDir, "voice1.pth"), "weights")
	writeFile(t, filepath.Join(dir, paths.ConfigFile), `{"theme":"dark"}`)
}

// seedFreshClone simulates the state after a fresh clone: empty category
// placeholders plus a default weight file.
func seedFreshClone(t *testing.T, dir string) {
	t.Helper()
	for _, cat := range []string{paths.DatasetsDir, paths.EmbeddingsDir, paths.LogsDir} {
		if err := os.MkdirAll(filepath.Join(dir, cat), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(dir, paths.WeightsDir, "default.pth"), "shipped")
}

func TestBackup_MissingInstall(t *testing.T) {
	install := filepath.Join(t.TempDir(), "Applio")
	m := NewManager(install, WithLogger(logging.NewDiscard()))

	backupDir, err := m.Backup()
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}
	if backupDir != "" {
		t.Errorf("Backup() = %q, want empty for missing install", backupDir)
	}
}

func TestBackup_RenamesAside(t *testing.T) {
	root := t.TempDir()
	install := filepath.Join(root, "Applio")
	seedInstall(t, install)

	m := NewManager(install, WithLogger(logging.ForTest(t)))
	backupDir, err := m.Backup()
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}

	if _, err := os.Stat(install); !os.IsNotExist(err) {
		t.Error("install dir should be gone after backup")
	}
	if readFile(t, filepath.Join(backupDir, paths.LogsDir, "train.log")) != "log" {
		t.Error("backup missing user data")
	}
}

func TestBackup_CollisionUniquified(t *testing.T) {
	root := t.TempDir()
	install := filepath.Join(root, "Applio")
	fixed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	m := NewManager(install,
		WithLogger(logging.NewDiscard()),
		WithClock(func() time.Time { return fixed }))

	seedInstall(t, install)
	first, err := m.Backup()
	if err != nil {
		t.Fatal(err)
	}

	seedInstall(t, install)
	second, err := m.Backup()
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Errorf("backup paths collided: %s", first)
	}
}

func TestCleanReinstall_PreservesUserData(t *testing.T) {
	root := t.TempDir()
	install := filepath.Join(root, "Applio")
	seedInstall(t, install)

	m := NewManager(install, WithLogger(logging.ForTest(t)))

	backupDir, err := m.Backup()
	if err != nil {
		t.Fatal(err)
	}
	seedFreshClone(t, install)

	res := m.Restore(backupDir)
	if err := m.Cleanup(backupDir); err != nil {
		t.Fatal(err)
	}

	// Categories restored identically.
	if readFile(t, filepath.Join(install, paths.DatasetsDir, "voice1", "rec.wav")) != "audio" {
		t.Error("datasets not restored")
	}
	if readFile(t, filepath.Join(install, paths.EmbeddingsDir, "voice1.index")) != "index" {
		t.Error("embeddings not restored")
	}
	if readFile(t, filepath.Join(install, paths.LogsDir, "train.log")) != "log" {
		t.Error("logs not restored")
	}
	if len(res.Restored) != 3 {
		t.Errorf("Restored = %v", res.Restored)
	}

	// Weights are the union: user file plus the shipped default.
	if readFile(t, filepath.Join(install, paths.WeightsDir, "voice1.pth")) != "weights" {
		t.Error("user weights missing after merge")
	}
	if readFile(t, filepath.Join(install, paths.WeightsDir, "default.pth")) != "shipped" {
		t.Error("shipped default weights overwritten")
	}
	if res.MergedWeights != 1 {
		t.Errorf("MergedWeights = %d, want 1", res.MergedWeights)
	}

	// Config restored.
	if readFile(t, filepath.Join(install, paths.ConfigFile)) != `{"theme":"dark"}` {
		t.Error("config not restored")
	}

	// Backup gone afterward.
	if _, err := os.Stat(backupDir); !os.IsNotExist(err) {
		t.Error("backup directory should be removed")
	}
}

func TestRestore_WeightsCollisionKeepsBothSides(t *testing.T) {
	root := t.TempDir()
	install := filepath.Join(root, "Applio")
	writeFile(t, filepath.Join(install, paths.WeightsDir, "shared.pth"), "old user copy")

	m := NewManager(install, WithLogger(logging.NewDiscard()))
	backupDir, err := m.Backup()
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(install, paths.WeightsDir, "shared.pth"), "fresh clone copy")

	m.Restore(backupDir)

	if got := readFile(t, filepath.Join(install, paths.WeightsDir, "shared.pth")); got != "fresh clone copy" {
		t.Errorf("collision overwrote destination: %q", got)
	}
}

func TestRestore_EmptyCategorySkipped(t *testing.T) {
	root := t.TempDir()
	install := filepath.Join(root, "Applio")
	// Only logs are populated; datasets dir exists but is empty.
	writeFile(t, filepath.Join(install, paths.LogsDir, "train.log"), "log")
	if err := os.MkdirAll(filepath.Join(install, paths.DatasetsDir), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewManager(install, WithLogger(logging.NewDiscard()))
	backupDir, err := m.Backup()
	if err != nil {
		t.Fatal(err)
	}
	seedFreshClone(t, install)

	res := m.Restore(backupDir)

	found := false
	for _, cat := range res.Skipped {
		if cat == paths.DatasetsDir {
			found = true
		}
	}
	if !found {
		t.Errorf("empty datasets should be in Skipped, got %v", res.Skipped)
	}
	for _, cat := range res.Restored {
		if cat == paths.DatasetsDir {
			t.Error("empty datasets should not be restored")
		}
	}
}

func TestCleanup_EmptyBackupDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "Applio"), WithLogger(logging.NewDiscard()))
	if err := m.Cleanup(""); err != nil {
		t.Errorf("Cleanup(\"\") should be a no-op: %v", err)
	}
}

func TestSafeDestination(t *testing.T) {
	tests := []struct {
		dest    string
		wantErr bool
	}{
		{"", true},
		{"/", true},
		{"//", true},
		{"/Users/me/Applio/datasets", false},
		{"relative/path", false},
	}

	for _, tt := range tests {
		err := SafeDestination(tt.dest)
		if (err != nil) != tt.wantErr {
			t.Errorf("SafeDestination(%q) error = %v, wantErr %v", tt.dest, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrUnsafePath) {
			t.Errorf("SafeDestination(%q) should wrap ErrUnsafePath", tt.dest)
		}
	}
}
