package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rvctools/vcinstall/internal/errors"
)

// CopyFile copies a single file from src to dst, preserving the source mode.
// An existing destination file is overwritten.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", src)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat source file %s", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return errors.Wrapf(err, "creating destination file %s", dst)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "copying %s to %s", src, dst)
	}

	return nil
}

// CopyDir recursively copies a directory from src to dst.
// dst is created if it does not exist. Existing destination files are overwritten.
func CopyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "reading directory %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// CopyDirNoClobber recursively copies src into dst, skipping any file whose
// name already exists at the destination. Neither side of a name collision
// is modified. Directories are merged. Returns the number of files copied.
func CopyDirNoClobber(src, dst string) (int, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, errors.Wrapf(err, "creating directory %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, errors.Wrapf(err, "reading directory %s", src)
	}

	copied := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			n, err := CopyDirNoClobber(srcPath, dstPath)
			if err != nil {
				return copied, err
			}
			copied += n
			continue
		}

		if _, err := os.Lstat(dstPath); err == nil {
			// Destination exists: keep it, skip the source copy.
			continue
		} else if !os.IsNotExist(err) {
			return copied, errors.Wrapf(err, "stat %s", dstPath)
		}

		if err := CopyFile(srcPath, dstPath); err != nil {
			return copied, err
		}
		copied++
	}

	return copied, nil
}

// IsDirEmpty reports whether path is an empty directory.
// A missing path is treated as empty.
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	_, err = f.ReadDir(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}
	return false, nil
}

// MoveDir moves a directory from src to dst, preferring os.Rename and
// falling back to copy+remove when the rename crosses filesystems.
func MoveDir(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyDir(src, dst); err != nil {
		return err
	}
	return errors.Wrapf(os.RemoveAll(src), "removing %s after copy", src)
}
