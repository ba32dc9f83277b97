// Package ioutils provides file system utilities for wikimaping.
//
// This package contains functions for:
//   - Directory creation
//   - File copying and moving (cross-device safe)
//   - Collision-free path selection for backups
package ioutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnsureDir creates a directory and all parent directories if they don't
// exist.
//
// Directories are created with mode 0755. If the directory already
// exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// MoveFile moves a file, falling back to copy-and-remove when the rename
// crosses devices (backup directories can live on another mount).
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// UniquePath returns path itself when nothing exists there, otherwise the
// first numbered variant ("name1.jpg", "name2.jpg", ...) that is free.
//
// Returns an error when a hundred variants are all taken - at that point
// something other than normal collisions is going on.
func UniquePath(path string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		return path, nil
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i < 100; i++ {
		candidate := stem + strconv.Itoa(i) + ext
		if _, err := os.Lstat(candidate); err != nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no free variant of %s", path)
}
