// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

// Package fsutil provides filesystem helpers for the identity data
// directory. Identity files hold encrypted secret keys, so everything
// is owner-only (0600 files, 0700 dirs) regardless of umask.
package fsutil

import (
	"os"
)

// DataDirPerm is the permission mode for data directories.
const DataDirPerm os.FileMode = 0700

// DataFilePerm is the permission mode for identity files.
const DataFilePerm os.FileMode = 0600

// MkdirAll creates a directory and all parents with owner-only permissions.
// Unlike os.MkdirAll, this explicitly sets permissions after creation to
// bypass umask restrictions.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, DataDirPerm); err != nil {
		return err
	}
	return os.Chmod(path, DataDirPerm)
}

// WriteFileAtomic writes data to path via a temp-file rename so a crash
// mid-write never leaves a truncated file behind. The file ends up with
// owner-only permissions.
func WriteFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, DataFilePerm); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, DataFilePerm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
