// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the per-user directory under $HOME.
const DataDirName = ".docmind"

// DataDirEnv overrides the data directory (tests, portable installs).
const DataDirEnv = "DOCMIND_HOME"

// DataDir returns the docmind data directory without creating it.
func DataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

// DataPath joins name onto DataDir.
func DataPath(name string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
