// Package output writes generated files below the output directory.
//
// Every write goes through a temporary file in the destination directory
// followed by a rename, so readers never observe a half-written page.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileMode is the permission used for generated site files, which must be
// readable by the web server.
const FileMode = 0o644

// ErrPathEscapesRoot is returned when a relative path resolves outside the root.
var ErrPathEscapesRoot = errors.New("output path escapes output directory")

// Resolve joins root and rel, rejecting absolute paths and traversal.
func Resolve(root, rel string) (string, error) {
	if root == "" {
		return "", errors.New("output directory is required")
	}
	if rel == "" {
		return "", errors.New("output path is required")
	}

	cleanRel := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}

	full := filepath.Join(root, cleanRel)
	r, err := filepath.Rel(root, full)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}
	return full, nil
}

// WriteFile writes content to root/rel atomically and returns the full path.
// Parent directories are created as needed.
func WriteFile(root, rel string, content []byte) (string, error) {
	full, err := Resolve(root, rel)
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(full, content); err != nil {
		return "", err
	}
	return full, nil
}

// WriteFileAtomic writes content to path through a temporary sibling file
// and a rename.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, FileMode); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
