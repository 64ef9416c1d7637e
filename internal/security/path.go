package security

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ResolveFile canonicalizes path (absolute form, symlinks and ".."
// resolved) and verifies the target is a readable regular file. Every
// later check operates on the resolved path, never on the raw string,
// which closes directory-traversal and symlink-escape vectors.
func ResolveFile(path string) (string, fs.FileInfo, *ValidationError) {
	if path == "" {
		return "", nil, newError(KindNotFound, "path is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, newError(KindNotFound, "invalid path: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return "", nil, newError(KindNotFound, "file does not exist")
		case errors.Is(err, fs.ErrPermission):
			return "", nil, newError(KindPermissionDenied, "path is not accessible")
		default:
			return "", nil, newError(KindNotFound, "invalid file path: %v", err)
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, newError(KindNotFound, "file does not exist")
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return "", nil, newError(KindNotAFile, "path is not a regular file")
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", nil, newError(KindPermissionDenied, "file is not readable")
		}
		return "", nil, newError(KindPermissionDenied, "file cannot be opened: %v", err)
	}
	_ = f.Close()

	return resolved, info, nil
}

// ResolveDir canonicalizes a directory path, failing if it does not
// exist or is not a directory.
func ResolveDir(path string) (string, *ValidationError) {
	if path == "" {
		return "", newError(KindOutputDirMissing, "directory path is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", newError(KindOutputDirMissing, "invalid directory path: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", newError(KindOutputDirMissing, "directory does not exist")
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", newError(KindOutputDirMissing, "directory does not exist")
	}

	return resolved, nil
}
