package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// IsSymlink checks if a given path is a symbolic link.
// This function uses lstat to examine the file without following symlinks.
//
// Parameters:
//   - path: File path to check
//
// Returns:
//   - bool: true if the path is a symbolic link, false otherwise
//   - error: File system access errors
//
// Usage example:
//
//	isLink, err := fileops.IsSymlink("/path/to/potential/symlink")
//	if err != nil {
//	    return fmt.Errorf("failed to check symlink: %w", err)
//	}
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// ResolveSymlink resolves a symbolic link and returns the final target path.
// Chains are followed until a non-symlink target is reached. The returned
// error wraps the filesystem error, so errors.Is(err, fs.ErrNotExist)
// identifies a broken link.
func ResolveSymlink(linkPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlink: %w", err)
	}
	return resolved, nil
}

// GetSymlinkTarget returns the immediate target of a symbolic link without resolving
// the full chain. The target may be relative to the link's directory.
//
// Usage example:
//
//	target, err := fileops.GetSymlinkTarget("/path/to/symlink")
//	if err != nil {
//	    return fmt.Errorf("failed to read symlink target: %w", err)
//	}
func GetSymlinkTarget(linkPath string) (string, error) {
	isLink, err := IsSymlink(linkPath)
	if err != nil {
		return "", fmt.Errorf("cannot verify symlink: %w", err)
	}
	if !isLink {
		return "", fmt.Errorf("path is not a symbolic link: %s", linkPath)
	}

	target, err := os.Readlink(linkPath)
	if err != nil {
		return "", fmt.Errorf("failed to read symlink: %w", err)
	}

	return target, nil
}
