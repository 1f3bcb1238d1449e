package fileops

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ExpandPath expands a leading "~" or "~/" to the user's home directory.
// Other paths, including "~user" forms, are returned unchanged.
//
// Usage example:
//
//	expanded := fileops.ExpandPath("~/Documents/file.txt")
//	// Returns: "/home/user/Documents/file.txt" on Unix systems
func ExpandPath(path string) string {
	return expandHome(path, xdg.Home)
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(home, path[2:])
	}
	return path
}

// CheckReadable verifies that info describes a regular file no larger than
// maxSize bytes. A maxSize of zero or less disables the size limit.
//
// Parameters:
//   - op: Operation name recorded on the returned error
//   - path: Requested path, recorded on the returned error
//   - info: Stat result of the resolved path
//   - maxSize: Maximum allowed file size in bytes
//
// Returns:
//   - error: KindIOError for directories, irregular files and oversized files
func CheckReadable(op, path string, info fs.FileInfo, maxSize int64) error {
	if info.IsDir() {
		return Errorf(op, path, KindIOError, "path is a directory, not a file")
	}
	if !info.Mode().IsRegular() {
		return Errorf(op, path, KindIOError, "not a regular file: %s", info.Mode().Type())
	}
	if maxSize > 0 && info.Size() > maxSize {
		return Errorf(op, path, KindIOError, "file size %d bytes exceeds limit %d bytes", info.Size(), maxSize)
	}
	return nil
}

// Excerpt shortens s to at most n runes for use in error messages.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return fmt.Sprintf("%s...", string(r[:n]))
}
