package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// AtomicCopy performs an atomic file copy operation from source to destination.
// The operation is atomic at the filesystem level - the destination file either
// appears fully copied or not at all.
//
// The function uses a temporary file approach:
//  1. Creates a uniquely named temporary file in the destination directory
//  2. Copies all data to the temporary file
//  3. Syncs data to disk to ensure durability
//  4. Atomically renames the temporary file to the final destination
//
// Parameters:
//   - srcPath: Absolute path to the source file
//   - destPath: Absolute path to the destination file
//
// Returns:
//   - error: Copy operation errors, including source access, destination creation,
//     or filesystem errors
//
// Both paths must already be validated by a Guard. The destination keeps the
// permission bits of the source.
//
// Usage example:
//
//	if err := fileops.AtomicCopy("/path/to/source.txt", "/path/to/dest.txt"); err != nil {
//	    log.Fatalf("Copy failed: %v", err)
//	}
func AtomicCopy(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	if srcInfo.IsDir() {
		return fmt.Errorf("source is a directory: %s", srcPath)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	var copySuccess bool
	defer func() {
		tempFile.Close()
		if !copySuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(tempFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err := tempFile.Chmod(srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// Atomic rename - this is the atomic operation
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	copySuccess = true
	return nil
}

// CopyTree copies the directory srcDir to destDir, which must not exist.
// Files and directories keep their permission bits. Symlinks are recreated
// with the same target and never followed. On failure the partially written
// destDir is removed.
func CopyTree(srcDir, destDir string) error {
	if IsDescendant(srcDir, destDir) {
		return fmt.Errorf("cannot copy %s into its own subtree %s", srcDir, destDir)
	}
	if _, err := os.Lstat(destDir); err == nil {
		return fmt.Errorf("destination already exists: %s: %w", destDir, fs.ErrExist)
	}

	if err := copyTree(srcDir, destDir); err != nil {
		os.RemoveAll(destDir)
		return fmt.Errorf("failed to copy directory %s: %w", srcDir, err)
	}
	return nil
}

func copyTree(srcDir, destDir string) error {
	type dirMode struct {
		path string
		mode fs.FileMode
	}
	var dirs []dirMode

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			// Owner access until the contents are copied.
			if err := os.Mkdir(target, 0700); err != nil {
				return err
			}
			dirs = append(dirs, dirMode{path: target, mode: info.Mode().Perm()})
		case d.Type()&fs.ModeSymlink != 0:
			return CopySymlink(path, target)
		case d.Type().IsRegular():
			return AtomicCopy(path, target)
		default:
			return fmt.Errorf("unsupported file type %s: %s", info.Mode().Type(), path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Deepest first, so a read-only parent does not block its children.
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chmod(dirs[i].path, dirs[i].mode); err != nil {
			return err
		}
	}
	return nil
}

// CopySymlink creates destPath as a symlink with the same target text as
// srcPath. Relative targets stay relative.
func CopySymlink(srcPath, destPath string) error {
	target, err := os.Readlink(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read symlink: %w", err)
	}
	if err := os.Symlink(target, destPath); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

// IsDescendant reports whether target lies strictly below dir. Both paths must
// be absolute and clean.
func IsDescendant(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// EnsureDirectoryExists creates rel and all missing parents inside root, one
// segment at a time, so every step is confined to root. It is the
// root-confined equivalent of `mkdir -p` and is safe to call repeatedly.
//
// Parameters:
//   - root: Open root the directory is created in
//   - rel: Slash- or separator-delimited path relative to root
//
// Returns:
//   - bool: true if at least one directory was created
//   - error: creation errors; an existing non-directory segment wraps
//     syscall.ENOTDIR
//
// New directories get 0755 permissions (subject to umask).
func EnsureDirectoryExists(root *os.Root, rel string) (bool, error) {
	rel = filepath.Clean(rel)
	if rel == "." {
		return false, nil
	}

	created := false
	cur := ""
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		if segment == "" {
			continue
		}
		cur = filepath.Join(cur, segment)

		err := root.Mkdir(cur, 0755)
		if err == nil {
			created = true
			continue
		}
		if !errors.Is(err, fs.ErrExist) {
			return created, fmt.Errorf("failed to create directory %s: %w", cur, err)
		}

		info, statErr := root.Stat(cur)
		if statErr != nil {
			return created, fmt.Errorf("failed to stat %s: %w", cur, statErr)
		}
		if !info.IsDir() {
			return created, fmt.Errorf("path exists and is not a directory: %s: %w", cur, syscall.ENOTDIR)
		}
	}
	return created, nil
}
