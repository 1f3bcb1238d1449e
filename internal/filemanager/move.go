package filemanager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"fsguard/pkg/fileops"
)

// MoveFile moves or renames source to destination. Both must lie inside the
// sandbox and destination must not exist; on failure neither side changes.
// Moves across filesystems fall back to copy then delete.
func (fm *FileManager) MoveFile(ctx context.Context, source, destination string) (err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpMoveFile, source, start, err) }()

	if err := ctx.Err(); err != nil {
		return fileops.NewError(OpMoveFile, source, fileops.KindIOError, err)
	}

	src, err := fm.guard.Resolve(source, true)
	if err != nil {
		return err
	}
	dst, err := fm.guard.Resolve(destination, false)
	if err != nil {
		return err
	}

	if dst.Exists {
		return fileops.Errorf(OpMoveFile, destination, fileops.KindAlreadyExists,
			"destination already exists")
	}

	srcPath, err := fm.linkAwarePath(source, src)
	if err != nil {
		return err
	}

	info, err := os.Lstat(srcPath)
	if err != nil {
		return fileops.NewError(OpMoveFile, source, fileops.KindFromOS(err), err)
	}
	if info.IsDir() && fileops.IsDescendant(srcPath, dst.Path) {
		return fileops.Errorf(OpMoveFile, source, fileops.KindIOError,
			"cannot move a directory into itself: %s", destination)
	}

	err = renameNoReplace(srcPath, dst.Path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return fileops.Errorf(OpMoveFile, destination, fileops.KindAlreadyExists,
			"destination already exists")
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fileops.NewError(OpMoveFile, source, fileops.KindFromOS(err), err)
	}

	fm.logger.Debug("Rename crossed filesystems, copying instead", "source", srcPath, "destination", dst.Path)
	if err := crossDeviceMove(srcPath, dst.Path, info.IsDir()); err != nil {
		return fileops.NewError(OpMoveFile, source, fileops.KindIOError, err)
	}
	return nil
}

func crossDeviceMove(src, dst string, dir bool) error {
	if dir {
		if err := fileops.CopyTree(src, dst); err != nil {
			return err
		}
		if err := os.RemoveAll(src); err != nil {
			return fmt.Errorf("copied to %s but failed to remove source: %w", dst, err)
		}
		return nil
	}

	if err := copyEntry(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied to %s but failed to remove source: %w", dst, err)
	}
	return nil
}

// renameIfAbsent is the fallback for platforms without an exclusive rename.
// A destination created between the check and the rename is replaced.
func renameIfAbsent(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}

// copyEntry copies a single file, recreating src when it is a symlink.
func copyEntry(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fileops.CopySymlink(src, dst)
	}
	return fileops.AtomicCopy(src, dst)
}

// linkAwarePath returns the path to operate on for source. When source is a
// symlink the link itself is moved, not its target, so the result is the
// link's name inside its validated real parent directory.
func (fm *FileManager) linkAwarePath(source string, resolved fileops.ResolvedPath) (string, error) {
	nominal, err := fm.guard.Nominal(source)
	if err != nil {
		return "", err
	}
	info, err := os.Lstat(nominal)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return resolved.Path, nil
	}

	parent, err := fm.guard.Resolve(filepath.Dir(nominal), true)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent.Path, filepath.Base(nominal)), nil
}
