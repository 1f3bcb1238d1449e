//go:build linux

package filemanager

import (
	"errors"

	"golang.org/x/sys/unix"
)

// renameNoReplace renames src to dst, failing with EEXIST when dst exists.
// The check and the rename are one step with RENAME_NOREPLACE; filesystems
// that reject the flag get the portable check-then-rename.
func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS) {
		return renameIfAbsent(src, dst)
	}
	return err
}
