//go:build linux

package filemanager

import (
	"io/fs"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// fileTimes returns the birth and access times of path. Birth time comes
// from statx and falls back to the modification time on filesystems that do
// not record it.
func fileTimes(path string, info fs.FileInfo) (created, accessed time.Time) {
	created, accessed = info.ModTime(), info.ModTime()

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		accessed = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	}

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return created, accessed
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		created = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	}
	return created, accessed
}
