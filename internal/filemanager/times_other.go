//go:build !linux && !darwin

package filemanager

import (
	"io/fs"
	"time"
)

// fileTimes reports the modification time for both values on platforms
// without a portable birth or access time.
func fileTimes(_ string, info fs.FileInfo) (created, accessed time.Time) {
	return info.ModTime(), info.ModTime()
}
