package filemanager

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"fsguard/pkg/fileops"
)

// GetFileInfo returns metadata for path. Size, times, permissions and type
// describe the entry after symlink resolution; IsSymlink and LinkTarget
// describe the requested entry itself.
func (fm *FileManager) GetFileInfo(ctx context.Context, path string) (fi FileInfo, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpGetFileInfo, path, start, err) }()

	if err := ctx.Err(); err != nil {
		return FileInfo{}, fileops.NewError(OpGetFileInfo, path, fileops.KindIOError, err)
	}

	resolved, err := fm.guard.Resolve(path, true)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := os.Stat(resolved.Path)
	if err != nil {
		return FileInfo{}, fileops.NewError(OpGetFileInfo, path, fileops.KindFromOS(err), err)
	}

	created, accessed := fileTimes(resolved.Path, info)
	fi = FileInfo{
		Path:        resolved.Path,
		Size:        info.Size(),
		Created:     created,
		Modified:    info.ModTime(),
		Accessed:    accessed,
		Permissions: info.Mode().Perm().String()[1:],
		Mode:        fmt.Sprintf("%04o", info.Mode().Perm()),
		Type:        typeOf(info),
	}

	if nominal, err := fm.guard.Nominal(path); err == nil {
		if linfo, err := os.Lstat(nominal); err == nil && linfo.Mode()&os.ModeSymlink != 0 {
			fi.IsSymlink = true
			if target, err := fileops.GetSymlinkTarget(nominal); err == nil {
				fi.LinkTarget = target
			}
		}
	}

	if info.Mode().IsRegular() {
		if mime, err := mimetype.DetectFile(resolved.Path); err == nil {
			fi.MIMEType = mime.String()
		} else {
			fm.logger.Debug("MIME detection failed", "path", resolved.Path, "error", err)
		}
	}

	return fi, nil
}

func typeOf(info os.FileInfo) EntryType {
	switch {
	case info.IsDir():
		return EntryDirectory
	case info.Mode().IsRegular():
		return EntryFile
	default:
		return EntryOther
	}
}

// FormatFileInfo renders fi as "key: value" lines.
func FormatFileInfo(fi FileInfo) string {
	s := fmt.Sprintf("path: %s\nsize: %d\ncreated: %s\nmodified: %s\naccessed: %s\npermissions: %s (%s)\ntype: %s\nisSymlink: %t",
		fi.Path, fi.Size,
		fi.Created.Format(time.RFC3339), fi.Modified.Format(time.RFC3339), fi.Accessed.Format(time.RFC3339),
		fi.Permissions, fi.Mode, fi.Type, fi.IsSymlink)
	if fi.LinkTarget != "" {
		s += "\nlinkTarget: " + fi.LinkTarget
	}
	if fi.MIMEType != "" {
		s += "\nmimeType: " + fi.MIMEType
	}
	return s
}
