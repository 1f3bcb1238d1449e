//go:build !linux

package filemanager

func renameNoReplace(src, dst string) error {
	return renameIfAbsent(src, dst)
}
