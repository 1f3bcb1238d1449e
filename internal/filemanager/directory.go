package filemanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"fsguard/pkg/fileops"
)

// ListDirectory returns the immediate children of path, sorted by name.
//
// A symlink is typed by its target when the target lies inside the sandbox,
// and reported as a file otherwise. Symlinks are never followed further.
func (fm *FileManager) ListDirectory(ctx context.Context, path string) (entries []DirEntry, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpListDirectory, path, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, fileops.NewError(OpListDirectory, path, fileops.KindIOError, err)
	}

	resolved, err := fm.resolveDir(OpListDirectory, path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(resolved.Path)
	if err != nil {
		return nil, fileops.NewError(OpListDirectory, path, fileops.KindFromOS(err), err)
	}

	entries = make([]DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		entries = append(entries, DirEntry{
			Name: entry.Name(),
			Type: fm.entryType(entry, filepath.Join(resolved.Path, entry.Name())),
		})
	}
	slices.SortFunc(entries, func(a, b DirEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

func (fm *FileManager) entryType(entry os.DirEntry, entryPath string) EntryType {
	if entry.IsDir() {
		return EntryDirectory
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return EntryFile
	}

	target, err := fm.guard.CheckSymlink(entryPath)
	if err != nil {
		return EntryFile
	}
	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		return EntryDirectory
	}
	return EntryFile
}

// FormatListing renders entries one per line as "[DIR]  name" or
// "[FILE] name".
func FormatListing(entries []DirEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.Type == EntryDirectory {
			b.WriteString("[DIR]  ")
		} else {
			b.WriteString("[FILE] ")
		}
		b.WriteString(e.Name)
	}
	return b.String()
}

// DirectoryTree returns the recursive structure below path. The returned
// entry describes path itself and is named after its last element.
func (fm *FileManager) DirectoryTree(ctx context.Context, path string) (tree TreeEntry, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpDirectoryTree, path, start, err) }()

	resolved, err := fm.resolveDir(OpDirectoryTree, path)
	if err != nil {
		return TreeEntry{}, err
	}

	nodes, err := fm.guard.WalkTree(ctx, resolved, fm.maxDepth)
	if err != nil {
		return TreeEntry{}, err
	}

	return TreeEntry{
		Name:     rootName(path, resolved.Path),
		Type:     EntryDirectory,
		Children: convertNodes(nodes),
	}, nil
}

func convertNodes(nodes []fileops.TreeNode) []TreeEntry {
	out := make([]TreeEntry, 0, len(nodes))
	for _, n := range nodes {
		e := TreeEntry{Name: n.Name, Type: EntryFile}
		if n.Dir {
			e.Type = EntryDirectory
			e.Children = convertNodes(n.Children)
		}
		out = append(out, e)
	}
	return out
}

// rootName names the top of a tree after the path the caller asked for,
// falling back to the resolved path for "/" or "~".
func rootName(requested, resolved string) string {
	name := filepath.Base(filepath.Clean(requested))
	if name == "." || name == "~" || name == string(filepath.Separator) {
		name = filepath.Base(resolved)
	}
	return name
}

// MarshalTree renders a tree as JSON indented by two spaces.
func MarshalTree(tree TreeEntry) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(tree, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateDirectory creates path and any missing parents. It reports whether
// anything was created; an existing directory is left untouched.
func (fm *FileManager) CreateDirectory(ctx context.Context, path string) (created bool, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpCreateDirectory, path, start, err) }()

	if err := ctx.Err(); err != nil {
		return false, fileops.NewError(OpCreateDirectory, path, fileops.KindIOError, err)
	}

	resolved, err := fm.guard.ResolveCreatable(path)
	if err != nil {
		return false, err
	}

	if resolved.Exists {
		info, err := os.Stat(resolved.Path)
		if err != nil {
			return false, fileops.NewError(OpCreateDirectory, path, fileops.KindFromOS(err), err)
		}
		if !info.IsDir() {
			return false, fileops.Errorf(OpCreateDirectory, path, fileops.KindNotADirectory,
				"path exists and is not a directory")
		}
		return false, nil
	}

	root, err := openRoot(OpCreateDirectory, path, resolved)
	if err != nil {
		return false, err
	}
	defer root.Close()

	created, err = fileops.EnsureDirectoryExists(root, resolved.Rel())
	if err != nil {
		if errors.Is(err, syscall.ENOTDIR) {
			return created, fileops.NewError(OpCreateDirectory, path, fileops.KindNotADirectory, err)
		}
		return created, fileops.NewError(OpCreateDirectory, path, fileops.KindIOError, err)
	}
	return created, nil
}

// resolveDir resolves an existing path and requires it to be a directory.
func (fm *FileManager) resolveDir(op, path string) (fileops.ResolvedPath, error) {
	resolved, err := fm.guard.Resolve(path, true)
	if err != nil {
		return fileops.ResolvedPath{}, err
	}

	info, err := os.Stat(resolved.Path)
	if err != nil {
		return fileops.ResolvedPath{}, fileops.NewError(op, path, fileops.KindFromOS(err), err)
	}
	if !info.IsDir() {
		return fileops.ResolvedPath{}, fileops.Errorf(op, path, fileops.KindNotADirectory, "not a directory")
	}
	return resolved, nil
}
