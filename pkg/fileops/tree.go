package fileops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMaxDepth bounds tree and search walks when the caller passes zero.
const DefaultMaxDepth = 64

// TreeNode is one entry discovered by WalkTree. Children is non-nil for every
// directory, including directories cut off by the depth limit, and nil for
// everything else.
type TreeNode struct {
	Name     string
	Dir      bool
	Children []TreeNode
}

// treeWalker holds the state of a single WalkTree call.
type treeWalker struct {
	guard    *Guard
	maxDepth int

	// visited tracks real directory paths to prevent infinite loops through
	// symlinked ancestors.
	visited map[string]bool
}

// WalkTree recursively lists dir, which must be a directory resolved by this
// Guard, and returns its children.
//
// Children are sorted by name and directories are expanded depth-first.
// Directories deeper than maxDepth levels below dir are reported with an
// empty child list. Symlinks are followed only when their real target lies
// inside an allowed root; links that escape or dangle are omitted, and a
// directory already on the walk is reported but not expanded again.
// Cancellation is checked before each directory is read.
//
// Usage example:
//
//	dir, err := guard.Resolve("~/projects", true)
//	if err != nil {
//	    return err
//	}
//	children, err := guard.WalkTree(ctx, dir, fileops.DefaultMaxDepth)
func (g *Guard) WalkTree(ctx context.Context, dir ResolvedPath, maxDepth int) ([]TreeNode, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	info, err := os.Stat(dir.Path)
	if err != nil {
		return nil, NewError("directory_tree", dir.Path, KindFromOS(err), err)
	}
	if !info.IsDir() {
		return nil, Errorf("directory_tree", dir.Path, KindNotADirectory, "not a directory")
	}

	w := &treeWalker{
		guard:    g,
		maxDepth: maxDepth,
		visited:  map[string]bool{dir.Path: true},
	}
	return w.walk(ctx, dir.Path, 1)
}

func (w *treeWalker) walk(ctx context.Context, dirPath string, depth int) ([]TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError("directory_tree", dirPath, KindIOError, err)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, NewError("directory_tree", dirPath, KindIOError, fmt.Errorf("cannot read directory: %w", err))
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	children := make([]TreeNode, 0, len(entries))
	for _, entry := range entries {
		entryPath := filepath.Join(dirPath, entry.Name())
		realPath := entryPath
		isDir := entry.IsDir()

		if entry.Type()&os.ModeSymlink != 0 {
			target, err := w.guard.CheckSymlink(entryPath)
			if err != nil {
				continue
			}
			info, err := os.Stat(target)
			if err != nil {
				continue
			}
			realPath = target
			isDir = info.IsDir()
		}

		node := TreeNode{Name: entry.Name(), Dir: isDir}
		if isDir {
			node.Children = []TreeNode{}
			if depth < w.maxDepth && !w.visited[realPath] {
				w.visited[realPath] = true
				sub, err := w.walk(ctx, realPath, depth+1)
				delete(w.visited, realPath)
				if err != nil {
					return nil, err
				}
				node.Children = sub
			}
		}
		children = append(children, node)
	}

	return children, nil
}
