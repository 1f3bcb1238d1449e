package fileops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// SearchOptions configures Guard.Search.
type SearchOptions struct {
	// Pattern is matched as a case-insensitive substring of each entry name.
	// An empty pattern matches every entry.
	Pattern string

	// Exclude holds doublestar glob patterns. An entry is skipped, and a
	// directory is not descended into, when a pattern matches either its
	// slash-separated path relative to the search root or its base name.
	Exclude []string

	// MaxDepth limits how many levels below the search root are visited.
	// Zero means DefaultMaxDepth.
	MaxDepth int
}

// Search walks dir, which must be a directory resolved by this Guard, and
// returns the absolute paths of all entries whose name matches opts.Pattern.
//
// The walk never follows symlinks. A symlink whose name matches is reported
// only when its real target lies inside an allowed root. Results are sorted
// depth-first by name, so a directory precedes its contents.
func (g *Guard) Search(ctx context.Context, dir ResolvedPath, opts SearchOptions) ([]string, error) {
	const op = "search_files"

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, Errorf(op, dir.Path, KindIOError, "invalid exclude pattern: %q", pattern)
		}
	}

	info, err := os.Stat(dir.Path)
	if err != nil {
		return nil, NewError(op, dir.Path, KindFromOS(err), err)
	}
	if !info.IsDir() {
		return nil, Errorf(op, dir.Path, KindNotADirectory, "not a directory")
	}

	needle := strings.ToLower(opts.Pattern)

	var (
		mu      sync.Mutex
		matches []string
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, dir.Path, func(p string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped rather than failing the search.
			return nil
		}
		if p == dir.Path {
			return nil
		}

		rel, relErr := filepath.Rel(dir.Path, p)
		if relErr != nil {
			return nil
		}

		if excluded(opts.Exclude, filepath.ToSlash(rel), d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.Contains(strings.ToLower(d.Name()), needle) && g.reportable(d, p) {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}

		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if d.IsDir() && depth >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, NewError(op, dir.Path, KindIOError, fmt.Errorf("search failed: %w", err))
	}

	sep := string(filepath.Separator)
	slices.SortFunc(matches, func(a, b string) int {
		return slices.Compare(strings.Split(a, sep), strings.Split(b, sep))
	})

	return matches, nil
}

// reportable drops symlinks whose target escapes the sandbox or dangles.
func (g *Guard) reportable(d os.DirEntry, p string) bool {
	if d.Type()&os.ModeSymlink == 0 {
		return true
	}
	_, err := g.CheckSymlink(p)
	return err == nil
}

func excluded(patterns []string, rel, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
