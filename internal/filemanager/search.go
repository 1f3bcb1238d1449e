package filemanager

import (
	"context"
	"time"

	"fsguard/pkg/fileops"
)

// SearchFiles returns the absolute paths of every entry below root whose name
// contains pattern, ignoring case. Entries matching any of opts.Exclude are
// skipped together with their subtrees.
func (fm *FileManager) SearchFiles(ctx context.Context, root, pattern string, opts SearchOptions) (matches []string, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpSearchFiles, root, start, err) }()

	resolved, err := fm.resolveDir(OpSearchFiles, root)
	if err != nil {
		return nil, err
	}

	matches, err = fm.guard.Search(ctx, resolved, fileops.SearchOptions{
		Pattern:  pattern,
		Exclude:  opts.Exclude,
		MaxDepth: fm.maxDepth,
	})
	if err != nil {
		return nil, err
	}

	fm.logger.Debug("Search finished", "root", resolved.Path, "pattern", pattern, "matches", len(matches))
	return matches, nil
}
