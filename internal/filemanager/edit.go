package filemanager

import (
	"context"
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"

	"fsguard/pkg/fileops"
)

const excerptLength = 60

// EditFile applies edits to the file at path in order and returns a unified
// diff of the change.
//
// Every edit replaces the first occurrence of its OldText in the content
// produced by the edits before it. If any edit does not match, the file is
// left untouched and the error has KindEditMismatch. The file is written
// only when every edit applied, the content changed, and opts.DryRun is
// false.
func (fm *FileManager) EditFile(ctx context.Context, path string, edits []EditOperation, opts EditOptions) (diff string, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpEditFile, path, start, err) }()

	original, err := fm.readFile(ctx, path)
	if err != nil {
		return "", err
	}

	modified, err := applyEdits(path, original, edits)
	if err != nil {
		return "", err
	}

	diff = UnifiedDiff(path, original, modified)
	if opts.DryRun || modified == original {
		return diff, nil
	}

	if err := ctx.Err(); err != nil {
		return "", fileops.NewError(OpEditFile, path, fileops.KindIOError, err)
	}

	// Re-resolve so a path swapped for a symlink since the read is caught.
	resolved, err := fm.guard.Resolve(path, true)
	if err != nil {
		return "", err
	}
	if err := fm.writeResolved(path, resolved, modified); err != nil {
		return "", err
	}
	return diff, nil
}

// ApplyEdits applies edits to content in order. Each edit replaces the first
// occurrence of its OldText. An empty or absent OldText fails with
// KindEditMismatch naming the edit's index.
func ApplyEdits(content string, edits []EditOperation) (string, error) {
	return applyEdits("", content, edits)
}

func applyEdits(path, content string, edits []EditOperation) (string, error) {
	for i, edit := range edits {
		if edit.OldText == "" {
			return "", fileops.Errorf(OpEditFile, path, fileops.KindEditMismatch,
				"edit %d: oldText cannot be empty", i)
		}
		idx := strings.Index(content, edit.OldText)
		if idx < 0 {
			return "", fileops.Errorf(OpEditFile, path, fileops.KindEditMismatch,
				"edit %d: could not find exact match for %q", i, fileops.Excerpt(edit.OldText, excerptLength))
		}
		content = content[:idx] + edit.NewText + content[idx+len(edit.OldText):]
	}
	return content, nil
}

// UnifiedDiff returns a line-based unified diff from before to after, with
// both sides labelled by path. Identical inputs produce an empty string.
func UnifiedDiff(path, before, after string) string {
	return udiff.Unified(path, path, before, after)
}
