package filemanager

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsguard/pkg/fileops"
)

func TestEditFile(t *testing.T) {
	fm, sandbox := newTestManager(t)

	path := createTestFile(t, sandbox, "greeting.txt", "hello\nfoo\nbye\n")

	diff, err := fm.EditFile(context.Background(), path, []EditOperation{
		{OldText: "foo", NewText: "bar"},
	}, EditOptions{})
	require.NoError(t, err)

	assert.Equal(t, "hello\nbar\nbye\n", readFileContent(t, path))
	assert.Contains(t, diff, "\n-foo\n")
	assert.Contains(t, diff, "\n+bar\n")
	assert.Contains(t, diff, "--- "+path)
	assert.Contains(t, diff, "+++ "+path)
}

func TestEditFileSequentialEdits(t *testing.T) {
	fm, sandbox := newTestManager(t)

	path := createTestFile(t, sandbox, "seq.txt", "one two one\n")

	_, err := fm.EditFile(context.Background(), path, []EditOperation{
		{OldText: "one", NewText: "1"},
		{OldText: "1 two", NewText: "x"},
		{OldText: "one", NewText: "3"},
	}, EditOptions{})
	require.NoError(t, err)

	assert.Equal(t, "x 3\n", readFileContent(t, path), "each edit sees the result of the previous one")
}

func TestEditFileMismatchLeavesFileUntouched(t *testing.T) {
	fm, sandbox := newTestManager(t)

	original := "alpha\nbeta\ngamma\n"
	path := createTestFile(t, sandbox, "stable.txt", original)

	_, err := fm.EditFile(context.Background(), path, []EditOperation{
		{OldText: "alpha", NewText: "ALPHA"},
		{OldText: "delta", NewText: "DELTA"},
	}, EditOptions{})
	require.Error(t, err)

	assert.ErrorIs(t, err, fileops.ErrEditMismatch)
	assert.Contains(t, err.Error(), "edit 1")
	assert.Contains(t, err.Error(), "delta")
	assert.Equal(t, original, readFileContent(t, path), "no edit is written when any edit fails")
}

func TestEditFileDryRun(t *testing.T) {
	fm, sandbox := newTestManager(t)

	path := createTestFile(t, sandbox, "dry.txt", "keep me\n")

	diff, err := fm.EditFile(context.Background(), path, []EditOperation{
		{OldText: "keep", NewText: "change"},
	}, EditOptions{DryRun: true})
	require.NoError(t, err)

	assert.Contains(t, diff, "+change me")
	assert.Equal(t, "keep me\n", readFileContent(t, path))
}

func TestEditFileErrors(t *testing.T) {
	fm, sandbox := newTestManager(t)
	ctx := context.Background()

	edits := []EditOperation{{OldText: "a", NewText: "b"}}

	_, err := fm.EditFile(ctx, filepath.Join(sandbox, "missing.txt"), edits, EditOptions{})
	assert.ErrorIs(t, err, fileops.ErrNotFound)

	outside := createTempTestDir(t)
	_, err = fm.EditFile(ctx, createTestFile(t, outside, "o.txt", "a"), edits, EditOptions{})
	assert.ErrorIs(t, err, fileops.ErrAccessDenied)
	assert.Equal(t, "a", readFileContent(t, filepath.Join(outside, "o.txt")))

	_, err = fm.EditFile(ctx, createTestDir(t, sandbox, "dir"), edits, EditOptions{})
	assert.Equal(t, fileops.KindIOError, fileops.KindOf(err))

	var fe *fileops.Error
	_, err = fm.EditFile(ctx, filepath.Join(sandbox, "missing.txt"), edits, EditOptions{})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, OpEditFile, fe.Op)
}

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name    string
		content string
		edits   []EditOperation
		want    string
		wantErr bool
	}{
		{
			name:    "first occurrence only",
			content: "a a a",
			edits:   []EditOperation{{OldText: "a", NewText: "b"}},
			want:    "b a a",
		},
		{
			name:    "multi-line old text",
			content: "line1\nline2\nline3\n",
			edits:   []EditOperation{{OldText: "line1\nline2\n", NewText: "merged\n"}},
			want:    "merged\nline3\n",
		},
		{
			name:    "deletion",
			content: "keep drop keep",
			edits:   []EditOperation{{OldText: " drop", NewText: ""}},
			want:    "keep keep",
		},
		{
			name:    "no edits",
			content: "same",
			want:    "same",
		},
		{
			name:    "empty old text",
			content: "x",
			edits:   []EditOperation{{OldText: "", NewText: "y"}},
			wantErr: true,
		},
		{
			name:    "whitespace must match exactly",
			content: "func main() {\n\treturn\n}",
			edits:   []EditOperation{{OldText: "    return", NewText: "\treturn nil"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyEdits(tt.content, tt.edits)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fileops.ErrEditMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyEditsExcerpt(t *testing.T) {
	long := strings.Repeat("x", 200)

	_, err := ApplyEdits("content", []EditOperation{{OldText: long, NewText: "y"}})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "edit 0")
	assert.Contains(t, err.Error(), "...")
	assert.NotContains(t, err.Error(), long)
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, UnifiedDiff("f.txt", "same\n", "same\n"))

	diff := UnifiedDiff("f.txt", "a\nb\nc\n", "a\nB\nc\n")
	assert.True(t, strings.HasPrefix(diff, "--- f.txt\n+++ f.txt\n"), diff)
	assert.Contains(t, diff, "@@ -1,3 +1,3 @@")
	assert.Contains(t, diff, "\n a\n-b\n+B\n c\n")
}
