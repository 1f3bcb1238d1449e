package filemanager

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsguard/pkg/fileops"
)

func TestMoveFile(t *testing.T) {
	fm, sandbox := newTestManager(t)
	ctx := context.Background()

	t.Run("rename in place", func(t *testing.T) {
		src := createTestFile(t, sandbox, "old.txt", "payload")
		dst := filepath.Join(sandbox, "new.txt")

		require.NoError(t, fm.MoveFile(ctx, src, dst))
		assert.False(t, fileExists(src))
		assert.Equal(t, "payload", readFileContent(t, dst))
	})

	t.Run("into another directory", func(t *testing.T) {
		src := createTestFile(t, sandbox, "moving.txt", "m")
		destDir := createTestDir(t, sandbox, "dest")
		dst := filepath.Join(destDir, "moved.txt")

		require.NoError(t, fm.MoveFile(ctx, src, dst))
		assert.False(t, fileExists(src))
		assert.Equal(t, "m", readFileContent(t, dst))
	})

	t.Run("directory with contents", func(t *testing.T) {
		src := createTestDir(t, sandbox, "tree")
		createTestFile(t, src, "leaf.txt", "leaf")
		dst := filepath.Join(sandbox, "renamed-tree")

		require.NoError(t, fm.MoveFile(ctx, src, dst))
		assert.False(t, fileExists(src))
		assert.Equal(t, "leaf", readFileContent(t, filepath.Join(dst, "leaf.txt")))
	})
}

func TestMoveFileNoClobber(t *testing.T) {
	fm, sandbox := newTestManager(t)

	a := createTestFile(t, sandbox, "a.txt", "content of a")
	b := createTestFile(t, sandbox, "b.txt", "content of b")

	err := fm.MoveFile(context.Background(), a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fileops.ErrAlreadyExists)

	assert.Equal(t, "content of a", readFileContent(t, a))
	assert.Equal(t, "content of b", readFileContent(t, b))
}

func TestMoveFileErrors(t *testing.T) {
	fm, sandbox := newTestManager(t)
	ctx := context.Background()

	t.Run("missing source", func(t *testing.T) {
		err := fm.MoveFile(ctx, filepath.Join(sandbox, "ghost"), filepath.Join(sandbox, "x"))
		assert.ErrorIs(t, err, fileops.ErrNotFound)
	})

	t.Run("destination outside sandbox", func(t *testing.T) {
		src := createTestFile(t, sandbox, "stay.txt", "stay")
		outside := createTempTestDir(t)

		err := fm.MoveFile(ctx, src, filepath.Join(outside, "stay.txt"))
		assert.ErrorIs(t, err, fileops.ErrAccessDenied)
		assert.True(t, fileExists(src))
		assert.False(t, fileExists(filepath.Join(outside, "stay.txt")))
	})

	t.Run("source outside sandbox", func(t *testing.T) {
		outside := createTempTestDir(t)
		src := createTestFile(t, outside, "foreign.txt", "f")

		err := fm.MoveFile(ctx, src, filepath.Join(sandbox, "foreign.txt"))
		assert.ErrorIs(t, err, fileops.ErrAccessDenied)
		assert.True(t, fileExists(src))
	})

	t.Run("directory into itself", func(t *testing.T) {
		dir := createTestDir(t, sandbox, "parent")

		err := fm.MoveFile(ctx, dir, filepath.Join(dir, "child"))
		require.Error(t, err)
		assert.Equal(t, fileops.KindIOError, fileops.KindOf(err))
		assert.True(t, fileExists(dir))
	})

	t.Run("missing destination parent", func(t *testing.T) {
		src := createTestFile(t, sandbox, "orphan.txt", "o")

		err := fm.MoveFile(ctx, src, filepath.Join(sandbox, "no", "parent", "orphan.txt"))
		assert.ErrorIs(t, err, fileops.ErrNotFound)
		assert.True(t, fileExists(src))
	})
}

func TestMoveFileMovesLinkNotTarget(t *testing.T) {
	fm, sandbox := newTestManager(t)

	target := createTestFile(t, sandbox, "target.txt", "t")
	link := filepath.Join(sandbox, "link.txt")
	createTestSymlink(t, target, link)

	dst := filepath.Join(sandbox, "moved-link.txt")
	require.NoError(t, fm.MoveFile(context.Background(), link, dst))

	assert.True(t, fileExists(target), "target stays in place")
	assert.False(t, fileExists(link))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "the link itself was moved")
}

func TestCrossDeviceMove(t *testing.T) {
	sandbox := createTempTestDir(t)

	t.Run("file", func(t *testing.T) {
		src := createTestFile(t, sandbox, "f.txt", "file body")
		dst := filepath.Join(sandbox, "f-copy.txt")

		require.NoError(t, crossDeviceMove(src, dst, false))
		assert.False(t, fileExists(src))
		assert.Equal(t, "file body", readFileContent(t, dst))
	})

	t.Run("directory", func(t *testing.T) {
		src := createTestDir(t, sandbox, "d")
		createDirStructure(t, src, map[string]string{
			"x.txt":     "x",
			"sub/y.txt": "y",
		})
		dst := filepath.Join(sandbox, "d-copy")

		require.NoError(t, crossDeviceMove(src, dst, true))
		assert.False(t, fileExists(src))
		assert.Equal(t, "x", readFileContent(t, filepath.Join(dst, "x.txt")))
		assert.Equal(t, "y", readFileContent(t, filepath.Join(dst, "sub", "y.txt")))
	})

	t.Run("directory keeps modes and symlinks", func(t *testing.T) {
		if isWindows() {
			t.Skip("permission bits and symlinks differ on Windows")
		}
		src := createTestDir(t, sandbox, "keys")
		key := createTestFile(t, src, "id.key", "secret")
		require.NoError(t, os.Chmod(key, 0600))
		createTestSymlink(t, "id.key", filepath.Join(src, "current"))
		dst := filepath.Join(sandbox, "keys-moved")

		require.NoError(t, crossDeviceMove(src, dst, true))
		assert.False(t, fileExists(src))

		info, err := os.Stat(filepath.Join(dst, "id.key"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		target, err := os.Readlink(filepath.Join(dst, "current"))
		require.NoError(t, err)
		assert.Equal(t, "id.key", target)
	})

	t.Run("symlink", func(t *testing.T) {
		if isWindows() {
			t.Skip("symlinks differ on Windows")
		}
		createTestFile(t, sandbox, "target.txt", "pointed at")
		src := filepath.Join(sandbox, "alias")
		createTestSymlink(t, "target.txt", src)
		dst := filepath.Join(sandbox, "alias-moved")

		require.NoError(t, crossDeviceMove(src, dst, false))
		assert.False(t, fileExists(src))

		target, err := os.Readlink(dst)
		require.NoError(t, err)
		assert.Equal(t, "target.txt", target)
		assert.Equal(t, "pointed at", readFileContent(t, filepath.Join(sandbox, "target.txt")))
	})
}

func TestRenameNoReplace(t *testing.T) {
	dir := createTempTestDir(t)

	t.Run("refuses existing destination", func(t *testing.T) {
		src := createTestFile(t, dir, "a.txt", "from a")
		dst := createTestFile(t, dir, "b.txt", "from b")

		err := renameNoReplace(src, dst)
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrExist)
		assert.Equal(t, "from a", readFileContent(t, src))
		assert.Equal(t, "from b", readFileContent(t, dst))
	})

	t.Run("refuses dangling symlink destination", func(t *testing.T) {
		if isWindows() {
			t.Skip("symlinks differ on Windows")
		}
		src := createTestFile(t, dir, "c.txt", "from c")
		dst := filepath.Join(dir, "dangling")
		createTestSymlink(t, filepath.Join(dir, "nowhere"), dst)

		require.ErrorIs(t, renameNoReplace(src, dst), fs.ErrExist)
		assert.Equal(t, "from c", readFileContent(t, src))
	})

	t.Run("renames to a free name", func(t *testing.T) {
		src := createTestFile(t, dir, "d.txt", "from d")
		dst := filepath.Join(dir, "e.txt")

		require.NoError(t, renameNoReplace(src, dst))
		assert.False(t, fileExists(src))
		assert.Equal(t, "from d", readFileContent(t, dst))
	})
}
