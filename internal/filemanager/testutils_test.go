package filemanager

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fsguard/internal/logging"
	"fsguard/pkg/fileops"
)

// Sandbox Setup

// createTempTestDir creates a temporary directory with automatic cleanup and
// returns its canonical path, so assertions on resolved paths hold on systems
// where the temp dir sits behind a symlink.
func createTempTestDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// newTestManager returns a FileManager confined to a fresh sandbox directory.
func newTestManager(t *testing.T, opts ...Option) (*FileManager, string) {
	t.Helper()
	sandbox := createTempTestDir(t)
	return newTestManagerFor(t, []string{sandbox}, opts...), sandbox
}

// newTestManagerFor returns a FileManager confined to roots.
func newTestManagerFor(t *testing.T, roots []string, opts ...Option) *FileManager {
	t.Helper()
	guard, err := fileops.NewGuard(roots)
	require.NoError(t, err)
	return NewFileManager(guard, createTestLogger(), opts...)
}

// File and Directory Operations

// createTestFile creates a test file with specified content
func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

// createTestDir creates a test directory
func createTestDir(t *testing.T, dir, dirname string) string {
	t.Helper()
	path := filepath.Join(dir, dirname)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create test directory %s: %v", path, err)
	}
	return path
}

// createDirStructure populates dir from a map. Keys ending in "/" are
// directories; all other keys are files with the mapped content.
func createDirStructure(t *testing.T, dir string, structure map[string]string) {
	t.Helper()

	for path, content := range structure {
		fullPath := filepath.Join(dir, filepath.FromSlash(path))

		if strings.HasSuffix(path, "/") {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", path, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create parent dirs for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", path, err)
		}
	}
}

// File System Checks

// fileExists checks if a file or directory exists
func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// readFileContent reads and returns file content
func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Platform and System Utilities

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// Test Object Creation

// createTestLogger creates a test logger instance
func createTestLogger() *logging.AppLogger {
	logger, _ := logging.NewTestLogger()
	return logger
}

// Symlink Operations

// createTestSymlink creates a symbolic link with platform-aware error handling
func createTestSymlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		if isWindows() {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}
}
