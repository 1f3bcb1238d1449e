package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := filepath.Join(string(filepath.Separator), "home", "alice")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"exact tilde", "~", home},
		{"tilde slash", "~/docs/a.txt", filepath.Join(home, "docs", "a.txt")},
		{"tilde slash only", "~/", home},
		{"other user form untouched", "~bob/docs", "~bob/docs"},
		{"absolute untouched", "/srv/data", "/srv/data"},
		{"relative untouched", "docs/a.txt", "docs/a.txt"},
		{"tilde in middle untouched", "/tmp/~/x", "/tmp/~/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandHome(tt.path, home); got != tt.want {
				t.Errorf("expandHome(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	if got := expandHome("~/x", ""); got != "~/x" {
		t.Errorf("expected no expansion without a home directory, got %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	expanded := ExpandPath("~/file.txt")
	if strings.HasPrefix(expanded, "~") {
		t.Errorf("Expected ~ to be expanded, got %s", expanded)
	}
	if filepath.Base(expanded) != "file.txt" {
		t.Errorf("Expected base file.txt, got %s", expanded)
	}
}

func TestCheckReadable(t *testing.T) {
	tempDir := createTempDir(t)
	small := createTestFile(t, tempDir, "small.txt", "12345")

	stat := func(p string) os.FileInfo {
		t.Helper()
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		return info
	}

	tests := []struct {
		name    string
		info    os.FileInfo
		maxSize int64
		wantErr bool
	}{
		{"within limit", stat(small), 10, false},
		{"exactly at limit", stat(small), 5, false},
		{"over limit", stat(small), 4, true},
		{"no limit", stat(small), 0, false},
		{"directory", stat(tempDir), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReadable("read_file", "p", tt.info, tt.maxSize)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckReadable() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrIO) {
				t.Errorf("Expected i/o error kind, got %v", err)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("short", 10); got != "short" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
	if got := Excerpt("héllo world", 5); got != "héllo..." {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
}
