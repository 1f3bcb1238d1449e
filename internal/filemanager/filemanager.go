// Package filemanager implements the sandboxed file operations on top of a
// fileops.Guard. Every operation validates its paths through the guard
// before touching the filesystem, and every failure is a *fileops.Error
// labelled with the operation name.
package filemanager

import (
	"context"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"fsguard/internal/logging"
	"fsguard/internal/metrics"
	"fsguard/pkg/fileops"
)

const defaultReadConcurrency = 8

// FileManager performs file operations confined to the guard's allowed
// directories. It holds no mutable state and is safe for concurrent use.
type FileManager struct {
	guard           *fileops.Guard
	logger          *logging.AppLogger
	metrics         *metrics.Metrics
	maxDepth        int
	maxReadBytes    int64
	readConcurrency int
}

// Option configures a FileManager.
type Option func(*FileManager)

// WithMaxDepth bounds directory_tree and search_files walks.
func WithMaxDepth(depth int) Option {
	return func(fm *FileManager) { fm.maxDepth = depth }
}

// WithMaxReadBytes rejects reads of files larger than n bytes. Zero disables
// the limit.
func WithMaxReadBytes(n int64) Option {
	return func(fm *FileManager) { fm.maxReadBytes = n }
}

// WithReadConcurrency bounds the parallel reads of ReadMultipleFiles.
func WithReadConcurrency(n int) Option {
	return func(fm *FileManager) { fm.readConcurrency = n }
}

// WithMetrics records per-operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(fm *FileManager) { fm.metrics = m }
}

// NewFileManager returns a FileManager over guard. A nil logger falls back to
// the process default.
func NewFileManager(guard *fileops.Guard, logger *logging.AppLogger, opts ...Option) *FileManager {
	if logger == nil {
		logger = logging.GetDefault()
	}
	fm := &FileManager{
		guard:           guard,
		logger:          logger,
		maxDepth:        fileops.DefaultMaxDepth,
		readConcurrency: defaultReadConcurrency,
	}
	for _, opt := range opts {
		opt(fm)
	}
	if fm.maxDepth <= 0 {
		fm.maxDepth = fileops.DefaultMaxDepth
	}
	if fm.readConcurrency <= 0 {
		fm.readConcurrency = defaultReadConcurrency
	}
	return fm
}

// ListAllowedDirectories returns the configured roots as given, after "~"
// expansion.
func (fm *FileManager) ListAllowedDirectories() []string {
	start := time.Now()
	dirs := fm.guard.AllowedDirectories()
	fm.finish(OpListAllowedDirectories, "", start, nil)
	return dirs
}

// ReadFile returns the complete content of a file.
func (fm *FileManager) ReadFile(ctx context.Context, path string) (content string, err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpReadFile, path, start, err) }()

	return fm.readFile(ctx, path)
}

func (fm *FileManager) readFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fileops.NewError(OpReadFile, path, fileops.KindIOError, err)
	}

	resolved, err := fm.guard.Resolve(path, true)
	if err != nil {
		return "", err
	}

	root, err := openRoot(OpReadFile, path, resolved)
	if err != nil {
		return "", err
	}
	defer root.Close()

	info, err := root.Stat(resolved.Rel())
	if err != nil {
		return "", fileops.NewError(OpReadFile, path, fileops.KindFromOS(err), err)
	}
	if err := fileops.CheckReadable(OpReadFile, path, info, fm.maxReadBytes); err != nil {
		return "", err
	}

	f, err := root.Open(resolved.Rel())
	if err != nil {
		return "", fileops.NewError(OpReadFile, path, fileops.KindFromOS(err), err)
	}
	defer f.Close()

	var r io.Reader = f
	if fm.maxReadBytes > 0 {
		// The file may have grown since the stat; one extra byte detects it.
		r = io.LimitReader(f, fm.maxReadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fileops.NewError(OpReadFile, path, fileops.KindIOError, err)
	}
	if fm.maxReadBytes > 0 && int64(len(data)) > fm.maxReadBytes {
		return "", fileops.Errorf(OpReadFile, path, fileops.KindIOError,
			"file size exceeds limit %d bytes", fm.maxReadBytes)
	}
	if !utf8.Valid(data) {
		return "", fileops.Errorf(OpReadFile, path, fileops.KindIOError,
			"content is not valid UTF-8")
	}
	return string(data), nil
}

// ReadMultipleFiles reads every path independently. A failure for one path
// is recorded in its entry and never affects the others. Duplicate paths
// produce a single entry.
func (fm *FileManager) ReadMultipleFiles(ctx context.Context, paths []string) BatchReadResult {
	start := time.Now()

	unique := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}

	results := make([]ReadResult, len(unique))

	var g errgroup.Group
	g.SetLimit(fm.readConcurrency)
	for i, p := range unique {
		g.Go(func() error {
			content, err := fm.ReadFile(ctx, p)
			results[i] = ReadResult{Content: content, Err: err}
			// Per-item failures are recorded, not propagated.
			return nil
		})
	}
	_ = g.Wait()

	out := make(BatchReadResult, len(unique))
	failed := 0
	for i, p := range unique {
		out[p] = results[i]
		if results[i].Err != nil {
			failed++
		}
	}

	fm.logger.Debug("Batch read finished", "paths", len(unique), "failed", failed)
	fm.metrics.Observe(OpReadMultipleFiles, start, nil)
	return out
}

// WriteFile creates path or truncates and overwrites it with content. The
// parent directory must already exist. An existing file keeps its mode; new
// files are created 0644.
func (fm *FileManager) WriteFile(ctx context.Context, path, content string) (err error) {
	start := time.Now()
	defer func() { err = fm.finish(OpWriteFile, path, start, err) }()

	if err := ctx.Err(); err != nil {
		return fileops.NewError(OpWriteFile, path, fileops.KindIOError, err)
	}

	resolved, err := fm.guard.Resolve(path, false)
	if err != nil {
		return err
	}
	return fm.writeResolved(path, resolved, content)
}

func (fm *FileManager) writeResolved(path string, resolved fileops.ResolvedPath, content string) error {
	root, err := openRoot(OpWriteFile, path, resolved)
	if err != nil {
		return err
	}
	defer root.Close()

	if info, err := root.Stat(resolved.Rel()); err == nil && info.IsDir() {
		return fileops.Errorf(OpWriteFile, path, fileops.KindIOError, "path is a directory")
	}

	f, err := root.OpenFile(resolved.Rel(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fileops.NewError(OpWriteFile, path, fileops.KindFromOS(err), err)
	}

	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return fileops.NewError(OpWriteFile, path, fileops.KindIOError, err)
	}
	if err := f.Close(); err != nil {
		return fileops.NewError(OpWriteFile, path, fileops.KindIOError, err)
	}
	return nil
}

// finish labels err with op, then records the outcome in metrics and logs.
func (fm *FileManager) finish(op, path string, start time.Time, err error) error {
	err = fileops.WithOp(op, path, err)
	fm.metrics.Observe(op, start, err)
	fm.logger.LogOperation(op, path, start, err)
	return err
}

// openRoot opens an os.Root at the allowed root containing resolved. All
// reads and writes go through it, so a symlink swapped in after validation
// still cannot lead outside that root.
func openRoot(op, path string, resolved fileops.ResolvedPath) (*os.Root, error) {
	root, err := os.OpenRoot(resolved.Root)
	if err != nil {
		return nil, fileops.NewError(op, path, fileops.KindIOError, err)
	}
	return root, nil
}
