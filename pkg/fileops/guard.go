package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
)

// ResolvedPath is a path that passed Guard validation at the time it was
// resolved. It is produced per call and must not be cached.
type ResolvedPath struct {
	// Path is absolute and normalized. For existing entries it is the real
	// path with every symlink resolved; for missing entries it is the real
	// path of the nearest existing ancestor joined with the missing names.
	Path string
	// Root is the canonical allowed root that contains Path.
	Root string
	// Exists reports whether Path existed during resolution.
	Exists bool
}

// Rel returns Path relative to Root, suitable for use with an os.Root
// opened at Root.
func (r ResolvedPath) Rel() string {
	rel, err := filepath.Rel(r.Root, r.Path)
	if err != nil {
		return "."
	}
	return rel
}

// root is one allowed directory in both of its spellings. Requested paths are
// compared against either form before symlink resolution so that a root
// configured through a symlinked prefix (/tmp on macOS) still matches.
type root struct {
	nominal   string
	canonical string
}

// Guard confines filesystem access to a fixed, ordered set of allowed root
// directories. A Guard is immutable after construction and safe for
// concurrent use.
type Guard struct {
	given   []string
	roots   []root
	home    string
	workDir string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithHomeDir overrides the directory used to expand a leading "~".
func WithHomeDir(dir string) GuardOption {
	return func(g *Guard) { g.home = dir }
}

// WithWorkDir fixes the directory relative paths are resolved against.
// By default the process working directory at call time is used.
func WithWorkDir(dir string) GuardOption {
	return func(g *Guard) { g.workDir = dir }
}

// NewGuard validates dirs and returns a Guard over them.
//
// Each entry has a leading "~" expanded, is made absolute, and is resolved to
// its canonical form. Every entry must exist and be a directory. Entries that
// canonicalize to an already configured root are dropped.
func NewGuard(dirs []string, opts ...GuardOption) (*Guard, error) {
	g := &Guard{home: xdg.Home}
	for _, opt := range opts {
		opt(g)
	}

	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one allowed directory is required")
	}

	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("allowed directory cannot be empty")
		}

		expanded := expandHome(dir, g.home)
		abs, err := g.absolute(expanded)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve allowed directory %s: %w", dir, err)
		}

		canonical, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve allowed directory %s: %w", dir, err)
		}

		info, err := os.Stat(canonical)
		if err != nil {
			return nil, fmt.Errorf("cannot access allowed directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("allowed directory is not a directory: %s", dir)
		}

		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		g.given = append(g.given, expanded)
		g.roots = append(g.roots, root{nominal: abs, canonical: canonical})
	}

	return g, nil
}

// AllowedDirectories returns the configured roots as given, after home
// expansion.
func (g *Guard) AllowedDirectories() []string {
	out := make([]string, len(g.given))
	copy(out, g.given)
	return out
}

// msgEscapes is the one message for every path whose links leave the allowed
// directories or cannot be followed. It names neither the target nor whether
// the target exists.
const msgEscapes = "path resolves outside allowed directories"

// Resolve validates requested and returns its canonical form.
//
// The nominal path (after "~" expansion, cwd resolution and cleaning) must
// lie inside an allowed root. When the path exists its real path must also
// lie inside an allowed root; this is the symlink-escape check and it runs
// even when the nominal check passed. When the path does not exist its
// parent must exist and resolve inside an allowed root. mustExist turns a
// missing path into KindNotFound.
func (g *Guard) Resolve(requested string, mustExist bool) (ResolvedPath, error) {
	const op = "resolve"

	abs, err := g.nominal(op, requested)
	if err != nil {
		return ResolvedPath{}, err
	}

	real, err := filepath.EvalSymlinks(abs)
	if err == nil {
		rootDir, ok := g.canonicalRoot(real)
		if !ok {
			return ResolvedPath{}, Errorf(op, requested, KindAccessDenied, msgEscapes)
		}
		return ResolvedPath{Path: real, Root: rootDir, Exists: true}, nil
	}
	if !isNotExist(err) {
		return ResolvedPath{}, NewError(op, requested, KindIOError, err)
	}

	// Creation case: the parent decides.
	parent := filepath.Dir(abs)
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		if isNotExist(err) {
			// A missing parent reached through an escaping link is denied
			// like an existing one.
			if _, cerr := g.ResolveCreatable(requested); KindOf(cerr) == KindAccessDenied {
				return ResolvedPath{}, cerr
			}
			return ResolvedPath{}, Errorf(op, requested, KindNotFound,
				"parent directory does not exist: %s", parent)
		}
		return ResolvedPath{}, NewError(op, requested, KindIOError, err)
	}

	rootDir, ok := g.canonicalRoot(realParent)
	if !ok {
		return ResolvedPath{}, Errorf(op, requested, KindAccessDenied, msgEscapes)
	}

	if isDanglingSymlink(abs) {
		return ResolvedPath{}, Errorf(op, requested, KindAccessDenied, msgEscapes)
	}

	if mustExist {
		return ResolvedPath{}, Errorf(op, requested, KindNotFound, "path does not exist: %s", abs)
	}

	return ResolvedPath{
		Path: filepath.Join(realParent, filepath.Base(abs)),
		Root: rootDir,
	}, nil
}

// ResolveCreatable is Resolve for recursive creation. A missing path is
// validated against its deepest existing ancestor instead of its parent, and
// the returned Path is that ancestor's real path joined with the missing
// names. Every directory created below the ancestor therefore lies inside
// the same allowed root.
func (g *Guard) ResolveCreatable(requested string) (ResolvedPath, error) {
	const op = "resolve"

	abs, err := g.nominal(op, requested)
	if err != nil {
		return ResolvedPath{}, err
	}

	real, err := filepath.EvalSymlinks(abs)
	if err == nil {
		rootDir, ok := g.canonicalRoot(real)
		if !ok {
			return ResolvedPath{}, Errorf(op, requested, KindAccessDenied, msgEscapes)
		}
		return ResolvedPath{Path: real, Root: rootDir, Exists: true}, nil
	}
	if !isNotExist(err) {
		return ResolvedPath{}, NewError(op, requested, KindIOError, err)
	}

	var missing []string
	cur := abs
	for {
		if isDanglingSymlink(cur) {
			return ResolvedPath{}, Errorf(op, requested, KindAccessDenied, msgEscapes)
		}
		missing = append([]string{filepath.Base(cur)}, missing...)

		parent := filepath.Dir(cur)
		if parent == cur {
			return ResolvedPath{}, Errorf(op, requested, KindNotFound, "no existing ancestor for %s", abs)
		}

		realParent, err := filepath.EvalSymlinks(parent)
		if err == nil {
			rootDir, ok := g.canonicalRoot(realParent)
			if !ok {
				return ResolvedPath{}, Errorf(op, requested, KindAccessDenied, msgEscapes)
			}
			return ResolvedPath{
				Path: filepath.Join(append([]string{realParent}, missing...)...),
				Root: rootDir,
			}, nil
		}
		if !isNotExist(err) {
			return ResolvedPath{}, NewError(op, requested, KindIOError, err)
		}
		cur = parent
	}
}

// CheckSymlink resolves a symlink found while walking inside the sandbox and
// returns its real target, or KindAccessDenied when the target escapes every
// allowed root.
func (g *Guard) CheckSymlink(linkPath string) (string, error) {
	target, err := ResolveSymlink(linkPath)
	if err != nil {
		if isNotExist(err) {
			return "", NewError("resolve", linkPath, KindNotFound, err)
		}
		return "", NewError("resolve", linkPath, KindIOError, err)
	}
	if _, ok := g.canonicalRoot(target); !ok {
		return "", Errorf("resolve", linkPath, KindAccessDenied, msgEscapes)
	}
	return target, nil
}

// Nominal returns requested after "~" expansion, cwd resolution and
// cleaning, without following any symlink. It only performs the nominal
// containment check; callers that touch the filesystem must still Resolve.
func (g *Guard) Nominal(requested string) (string, error) {
	return g.nominal("resolve", requested)
}

// nominal performs the filesystem-free steps: home expansion, cwd
// resolution, normalization and the nominal containment check.
func (g *Guard) nominal(op, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return "", Errorf(op, requested, KindNotFound, "path cannot be empty")
	}

	abs, err := g.absolute(expandHome(requested, g.home))
	if err != nil {
		return "", NewError(op, requested, KindIOError, err)
	}

	for _, r := range g.roots {
		if isWithin(r.nominal, abs) || isWithin(r.canonical, abs) {
			return abs, nil
		}
	}

	return "", Errorf(op, requested, KindAccessDenied,
		"path outside allowed directories: %s not in %s", abs, strings.Join(g.given, ", "))
}

// canonicalRoot returns the most specific canonical root containing real.
func (g *Guard) canonicalRoot(real string) (string, bool) {
	best := ""
	for _, r := range g.roots {
		if isWithin(r.canonical, real) && len(r.canonical) > len(best) {
			best = r.canonical
		}
	}
	return best, best != ""
}

func (g *Guard) absolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	base := g.workDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("cannot determine working directory: %w", err)
		}
		base = wd
	}
	return filepath.Join(base, path), nil
}

// isWithin reports whether target equals base or descends from it. Both
// paths must be absolute and clean.
func isWithin(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func isDanglingSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}
