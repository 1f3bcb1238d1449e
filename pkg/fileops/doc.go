// Package fileops confines filesystem access to a fixed set of allowed root
// directories.
//
// A Guard is built once from the configured directories and validates every
// path before it is touched. Validation happens in two passes: the requested
// path is normalized and checked against the roots without touching the
// filesystem, then its real path (or its parent's real path, for entries
// that do not exist yet) is resolved and checked again. The second pass is
// what rejects a symlink that sits inside the sandbox but points outside it.
//
//	guard, err := fileops.NewGuard([]string{"~/projects"})
//	if err != nil {
//	    return err
//	}
//	p, err := guard.Resolve("~/projects/app/main.go", true)
//	if fileops.KindOf(err) == fileops.KindAccessDenied {
//	    // outside the sandbox
//	}
//
// # Errors
//
// Every failure is an *Error carrying the operation, the requested path and a
// Kind. Use errors.Is with the sentinel values (ErrAccessDenied, ErrNotFound,
// ...) or KindOf to branch on the kind.
//
// # Walks
//
// WalkTree and Search traverse a resolved directory. Both are depth bounded,
// deterministic in their output order and never follow a symlink whose target
// escapes the allowed roots.
//
// # Atomic Operations
//
// AtomicCopy writes through a temporary file and a rename so the destination
// appears fully copied or not at all. EnsureDirectoryExists creates nested
// directories one segment at a time inside an os.Root.
package fileops
