// Package pack copies recipe sources and build artifacts into the export
// and package layouts.
package pack

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Status classifies the outcome of a copy.
type Status int

const (
	// Copied means at least one file was copied.
	Copied Status = iota
	// NotFound means the source folder is missing or nothing matched.
	NotFound
	// PermissionDenied means a file or folder could not be accessed.
	PermissionDenied
	// Failed covers every other error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Copied:
		return "copied"
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	}
	return "failed"
}

// Result is the outcome of one Copy call.
type Result struct {
	Pattern string
	Src     string
	Dst     string
	Status  Status
	// Files are the destination paths written, in walk order.
	Files []string
	Err   error
}

func (r Result) String() string {
	s := fmt.Sprintf("copy %s from %s to %s: %s", r.Pattern, r.Src, r.Dst, r.Status)
	if r.Status == Copied {
		s += fmt.Sprintf(" (%d files)", len(r.Files))
	}
	if r.Err != nil {
		s += ": " + r.Err.Error()
	}
	return s
}

// OK reports whether the copy succeeded.
func (r Result) OK() bool {
	return r.Status == Copied
}

func statusOf(err error) Status {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	}
	return Failed
}

// Copy copies the files below src whose slash-separated path relative to
// src matches pattern. A "*" in pattern matches any sequence of characters,
// including separators. With keepPath the relative path is kept below
// dst, otherwise files are copied flat into dst.
func Copy(pattern, src, dst string, keepPath bool) Result {
	ret := Result{Pattern: pattern, Src: src, Dst: dst}

	g, err := compile(pattern)
	if err != nil {
		ret.Status, ret.Err = Failed, err
		return ret
	}
	info, err := os.Stat(src)
	if err != nil {
		ret.Status, ret.Err = statusOf(err), err
		return ret
	}
	if !info.IsDir() {
		ret.Status, ret.Err = Failed, fmt.Errorf("%s is not a directory", src)
		return ret
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if !g.Match(filepath.ToSlash(rel)) {
			return nil
		}
		target := filepath.Join(dst, d.Name())
		if keepPath {
			target = filepath.Join(dst, rel)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		ret.Files = append(ret.Files, target)
		return nil
	})
	switch {
	case err != nil:
		ret.Status, ret.Err = statusOf(err), err
	case len(ret.Files) == 0:
		ret.Status = NotFound
	default:
		ret.Status = Copied
	}
	return ret
}

// compile compiles a shell pattern. No separators are declared, so "*"
// and "?" also match "/".
func compile(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return g, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
