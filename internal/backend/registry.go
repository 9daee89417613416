package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Sentinel errors returned during resolution.
var (
	ErrNoBackendAvailable = errors.New("no usable converter backend found")
	ErrNotExecutable      = errors.New("not an executable file")
)

// Backend is one usable converter executable. Identity is Path.
type Backend struct {
	Path     string `json:"path" yaml:"path"`
	Tag      string `json:"tag" yaml:"tag"`           // Short label for logs, e.g. "2013" or "csgo".
	Priority int    `json:"priority" yaml:"priority"` // Position in the candidate list; lower runs first.
}

func (b Backend) String() string { return b.Tag }

// Candidate is the resolution verdict for one configured path. Err is nil
// when the candidate is usable.
type Candidate struct {
	Configured string
	Resolved   string
	Tag        string
	Err        error
}

// Registry turns an ordered candidate list into usable backends.
type Registry struct {
	candidates []string
	baseDir    string
}

// NewRegistry creates a registry. Relative candidates are resolved against
// baseDir; an empty baseDir means the directory of the running executable.
func NewRegistry(candidates []string, baseDir string) *Registry {
	return &Registry{candidates: append([]string(nil), candidates...), baseDir: baseDir}
}

// Resolve keeps every candidate that names an existing executable file,
// preserving candidate order. It fails with [ErrNoBackendAvailable] when
// nothing survives.
func (r *Registry) Resolve() ([]Backend, error) {
	var out []Backend
	for i, c := range r.Inspect() {
		if c.Err != nil {
			continue
		}
		out = append(out, Backend{Path: c.Resolved, Tag: c.Tag, Priority: i})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w (tried %d candidates)", ErrNoBackendAvailable, len(r.candidates))
	}
	return out, nil
}

// ByPriority returns the backend configured at candidate position p.
func ByPriority(backends []Backend, p int) (Backend, bool) {
	for _, b := range backends {
		if b.Priority == p {
			return b, true
		}
	}
	return Backend{}, false
}

// Inspect reports the verdict for every candidate, usable or not. Used by
// --check and for debug logging.
func (r *Registry) Inspect() []Candidate {
	base := r.base()
	out := make([]Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		resolved := c
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(base, resolved)
		}
		resolved = filepath.Clean(resolved)
		out = append(out, Candidate{
			Configured: c,
			Resolved:   resolved,
			Tag:        DeriveTag(c),
			Err:        checkExecutable(resolved),
		})
	}
	return out
}

func (r *Registry) base() string {
	if r.baseDir != "" {
		return r.baseDir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// checkExecutable returns nil when path is a regular file the current
// platform can execute: any execute bit on Unix, a runnable extension on
// Windows.
func checkExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".exe", ".bat", ".cmd", ".com":
			return nil
		}
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	if fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	return nil
}

// DeriveTag returns the path segment nearest the executable that is neither
// the executable's own name nor a generic "bin" directory. Both '/' and '\'
// separate segments so Windows install paths tag correctly on any host.
func DeriveTag(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return path
	}
	exe := strings.ToLower(parts[len(parts)-1])
	for i := len(parts) - 1; i >= 0; i-- {
		p := strings.ToLower(parts[i])
		if p == exe || p == "bin" || p == "." || p == ".." {
			continue
		}
		return parts[i]
	}
	return parts[len(parts)-1]
}
