// Package resolver maps request URL paths to files under a document root.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ssiserve/internal/errors"
	"ssiserve/internal/paths"
)

// Options controls index probing and extension policy.
type Options struct {
	// IndexFiles are probed in order for URLs ending in "/".
	IndexFiles []string
	// ForbiddenExtensions are never served, even if the file exists.
	ForbiddenExtensions []string
	// RenderExtensions mark documents that go through the include engine.
	RenderExtensions []string
}

// DefaultOptions returns the stock index order and extension lists.
func DefaultOptions() Options {
	return Options{
		IndexFiles:          []string{"index.html", "index.htm", "index.shtml"},
		ForbiddenExtensions: []string{".py", ".pyc", ".cgi", ".pl", ".php"},
		RenderExtensions:    []string{".html", ".shtml"},
	}
}

// Resolution is the outcome of mapping one URL path.
type Resolution struct {
	// URLPath is the cleaned request path.
	URLPath string
	// Path is the filesystem path to serve.
	Path string
	// Render is true when Path is an existing document for the include engine.
	Render bool
	// Directory is true when Path is a directory with no index file.
	Directory bool
}

// Resolver resolves URL paths against one document root.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	root string
	opts Options
}

// New creates a resolver for root.
func New(root string, opts Options) *Resolver {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return &Resolver{root: abs, opts: opts}
}

// Resolve maps urlPath against documentRoot using DefaultOptions.
func Resolve(urlPath, documentRoot string) (Resolution, error) {
	return New(documentRoot, DefaultOptions()).Resolve(urlPath)
}

// Root returns the document root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a decoded URL path to a filesystem path. "?" and "#" are
// ordinary characters here; callers strip any query before resolving.
// Forbidden extensions, the private config directory and a trailing slash
// on a non-directory yield NOT_FOUND. A missing file is not an error here;
// the dispatcher reports it.
func (r *Resolver) Resolve(urlPath string) (Resolution, error) {
	cleaned := paths.CleanURLPath(urlPath)
	res := Resolution{URLPath: cleaned}

	if r.isPrivate(cleaned) {
		return res, notFound(urlPath)
	}

	fsPath := paths.JoinRootPath(r.root, cleaned)
	if r.IsForbidden(fsPath) {
		return res, notFound(urlPath)
	}

	trailing := strings.HasSuffix(cleaned, "/")
	indexed := false
	if trailing {
		info, err := os.Stat(fsPath)
		if err == nil && !info.IsDir() {
			return res, notFound(urlPath)
		}
		if err == nil {
			res.Directory = true
			for _, name := range r.opts.IndexFiles {
				candidate := filepath.Join(fsPath, name)
				if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
					fsPath = candidate
					res.Directory = false
					indexed = true
					break
				}
			}
		}
	}

	res.Path = fsPath
	if (!trailing || indexed) && r.IsRenderable(fsPath) {
		if fi, err := os.Stat(fsPath); err == nil && fi.Mode().IsRegular() {
			res.Render = true
		}
	}
	return res, nil
}

// IsForbidden reports whether fsPath must never be served or included:
// its extension is forbidden or it lies in the private config directory.
func (r *Resolver) IsForbidden(fsPath string) bool {
	if hasExtension(fsPath, r.opts.ForbiddenExtensions) {
		return true
	}
	return paths.IsWithinRoot(fsPath, paths.GetLocalDir(r.root))
}

// IsRenderable reports whether the file extension goes through the include engine.
func (r *Resolver) IsRenderable(fsPath string) bool {
	return hasExtension(fsPath, r.opts.RenderExtensions)
}

func (r *Resolver) isPrivate(cleaned string) bool {
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == paths.LocalDirName {
			return true
		}
	}
	return false
}

func hasExtension(p string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func notFound(urlPath string) error {
	return errors.NewSsiError(errors.NotFound, fmt.Sprintf("File not found: %s", urlPath), nil)
}
