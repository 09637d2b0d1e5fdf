// Package include expands server-side include directives in HTML documents.
package include

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"ssiserve/internal/errors"
	"ssiserve/internal/paths"
	"ssiserve/internal/slogutil"
)

// DefaultMaxDepth bounds include nesting when Config.MaxDepth is unset.
const DefaultMaxDepth = 16

// Policy decides which include targets may be read.
// *resolver.Resolver satisfies it.
type Policy interface {
	IsForbidden(fsPath string) bool
}

// Config configures an Engine.
type Config struct {
	// Root is the document root; rooted targets resolve against it and
	// no target may leave it.
	Root     string
	MaxDepth int
	Policy   Policy
	Logger   *slog.Logger
}

// Document is a file read for rendering.
type Document struct {
	Path    string
	URLPath string
	Ext     string
	Content []byte
}

// Result is the fully expanded output of a top-level document.
type Result struct {
	Content []byte
	// Suffix is the delivery extension; .shtml becomes .html.
	Suffix string
	// Includes counts directives expanded successfully, at any depth.
	Includes int
	// Failures lists directives replaced by an inline error marker.
	Failures []*errors.SsiError
}

// Engine renders documents. It keeps no per-call state and is safe for
// concurrent use.
type Engine struct {
	root     string
	maxDepth int
	policy   Policy
	logger   *slog.Logger
}

// NewEngine creates an include engine.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = slogutil.NewDiscardLogger()
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		root = filepath.Clean(cfg.Root)
	}
	return &Engine{
		root:     root,
		maxDepth: cfg.MaxDepth,
		policy:   cfg.Policy,
		logger:   cfg.Logger,
	}
}

// Render reads the document at fsPath and returns it with every include
// expanded. Problems with individual includes become inline markers; only
// a failure to read fsPath itself is returned as an error.
func (e *Engine) Render(fsPath, urlPath string) (*Result, error) {
	if abs, err := filepath.Abs(fsPath); err == nil {
		fsPath = abs
	}
	doc, err := readDocument(fsPath, urlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSsiError(errors.NotFound, fmt.Sprintf("File not found: %s", urlPath), err)
		}
		return nil, errors.NewSsiError(errors.InternalError, fmt.Sprintf("read %s", urlPath), err)
	}

	res := &Result{Suffix: DeliverySuffix(fsPath)}
	res.Content = e.expand(doc, []string{canonicalKey(doc.Path)}, res)
	return res, nil
}

// expand substitutes every directive of doc. chain holds the canonical
// paths of doc and its includers, outermost first.
func (e *Engine) expand(doc *Document, chain []string, res *Result) []byte {
	directives := Scan(doc.Content)
	if len(directives) == 0 {
		return doc.Content
	}

	var out bytes.Buffer
	out.Grow(len(doc.Content))
	prev := 0
	for _, d := range directives {
		out.Write(doc.Content[prev:d.Start])
		out.Write(e.include(doc, d, chain, res))
		prev = d.End
	}
	out.Write(doc.Content[prev:])
	return out.Bytes()
}

// include renders one directive's target or returns an error marker.
func (e *Engine) include(parent *Document, d Directive, chain []string, res *Result) []byte {
	target := d.Target
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}

	var fsPath, urlPath string
	if strings.HasPrefix(target, "/") {
		fsPath = paths.JoinRootPath(e.root, target)
		urlPath = path.Clean(target)
	} else {
		fsPath = filepath.Join(filepath.Dir(parent.Path), filepath.FromSlash(target))
		urlPath = path.Join(path.Dir(parent.URLPath), target)
	}

	if !paths.IsWithinRoot(fsPath, e.root) || (e.policy != nil && e.policy.IsForbidden(fsPath)) {
		return e.fail(res, errors.IncludeForbidden, "Include not permitted", d.Target, parent, chain)
	}

	key := canonicalKey(fsPath)
	for _, seen := range chain {
		if seen == key {
			return e.fail(res, errors.IncludeCycle, "Include cycle detected", d.Target, parent, chain)
		}
	}
	if len(chain) > e.maxDepth {
		return e.fail(res, errors.IncludeTooDeep, "Include depth limit exceeded", d.Target, parent, chain)
	}

	doc, err := readDocument(fsPath, urlPath)
	if err != nil {
		return e.fail(res, errors.IncludeTargetMissing, "File not found", d.Target, parent, chain)
	}

	e.logger.Debug("Include resolved",
		"document", parent.URLPath,
		"target", d.Target,
		"path", fsPath,
		"depth", len(chain),
	)
	res.Includes++

	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	return e.expand(doc, append(next, key), res)
}

// fail records a failed directive and returns its inline marker.
func (e *Engine) fail(res *Result, code errors.ErrorCode, message, target string, parent *Document, chain []string) []byte {
	err := errors.NewSsiError(code, message+": "+target, nil).WithDetails(chain)
	res.Failures = append(res.Failures, err)

	e.logger.Warn("Include failed",
		"code", string(code),
		"document", parent.URLPath,
		"target", target,
	)
	return []byte(Marker(message + ": " + target))
}

// Marker formats the visible text that replaces a failed directive.
func Marker(message string) string {
	return `<span class="ssi-error">[an error occurred while processing this directive: ` +
		html.EscapeString(message) + `]</span>`
}

// DeliverySuffix returns the extension used to deliver a rendered file.
func DeliverySuffix(fsPath string) string {
	ext := strings.ToLower(filepath.Ext(fsPath))
	if ext == ".shtml" {
		return ".html"
	}
	return ext
}

func readDocument(fsPath, urlPath string) (*Document, error) {
	content, err := os.ReadFile(fsPath)
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:    fsPath,
		URLPath: urlPath,
		Ext:     strings.ToLower(filepath.Ext(fsPath)),
		Content: content,
	}, nil
}

// canonicalKey identifies a file for cycle detection; symlinks are
// resolved so that two names for one file count as the same document.
func canonicalKey(fsPath string) string {
	abs, err := filepath.Abs(fsPath)
	if err != nil {
		abs = filepath.Clean(fsPath)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
