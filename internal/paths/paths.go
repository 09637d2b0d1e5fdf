package paths

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// HomeEnvVar overrides the directory searched for the user config file
	HomeEnvVar = "SSISERVE_HOME"
	// AppDirName is the directory name used under the user config dir and the document root
	AppDirName = "ssiserve"
	// LocalDirName is the per-site config directory inside the document root
	LocalDirName = ".ssiserve"
)

// GetHome returns the user-level ssiserve directory.
// SSISERVE_HOME wins; otherwise <UserConfigDir>/ssiserve.
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// GetLocalDir returns the per-site config directory for a document root
func GetLocalDir(root string) string {
	return filepath.Join(root, LocalDirName)
}

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRoot reports whether path lies inside root.
// The check is lexical: both paths are cleaned, symlinks are not followed.
func IsWithinRoot(p string, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
func NormalizePath(p string) string {
	return filepath.ToSlash(p)
}

// CleanURLPath returns a rooted, cleaned URL path. ".." segments can never
// climb above "/". A trailing slash on the input is preserved.
func CleanURLPath(urlPath string) string {
	cleaned := path.Clean("/" + urlPath)
	if strings.HasSuffix(urlPath, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// JoinRootPath joins a document root with a URL path.
// The URL path is cleaned first so the result never leaves root.
func JoinRootPath(root string, urlPath string) string {
	cleaned := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if cleaned == "" {
		return filepath.Clean(root)
	}
	parts := strings.Split(cleaned, "/")
	return filepath.Join(append([]string{root}, parts...)...)
}
