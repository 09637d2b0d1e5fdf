// Package testutil provides testing utilities for golden tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// SiteFixture holds information about a loaded site fixture.
type SiteFixture struct {
	// Name is the fixture directory name (e.g., "basic")
	Name string

	// Dir is the absolute path to the fixture directory
	Dir string

	// Root is the document root served for the fixture (Dir/root)
	Root string

	// ExpectedDir is the path to the expected/ directory
	ExpectedDir string
}

// LoadSite loads a site fixture, failing the test on error.
func LoadSite(t *testing.T, name string) *SiteFixture {
	t.Helper()

	dir := filepath.Join(getSitesRoot(t), name)
	root := filepath.Join(dir, "root")
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("Fixture document root not found: %s", root)
	}

	expectedDir := filepath.Join(dir, "expected")
	if _, err := os.Stat(expectedDir); os.IsNotExist(err) {
		if err := os.MkdirAll(expectedDir, 0o755); err != nil {
			t.Fatalf("Failed to create expected directory: %v", err)
		}
	}

	return &SiteFixture{
		Name:        name,
		Dir:         dir,
		Root:        root,
		ExpectedDir: expectedDir,
	}
}

// ExpectedPath returns the path to the golden file for a URL path.
func (f *SiteFixture) ExpectedPath(urlPath string) string {
	rel := filepath.FromSlash(strings.TrimPrefix(urlPath, "/"))
	return filepath.Join(f.ExpectedDir, rel+".golden")
}

// Documents returns the URL paths that have a golden file, in walk order.
func (f *SiteFixture) Documents(t *testing.T) []string {
	t.Helper()

	var docs []string
	err := filepath.WalkDir(f.ExpectedDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".golden") {
			return nil
		}
		rel, err := filepath.Rel(f.ExpectedDir, strings.TrimSuffix(p, ".golden"))
		if err != nil {
			return err
		}
		docs = append(docs, "/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list golden files: %v", err)
	}
	return docs
}

// getSitesRoot returns the absolute path to testdata/sites/.
func getSitesRoot(t *testing.T) string {
	t.Helper()

	// Get the directory of this source file
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	sitesRoot := filepath.Join(projectRoot, "testdata", "sites")

	if _, err := os.Stat(sitesRoot); os.IsNotExist(err) {
		t.Fatalf("Sites root not found: %s", sitesRoot)
	}

	return sitesRoot
}

// AvailableSites returns the names of all site fixtures.
func AvailableSites(t *testing.T) []string {
	t.Helper()

	root := getSitesRoot(t)
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("Failed to read sites directory: %v", err)
	}

	var sites []string
	for _, entry := range entries {
		if entry.IsDir() && !isHiddenDir(entry.Name()) {
			if _, err := os.Stat(filepath.Join(root, entry.Name(), "root")); err == nil {
				sites = append(sites, entry.Name())
			}
		}
	}

	return sites
}

// WriteFile creates root/rel with content, making parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return p
}

func isHiddenDir(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
