package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// updateGolden controls whether golden files should be updated.
	// Use: go test ./... -run TestGolden -update
	updateGolden = flag.Bool("update", false, "update golden files")

	// goldenSite filters which site fixtures are tested.
	// Use: go test ./... -run TestGolden -goldenSite=basic
	goldenSite = flag.String("goldenSite", "", "filter sites (comma-separated)")
)

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// ShouldTestSite returns true if the given site should be tested.
func ShouldTestSite(name string) bool {
	if *goldenSite == "" {
		return true
	}
	for _, s := range strings.Split(*goldenSite, ",") {
		if strings.TrimSpace(s) == name {
			return true
		}
	}
	return false
}

// CompareGolden compares got against the golden file for urlPath, failing
// with a diff on mismatch. If -update is set, the golden file is rewritten.
func CompareGolden(t *testing.T, fixture *SiteFixture, urlPath string, got []byte) {
	t.Helper()

	normalized := Normalize(fixture, got)
	goldenPath := fixture.ExpectedPath(urlPath)

	if *updateGolden {
		UpdateGolden(t, fixture, urlPath, normalized)
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, string(normalized), t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}
	expected = Normalize(nil, expected)

	if !bytes.Equal(normalized, expected) {
		diff := unifiedDiff(string(expected), string(normalized), goldenPath)
		t.Fatalf("Golden mismatch for %s:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			urlPath, diff, t.Name())
	}
}

// UpdateGolden writes data to the golden file for urlPath.
// Creates parent directories if they don't exist.
func UpdateGolden(t *testing.T, fixture *SiteFixture, urlPath string, data []byte) {
	t.Helper()

	goldenPath := fixture.ExpectedPath(urlPath)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		t.Fatalf("Failed to create expected directory: %v", err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
}

// unifiedDiff produces a line-by-line diff of two strings. Only changed
// lines and up to three lines of leading context are shown.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	n := max(len(expectedLines), len(gotLines))
	lastShown := -1
	for i := 0; i < n; i++ {
		var exp, cur string
		hasExp, hasCur := i < len(expectedLines), i < len(gotLines)
		if hasExp {
			exp = expectedLines[i]
		}
		if hasCur {
			cur = gotLines[i]
		}
		if hasExp && hasCur && exp == cur {
			continue
		}

		start := max(lastShown+1, i-3)
		if start > lastShown+1 || lastShown == -1 {
			fmt.Fprintf(&buf, "@@ line %d @@\n", start+1)
		}
		for j := start; j < i; j++ {
			buf.WriteString(" " + expectedLines[j] + "\n")
		}
		if hasExp {
			buf.WriteString("-" + exp + "\n")
		}
		if hasCur {
			buf.WriteString("+" + cur + "\n")
		}
		lastShown = i
	}

	return buf.String()
}

// ForEachSite runs a test function for each available site fixture.
// Respects the -goldenSite flag.
func ForEachSite(t *testing.T, fn func(t *testing.T, fixture *SiteFixture)) {
	t.Helper()

	sites := AvailableSites(t)
	if len(sites) == 0 {
		t.Skip("No site fixtures available")
	}

	for _, name := range sites {
		if !ShouldTestSite(name) {
			continue
		}
		t.Run(name, func(t *testing.T) {
			fn(t, LoadSite(t, name))
		})
	}
}
