package testutil

import (
	"bytes"
	"path/filepath"
)

// Normalize prepares rendered output for stable golden comparison:
// CRLF line endings become LF and absolute fixture paths become "<root>".
func Normalize(fixture *SiteFixture, data []byte) []byte {
	out := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if fixture == nil || fixture.Root == "" {
		return out
	}
	for _, root := range []string{fixture.Root, filepath.ToSlash(fixture.Root)} {
		out = bytes.ReplaceAll(out, []byte(root), []byte("<root>"))
	}
	return out
}
