// Package version holds build information for ssiserve.
package version

// Overridable at build time:
// go build -ldflags "-X ssiserve/internal/version.Version=1.0.0 -X ssiserve/internal/version.Commit=abc123"
var (
	// Version is the semantic version of ssiserve
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "ssiserve version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// ServerHeader returns the value sent in the HTTP Server header
func ServerHeader() string {
	return "ssiserve/" + Version
}
