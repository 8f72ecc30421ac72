// Package version reports the sentidash build. Both values are set at build
// time with -ldflags "-X github.com/sentidash/sentidash/internal/version.Version=...".
package version

// Version is the release version, "development" for local builds.
var Version = "development"

// Commit is the git commit hash the binary was built from.
var Commit = "unknown"

// String returns Version, followed by "+commit" when the commit is known.
func String() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	return Version + "+" + Commit
}

// UserAgent is sent by the API client with every request.
func UserAgent() string {
	return "sentidash/" + String()
}
