package version

import (
	"fmt"
	"runtime"
)

// Version is the release version embedded in the binary.
// It can be overridden at build time via:
// go build -ldflags "-X github.com/oukeidos/tamilfix/internal/version.Version=1.0.0"
var Version = "1.0.0"

// Commit is the git commit hash embedded in the binary.
var Commit = "unknown"

// BuildDate is the RFC3339 build timestamp embedded in the binary.
var BuildDate = "unknown"

// Details is the JSON shape served by GET /version.
type Details struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Build     string `json:"build"`
	GoVersion string `json:"go_version"`
}

// Get returns the embedded build details.
func Get() Details {
	return Details{
		Version:   Version,
		Commit:    Commit,
		Build:     BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("tamilfix %s\ncommit: %s\nbuild: %s", Version, Commit, BuildDate)
}
