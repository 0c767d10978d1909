// Package version provides information about the build version of the service.
package version

import "runtime/debug"

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
}

// Info returns the build information. The version, commit, and date variables
// are set at build time with -ldflags, e.g.
// -X 'dadhumor/internal/core/version.version=v0.1.0' -X 'dadhumor/internal/core/version.commit=abcd'
func Info() BuildInfo {
	bi := BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	if b, ok := debug.ReadBuildInfo(); ok && b != nil {
		bi.GoVersion = b.GoVersion
	}
	return bi
}

// SetService names the running binary in build info
func SetService(name string) {
	if name != "" {
		service = name
	}
}

var (
	service = "dadhumor"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
