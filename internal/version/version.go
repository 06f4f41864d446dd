// Package version provides build-time version information.
package version

import "fmt"

// Injected via ldflags, e.g.
// -X jobdesk/internal/version.Version=v1.2.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = ""
)

// Info contains build-time version information.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// Get returns the version information for this build.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

// String formats the version for the -version flag.
func (i Info) String() string {
	if i.BuildTime != "" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
	}
	return fmt.Sprintf("%s (commit: %s)", i.Version, i.GitCommit)
}
