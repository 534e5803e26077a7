// Package version reports the lrcfetch build version.
package version

import (
	"fmt"
	"runtime/debug"
)

const modulePath = "github.com/mydehq/lrcfetch"

var (
	// These variables are set via -ldflags during build
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Get returns the version, resolving it from debug.BuildInfo when the
// binary was built with go install.
func Get() string {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
				return info.Main.Version
			}
			for _, dep := range info.Deps {
				if dep.Path == modulePath {
					return dep.Version
				}
			}
		}
	}
	return Version
}

// String returns a formatted version string
func String() string {
	return fmt.Sprintf("%s (Commit: %s, Built: %s)", Get(), Commit, Date)
}

// UserAgent is sent with every provider request
func UserAgent() string {
	return "lrcfetch/" + Get()
}
