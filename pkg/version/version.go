// Package version provides build version information.
// Version is set at build time via ldflags:
// go build -ldflags "-X github.com/Rorqualx/smoothie-go/pkg/version.Version=1.0.0"
package version

import (
	"runtime"
	"runtime/debug"
)

// Version is the application version, set at build time.
var Version = "dev"

// Full returns the version string, with the VCS revision appended when
// the binary was built from a repository checkout.
func Full() string {
	rev := revision()
	if rev == "" {
		return Version
	}
	return Version + "+" + rev
}

// GoVersion returns the Go runtime version.
func GoVersion() string {
	return runtime.Version()
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}
