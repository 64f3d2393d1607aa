// Package buildinfo reports which opamresolve build is running.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// release is set with -ldflags "-X .../internal/buildinfo.release=v0.2.0"
// by release builds.
var release string

// Version returns the version string for the current build: the linked-in
// release, else the module version from go install, else "dev-<hash>" with
// "-dirty" for modified checkouts. It is "dev" without VCS data.
func Version() string {
	if release != "" {
		return release
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	return fromBuildInfo(info)
}

// Describe returns the version line printed by --version.
func Describe() string {
	return fmt.Sprintf("%s (%s %s/%s)", Version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		return "dev-" + revision + "-dirty"
	}
	return "dev-" + revision
}
