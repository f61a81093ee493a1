// Package buildinfo reports the version and commit the binary was built from.
package buildinfo

import "runtime/debug"

// overridden during build with ldflags:
//
//	go build -ldflags "-X docuisine/internal/core/buildinfo.version=1.2.0 -X docuisine/internal/core/buildinfo.commit=$(git rev-parse --short HEAD)"
var (
	version = "0.0.0"
	commit  = ""
)

type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commitHash"`
}

// Get prefers explicit overrides, then ldflags, then the VCS stamp the Go
// toolchain embeds.
func Get(versionOverride, commitOverride string) Info {
	info := Info{Version: version, Commit: commit}
	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
					break
				}
			}
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if versionOverride != "" {
		info.Version = versionOverride
	}
	if commitOverride != "" {
		info.Commit = commitOverride
	}
	return info
}
