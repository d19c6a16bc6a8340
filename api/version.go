package api

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Version and VersionCommit hold the version information
var (
	Version       = "0.1.0"
	VersionCommit = ""
)

// UserAgent identifies the client to the FIRMS and geocoding hosts
func UserAgent() string {
	if VersionCommit == "" {
		return "firms/" + Version
	}
	return "firms/" + Version + " (" + lo.Substring(VersionCommit, 0, 7) + ")"
}

func init() {
	if i, ok := debug.ReadBuildInfo(); ok {
		if vcsv, ok := lo.Find(i.Settings, func(s debug.BuildSetting) bool {
			return s.Key == "vcs.revision"
		}); ok {
			VersionCommit = vcsv.Value
		}
	}
}
