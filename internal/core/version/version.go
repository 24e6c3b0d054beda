// Package version reports what build is running
package version

import "runtime/debug"

// Service is the name the API reports for itself
const Service = "hostdesk-api"

// set with -ldflags "-X hostdesk/internal/core/version.version=v0.3.0 -X ...commit=abcd -X ...date=2026-10-01"
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// BuildInfo is the /meta/version payload
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Info prefers ldflags and falls back to the vcs stamp go build embeds
func Info() BuildInfo {
	bi := BuildInfo{Service: Service, Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok {
		bi.GoVersion = info.GoVersion
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && bi.Commit == "":
				bi.Commit = s.Value
			case s.Key == "vcs.time" && bi.Date == "":
				bi.Date = s.Value
			}
		}
	}
	if bi.Commit == "" {
		bi.Commit = "none"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
}
