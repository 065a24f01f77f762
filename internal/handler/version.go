package handler

import (
	"net/http"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X .../internal/handler.GitCommit=..." in release
// builds. Left empty, they are read from the embedded VCS stamp.
var (
	BuildTime string
	GitCommit string
)

type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuildTime string `json:"build_time,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// buildVersionInfo merges the linker-provided values with the build
// settings recorded by the go command
func buildVersionInfo(version string, settings []debug.BuildSetting) VersionInfo {
	if version == "" {
		version = "dev"
	}
	info := VersionInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// HandleVersion serves the build information, computed once
func HandleVersion(version string) http.HandlerFunc {
	var settings []debug.BuildSetting
	if bi, ok := debug.ReadBuildInfo(); ok {
		settings = bi.Settings
	}
	info := buildVersionInfo(version, settings)
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}
