package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the current version of the application
	Version = "0.2.0"

	// OutputFormatVersion identifies the layout of the output workbook and
	// city summary CSV
	OutputFormatVersion = "v1"
)

// Overridden at build time with -ldflags "-X impulseradar/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	OutputFormat string `json:"output_format"`
}

// GetVersionInfo collects version details. When the commit was not injected
// at link time it falls back to the VCS stamp recorded by the Go toolchain.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		OutputFormat: OutputFormatVersion,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}
	return info
}

func applyBuildSettings(info *VersionInfo, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && s.Value != "" {
				info.GitCommit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && s.Value != "" {
				info.BuildTime = s.Value
			}
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String renders the details on one line
func (v VersionInfo) String() string {
	return fmt.Sprintf("Impulse Radar v%s (output %s, built: %s, commit: %s, go: %s, %s)",
		v.Version, v.OutputFormat, v.BuildTime, v.GitCommit, v.GoVersion, v.Platform)
}

// GetVersionString returns the short product version
func GetVersionString() string {
	return "Impulse Radar v" + Version
}

// GetFullVersionString returns the version line printed by -version
func GetFullVersionString() string {
	return GetVersionInfo().String()
}
