// Package version exposes build version information.
//
// Version, commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/echoscribe/echoscribe/version.Version=1.0.0"
//
// Without ldflags, values fall back to the module's embedded VCS metadata.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the reported version payload.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// GetVersionInfo assembles version information from ldflags values, falling
// back to the binary's build metadata.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
					if len(info.GitCommit) > 7 {
						info.GitCommit = info.GitCommit[:7]
					}
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
						info.BuildDate = t
						info.BuildTime = setting.Value
					}
				}
			}
		}
	}

	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}

	return info
}

// GetShortVersion returns "version-commit", with a dirty marker when the
// tree was modified.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	if info.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	}
	return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
}
