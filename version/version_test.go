package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	GitCommit = ""
	BuildTime = ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.BuildDate.IsZero() {
		t.Error("BuildDate should not be zero")
	}
}

func TestGetVersionInfoWithBuildTime(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234"
	BuildTime = "2024-01-15T10:30:00Z"

	info := GetVersionInfo()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
}

func TestGetVersionInfoDirtyVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0-dirty"
	GitCommit = ""
	BuildTime = ""

	info := GetVersionInfo()
	if info.IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestGetShortVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	GitCommit = ""
	BuildTime = ""

	if sv := GetShortVersion(); !strings.Contains(sv, "dev") {
		t.Errorf("expected short version to contain 'dev', got %q", sv)
	}

	Version = "1.0.0"
	GitCommit = "abc1234"
	sv := GetShortVersion()
	if !strings.HasPrefix(sv, "1.0.0-abc1234") {
		t.Errorf("expected '1.0.0-abc1234' prefix, got %q", sv)
	}
}
