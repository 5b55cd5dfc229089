package fleetcache

import (
	"runtime"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	versionInfo := GetVersionInfo()

	if versionInfo.Version == "" {
		t.Error("Version should not be empty")
	}

	if versionInfo.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, versionInfo.Version)
	}

	if versionInfo.GoVersion != runtime.Version() {
		t.Errorf("Expected Go version %s, got %s", runtime.Version(), versionInfo.GoVersion)
	}
}

func TestVersionConstant(t *testing.T) {
	if Version == "" {
		t.Error("Version constant should not be empty")
	}

	if len(Version) < 5 {
		t.Errorf("Version %s seems too short, expected format like 'v1.0.0'", Version)
	}
}
