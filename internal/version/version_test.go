package version

import (
	"runtime"
	"strings"
	"testing"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, b := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = v, c, b
	})
}

func TestInfo(t *testing.T) {
	restore(t)

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{"unknown commit", "1.0.0", "unknown", "1.0.0"},
		{"short commit", "1.0.0", "abc", "1.0.0"},
		{"exactly 7 chars", "2.0.0", "1234567", "2.0.0"},
		{"long commit truncated", "2.0.0", "abc1234567890", "2.0.0 (abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version
			Commit = tt.commit

			if got := Info(); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	restore(t)
	Version = "1.2.3"
	Commit = "abcdef123456"
	BuildDate = "2024-01-15"

	got := Full()
	for _, part := range []string{"planner version 1.2.3", "Commit: abcdef123456", "Built: 2024-01-15", runtime.Version()} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}

func TestCurrent(t *testing.T) {
	restore(t)
	Version = "9.9.9"

	info := Current()
	if info.Version != "9.9.9" || info.GoVersion != runtime.Version() {
		t.Errorf("Current() = %+v", info)
	}
}

func TestDefaultValues(t *testing.T) {
	if parts := strings.Split(Version, "."); len(parts) != 3 {
		t.Errorf("Version %q doesn't appear to be semver", Version)
	}
}
