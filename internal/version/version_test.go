package version

import (
	"strings"
	"testing"
)

func TestShortIncludesVersion(t *testing.T) {
	i := Info{Version: "1.4.0", GoVersion: "go1.25"}

	got := i.Short()
	if !strings.HasPrefix(got, "budgeteer 1.4.0") {
		t.Errorf("Short() = %q, want prefix %q", got, "budgeteer 1.4.0")
	}
	if !strings.Contains(got, "go1.25") {
		t.Errorf("Short() = %q, want Go version included", got)
	}
}

func TestShortRevisionTruncatesAndMarksDirty(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"empty", Info{}, ""},
		{"short", Info{VCSRevision: "abc123"}, "abc123"},
		{"truncated", Info{VCSRevision: "0123456789abcdef"}, "01234567"},
		{"dirty", Info{VCSRevision: "0123456789abcdef", VCSModified: true}, "01234567-dirty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.shortRevision(); got != tt.want {
				t.Errorf("shortRevision() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWarning(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		wantWarn bool
	}{
		{"release build", Info{Version: "1.0.0", VCSRevision: "abc"}, false},
		{"modified tree", Info{Version: "1.0.0", VCSModified: true}, true},
		{"dev build", Info{Version: "dev"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.Warning()
			if (got != "") != tt.wantWarn {
				t.Errorf("Warning() = %q, wantWarn %v", got, tt.wantWarn)
			}
		})
	}
}

func TestStringOmitsUnknownBuildTime(t *testing.T) {
	i := Info{Version: "dev", BuildTime: "unknown", GoVersion: "go1.25"}

	got := i.String()
	if strings.Contains(got, "unknown") {
		t.Errorf("String() = %q, should omit unknown build time", got)
	}
	if !strings.Contains(got, "Version:    dev") {
		t.Errorf("String() = %q, want version line", got)
	}
}
