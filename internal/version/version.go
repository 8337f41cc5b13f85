// Package version exposes build metadata for the version command and
// the /api/version endpoint.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via ldflags at release build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info is the build description served by the API.
type Info struct {
	Version     string `json:"version"`
	BuildTime   string `json:"build_time"`
	GoVersion   string `json:"go_version"`
	VCSRevision string `json:"vcs_revision,omitempty"`
	VCSTime     string `json:"vcs_time,omitempty"`
	VCSModified bool   `json:"vcs_modified"`
}

// Get assembles Info from the ldflags values and, when the binary was
// built from a repository, the embedded VCS settings.
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.VCSRevision = s.Value
		case "vcs.time":
			info.VCSTime = s.Value
		case "vcs.modified":
			info.VCSModified = s.Value == "true"
		}
	}

	return info
}

// Short returns the one-line form used by the CLI, such as
// "budgeteer dev (go1.25, commit 1a2b3c4d)".
func (i Info) Short() string {
	s := "budgeteer " + i.Version
	var extra []string
	if i.GoVersion != "" {
		extra = append(extra, i.GoVersion)
	}
	if rev := i.shortRevision(); rev != "" {
		extra = append(extra, "commit "+rev)
	}
	if len(extra) > 0 {
		s += " (" + strings.Join(extra, ", ") + ")"
	}
	return s
}

// String returns the multi-field form printed by `budgeteer version`.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Version:    %s\n", i.Version)
	if i.BuildTime != "unknown" {
		fmt.Fprintf(&b, "Built:      %s\n", i.BuildTime)
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, "Go:         %s\n", i.GoVersion)
	}
	if rev := i.shortRevision(); rev != "" {
		fmt.Fprintf(&b, "Commit:     %s\n", rev)
	}
	if i.VCSTime != "" {
		fmt.Fprintf(&b, "Committed:  %s\n", i.VCSTime)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Warning reports a non-empty message for builds that should not be
// trusted as a release: modified trees and plain development builds.
func (i Info) Warning() string {
	if i.VCSModified {
		return "binary built from a modified source tree"
	}
	if i.VCSRevision == "" && i.Version == "dev" {
		return "development build with no version control information"
	}
	return ""
}

func (i Info) shortRevision() string {
	rev := i.VCSRevision
	if len(rev) > 8 {
		rev = rev[:8]
	}
	if rev != "" && i.VCSModified {
		rev += "-dirty"
	}
	return rev
}
