// Package build describes the running binary.
//
// Values set with -ldflags win; otherwise the commit and date come from the
// VCS stamp the Go toolchain embeds.
package build

import (
	"runtime"
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/x-tilewm"
)

func init() {
	var settings []debug.BuildSetting
	if info, ok := debug.ReadBuildInfo(); ok {
		settings = info.Settings
	}
	Current = newBuild(commit, date, version, repoURL, settings)
}

var Current Build

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Modified  bool      `json:"modified,omitempty"`
	Version   string    `json:"version,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	GoVersion string    `json:"go_version,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

func newBuild(commit, date, version, repoURL string, settings []debug.BuildSetting) Build {
	modified := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "" {
				commit = s.Value
			}
		case "vcs.time":
			if date == "" {
				date = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	t, _ := time.Parse(time.RFC3339, date)
	b := Build{
		Commit:    commit,
		Modified:  modified,
		Version:   version,
		Date:      t,
		GoVersion: runtime.Version(),
		RepoURL:   repoURL,
	}
	if repoURL != "" && commit != "" {
		b.CommitURL = repoURL + "/tree/" + commit
	}
	return b
}

// String is the version line shown by --version.
func (b Build) String() string {
	s := b.Version
	if b.Commit != "" {
		s += " (" + short(b.Commit)
		if b.Modified {
			s += "-dirty"
		}
		s += ")"
	}
	return s
}

// UserAgent identifies the command line client to the API.
func (b Build) UserAgent() string {
	return "x-tilewm/" + b.Version
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
