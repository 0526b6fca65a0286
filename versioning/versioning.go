// Package versioning holds the build metadata of the zenith binary. The
// variables are stamped at build time, for example
//
//	go build -ldflags "-X github.com/0xPolygon/polygon-zenith/versioning.Version=v0.1.0"
package versioning

import "fmt"

var (
	Version   string
	Branch    string
	Commit    string
	BuildTime string
)

const unknown = "unknown"

// Build is the metadata of the running binary. Fields that were not stamped
// read "unknown".
type Build struct {
	Version   string
	Branch    string
	Commit    string
	BuildTime string
}

// Current returns the metadata stamped into this binary
func Current() Build {
	return Build{
		Version:   orUnknown(Version),
		Branch:    orUnknown(Branch),
		Commit:    orUnknown(Commit),
		BuildTime: orUnknown(BuildTime),
	}
}

// String renders the build as zenith/<version>-<short commit>
func (b Build) String() string {
	commit := b.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}

	return fmt.Sprintf("zenith/%s-%s", b.Version, commit)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}

	return s
}
