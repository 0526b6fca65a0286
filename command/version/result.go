package version

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/versioning"
)

type VersionResult struct {
	Agent     string `json:"agent"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"buildTime"`
}

func newVersionResult(b versioning.Build) *VersionResult {
	return &VersionResult{
		Agent:     b.String(),
		Version:   b.Version,
		Commit:    b.Commit,
		Branch:    b.Branch,
		BuildTime: b.BuildTime,
	}
}

func (r *VersionResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ZENITH BUILD]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Agent|%s", r.Agent),
		fmt.Sprintf("Release|%s", r.Version),
		fmt.Sprintf("Branch|%s", r.Branch),
		fmt.Sprintf("Commit|%s", r.Commit),
		fmt.Sprintf("Built|%s", r.BuildTime),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
