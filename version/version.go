// Package version reports build information set by the linker:
//
//	go build -ldflags "-X github.com/grovetools/leader/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information of this binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Short returns "leader <version> (<commit>)".
func (i Info) Short() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("leader %s (%s)", i.Version, commit)
}

func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Short())
	fmt.Fprintf(&b, "\n  Built:     %s", i.BuildDate)
	fmt.Fprintf(&b, "\n  Go:        %s", i.GoVersion)
	fmt.Fprintf(&b, "\n  Platform:  %s", i.Platform)
	return b.String()
}
