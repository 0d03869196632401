// Package buildinfo prints the version banner. The values are set at link
// time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/mobank/internal/buildinfo.buildVersion=v1.2.0" ./cmd/cli
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const notAvailable = "N/A"

// Info is the resolved banner data.
type Info struct {
	Version string
	Date    string
	Commit  string
}

// Get returns the link-time values, falling back to the module version and
// VCS stamp recorded by the toolchain.
func Get() Info {
	return resolve(buildVersion, buildDate, buildCommit, debug.ReadBuildInfo)
}

func resolve(version, date, commit string, read func() (*debug.BuildInfo, bool)) Info {
	if bi, ok := read(); ok {
		if version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			}
		}
	}
	return Info{Version: orNA(version), Date: orNA(date), Commit: orNA(commit)}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// PrintBuildData writes the banner to w.
func PrintBuildData(w io.Writer) {
	i := Get()
	fmt.Fprintf(w, "Build version: %s\n", i.Version)
	fmt.Fprintf(w, "Build date: %s\n", i.Date)
	fmt.Fprintf(w, "Build commit: %s\n", i.Commit)
}
