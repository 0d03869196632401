package buildinfo

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestResolve_EmptyIsNA(t *testing.T) {
	got := resolve("", "", "", noBuildInfo)
	assert.Equal(t, Info{Version: "N/A", Date: "N/A", Commit: "N/A"}, got)
}

func TestResolve_LinkTimeValuesWin(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Version: "v0.0.9"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
		}, true
	}

	got := resolve("v1.2.0", "", "", read)
	assert.Equal(t, "v1.2.0", got.Version)
	assert.Equal(t, "abc", got.Commit)
	assert.Equal(t, "N/A", got.Date)
}

func TestResolve_DevelVersionIgnored(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	assert.Equal(t, "N/A", resolve("", "", "", read).Version)
}

func TestPrintBuildData(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Build version: "))
	assert.True(t, strings.HasPrefix(lines[1], "Build date: "))
	assert.True(t, strings.HasPrefix(lines[2], "Build commit: "))
}
