package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-01-02T03:04:05Z", Version: "v0.3.0"}
	assert.Equal(t, "resgen v0.3.0 (commit 0123456, built 2026-01-02T03:04:05Z)", info.String())
	assert.Equal(t, "0123456", info.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "feedfacecafe"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	}}

	info := Info{CommitHash: "dev", BuildTime: "unknown"}
	info.fillFromBuildInfo(bi)
	assert.Equal(t, "feedfacecafe", info.CommitHash)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.BuildTime)

	stamped := Info{CommitHash: "abc1234", BuildTime: "yesterday"}
	stamped.fillFromBuildInfo(bi)
	assert.Equal(t, "abc1234", stamped.CommitHash, "ldflags win")
	assert.Equal(t, "yesterday", stamped.BuildTime)
}
