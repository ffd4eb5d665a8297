package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	tests := []struct {
		name      string
		info      Info
		wantStr   string
		wantShort string
		wantTag   string
	}{
		{
			name:      "dev build",
			info:      Info{Version: "dev", CommitHash: "0123456789abcdef", BuildTime: "unknown"},
			wantStr:   "sdkgen dev (commit 0123456789abcdef, built unknown)",
			wantShort: "0123456",
			wantTag:   "dev+0123456",
		},
		{
			name:      "tagged build",
			info:      Info{Version: "v1.4.0", CommitHash: "abc", BuildTime: "2026-01-02"},
			wantStr:   "sdkgen v1.4.0 (commit abc, built 2026-01-02)",
			wantShort: "abc",
			wantTag:   "v1.4.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.info.String())
			assert.Equal(t, tt.wantShort, tt.info.Short())
			assert.Equal(t, tt.wantTag, tt.info.Tag())
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, CommitHash, info.CommitHash)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
