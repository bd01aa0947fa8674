package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "none", info.GitCommit)
	assert.Equal(t, "unknown", info.BuildDate)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := GetInfo()
	s := info.String()

	assert.Contains(t, s, "jsonwatch")
	assert.Contains(t, s, info.Version)
	assert.Contains(t, s, "development build")
	assert.Contains(t, s, info.GoVersion)
	assert.Contains(t, s, info.Platform)
}

func TestInfoString_Release(t *testing.T) {
	info := Info{Version: "v0.11.0", GitCommit: "abc1234", BuildDate: "2026-01-01"}
	s := info.String()

	assert.Contains(t, s, "jsonwatch v0.11.0 (commit: abc1234")
	assert.NotContains(t, s, "development build")
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"v0.11.0", true},
		{"1.2.3", true},
		{"v1.2.3-rc.1", false},
		{"0.0.0-20260101-abcdef", false},
		{"dev", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, Info{Version: tt.version}.IsRelease())
		})
	}
}

func TestInfoJSON(t *testing.T) {
	info := GetInfo()

	jsonStr, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &parsed))

	assert.Equal(t, info.Version, parsed.Version)
	assert.Equal(t, info.GitCommit, parsed.GitCommit)
	assert.Equal(t, info.BuildDate, parsed.BuildDate)
	assert.Equal(t, info.GoVersion, parsed.GoVersion)
	assert.Equal(t, info.Platform, parsed.Platform)
}

func TestInfoYAML(t *testing.T) {
	info := Info{Version: "1.2.0", GitCommit: "abc1234", BuildDate: "unknown", GoVersion: "go1.25.6", Platform: "linux/amd64"}

	yamlStr, err := info.YAML()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, yaml.Unmarshal([]byte(yamlStr), &parsed))
	assert.Equal(t, info, parsed)
	assert.Contains(t, yamlStr, "gitCommit: abc1234")
}

func TestShortCommit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"long SHA truncated", "abc1234def5678", "abc1234"},
		{"exact 7 unchanged", "abc1234", "abc1234"},
		{"short unchanged", "abc", "abc"},
		{"empty unchanged", "", ""},
		{"none unchanged", "none", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortCommit(tt.input))
		})
	}
}
