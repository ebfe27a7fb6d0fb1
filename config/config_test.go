package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(nil), nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "worklog.db", cfg.DBPath)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.Equal(t, "@daily", cfg.RetentionSchedule)
	assert.Equal(t, "data/work-records.json", cfg.GitHub.Path)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.False(t, cfg.RemoteEnabled())
	assert.Equal(t, "local", cfg.Mode())
}

func TestFromEnv_RemoteNeedsAllThreeSettings(t *testing.T) {
	partial, err := FromEnv(envFrom(map[string]string{
		"GITHUB_OWNER": "me",
		"GITHUB_REPO":  "worklog",
	}), nil)
	require.NoError(t, err)
	assert.False(t, partial.RemoteEnabled())

	full, err := FromEnv(envFrom(map[string]string{
		"GITHUB_OWNER": "me",
		"GITHUB_REPO":  "worklog",
		"GITHUB_TOKEN": "ghp_x",
	}), nil)
	require.NoError(t, err)
	assert.True(t, full.RemoteEnabled())
	assert.Equal(t, "remote", full.Mode())
}

func TestFromEnv_FlagsOverrideEnv(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{"PORT": "9000", "DB_PATH": "a.db"}),
		[]string{"-port", "3000", "-db", ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(envFrom(map[string]string{"PORT": "eighty"}), nil)
	assert.Error(t, err)

	_, err = FromEnv(envFrom(map[string]string{"TIMEZONE": "Mars/Olympus"}), nil)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
