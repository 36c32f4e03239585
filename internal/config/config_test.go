package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "git-insights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Repo)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, DefaultLedger, cfg.Ledger)
	assert.False(t, cfg.ByEmail)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, DefaultCachePath, cfg.Cache.Path)
	assert.Equal(t, DefaultTimelineWeeks, cfg.Weeks.Timeline)
	assert.Equal(t, DefaultHeatmapWeeks, cfg.Weeks.Heatmap)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, DefaultExportPath, cfg.Export.Path)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
repo: /src/project
workers: 2
ledger: shortlog
by_email: true
github:
  repo: octo/repo
cache:
  enabled: true
  path: /tmp/blame.db
weeks:
  timeline: 8
export:
  format: yaml
`)
	t.Setenv("GIT_INSIGHTS_WORKERS", "6")
	t.Setenv("GITHUB_TOKEN", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/src/project", cfg.Repo)
	assert.Equal(t, 6, cfg.Workers, "environment wins over the file")
	assert.Equal(t, "shortlog", cfg.Ledger)
	assert.True(t, cfg.ByEmail)
	assert.Equal(t, "octo/repo", cfg.GitHub.Repo)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/blame.db", cfg.Cache.Path)
	assert.Equal(t, 8, cfg.Weeks.Timeline)
	assert.Equal(t, DefaultHeatmapWeeks, cfg.Weeks.Heatmap)
	assert.Equal(t, "yaml", cfg.Export.Format)
}

func TestLoadConfig_ConfiguredTokenWins(t *testing.T) {
	path := writeConfig(t, "github:\n  token: from-file\n")
	t.Setenv("GITHUB_TOKEN", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GitHub.Token)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GITHUB_TOKEN=dotenv-token\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	// godotenv never overrides a variable that is already set.
	t.Setenv("GITHUB_TOKEN", "")
	require.NoError(t, os.Unsetenv("GITHUB_TOKEN"))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.GitHub.Token)
}

func TestLoadConfig_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"negative workers", "workers: -1\n"},
		{"unknown ledger", "ledger: reflog\n"},
		{"negative weeks", "weeks:\n  heatmap: -3\n"},
		{"too many weeks", "weeks:\n  timeline: 99999999\n"},
		{"unknown export format", "export:\n  format: xml\n"},
		{"github repo without owner", "github:\n  repo: justname\n"},
		{"malformed yaml", "workers: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
