package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davarch/release-reporter/internal/domain"
	"github.com/davarch/release-reporter/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const toggleYAML = `# release pipelines
buildkite:
  organization: acme
  token: yaml-secret

report:
  pipelines:
    - name: beamer
      branch: main
      enabled: false
    - name: crew-bff
      branch: main
      enabled: true
`

func useConfig(t *testing.T, contents string) string {
	t.Helper()

	prev := cfgPath
	cfgPath = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { cfgPath = prev })

	require.NoError(t, os.WriteFile(cfgPath, []byte(contents), 0o644))
	return cfgPath
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"BUILDKITE_BASE_URL", "BUILDKITE_ORGANIZATION", "BUILDKITE_API_TOKEN", "BUILDKITE_TIMEOUT",
		"RELEASE_SELECTION", "RELEASE_FETCH_POLICY", "RELEASE_PIPELINES", "WATCH_INTERVAL",
	} {
		t.Setenv(k, "")
	}
}

func TestFilterPipelines(t *testing.T) {
	ps := []config.Pipeline{
		{Name: "beamer", Enabled: true},
		{Name: "crew-bff", Enabled: false},
	}

	assert.Len(t, filterPipelines(ps, false, false), 2)
	assert.Equal(t, "beamer", filterPipelines(ps, true, false)[0].Name)
	assert.Equal(t, "crew-bff", filterPipelines(ps, false, true)[0].Name)
}

func TestToggle_FlipsEnabledFlags(t *testing.T) {
	clearEnv(t)
	path := useConfig(t, toggleYAML)

	require.NoError(t, toggle("beamer", true))
	require.NoError(t, toggle("crew-bff", false))
	require.NoError(t, toggle("missing", true))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Report.Pipelines, 2)
	assert.True(t, loaded.Report.Pipelines[0].Enabled)
	assert.False(t, loaded.Report.Pipelines[1].Enabled)
}

func TestToggle_KeepsTokenStoredInYAML(t *testing.T) {
	clearEnv(t)
	path := useConfig(t, toggleYAML)

	require.NoError(t, toggle("beamer", true))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml-secret", loaded.Buildkite.Token)
	assert.NoError(t, loaded.Validate())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "# release pipelines")
}

func TestToggle_EnvironmentDoesNotLeakIntoFile(t *testing.T) {
	clearEnv(t)
	path := useConfig(t, toggleYAML)

	t.Setenv("RELEASE_PIPELINES", "serve-api:main")
	t.Setenv("BUILDKITE_ORGANIZATION", "other-org")
	t.Setenv("WATCH_INTERVAL", "1m")

	require.NoError(t, toggle("crew-bff", false))
	require.NoError(t, toggle("serve-api", false))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "serve-api")
	assert.NotContains(t, string(b), "other-org")
	assert.NotContains(t, string(b), "interval")
	assert.NotContains(t, string(b), "pause_file")

	clearEnv(t)
	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Report.Pipelines, 2)
	assert.Equal(t, "beamer", loaded.Report.Pipelines[0].Name)
	assert.Equal(t, "crew-bff", loaded.Report.Pipelines[1].Name)
	assert.False(t, loaded.Report.Pipelines[1].Enabled)
	assert.Equal(t, "acme", loaded.Buildkite.Organization)
}

func TestFetchPolicyFlag(t *testing.T) {
	assert.Equal(t, domain.FetchStrict, fetchPolicyFlag(true))
	assert.Equal(t, domain.FetchLenient, fetchPolicyFlag(false))
}

func TestLoadValidConfig_StrictFalseOverridesFile(t *testing.T) {
	clearEnv(t)
	useConfig(t, toggleYAML+"  fetch_policy: strict\n")

	require.NoError(t, reportCmd.Flags().Set("strict", "false"))
	t.Cleanup(func() {
		reportStrict = false
		reportCmd.Flags().Lookup("strict").Changed = false
	})

	cfg := loadValidConfig(zap.NewNop(), reportCmd)
	assert.Equal(t, string(domain.FetchLenient), cfg.Report.FetchPolicy)
}
