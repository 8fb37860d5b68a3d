package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ceedling-tools/adapter/flags"
)

// parseConfig runs a throwaway cli app over args and captures the resulting
// Config, mirroring how the command layer builds it.
func parseConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var cfg *Config
	var cfgErr error
	app := &cli.App{
		Name:  "test",
		Flags: flags.Flags,
		Action: func(ctx *cli.Context) error {
			cfg, cfgErr = NewConfig(ctx, nil)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg, cfgErr
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(t)
	require.NoError(t, err)

	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	assert.Equal(t, wd, cfg.WorkspaceRoot)
	assert.Equal(t, "ceedling", cfg.Tool)
	assert.Empty(t, cfg.Shell)
	assert.True(t, cfg.StripANSI)
	assert.Empty(t, cfg.Projects)
	assert.NotNil(t, cfg.Log)
}

func TestNewConfigFlags(t *testing.T) {
	workspace := t.TempDir()
	cfg, err := parseConfig(t,
		"--workspace", workspace,
		"--tool", "/opt/ceedling/bin/ceedling",
		"--shell", "/bin/bash",
		"--test-prefix", "test",
		"--test-prefix", "check",
		"--mixin", "ci",
	)
	require.NoError(t, err)

	assert.Equal(t, workspace, cfg.WorkspaceRoot)
	assert.Equal(t, "/opt/ceedling/bin/ceedling", cfg.Tool)
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, []string{"test", "check"}, cfg.TestPrefixes)
	assert.Equal(t, []string{"ci"}, cfg.Mixins)
}

func TestNewConfigFromFile(t *testing.T) {
	workspace := t.TempDir()
	configPath := filepath.Join(workspace, "adapter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
projects:
  - path: fw/sensor
    name: sensor
  - path: fw/controller
projectConfigFile: project.yml
defaultConfigFile: shared/defaults.yml
testPrefixes: [test, spec]
mixins: [ci]
`), 0o644))

	cfg, err := parseConfig(t, "--workspace", workspace, "--config", configPath)
	require.NoError(t, err)

	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "fw/sensor", cfg.Projects[0].Path)
	assert.Equal(t, "sensor", cfg.Projects[0].Name)
	assert.Equal(t, "project.yml", cfg.ProjectConfigFile)
	assert.Equal(t, filepath.Join(workspace, "shared/defaults.yml"), cfg.DefaultConfigFile)
	assert.Equal(t, []string{"test", "spec"}, cfg.TestPrefixes)
	assert.Equal(t, []string{"ci"}, cfg.Mixins)
}

func TestNewConfigToolFromFile(t *testing.T) {
	workspace := t.TempDir()
	configPath := filepath.Join(workspace, "adapter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("tool: gem exec ceedling\nshell: /bin/sh\nstripAnsi: false\n"), 0o644))

	cfg, err := parseConfig(t, "--workspace", workspace, "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "gem exec ceedling", cfg.Tool)
	assert.Equal(t, "/bin/sh", cfg.Shell)
	assert.False(t, cfg.StripANSI)
}

func TestNewConfigStripANSIDefaultSurvivesFile(t *testing.T) {
	workspace := t.TempDir()
	configPath := filepath.Join(workspace, "adapter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("mixins: [ci]\n"), 0o644))

	// a file that omits stripAnsi must not flip the flag default
	cfg, err := parseConfig(t, "--workspace", workspace, "--config", configPath)
	require.NoError(t, err)
	assert.True(t, cfg.StripANSI)
}

func TestNewConfigFlagsWinOverFile(t *testing.T) {
	workspace := t.TempDir()
	configPath := filepath.Join(workspace, "adapter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("tool: rake\ntestPrefixes: [spec]\nmixins: [hw]\n"), 0o644))

	cfg, err := parseConfig(t,
		"--workspace", workspace,
		"--config", configPath,
		"--tool", "/opt/ceedling/bin/ceedling",
		"--test-prefix", "test",
		"--mixin", "ci",
	)
	require.NoError(t, err)
	assert.Equal(t, "/opt/ceedling/bin/ceedling", cfg.Tool)
	assert.Equal(t, []string{"test"}, cfg.TestPrefixes)
	assert.Equal(t, []string{"ci"}, cfg.Mixins)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := parseConfig(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewConfigMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "adapter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("projects: [\n"), 0o644))

	_, err := parseConfig(t, "--config", configPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{Tool: "ceedling"}).Validate())
	assert.Error(t, (&Config{WorkspaceRoot: "/w"}).Validate())

	cfg := &Config{WorkspaceRoot: "/w", Tool: "ceedling"}
	require.NoError(t, cfg.Validate())
	assert.NotNil(t, cfg.Log)
}
