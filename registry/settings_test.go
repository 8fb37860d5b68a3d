package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/stretchr/testify/require"
)

func settingsFromYAML(t *testing.T, src string) *ToolSettings {
	t.Helper()
	doc := make(map[string]any)
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return NewToolSettings(normalizeKeys(doc))
}

func TestSettingsDefaults(t *testing.T) {
	s := NewToolSettings(nil)

	assert.Equal(t, DefaultBuildRoot, s.BuildRoot())
	assert.Equal(t, DefaultTestPrefix, s.TestFilePrefix())
	assert.Equal(t, DefaultExecutableExt, s.ExecutableExtension())
	assert.Equal(t, DefaultReportFile, s.ReportFilename())
	assert.False(t, s.PluginEnabled(XMLReportPlugin))
	assert.Empty(t, s.TestDefines())
}

func TestSettingsConfiguredValues(t *testing.T) {
	s := settingsFromYAML(t, `
:project:
  :build_root: artifacts
  :test_file_prefix: check_
:extension:
  :executable: .exe
:plugins:
  :enabled:
    - stdout_pretty_tests_report
    - xml_tests_report
:defines:
  :test:
    - UNIT_TEST
    - LOGGING=0
`)

	assert.Equal(t, "artifacts", s.BuildRoot())
	assert.Equal(t, "check_", s.TestFilePrefix())
	assert.Equal(t, ".exe", s.ExecutableExtension())
	assert.True(t, s.PluginEnabled(XMLReportPlugin))
	assert.False(t, s.PluginEnabled("gcov"))
	assert.Equal(t, []string{"UNIT_TEST", "LOGGING=0"}, s.TestDefines())
}

func TestSettingsLookup(t *testing.T) {
	s := settingsFromYAML(t, `
:project:
  :use_mocks: true
`)

	v, ok := s.Lookup("project", "use_mocks")
	require.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = s.Lookup("project", "missing")
	assert.False(t, ok)
	_, ok = s.Lookup("missing", "chain", "deep")
	assert.False(t, ok)
}

func TestSettingsLookupNonMapIntermediate(t *testing.T) {
	s := settingsFromYAML(t, ":project: scalar\n")
	_, ok := s.Lookup("project", "build_root")
	assert.False(t, ok)
}
