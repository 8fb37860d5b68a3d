package registry

import "strings"

// XMLReportPlugin is the tool plugin that writes the result artifact the
// correlator consumes. Discovery fails for a project that does not enable it.
const XMLReportPlugin = "xml_tests_report"

// Defaults used when the merged document omits a key
const (
	DefaultBuildRoot     = "build"
	DefaultTestPrefix    = "test_"
	DefaultExecutableExt = ".out"
	DefaultReportFile    = "report.xml"
)

// ToolSettings is a read-only view over the merged tool configuration
// document. The document is schema-less; every accessor resolves its
// optional key chain and falls back to a documented default instead of
// relying on catch-all suppression.
type ToolSettings struct {
	doc map[string]any
}

// NewToolSettings wraps a merged configuration document
func NewToolSettings(doc map[string]any) *ToolSettings {
	if doc == nil {
		doc = make(map[string]any)
	}
	return &ToolSettings{doc: doc}
}

// Lookup resolves a nested key chain, reporting whether every level existed
func (s *ToolSettings) Lookup(path ...string) (any, bool) {
	var current any = s.doc
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (s *ToolSettings) lookupString(fallback string, path ...string) string {
	v, ok := s.Lookup(path...)
	if !ok {
		return fallback
	}
	str, ok := v.(string)
	if !ok || str == "" {
		return fallback
	}
	return str
}

// BuildRoot returns the tool's build output directory, relative to the
// project root unless configured absolute.
func (s *ToolSettings) BuildRoot() string {
	return s.lookupString(DefaultBuildRoot, "project", "build_root")
}

// TestFilePrefix returns the file-name prefix of test sources
func (s *ToolSettings) TestFilePrefix() string {
	return s.lookupString(DefaultTestPrefix, "project", "test_file_prefix")
}

// ExecutableExtension returns the extension of built test binaries
func (s *ToolSettings) ExecutableExtension() string {
	return s.lookupString(DefaultExecutableExt, "extension", "executable")
}

// ReportFilename returns the result artifact's file name, honoring an
// overridden artifact filename when the plugin configures one.
func (s *ToolSettings) ReportFilename() string {
	return s.lookupString(DefaultReportFile, "xml_tests_report", "artifact_filename")
}

// PluginEnabled reports whether the named plugin is in the enabled list
func (s *ToolSettings) PluginEnabled(name string) bool {
	v, ok := s.Lookup("plugins", "enabled")
	if !ok {
		return false
	}
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, entry := range list {
		if str, ok := entry.(string); ok && strings.TrimSpace(str) == name {
			return true
		}
	}
	return false
}

// TestDefines returns the per-test compile defines, empty when unset
func (s *ToolSettings) TestDefines() []string {
	v, ok := s.Lookup("defines", "test")
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	defines := make([]string, 0, len(list))
	for _, entry := range list {
		if str, ok := entry.(string); ok {
			defines = append(defines, str)
		}
	}
	return defines
}
