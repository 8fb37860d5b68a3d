package runner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ceedling-tools/adapter/types"
)

// Tool sub-commands used by the engine
const (
	SubCommandTestAll = "test:all"
	SubCommandVersion = "version"
	SubCommandSummary = "summary"
	SubCommandClean   = "clean"
	SubCommandClobber = "clobber"
)

// TestFileSubCommand builds the sub-command running a single test file
func TestFileSubCommand(path string) string {
	return "test:" + filepath.Base(path)
}

// FilesSubCommand builds the sub-command listing one file-type's sources
func FilesSubCommand(t types.FileType) string {
	return "files:" + string(t)
}

// WithMixins appends the configured project/mixin selection flags to a
// sub-command argument list.
func WithMixins(args []string, mixins []string) []string {
	for _, m := range mixins {
		args = append(args, "--mixin", m)
	}
	return args
}

// DefaultProjectFile is the config file name the tool assumes when no
// --project flag is passed.
const DefaultProjectFile = "project.yml"

// WithProject appends the tool's project-file selection flag when the
// configured file differs from the tool default.
func WithProject(args []string, configFile string) []string {
	if configFile == "" || configFile == DefaultProjectFile {
		return args
	}
	return append(args, "--project", configFile)
}

// file list lines look like " - test/test_foo.c"
var fileListLine = regexp.MustCompile(`^\s*-\s+(.+?)\s*$`)

// ParseFileList extracts the relative paths from a files: sub-command's
// stdout, keeping only entries with a plausible extension for the type.
func ParseFileList(stdout string, fileType types.FileType) []string {
	var files []string
	for _, line := range strings.Split(stdout, "\n") {
		m := fileListLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		path := filepath.ToSlash(m[1])
		if matchesFileType(path, fileType) {
			files = append(files, path)
		}
	}
	return files
}

func matchesFileType(path string, fileType types.FileType) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch fileType {
	case types.FileTypeAssembly:
		return ext == ".s" || ext == ".asm"
	case types.FileTypeHeader:
		return ext == ".h"
	case types.FileTypeSource, types.FileTypeTest:
		return ext == ".c"
	}
	return false
}

var versionRe = regexp.MustCompile(`(?mi)^\s*(?:ceedling\s*(?:::|=>)?)\s*(\d+)\.(\d+)\.(\d+)`)

// ParseVersion extracts the tool's semantic version from the version
// sub-command's output. ok is false when no version line is present.
func ParseVersion(stdout string) (major, minor, patch int, ok bool) {
	m := versionRe.FindStringSubmatch(stdout)
	if m == nil {
		return 0, 0, 0, false
	}
	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])
	patch, _ = strconv.Atoi(m[3])
	return major, minor, patch, true
}

// ModernOutLayout reports whether the tool nests each test binary in its own
// subdirectory under the build output ("out/<name>/<name><ext>") rather than
// the older flat layout ("out/<name><ext>").
func ModernOutLayout(major, minor int) bool {
	return major > 0 || minor >= 32
}

// TestExecutablePath resolves the relative path of a built test binary for
// the detected output layout.
func TestExecutablePath(buildRoot, testFile, ext string, modern bool) string {
	name := strings.TrimSuffix(filepath.Base(testFile), filepath.Ext(testFile))
	if modern {
		return filepath.Join(buildRoot, "test", "out", name, name+ext)
	}
	return filepath.Join(buildRoot, "test", "out", name+ext)
}
