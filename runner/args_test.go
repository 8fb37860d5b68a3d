package runner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceedling-tools/adapter/types"
)

func TestTestFileSubCommand(t *testing.T) {
	assert.Equal(t, "test:test_foo.c", TestFileSubCommand("test/test_foo.c"))
	assert.Equal(t, "test:test_bar.c", TestFileSubCommand("test_bar.c"))
}

func TestFilesSubCommand(t *testing.T) {
	assert.Equal(t, "files:test", FilesSubCommand(types.FileTypeTest))
	assert.Equal(t, "files:header", FilesSubCommand(types.FileTypeHeader))
}

func TestWithMixins(t *testing.T) {
	assert.Equal(t, []string{"test:all"}, WithMixins([]string{"test:all"}, nil))
	assert.Equal(t,
		[]string{"test:all", "--mixin", "ci", "--mixin", "hw"},
		WithMixins([]string{"test:all"}, []string{"ci", "hw"}))
}

func TestWithProject(t *testing.T) {
	assert.Equal(t, []string{"test:all"}, WithProject([]string{"test:all"}, ""))
	assert.Equal(t, []string{"test:all"}, WithProject([]string{"test:all"}, "project.yml"))
	assert.Equal(t,
		[]string{"test:all", "--project", "ceedling.yml"},
		WithProject([]string{"test:all"}, "ceedling.yml"))
}

func TestParseFileList(t *testing.T) {
	stdout := `Loaded project configuration.

Test files:
 - test/test_foo.c
 - test/test_bar.c
   - test/nested/test_baz.c
 - README.md
 - src/notes.txt

2 total
`
	files := ParseFileList(stdout, types.FileTypeTest)
	assert.Equal(t, []string{
		"test/test_foo.c",
		"test/test_bar.c",
		"test/nested/test_baz.c",
	}, files)
}

func TestParseFileListByType(t *testing.T) {
	stdout := " - src/foo.c\n - inc/foo.h\n - startup/boot.s\n - startup/ivt.asm\n"

	assert.Equal(t, []string{"src/foo.c"}, ParseFileList(stdout, types.FileTypeSource))
	assert.Equal(t, []string{"inc/foo.h"}, ParseFileList(stdout, types.FileTypeHeader))
	assert.Equal(t, []string{"startup/boot.s", "startup/ivt.asm"}, ParseFileList(stdout, types.FileTypeAssembly))
}

func TestParseFileListEmpty(t *testing.T) {
	assert.Empty(t, ParseFileList("no list markers here\n", types.FileTypeTest))
	assert.Empty(t, ParseFileList("", types.FileTypeTest))
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		major  int
		minor  int
		patch  int
		ok     bool
	}{
		{
			name:   "modern banner",
			stdout: "Ceedling => 1.0.1\n",
			major:  1, minor: 0, patch: 1, ok: true,
		},
		{
			name:   "legacy double colon",
			stdout: "Welcome to Ceedling!\n  Ceedling:: 0.31.1\n  Unity:: 2.5.4\n",
			major:  0, minor: 31, patch: 1, ok: true,
		},
		{
			name:   "bare version line",
			stdout: "ceedling 0.32.0",
			major:  0, minor: 32, patch: 0, ok: true,
		},
		{
			name:   "no version present",
			stdout: "command not found",
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			major, minor, patch, ok := ParseVersion(tt.stdout)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.major, major)
			assert.Equal(t, tt.minor, minor)
			assert.Equal(t, tt.patch, patch)
		})
	}
}

func TestModernOutLayout(t *testing.T) {
	assert.False(t, ModernOutLayout(0, 31))
	assert.True(t, ModernOutLayout(0, 32))
	assert.True(t, ModernOutLayout(1, 0))
}

func TestTestExecutablePath(t *testing.T) {
	flat := TestExecutablePath("build", "test/test_foo.c", ".out", false)
	assert.Equal(t, filepath.Join("build", "test", "out", "test_foo.out"), flat)

	nested := TestExecutablePath("build", "test/test_foo.c", ".out", true)
	assert.Equal(t, filepath.Join("build", "test", "out", "test_foo", "test_foo.out"), nested)
}
