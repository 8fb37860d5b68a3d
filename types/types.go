// Package types contains shared types used across the ceedling adapter engine.
package types

// TestStatus represents the possible terminal states of an executed test
type TestStatus string

const (
	TestStatusPass  TestStatus = "passed"
	TestStatusFail  TestStatus = "failed"
	TestStatusSkip  TestStatus = "skipped"
	TestStatusError TestStatus = "errored"
)

// String implements the Stringer interface for TestStatus
func (s TestStatus) String() string {
	return string(s)
}

// FileType identifies one of ceedling's per-project file lists
type FileType string

const (
	FileTypeAssembly FileType = "assembly"
	FileTypeHeader   FileType = "header"
	FileTypeSource   FileType = "source"
	FileTypeTest     FileType = "test"
)

// FileTypes lists all file types in the order the tool reports them
var FileTypes = []FileType{FileTypeAssembly, FileTypeHeader, FileTypeSource, FileTypeTest}
