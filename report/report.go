// Package report locates, parses and correlates the build tool's XML result
// artifact against the test tree.
package report

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/ceedling-tools/adapter/types"
	"github.com/ethereum/go-ethereum/log"
)

// TestRun mirrors the artifact's document root. Each section holds one or
// many Test entries; decoding into slices normalizes the lone-entry case.
type TestRun struct {
	XMLName    xml.Name  `xml:"TestRun"`
	Ignored    TestGroup `xml:"IgnoredTests"`
	Successful TestGroup `xml:"SuccessfulTests"`
	Failed     TestGroup `xml:"FailedTests"`
}

// TestGroup is one of the artifact's three list sections
type TestGroup struct {
	Tests []TestEntry `xml:"Test"`
}

// TestEntry is a single named test entry
type TestEntry struct {
	Name     string   `xml:"Name"`
	Location Location `xml:"Location"`
	Message  string   `xml:"Message"`
}

// Location carries a failure's source position. Line is 1-based in the
// artifact.
type Location struct {
	File string `xml:"File"`
	Line int    `xml:"Line"`
}

// Correlator maps result artifacts onto test tree nodes
type Correlator struct {
	log log.Logger
}

// NewCorrelator creates a Correlator
func NewCorrelator(logger log.Logger) *Correlator {
	if logger == nil {
		logger = log.Root()
	}
	return &Correlator{log: logger}
}

// subdirectories a tool sub-command may write the artifact to; a plain test
// run and a coverage run use different ones
var artifactSubdirs = []string{
	filepath.Join("artifacts", "test"),
	filepath.Join("artifacts", "gcov"),
}

// ArtifactCandidates lists every path the artifact may appear at for the
// given build root.
func ArtifactCandidates(buildRoot, filename string) []string {
	paths := make([]string, 0, len(artifactSubdirs))
	for _, sub := range artifactSubdirs {
		paths = append(paths, filepath.Join(buildRoot, sub, filename))
	}
	return paths
}

// ArtifactPath picks the most recently modified existing candidate, so a
// fresh coverage run wins over a stale plain run and vice versa. Returns
// empty when no candidate exists.
func (c *Correlator) ArtifactPath(buildRoot, filename string) string {
	var newest string
	var newestMod int64
	for _, path := range ArtifactCandidates(buildRoot, filename) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = path, mod
		}
	}
	return newest
}

// RemoveArtifacts deletes any pre-existing artifact at every candidate path,
// so a missing file after the run is distinguishable from a stale one.
func (c *Correlator) RemoveArtifacts(buildRoot, filename string) {
	for _, path := range ArtifactCandidates(buildRoot, filename) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.log.Warn("Failed to remove stale result artifact", "path", path, "err", err)
		}
	}
}

// ParseFile reads and decodes the artifact at path
func (c *Correlator) ParseFile(path string) (*TestRun, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(contents)
}

// Parse decodes an artifact document
func Parse(contents []byte) (*TestRun, error) {
	var run TestRun
	if err := xml.Unmarshal(contents, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Correlate maps every artifact entry onto the identically named test node
// beneath the executed suite and emits its terminal state. Entries naming no
// known node are logged and dropped; correlation is best effort.
func (c *Correlator) Correlate(run *TestRun, suite *types.TreeNode) []types.TestResult {
	var results []types.TestResult

	emit := func(entry TestEntry, status types.TestStatus) {
		node := suite.FindByID(entry.Name)
		if node == nil {
			c.log.Warn("Result entry matches no test node", "suite", suite.ID, "name", entry.Name)
			return
		}
		result := types.TestResult{
			NodeID:   node.ID,
			Status:   status,
			Message:  entry.Message,
			FailLine: -1,
		}
		if status == types.TestStatusFail && entry.Location.Line >= 1 {
			result.FailLine = entry.Location.Line - 1
		}
		results = append(results, result)
	}

	for _, entry := range run.Ignored.Tests {
		emit(entry, types.TestStatusSkip)
	}
	for _, entry := range run.Successful.Tests {
		emit(entry, types.TestStatusPass)
	}
	for _, entry := range run.Failed.Tests {
		emit(entry, types.TestStatusFail)
	}
	return results
}

// Errored marks every test beneath the suite as errored with the combined
// process output. This is the sole signal that the tool itself failed to
// run, as opposed to a test failing inside a successful run.
func (c *Correlator) Errored(suite *types.TreeNode, output string) []types.TestResult {
	tests := suite.Tests()
	results := make([]types.TestResult, 0, len(tests))
	for _, test := range tests {
		results = append(results, types.TestResult{
			NodeID:   test.ID,
			Status:   types.TestStatusError,
			Message:  output,
			FailLine: -1,
		})
	}
	return results
}
