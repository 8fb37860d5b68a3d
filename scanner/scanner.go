// Package scanner extracts test functions and their parameterization macros
// from C source text.
//
// The scanner is regex based and deliberately approximate: it cannot follow
// arbitrary nested parentheses or comments. That is acceptable because the
// external build tool's own compile step is the source of truth for whether a
// file is well formed; the scanner only has to find what the tool will run.
package scanner

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Default configuration matching the conventions of Unity/Ceedling projects
var (
	DefaultPrefixes    = []string{"test", "spec", "should"}
	DefaultCaseMacros  = []string{"TEST_CASE"}
	DefaultRangeMacros = []string{"TEST_RANGE"}
)

// Config holds the scan configuration for one project
type Config struct {
	// Prefixes are the test-function name prefixes, matched as an alternation
	Prefixes []string
	// CaseMacros are macro aliases producing one test case per invocation
	CaseMacros []string
	// RangeMacros are macro aliases producing numeric range expansions
	RangeMacros []string
}

func (c Config) withDefaults() Config {
	if len(c.Prefixes) == 0 {
		c.Prefixes = DefaultPrefixes
	}
	if len(c.CaseMacros) == 0 {
		c.CaseMacros = DefaultCaseMacros
	}
	if len(c.RangeMacros) == 0 {
		c.RangeMacros = DefaultRangeMacros
	}
	return c
}

// Match is one discovered test function in file order
type Match struct {
	// Annotations is the raw annotation-macro block preceding the signature,
	// empty for a plain test
	Annotations string
	// Name is the function name with line-continuation backslashes stripped
	Name string
	// Line is the 0-based source line of the start of the match
	Line int
}

// Scanner finds test functions in C source text
type Scanner struct {
	cfg          Config
	testRe       *regexp.Regexp
	macroRe      *regexp.Regexp
	rangeMacros  map[string]bool
	continuation *regexp.Regexp
}

// New compiles a Scanner for the given configuration
func New(cfg Config) (*Scanner, error) {
	cfg = cfg.withDefaults()

	prefixAlt, err := alternation(cfg.Prefixes)
	if err != nil {
		return nil, fmt.Errorf("test prefixes: %w", err)
	}
	macroAlt, err := alternation(append(append([]string{}, cfg.CaseMacros...), cfg.RangeMacros...))
	if err != nil {
		return nil, fmt.Errorf("macro aliases: %w", err)
	}

	// An optional run of annotation-macro invocations, then a void function
	// whose name starts with a configured prefix. Names may wrap across lines
	// with backslash continuations.
	testPattern := fmt.Sprintf(
		`((?:(?:%s)\s*\([^)]*\)\s*)*)\bvoid\s+((?:%s)(?:\w|\\\r?\n[ \t]*)*)\s*\(`,
		macroAlt, prefixAlt)
	testRe, err := regexp.Compile(testPattern)
	if err != nil {
		return nil, fmt.Errorf("compile test pattern: %w", err)
	}

	macroRe, err := regexp.Compile(fmt.Sprintf(`(%s)\s*\(([^)]*)\)`, macroAlt))
	if err != nil {
		return nil, fmt.Errorf("compile macro pattern: %w", err)
	}

	rangeMacros := make(map[string]bool, len(cfg.RangeMacros))
	for _, m := range cfg.RangeMacros {
		rangeMacros[m] = true
	}

	return &Scanner{
		cfg:          cfg,
		testRe:       testRe,
		macroRe:      macroRe,
		rangeMacros:  rangeMacros,
		continuation: regexp.MustCompile(`\\\r?\n[ \t]*`),
	}, nil
}

// Scan finds every qualifying test function in the source text, each exactly
// once, in file order.
func (s *Scanner) Scan(src string) []Match {
	var matches []Match
	for _, idx := range s.testRe.FindAllStringSubmatchIndex(src, -1) {
		annotations := src[idx[2]:idx[3]]
		name := s.continuation.ReplaceAllString(src[idx[4]:idx[5]], "")
		matches = append(matches, Match{
			Annotations: strings.TrimSpace(annotations),
			Name:        name,
			Line:        strings.Count(src[:idx[0]], "\n"),
		})
	}
	return matches
}

// ScanFile reads and scans one source file. A read failure is returned to the
// caller so discovery of sibling files stays unaffected.
func (s *Scanner) ScanFile(path string) ([]Match, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test file %s: %w", path, err)
	}
	return s.Scan(string(content)), nil
}

func alternation(words []string) (string, error) {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			return "", fmt.Errorf("empty alternative")
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|"), nil
}
