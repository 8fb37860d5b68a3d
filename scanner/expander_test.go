package scanner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEmptyBlock(t *testing.T) {
	s := newScanner(t, Config{})

	expansions, err := s.Expand("")
	require.NoError(t, err)
	assert.Empty(t, expansions)
}

func TestExpandCaseMacroVerbatim(t *testing.T) {
	s := newScanner(t, Config{})

	expansions, err := s.Expand(`TEST_CASE(25, "something", -7.5f)`)
	require.NoError(t, err)
	require.Len(t, expansions, 1)
	assert.Equal(t, `25, "something", -7.5f`, expansions[0].Args)
	assert.Equal(t, 0, expansions[0].Ordinal)
}

func TestExpandMultipleCaseMacrosKeepOrdinals(t *testing.T) {
	s := newScanner(t, Config{})

	expansions, err := s.Expand("TEST_CASE(1)\nTEST_CASE(2)\nTEST_CASE(3)")
	require.NoError(t, err)
	require.Len(t, expansions, 3)
	for i, exp := range expansions {
		assert.Equal(t, fmt.Sprintf("%d", i+1), exp.Args)
		assert.Equal(t, i, exp.Ordinal)
	}
}

func TestExpandRange(t *testing.T) {
	s := newScanner(t, Config{})

	expansions, err := s.Expand("TEST_RANGE([1, 3, 1])")
	require.NoError(t, err)
	require.Len(t, expansions, 3)
	assert.Equal(t, "1", expansions[0].Args)
	assert.Equal(t, "2", expansions[1].Args)
	assert.Equal(t, "3", expansions[2].Args)
	// all cases come from the same annotation line
	for _, exp := range expansions {
		assert.Equal(t, 0, exp.Ordinal)
	}
}

func TestExpandRangeCount(t *testing.T) {
	tests := []struct {
		triple string
		count  int
		first  string
		last   string
	}{
		{"[0, 10, 2]", 6, "0", "10"},
		{"[5, 5, 1]", 1, "5", "5"},
		{"[10, 0, -2]", 6, "10", "0"},
		{"[0.5, 2.5, 0.5]", 5, "0.5", "2.5"},
	}

	s := newScanner(t, Config{})
	for _, tc := range tests {
		t.Run(tc.triple, func(t *testing.T) {
			expansions, err := s.Expand(fmt.Sprintf("TEST_RANGE(%s)", tc.triple))
			require.NoError(t, err)
			require.Len(t, expansions, tc.count)
			assert.Equal(t, tc.first, expansions[0].Args)
			assert.Equal(t, tc.last, expansions[len(expansions)-1].Args)
		})
	}
}

func TestExpandRangeCrossProduct(t *testing.T) {
	s := newScanner(t, Config{})

	expansions, err := s.Expand("TEST_RANGE([1, 2, 1], [10, 20, 10])")
	require.NoError(t, err)
	require.Len(t, expansions, 4)
	assert.Equal(t, "1, 10", expansions[0].Args)
	assert.Equal(t, "1, 20", expansions[1].Args)
	assert.Equal(t, "2, 10", expansions[2].Args)
	assert.Equal(t, "2, 20", expansions[3].Args)
}

func TestExpandMixedMacros(t *testing.T) {
	s := newScanner(t, Config{})

	expansions, err := s.Expand("TEST_CASE(99)\nTEST_RANGE([1, 2, 1])")
	require.NoError(t, err)
	require.Len(t, expansions, 3)
	assert.Equal(t, "99", expansions[0].Args)
	assert.Equal(t, 0, expansions[0].Ordinal)
	assert.Equal(t, "1", expansions[1].Args)
	assert.Equal(t, 1, expansions[1].Ordinal)
	assert.Equal(t, "2", expansions[2].Args)
	assert.Equal(t, 1, expansions[2].Ordinal)
}

func TestExpandRangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"zero increment", "TEST_RANGE([1, 5, 0])"},
		{"unreachable end", "TEST_RANGE([5, 1, 1])"},
		{"non-divisible", "TEST_RANGE([0, 5, 2])"},
		{"not numeric", "TEST_RANGE([a, b, c])"},
		{"wrong arity", "TEST_RANGE([1, 2])"},
		{"no triple", "TEST_RANGE(1, 2, 3)"},
	}

	s := newScanner(t, Config{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Expand(tc.block)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadRange)
		})
	}
}
