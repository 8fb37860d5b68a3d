package scanner

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrBadRange reports a range annotation whose numeric triple cannot expand
// to a finite inclusive sequence. The original tooling silently produced
// garbage for these; here they are a defined error.
var ErrBadRange = errors.New("invalid range annotation")

// Expansion is one concrete argument tuple produced from an annotation block
type Expansion struct {
	// Args is the comma-joined argument list for this case
	Args string
	// Ordinal is the position of the producing macro invocation within the
	// annotation block. Each annotation occupies its own source line above
	// the signature, so the ordinal offsets the reported line downward.
	Ordinal int
}

var tripleRe = regexp.MustCompile(`\[([^\[\]]*)\]`)

// Expand expands an annotation-macro block into concrete test cases.
// A case macro yields its argument text verbatim; a range macro yields the
// cross product of its bracketed [start, end, increment] triples. An empty
// block yields nil: the function is a single non-parameterized test.
func (s *Scanner) Expand(annotations string) ([]Expansion, error) {
	if strings.TrimSpace(annotations) == "" {
		return nil, nil
	}

	var expansions []Expansion
	for ordinal, m := range s.macroRe.FindAllStringSubmatch(annotations, -1) {
		macro, args := m[1], m[2]
		if !s.rangeMacros[macro] {
			expansions = append(expansions, Expansion{Args: strings.TrimSpace(args), Ordinal: ordinal})
			continue
		}

		sequences, err := expandTriples(args)
		if err != nil {
			return nil, fmt.Errorf("%s(%s): %w", macro, strings.TrimSpace(args), err)
		}
		for _, combo := range crossProduct(sequences) {
			expansions = append(expansions, Expansion{Args: strings.Join(combo, ", "), Ordinal: ordinal})
		}
	}
	return expansions, nil
}

// expandTriples expands each bracketed numeric triple into its inclusive
// arithmetic sequence, preserving triple order.
func expandTriples(args string) ([][]string, error) {
	triples := tripleRe.FindAllStringSubmatch(args, -1)
	if len(triples) == 0 {
		return nil, fmt.Errorf("%w: no [start, end, increment] triple found", ErrBadRange)
	}

	sequences := make([][]string, 0, len(triples))
	for _, t := range triples {
		seq, err := expandTriple(t[1])
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, seq)
	}
	return sequences, nil
}

func expandTriple(body string) ([]string, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 values, got %d", ErrBadRange, len(parts))
	}

	nums := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not numeric", ErrBadRange, strings.TrimSpace(p))
		}
		nums[i] = v
	}
	start, end, inc := nums[0], nums[1], nums[2]

	if inc == 0 {
		return nil, fmt.Errorf("%w: zero increment", ErrBadRange)
	}
	steps := (end - start) / inc
	if steps < 0 {
		return nil, fmt.Errorf("%w: end %v not reachable from %v with increment %v", ErrBadRange, end, start, inc)
	}
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return nil, fmt.Errorf("%w: (end-start) not divisible by increment", ErrBadRange)
	}

	count := int(math.Round(steps)) + 1
	seq := make([]string, 0, count)
	for i := 0; i < count; i++ {
		seq = append(seq, formatNumber(start+float64(i)*inc))
	}
	return seq, nil
}

// crossProduct flattens several sequences into one argument tuple per
// combination, first sequence varying slowest.
func crossProduct(sequences [][]string) [][]string {
	combos := [][]string{{}}
	for _, seq := range sequences {
		next := make([][]string, 0, len(combos)*len(seq))
		for _, combo := range combos {
			for _, v := range seq {
				extended := make([]string, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, v))
			}
		}
		combos = next
	}
	return combos
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
