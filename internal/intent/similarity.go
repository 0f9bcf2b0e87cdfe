// internal/intent/similarity.go
package intent

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
)

// PartialRatio scores, on a 0-100 scale, how well the shorter of a and b
// appears somewhere inside the longer one.
//
// Each matching block between the two strings anchors a window of the longer
// string as long as the shorter one. The window is scored by the
// sequence-matcher ratio 2*M/T, where M counts matched runes and T is the
// combined length, so a substitution costs two. The best window wins and is
// rounded half to even. Comparison is case-sensitive. Identical strings score
// 100; otherwise empty input scores 0.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}

	short, long := runes(a), runes(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0.0
	for _, block := range difflib.NewMatcher(short, long).GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(short)
		if end > len(long) {
			end = len(long)
		}

		ratio := difflib.NewMatcher(short, long[start:end]).Ratio()
		if ratio > 0.995 {
			return 100
		}
		if ratio > best {
			best = ratio
		}
	}

	return int(math.RoundToEven(100 * best))
}

// runes splits s into one element per rune for the sequence matcher.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
