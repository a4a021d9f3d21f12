package field

import (
	"fmt"
	"strings"
)

// ValueError reports an attribute value outside its enumeration.
type ValueError struct {
	Field     string
	Attribute string
	Value     string
	Allowed   []string
	// Suggestion is the allowed value closest to Value, or "".
	Suggestion string
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("field %s: unknown %s %q", e.Field, e.Attribute, e.Value)
	switch {
	case e.Suggestion != "":
		return msg + fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	case len(e.Allowed) > 0:
		return msg + " (want one of " + strings.Join(e.Allowed, ", ") + ")"
	default:
		return msg
	}
}

// closest returns the allowed value nearest to v, ignoring case. Typos up to
// a third of the value's length are forgiven, at most three edits and at
// least one. Ties go to the earlier candidate.
func closest(v string, allowed []string) (string, bool) {
	in := []rune(strings.ToLower(v))
	limit := max(1, min(3, len(in)/3))
	best, bestDist := "", limit+1
	for _, c := range allowed {
		if d := typoDistance(in, []rune(strings.ToLower(c))); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// typoDistance counts the insertions, deletions, substitutions and adjacent
// transpositions turning a into b, each substring edited at most once.
func typoDistance(a, b []rune) int {
	// rows i-2, i-1 and i of the table.
	before, prev, cur := make([]int, len(b)+1), make([]int, len(b)+1), make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, sub)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				cur[j] = min(cur[j], before[j-2]+1)
			}
		}
		before, prev, cur = prev, cur, before
	}
	return prev[len(b)]
}
