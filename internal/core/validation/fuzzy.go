package validation

import "strings"

// FuzzyMatch reports whether two strings are close enough to be treated as
// the same value for cross-reference purposes. It is deliberately a simple
// heuristic kept behind one function so a stricter algorithm can replace it
// without touching rule logic. A match is any of:
//
//   - case-insensitive equality
//   - case-insensitive containment either way
//   - at least one shared word token
func FuzzyMatch(a, b string) bool {
	left := strings.ToLower(strings.TrimSpace(a))
	right := strings.ToLower(strings.TrimSpace(b))
	if left == "" || right == "" {
		return false
	}
	if left == right {
		return true
	}
	if strings.Contains(left, right) || strings.Contains(right, left) {
		return true
	}

	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(left) {
		tokens[w] = struct{}{}
	}
	for _, w := range strings.Fields(right) {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}
