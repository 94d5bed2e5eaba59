package match

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Distance returns the Levenshtein edit distance between two strings,
// counted in runes with unit cost for insertion, deletion and
// substitution. It is symmetric, zero iff the strings are equal, and
// satisfies the triangle inequality.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similarity returns 1 - distance/max(len) in [0,1]. Two empty strings
// are fully similar.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(a, b))/float64(longest)
}
