package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"rahul", "rahul", 0},
		{"rahul", "", 5},
		{"rahul", "rahol", 1},
		{"bharat", "bharath", 1},
		{"raju", "suresh", 5},
		{"राहुल", "राहुल", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "%q/%q", tt.a, tt.b)
		assert.Equal(t, tt.want, Distance(tt.b, tt.a), "distance must be symmetric")
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	names := []string{"rahul", "raju", "rajesh", "suresh", "", "bharat"}
	for _, a := range names {
		for _, b := range names {
			for _, c := range names {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c),
					"triangle inequality for %q,%q,%q", a, b, c)
			}
		}
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("rahul", "rahul"))
	assert.Equal(t, 0.0, Similarity("rahul", ""))
	assert.InDelta(t, 0.8, Similarity("rahul", "rahol"), 0.001)
	assert.Equal(t, Similarity("bharat", "bharath"), Similarity("bharath", "bharat"))
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"a", "zzzzzzzzzz"},
		{"rahul sharma", "x"},
		{"", "y"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
