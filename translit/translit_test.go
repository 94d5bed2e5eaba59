package translit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransliterateASCIIIdentity(t *testing.T) {
	inputs := []string{
		"",
		"Rahul",
		"Bharat ATM ke paas wala",
		"phone 9876543210",
		"a b\tc\nd",
		"!@#$%",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Transliterate(in), "pure-ASCII input must pass through unchanged")
	}
}

func TestTransliterateNames(t *testing.T) {
	tests := []struct {
		devanagari string
		roman      string
	}{
		{"राहुल", "rahul"},
		{"भारत", "bharat"},
		{"अमित", "amit"},
		{"सुरेश", "suresh"},
		{"श्याम", "shyam"},
		{"कमल", "kamal"},
		{"गंगा", "ganga"},
		{"राम", "ram"},
		{"सीता", "sita"},
	}

	for _, tt := range tests {
		t.Run(tt.roman, func(t *testing.T) {
			got := Transliterate(tt.devanagari)
			assert.Equal(t, tt.roman, strings.ToLower(got))
		})
	}
}

func TestTransliterateCapitalizesPerWord(t *testing.T) {
	assert.Equal(t, "Rahul", Transliterate("राहुल"))
	assert.Equal(t, "Ram Kumar", Transliterate("राम कुमार"))
}

func TestTransliterateMixedScript(t *testing.T) {
	got := Transliterate("राहुल ATM ke paas")
	assert.Equal(t, "Rahul ATM ke paas", got)

	// Latin characters inside a Devanagari word pass through, and the
	// consonant before them drops its inherent vowel.
	assert.Equal(t, "Ramji", Transliterate("रामji"))
}

func TestTransliterateHalantCluster(t *testing.T) {
	// halant suppresses the inherent vowel so consonants cluster
	assert.Equal(t, "ksha", strings.ToLower(Transliterate("क्षा")))
	assert.Equal(t, "shyam", strings.ToLower(Transliterate("श्याम")))
}

func TestTransliterateDiacritics(t *testing.T) {
	// anusvara and chandrabindu nasalize as "n"
	assert.Equal(t, "ganga", strings.ToLower(Transliterate("गंगा")))
	assert.Equal(t, "chand", strings.ToLower(Transliterate("चाँद")))
	// visarga renders "h"
	assert.Equal(t, "duhkh", strings.ToLower(Transliterate("दुःख")))
}

func TestTransliterateNukta(t *testing.T) {
	assert.Equal(t, "fon", strings.ToLower(Transliterate("फ़ोन")))
	assert.Equal(t, "zamir", strings.ToLower(Transliterate("ज़मीर")))

	// The precomposed letters (U+0958..U+095F) and the decomposed
	// consonant+combining-nukta spellings must come out identical.
	precomposed := "\u095b" + "मीर"
	decomposed := "\u091c\u093c" + "मीर"
	assert.Equal(t, "Zamir", Transliterate(precomposed))
	assert.Equal(t, Transliterate(precomposed), Transliterate(decomposed))

	// A nukta with no pending consonant carries no sound.
	assert.Equal(t, "Amir", Transliterate("अ\u093cमीर"))
}

func TestTransliterateDigits(t *testing.T) {
	assert.Equal(t, "0123456789", Transliterate("०१२३४५६७८९"))
}

func TestContainsDevanagari(t *testing.T) {
	assert.True(t, ContainsDevanagari("राहुल"))
	assert.True(t, ContainsDevanagari("mixed राहुल text"))
	assert.False(t, ContainsDevanagari("Rahul"))
	assert.False(t, ContainsDevanagari(""))
}
