// Package translit renders Devanagari text into Roman script so that
// spoken or typed Hindi names ("राहुल") can be compared against the
// Roman-script names a ledger stores ("Rahul").
//
// The transliteration is phonetically approximate, not scholarly: matras
// map to single Roman vowels (ी -> "i", not "ee") because downstream
// phonetic normalization collapses vowel length anyway. Mixed
// Devanagari+Latin input is supported; non-Devanagari characters pass
// through unchanged.
package translit

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Combining marks in the Devanagari block that modify the preceding
// consonant or syllable.
const (
	chandrabindu = 'ँ' // nasalization, rendered "n"
	anusvara     = 'ं' // nasalization, rendered "n"
	visarga      = 'ः' // aspiration, rendered "h"
	nukta        = '़' // foreign-sound diacritic, alters the consonant
	halant       = '्' // suppresses the inherent vowel
)

// consonants maps Devanagari consonants to their Roman value without the
// inherent vowel.
var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "n",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "n",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'ळ': "l", 'व': "v",
	'श': "sh", 'ष': "sh", 'स': "s", 'ह': "h",
}

// nuktaForms maps a consonant to its Roman value under the nukta
// diacritic. The precomposed letters U+0958..U+095F are Unicode
// composition exclusions, so NFC decomposes them; every nukta form
// reaches the transliterator as base consonant plus combining nukta.
var nuktaForms = map[rune]string{
	'क': "q", 'ख': "kh", 'ग': "g", 'ज': "z",
	'ड': "r", 'ढ': "rh", 'फ': "f", 'य': "y",
}

// vowels maps independent (word-initial) vowel letters.
var vowels = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "i",
	'उ': "u", 'ऊ': "u", 'ऋ': "ri",
	'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au",
	'ऍ': "e", 'ऑ': "o",
}

// matras maps dependent vowel signs attached to a consonant.
var matras = map[rune]string{
	'ा': "a",  // ा
	'ि': "i",  // ि
	'ी': "i",  // ी
	'ु': "u",  // ु
	'ू': "u",  // ू
	'ृ': "ri", // ृ
	'ॅ': "e",  // ॅ
	'े': "e",  // े
	'ै': "ai", // ै
	'ॉ': "o",  // ॉ
	'ो': "o",  // ो
	'ौ': "au", // ौ
}

var digits = map[rune]string{
	'०': "0", '१': "1", '२': "2", '३': "3", '४': "4",
	'५': "5", '६': "6", '७': "7", '८': "8", '९': "9",
}

// Transliterate converts Devanagari text to Roman script. Input with no
// Devanagari codepoints is returned unchanged, so pure-ASCII strings are
// a fast-path identity. Each word that contained Devanagari is
// capitalized in the output.
//
// A script transition inside a word counts as a word boundary: a
// consonant directly followed by a non-Devanagari character keeps no
// inherent vowel, so an attached honorific like "रामji" romanizes to
// "Ramji", never "Ramaji". Callers may rely on this.
func Transliterate(text string) string {
	if !ContainsDevanagari(text) {
		return text
	}

	// NFC gives every nukta letter one spelling: the precomposed
	// codepoints are composition exclusions, so both forms normalize
	// to base consonant + combining nukta.
	text = norm.NFC.String(text)

	var out strings.Builder
	out.Grow(len(text))

	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && !isSpace(text[i]) {
			continue
		}
		if i > start {
			out.WriteString(transliterateWord(text[start:i]))
		}
		if i < len(text) {
			out.WriteByte(text[i])
		}
		start = i + 1
	}
	return out.String()
}

// ContainsDevanagari reports whether any codepoint falls in the
// Devanagari Unicode block (U+0900..U+097F).
func ContainsDevanagari(text string) bool {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// transliterateWord converts one whitespace-delimited token. A bare
// consonant receives the inherent "a" unless it sits at a word boundary:
// end of token, or adjacent to a non-Devanagari character.
func transliterateWord(word string) string {
	if !ContainsDevanagari(word) {
		return word
	}

	var out strings.Builder
	// Roman value of a consonant awaiting its vowel, and the consonant
	// itself so a combining nukta can upgrade it.
	pending := ""
	var pendingRune rune

	flush := func(atBoundary bool) {
		if pending == "" {
			return
		}
		out.WriteString(pending)
		if !atBoundary {
			out.WriteString("a")
		}
		pending = ""
	}

	for _, r := range word {
		if !isDevanagari(r) {
			flush(true)
			out.WriteRune(r)
			continue
		}
		if c, ok := consonants[r]; ok {
			flush(false)
			pending = c
			pendingRune = r
			continue
		}
		if m, ok := matras[r]; ok {
			out.WriteString(pending)
			out.WriteString(m)
			pending = ""
			continue
		}
		if v, ok := vowels[r]; ok {
			flush(false)
			out.WriteString(v)
			continue
		}
		if d, ok := digits[r]; ok {
			flush(true)
			out.WriteString(d)
			continue
		}
		switch r {
		case halant:
			// Vowel suppressed: emit the bare consonant so clusters
			// like क्ष concatenate as "ksh".
			out.WriteString(pending)
			pending = ""
		case anusvara, chandrabindu:
			flush(false)
			out.WriteString("n")
		case visarga:
			flush(false)
			out.WriteString("h")
		case nukta:
			// Upgrade the pending consonant to its nukta value
			// (ज -> "z"). A nukta on anything else carries no sound.
			if f, ok := nuktaForms[pendingRune]; ok && pending != "" {
				pending = f
			}
		case '।', '॥': // danda, double danda
			flush(true)
			out.WriteString(".")
		default:
			// Unmapped Devanagari codepoint (rare vedic marks). Skip.
			flush(true)
		}
	}
	flush(true)

	return capitalize(out.String())
}

// capitalize uppercases the first letter of the word, skipping any
// leading punctuation.
func capitalize(word string) string {
	for i, r := range word {
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return word
			}
			return word[:i] + string(unicode.ToUpper(r)) + word[i+len(string(r)):]
		}
	}
	return word
}
