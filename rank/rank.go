// Package rank scores a customer record against a parsed, possibly
// code-switched query ("Bharat ATM ke paas wala"). The composite score is
// the maximum across independently justified signals, never a weighted
// sum: a multi-word utterance rarely matches one field cleanly, and one
// strong field signal must not be diluted by weak ones.
package rank

import (
	"strings"
	"unicode"

	"github.com/vyapari/grahak/customer"
	"github.com/vyapari/grahak/match"
	"github.com/vyapari/grahak/translit"
)

// stopWords are dropped from queries before matching: Hindi
// postpositions, conversational filler, and English articles. Tokens
// shorter than two characters are dropped regardless.
var stopWords = map[string]bool{
	// postpositions
	"ka": true, "ki": true, "ke": true, "ko": true, "se": true,
	"me": true, "mein": true, "par": true, "pe": true,
	// filler
	"customer": true, "bhai": true, "ji": true, "wala": true,
	"wale": true, "wali": true, "naam": true,
	// articles and glue
	"the": true, "a": true, "an": true, "of": true, "to": true,
	"and": true, "aur": true,
}

// Tokenize lowercases, transliterates Devanagari, strips punctuation
// (Unicode letter/number aware), collapses whitespace and drops stop
// words and sub-2-character tokens.
func Tokenize(query string) []string {
	cleaned := clean(query)
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len([]rune(tok)) < 2 || stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// clean lowercases and replaces every non-letter, non-number rune with a
// space.
func clean(query string) string {
	s := strings.ToLower(translit.Transliterate(query))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, s)
}

// Score ranks a candidate against a query, in [0,1]. Exact name equality
// and exact nickname equality short-circuit; every other signal competes
// and the maximum wins.
func Score(query string, c customer.SearchResult) float64 {
	tokens := Tokenize(query)
	q := strings.Join(tokens, " ")
	if q == "" {
		return 0
	}

	name := strings.ToLower(strings.TrimSpace(c.Name))
	nick := strings.ToLower(strings.TrimSpace(c.Nickname))
	landmark := strings.ToLower(strings.TrimSpace(c.Landmark))
	phone := strings.TrimSpace(c.Phone)

	if name == q {
		return 1.0
	}

	best := 0.0
	keep := func(s float64) {
		if s > best {
			best = s
		}
	}

	if name != "" && strings.Contains(name, q) {
		keep(0.8 + 0.1*match.Similarity(q, name))
	}

	if nick != "" && nick == q {
		return 0.9
	}
	if nick != "" && strings.Contains(nick, q) {
		keep(0.7 + 0.1*match.Similarity(q, nick))
	}

	if landmark != "" && strings.Contains(landmark, q) {
		keep(0.6)
	}

	if phone != "" && strings.Contains(phone, q) {
		keep(0.95)
	}

	keep(tokenOverlap(tokens, name, nick, landmark, phone))

	if s := match.Similarity(q, name); s > 0.6 {
		keep(s * 0.75)
	}

	combined := strings.TrimSpace(name + " " + nick + " " + landmark)
	if s := match.Similarity(q, combined); s > 0.55 {
		keep(s * 0.7)
	}

	return clamp(best)
}

// tokenOverlap scores the share of query tokens found in any field, with
// a bonus per landmark hit. Landmark hits are what disambiguate "Bharat
// ATM ke paas wala" from every other Bharat.
func tokenOverlap(tokens []string, name, nick, landmark, phone string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	landmarkHits := 0
	for _, tok := range tokens {
		switch {
		case name != "" && strings.Contains(name, tok):
			hits++
		case nick != "" && strings.Contains(nick, tok):
			hits++
		case landmark != "" && strings.Contains(landmark, tok):
			hits++
			landmarkHits++
		case phone != "" && strings.Contains(phone, tok):
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	ratio := float64(hits) / float64(len(tokens))
	return clamp(0.45 + 0.4*ratio + 0.1*float64(landmarkHits))
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
