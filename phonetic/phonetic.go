// Package phonetic canonicalizes Roman-script spellings of Hindi names so
// that regional variants of the same spoken name compare equal:
// "Bharath" and "Bharat", "Laxmi" written "Lakshmi", "Wikas" and "Vikas".
//
// Two names are phonetically equivalent iff their canonical forms are
// string-equal.
package phonetic

import (
	"strings"
)

// honorifics are respectful forms stripped before comparison. Matched as
// whole words only; "Rahulji" keeps its suffix and is handled by the
// fuzzy tiers upstream.
var honorifics = map[string]bool{
	"ji": true, "bhai": true, "bhaiya": true, "bhabhi": true,
	"didi": true, "sahab": true, "saheb": true, "sahib": true,
	"babu": true, "seth": true, "sethji": true, "lala": true,
	"chacha": true, "mausi": true, "tau": true,
	"shri": true, "shree": true, "smt": true, "kumari": true,
	"uncle": true, "aunty": true, "madam": true, "sir": true,
}

// Rule is one step of the phonetic canonicalization pipeline.
type Rule struct {
	Name  string
	Apply func(string) string
}

func replaceAll(pairs ...string) func(string) string {
	return func(s string) string {
		for i := 0; i+1 < len(pairs); i += 2 {
			s = strings.ReplaceAll(s, pairs[i], pairs[i+1])
		}
		return s
	}
}

// rules is the ordered canonicalization pipeline. The order is a
// contract: later rules operate on earlier rules' output. In particular
// "chh" must reduce before the aspirate collapse would see its "hh", the
// trailing-h drop must run after the aspirate collapse has consumed
// digraph h's, and the double-consonant collapse runs last so it sweeps
// doubles exposed by every earlier rule.
var rules = []Rule{
	{
		// aa/ee/ii/oo/uu and long vowel digraphs shorten
		Name: "vowel-length-collapse",
		Apply: replaceAll(
			"aa", "a",
			"ee", "i",
			"ii", "i",
			"oo", "u",
			"uu", "u",
		),
	},
	{
		// chh is the aspirated affricate; reduce it to ch before the
		// plain aspirate collapse
		Name:  "affricate-collapse",
		Apply: replaceAll("chh", "ch"),
	},
	{
		// aspirated consonants lose their h. Roman spelling writes the
		// retroflex and dental series with the same letters, so th->t
		// and dh->d also realize the retroflex->dental merge.
		Name: "aspirate-collapse",
		Apply: replaceAll(
			"kh", "k",
			"gh", "g",
			"jh", "j",
			"th", "t",
			"dh", "d",
			"bh", "b",
			"ph", "p",
		),
	},
	{
		// sibilants consolidate: sh/ss variants of s, x for ks
		Name: "sibilant-consolidation",
		Apply: replaceAll(
			"sh", "s",
			"x", "ks",
			"z", "j",
		),
	},
	{
		Name:  "v-w-merge",
		Apply: replaceAll("w", "v"),
	},
	{
		// a lone trailing h is silent ("Bharath" after th->t is already
		// handled; this catches "Shah" style endings)
		Name: "trailing-h-drop",
		Apply: func(s string) string {
			return strings.TrimSuffix(s, "h")
		},
	},
	{
		// runs last: collapses doubles present in the input and doubles
		// exposed by the rules above
		Name:  "double-consonant-collapse",
		Apply: collapseDoubles,
	},
}

// Rules returns the ordered canonicalization pipeline. The slice order is
// part of the package contract and is covered by tests.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Normalize returns the phonetic canonical form of a name: lowercased,
// honorifics stripped, the rule pipeline applied in order, and all
// non-alphanumeric characters removed.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !honorifics[strings.Trim(w, ".,!?")] {
			kept = append(kept, w)
		}
	}
	s = strings.Join(kept, " ")

	for _, r := range rules {
		s = r.Apply(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equivalent reports whether two names share a phonetic canonical form.
func Equivalent(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

func collapseDoubles(s string) string {
	if len(s) <= 1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := rune(-1)
	for _, r := range s {
		if r != prev {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
