// Package nickname maps formal Hindi given names to their informal short
// forms ("Rahul" -> "Raju") and back. Lookups are case-insensitive exact
// string lookups only; near-miss nicknames are the match engine's job,
// composed with phonetic normalization and edit-distance upstream.
package nickname

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vyapari/grahak/errors"
)

// defaultEntries is the built-in dictionary of common North Indian
// nickname relations. Every nickname belongs to exactly one canonical
// name; where a pet name is shared across formal names in practice
// (Raju, Mahi) the dictionary keeps the most common owner.
var defaultEntries = map[string][]string{
	"rahul":    {"raju"},
	"rajesh":   {"raj"},
	"sanjay":   {"sanju"},
	"vijay":    {"viju"},
	"ramesh":   {"ramu"},
	"suresh":   {"suri"},
	"mahesh":   {"mahi"},
	"rakesh":   {"rocky"},
	"mukesh":   {"mukku"},
	"dinesh":   {"dinu"},
	"manoj":    {"manu"},
	"pankaj":   {"panku"},
	"deepak":   {"deepu"},
	"santosh":  {"santu"},
	"ganesh":   {"ganu"},
	"vikas":    {"vicky"},
	"vikram":   {"vikki"},
	"sandeep":  {"sandy"},
	"krishna":  {"kishan", "kanha"},
	"lakshman": {"lakhan"},
	"anuradha": {"anu"},
	"priya":    {"piyu"},
	"pooja":    {"puja"},
	"sunita":   {"sunni"},
	"savita":   {"savvy"},
	"jagdish":  {"jaggu"},
	"bhavesh":  {"bhavu"},
	"chandra":  {"chandu"},
	"narendra": {"naru"},
	"devendra": {"dev"},
}

// Dictionary holds the canonical-name -> nicknames mapping and its
// derived reverse index, built once at construction.
type Dictionary struct {
	canonical map[string][]string
	reverse   map[string]string
}

// Default returns a dictionary built from the compiled-in entries.
func Default() *Dictionary {
	d, err := New(defaultEntries)
	if err != nil {
		// the compiled-in table is validated by tests
		panic(err)
	}
	return d
}

// New builds a dictionary from canonical -> nicknames entries. Keys and
// values are lowercased. Returns an error if any nickname is claimed by
// two canonical names: the reverse map must resolve each nickname to
// exactly one canonical.
func New(entries map[string][]string) (*Dictionary, error) {
	d := &Dictionary{
		canonical: make(map[string][]string, len(entries)),
		reverse:   make(map[string]string, len(entries)),
	}
	for name, nicks := range entries {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return nil, errors.New("empty canonical name in nickname entries")
		}
		for _, nick := range nicks {
			nick = strings.ToLower(strings.TrimSpace(nick))
			if nick == "" {
				continue
			}
			if owner, taken := d.reverse[nick]; taken && owner != name {
				return nil, errors.Newf("nickname %q claimed by both %q and %q", nick, owner, name)
			}
			d.reverse[nick] = name
			d.canonical[name] = append(d.canonical[name], nick)
		}
	}
	return d, nil
}

// dictFile is the on-disk TOML shape:
//
//	[nicknames]
//	rahul = ["raju"]
type dictFile struct {
	Nicknames map[string][]string `toml:"nicknames"`
}

// LoadTOML reads extra nickname entries from a TOML file and merges them
// over the built-in dictionary, so deployments can add regional nicknames
// without recompiling. A file entry replaces the built-in entry for the
// same canonical name.
func LoadTOML(path string) (*Dictionary, error) {
	var f dictFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to load nickname dictionary %s", path)
	}

	merged := make(map[string][]string, len(defaultEntries)+len(f.Nicknames))
	for k, v := range defaultEntries {
		merged[k] = v
	}
	for k, v := range f.Nicknames {
		merged[strings.ToLower(k)] = v
	}
	return New(merged)
}

// IsNicknameRelation reports whether a is a listed nickname of b, b is a
// listed nickname of a, or both resolve to the same canonical name.
func (d *Dictionary) IsNicknameRelation(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}

	if d.reverse[a] == b || d.reverse[b] == a {
		return true
	}
	if ca, ok := d.reverse[a]; ok {
		if cb, ok := d.reverse[b]; ok && ca == cb {
			return true
		}
	}
	return false
}

// Canonical resolves a nickname to its canonical name. A canonical name
// resolves to itself.
func (d *Dictionary) Canonical(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := d.canonical[name]; ok {
		return name, true
	}
	c, ok := d.reverse[name]
	return c, ok
}

// Nicknames returns the listed nicknames for a canonical name.
func (d *Dictionary) Nicknames(name string) []string {
	nicks := d.canonical[strings.ToLower(strings.TrimSpace(name))]
	out := make([]string, len(nicks))
	copy(out, nicks)
	return out
}
