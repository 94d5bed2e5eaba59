package nickname

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDictionaryIsValid(t *testing.T) {
	require.NotPanics(t, func() { Default() })
}

func TestIsNicknameRelation(t *testing.T) {
	d := Default()

	tests := []struct {
		a, b string
		want bool
	}{
		{"Raju", "Rahul", true},
		{"Rahul", "Raju", true}, // bidirectional
		{"raju", "RAHUL", true}, // case-insensitive
		{"Kishan", "Kanha", true},
		{"Kishan", "Krishna", true},
		{"Raju", "Suresh", false},
		{"Rahul", "Rahul", false}, // identity is the exact tier's job
		{"Rajuu", "Rahul", false}, // exact lookups only, no fuzziness
		{"", "Rahul", false},
		{"Raju", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsNicknameRelation(tt.a, tt.b))
		})
	}
}

func TestEveryNicknameHasOneCanonical(t *testing.T) {
	d := Default()
	for nick, canonical := range d.reverse {
		got, ok := d.Canonical(nick)
		require.True(t, ok, "nickname %q must resolve", nick)
		assert.Equal(t, canonical, got)
	}
}

func TestNewRejectsSharedNickname(t *testing.T) {
	_, err := New(map[string][]string{
		"rahul":  {"raju"},
		"rajesh": {"raju"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raju")
}

func TestCanonical(t *testing.T) {
	d := Default()

	c, ok := d.Canonical("Raju")
	require.True(t, ok)
	assert.Equal(t, "rahul", c)

	c, ok = d.Canonical("rahul")
	require.True(t, ok)
	assert.Equal(t, "rahul", c)

	_, ok = d.Canonical("zzz")
	assert.False(t, ok)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nicknames.toml")
	content := `
[nicknames]
bhagwandas = ["bhagu"]
rahul = ["raju", "rahulu"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := LoadTOML(path)
	require.NoError(t, err)

	// new regional entry
	assert.True(t, d.IsNicknameRelation("Bhagu", "Bhagwandas"))
	// file entry replaced the built-in one for the same canonical
	assert.True(t, d.IsNicknameRelation("Rahulu", "Rahul"))
	assert.True(t, d.IsNicknameRelation("Raju", "Rahul"))
	// untouched built-in entries survive the merge
	assert.True(t, d.IsNicknameRelation("Sanju", "Sanjay"))
}

func TestLoadTOMLMissingFile(t *testing.T) {
	_, err := LoadTOML("/nonexistent/nicknames.toml")
	assert.Error(t, err)
}

func TestNicknamesReturnsCopy(t *testing.T) {
	d := Default()
	nicks := d.Nicknames("krishna")
	require.NotEmpty(t, nicks)
	nicks[0] = "clobbered"
	assert.NotContains(t, d.Nicknames("krishna"), "clobbered")
}
