package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
)

func TestDefault_Embedded(t *testing.T) {
	c := Default()

	aatrox, ok := c.ChampionByID(266)
	require.True(t, ok)
	assert.Equal(t, "Aatrox", aatrox.Name)
	assert.Equal(t, "Aatrox.png", aatrox.Image)

	_, ok = c.ChampionByID(99999)
	assert.False(t, ok)

	all := c.Champions()
	assert.Equal(t, c.Len(), len(all))
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}
	assert.Equal(t, "14.24.1", c.Version())
}

func TestChampions_ReturnsCopy(t *testing.T) {
	c, err := New([]engine.Champion{{ID: 1, Name: "Annie"}})
	require.NoError(t, err)

	c.Champions()[0].Name = "changed"
	assert.Equal(t, "Annie", c.Champions()[0].Name)
}

func TestNew_Rejects(t *testing.T) {
	cases := []struct {
		name string
		list []engine.Champion
	}{
		{name: "duplicate", list: []engine.Champion{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}},
		{name: "zero id", list: []engine.Champion{{ID: 0, Name: "a"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.list); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "champion.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"version":"15.1.1","data":{"Ahri":{"id":"Ahri","key":"103","name":"Ahri","image":{"full":"Ahri.png"}}}}`), 0o600))

	c, err := LoadFile(good)
	require.NoError(t, err)
	ahri, ok := c.ChampionByID(103)
	require.True(t, ok)
	assert.Equal(t, "Ahri", ahri.Key)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"data":{"Ahri":{"key":"abc"}}}`), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
