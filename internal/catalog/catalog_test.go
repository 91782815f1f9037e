package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_CatalogOrderWins(t *testing.T) {
	c := Default()

	// benzene appears first in the text, toluene first in the catalog.
	got := c.Detect("benzene rinse followed by toluene tank cleaning")
	assert.Equal(t, "toluene", got)
}

func TestDetect_NoMatch(t *testing.T) {
	c := Default()
	assert.Equal(t, "", c.Detect("routine scaffold inspection in warehouse B"))
}

func TestDetect_CaseSensitive(t *testing.T) {
	c := Default()
	assert.Equal(t, "", c.Detect("TOLUENE transfer"))
	assert.Equal(t, "toluene", c.Detect("toluene transfer"))
}

func TestDetect_MultiWordSubstance(t *testing.T) {
	c := Default()
	assert.Equal(t, "sulfuric acid", c.Detect("neutralize the sulfuric acid line"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("substances:\n  - ammonia\n  - toluene\n"), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ammonia", "toluene"}, c.Substances())
	assert.Equal(t, "ammonia", c.Detect("toluene and ammonia present"))
}

func TestLoadFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("substances: []\n"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
