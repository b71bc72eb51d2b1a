package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

func TestOpenZones(t *testing.T) {
	dir := t.TempDir()

	stores, err := OpenZones(dir)
	require.NoError(t, err)
	defer func() {
		for _, s := range stores {
			s.Close()
		}
	}()

	require.Len(t, stores, 2)
	assert.FileExists(t, filepath.Join(dir, "creative.db"))
	assert.FileExists(t, filepath.Join(dir, "mysteries.db"))

	var got types.ChangeEvent
	stores[types.ZoneMysteries].Subscribe(func(ev types.ChangeEvent) { got = ev })

	_, err = stores[types.ZoneMysteries].Insert("hidden", "")
	require.NoError(t, err)
	assert.Equal(t, "mysteries", got.Source)

	creative, err := stores[types.ZoneCreative].GetAll(types.SortAZ)
	require.NoError(t, err)
	assert.Empty(t, creative, "zones never share rows")
}

func TestOpen(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	defer s.Close()

	id, err := s.Insert("a", "b")
	require.NoError(t, err)
	note, err := s.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "a", note.Title)
}
