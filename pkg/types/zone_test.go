package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZone_Names(t *testing.T) {
	assert.Equal(t, "creative", ZoneCreative.String())
	assert.Equal(t, "mysteries", ZoneMysteries.String())
	assert.Equal(t, "zone(7)", Zone(7).String())

	assert.Equal(t, "creative_zone_sort_option", ZoneCreative.SortPreferenceKey())
	assert.Equal(t, "mysteries.db", ZoneMysteries.DatabaseFile())
}

func TestZone_Other(t *testing.T) {
	assert.Equal(t, ZoneMysteries, ZoneCreative.Other())
	assert.Equal(t, ZoneCreative, ZoneMysteries.Other())
	assert.Equal(t, ZoneCreative, ZoneCreative.Other().Other())
}

func TestParseZone(t *testing.T) {
	for _, z := range Zones {
		got, err := ParseZone(z.String())
		require.NoError(t, err)
		assert.Equal(t, z, got)
	}

	_, err := ParseZone("attic")
	assert.ErrorIs(t, err, ErrUnknownZone)
	assert.False(t, Zone(9).Valid())
}
