package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

func city(id int64, name string) types.City {
	return types.City{
		ID:       id,
		CityName: name,
		Country:  "Portugal",
		Emoji:    "🇵🇹",
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Position: types.Position{Lat: 38.72, Lng: -9.14},
	}
}

func TestApply(t *testing.T) {
	t.Run("citiesFetched replaces the sequence", func(t *testing.T) {
		s := apply(state{}, citiesFetched{cities: []types.City{city(1, "Lisbon"), city(2, "Porto")}})
		require.Len(t, s.cities, 2)
		assert.Nil(t, s.current)
	})

	t.Run("cityAdded appends and selects", func(t *testing.T) {
		s := state{cities: []types.City{city(1, "Lisbon")}}
		s = apply(s, cityAdded{city: city(2, "Porto")})

		require.Len(t, s.cities, 2)
		assert.Equal(t, int64(2), s.cities[1].ID)
		require.NotNil(t, s.current)
		assert.Equal(t, int64(2), s.current.ID)
	})

	t.Run("cityRemoved clears the selection only for the selected city", func(t *testing.T) {
		selected := city(1, "Lisbon")
		s := state{cities: []types.City{selected, city(2, "Porto")}, current: &selected}

		s = apply(s, cityRemoved{id: 2})
		require.Len(t, s.cities, 1)
		require.NotNil(t, s.current)
		assert.Equal(t, int64(1), s.current.ID)

		s = apply(s, cityRemoved{id: 1})
		assert.Empty(t, s.cities)
		assert.Nil(t, s.current)
	})

	t.Run("loading toggles only the flag", func(t *testing.T) {
		s := apply(state{cities: []types.City{city(1, "Lisbon")}}, loading{on: true})
		assert.True(t, s.isLoading)
		assert.Len(t, s.cities, 1)

		s = apply(s, loading{on: false})
		assert.False(t, s.isLoading)
	})

	t.Run("apply never mutates the previous state", func(t *testing.T) {
		before := state{cities: []types.City{city(1, "Lisbon"), city(2, "Porto")}}
		snapshotBefore := before.snapshot()

		_ = apply(before, cityAdded{city: city(3, "Faro")})
		_ = apply(before, cityRemoved{id: 1})

		assert.Equal(t, snapshotBefore, before.snapshot())
	})

	t.Run("snapshot copies are independent", func(t *testing.T) {
		s := state{cities: []types.City{city(1, "Lisbon")}}
		snap := s.snapshot()
		snap.Cities[0].CityName = "changed"

		assert.Equal(t, "Lisbon", s.cities[0].CityName)
	})
}
