package itinerary

import "github.com/FACorreiaa/wanderlog-api/internal/types"

// state is the canonical itinerary model: the ordered city sequence, the
// current selection and the mutation-in-progress flag. It only changes
// through apply.
type state struct {
	cities    []types.City
	current   *types.City
	isLoading bool
}

// command is the tagged union of state transitions.
type command interface{ isCommand() }

type citiesFetched struct{ cities []types.City }
type citySelected struct{ city types.City }
type cityAdded struct{ city types.City }
type cityRemoved struct{ id int64 }
type loading struct{ on bool }

func (citiesFetched) isCommand() {}
func (citySelected) isCommand()  {}
func (cityAdded) isCommand()     {}
func (cityRemoved) isCommand()   {}
func (loading) isCommand()       {}

// apply is the pure transition function. It never mutates the incoming
// state's slice, so old snapshots stay valid.
func apply(s state, cmd command) state {
	switch c := cmd.(type) {
	case citiesFetched:
		s.cities = c.cities
	case citySelected:
		city := c.city
		s.current = &city
	case cityAdded:
		cities := make([]types.City, 0, len(s.cities)+1)
		cities = append(cities, s.cities...)
		s.cities = append(cities, c.city)
		city := c.city
		s.current = &city
	case cityRemoved:
		cities := make([]types.City, 0, len(s.cities))
		for _, city := range s.cities {
			if city.ID != c.id {
				cities = append(cities, city)
			}
		}
		s.cities = cities
		// Only removing the selected city drops the selection; deleting
		// any other city leaves it alone.
		if s.current != nil && s.current.ID == c.id {
			s.current = nil
		}
	case loading:
		s.isLoading = c.on
	}
	return s
}

// snapshot builds the read-only view handed out to observers.
func (s state) snapshot() types.Snapshot {
	cities := make([]types.City, len(s.cities))
	copy(cities, s.cities)

	var current *types.City
	if s.current != nil {
		c := *s.current
		current = &c
	}

	return types.Snapshot{
		Cities:      cities,
		CurrentCity: current,
		IsLoading:   s.isLoading,
	}
}
