package manager

import (
	"slices"
	"sync"
)

// ViewState is one coherent snapshot of the screen. Snapshots are never
// modified after they are published; every change produces a new value.
type ViewState struct {
	SearchVisible bool
	Query         string
	Suggestions   []Location
	Loading       bool
	Weather       *Forecast
}

type state struct {
	mu       sync.Mutex
	current  ViewState
	onChange func(ViewState)
}

func (s *state) snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	vs := s.current
	vs.Suggestions = slices.Clone(vs.Suggestions)
	return vs
}

// update hands fn a copy of the current snapshot. The copy replaces the
// current snapshot only when fn returns true. The change listener runs under
// the lock so listeners observe snapshots in publication order; it must not
// call back into the manager.
func (s *state) update(fn func(vs *ViewState) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if !fn(&next) {
		return false
	}
	if !next.SearchVisible {
		next.Suggestions = nil
	}
	s.current = next

	if s.onChange != nil {
		s.onChange(next)
	}
	return true
}
