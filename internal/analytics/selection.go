package analytics

import "flousi/internal/core"

// SelectionState tells whether the index was chosen automatically or by the user.
type SelectionState int

const (
	UnselectedDefault SelectionState = iota
	UserSelected
)

func (s SelectionState) String() string {
	if s == UserSelected {
		return "user_selected"
	}
	return "default"
}

// Selection tracks the highlighted category of the current list.
// The zero value is an empty list with index 0.
type Selection struct {
	index int
	count int
	state SelectionState
}

// DataChanged resets the selection to the largest amount, first one on ties.
func (s *Selection) DataChanged(cats []core.CategoryAmount) {
	s.count = len(cats)
	s.state = UnselectedDefault
	s.index = ArgMax(cats)
}

// Tap selects index i, clamped to the current list.
func (s *Selection) Tap(i int) {
	s.index = ClampIndex(i, s.count)
	s.state = UserSelected
}

func (s *Selection) Index() int {
	return s.index
}

func (s *Selection) State() SelectionState {
	return s.state
}

// Valid reports whether Index points at an entry of the list.
func (s *Selection) Valid() bool {
	return s.index >= 0 && s.index < s.count
}

// ArgMax returns the index of the largest amount, or 0 for an empty list.
func ArgMax(cats []core.CategoryAmount) int {
	best := 0
	for i := 1; i < len(cats); i++ {
		if sanitizeAmount(cats[i].Amount) > sanitizeAmount(cats[best].Amount) {
			best = i
		}
	}
	return best
}

// ClampIndex bounds i to [0, n-1]; it returns 0 when n is 0.
func ClampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
