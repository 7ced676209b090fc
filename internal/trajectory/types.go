package trajectory

import "gonum.org/v1/gonum/spatial/r3"

// Entry is one pose sample of a walkthrough.
type Entry struct {
	Position  r3.Vec
	Forward   r3.Vec
	Up        r3.Vec
	Right     r3.Vec
	Timestamp float64
}

// Trajectory is the time-ordered sample sequence of one trial, in input
// row order. Rows are never re-sorted.
type Trajectory []Entry

// Positions returns the sample positions in order.
func (t Trajectory) Positions() []r3.Vec {
	out := make([]r3.Vec, len(t))
	for i, e := range t {
		out[i] = e.Position
	}
	return out
}

// Set maps trajectory keys to trajectories and remembers the order in
// which keys were first seen. Iteration always follows that order.
type Set struct {
	keys  []string
	byKey map[string]Trajectory
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byKey: make(map[string]Trajectory)}
}

// append adds e to key's trajectory, creating it on first use. Only the
// ingester calls this; callers outside the package see a finished Set.
func (s *Set) append(key string, e Entry) {
	t, ok := s.byKey[key]
	if !ok {
		s.keys = append(s.keys, key)
	}
	s.byKey[key] = append(t, e)
}

// Len returns the number of trajectories.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns a copy of the keys in first-seen order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Get returns the trajectory stored under key.
func (s *Set) Get(key string) (Trajectory, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.byKey[key]
	return t, ok
}

// Each calls fn for every trajectory in first-seen key order, passing the
// trajectory's index in that order.
func (s *Set) Each(fn func(i int, key string, t Trajectory)) {
	if s == nil {
		return
	}
	for i, k := range s.keys {
		fn(i, k, s.byKey[k])
	}
}

// Positions returns every sample position of every trajectory, grouped
// by trajectory in key order.
func (s *Set) Positions() []r3.Vec {
	var out []r3.Vec
	s.Each(func(_ int, _ string, t Trajectory) {
		for _, e := range t {
			out = append(out, e.Position)
		}
	})
	return out
}

// Samples returns the total number of entries across all trajectories.
func (s *Set) Samples() int {
	n := 0
	s.Each(func(_ int, _ string, t Trajectory) { n += len(t) })
	return n
}

// FromTrajectories builds a Set from trajectories listed in key order,
// for callers that obtain samples from somewhere other than a table (test
// fixtures, reloaded runs). Repeated keys are concatenated; empty
// trajectories are skipped so every stored trajectory has a first and
// last sample.
func FromTrajectories(keys []string, trajectories []Trajectory) *Set {
	s := NewSet()
	for i := 0; i < len(keys) && i < len(trajectories); i++ {
		for _, e := range trajectories[i] {
			s.append(keys[i], e)
		}
	}
	return s
}
