package filterstate

import (
	"maps"
	"slices"
	"strings"
)

// Shadow key suffixes of range filters.
const (
	MinSuffix = "_Min"
	MaxSuffix = "_Max"
)

// State is a mutable key to value store of filter selections.
type State struct {
	values map[string]string
}

// New creates an empty State.
func New() *State {
	return &State{values: make(map[string]string)}
}

// FromMap creates a State holding a copy of m.
func FromMap(m map[string]string) *State {
	s := New()
	maps.Copy(s.values, m)
	return s
}

// Get returns the value for key and whether it is present.
func (s *State) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (s *State) Value(key string) string {
	return s.values[key]
}

// Has reports whether key holds a non-empty value.
func (s *State) Has(key string) bool {
	return s.values[key] != ""
}

// Set overwrites the value for key.
func (s *State) Set(key, value string) {
	s.values[key] = value
}

// SetRange stores a combined range value together with both shadows.
func (s *State) SetRange(key, lo, hi string) {
	s.values[key+MinSuffix] = lo
	s.values[key+MaxSuffix] = hi
	s.values[key] = lo + "-" + hi
}

// setDecoded stores a decoded value. A value with a '-' past its first
// character also fills the range shadows, split on the first '-'.
func (s *State) setDecoded(key, value string) {
	if i := strings.IndexByte(value, '-'); i > 0 {
		s.values[key+MinSuffix] = value[:i]
		s.values[key+MaxSuffix] = value[i+1:]
	}
	s.values[key] = value
}

// List splits a comma-joined value into its items.
func (s *State) List(key string) []string {
	v := s.values[key]
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// Len returns the number of entries.
func (s *State) Len() int { return len(s.values) }

// Keys returns all keys in sorted order.
func (s *State) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Map returns a copy of the entries.
func (s *State) Map() map[string]string {
	return maps.Clone(s.values)
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	return FromMap(s.values)
}

// RangeConsistent reports whether key satisfies the range invariant: when
// both shadows are present the combined value equals "min-max".
func (s *State) RangeConsistent(key string) bool {
	lo, okLo := s.values[key+MinSuffix]
	hi, okHi := s.values[key+MaxSuffix]
	if !okLo || !okHi {
		return true
	}
	return s.values[key] == lo+"-"+hi
}
