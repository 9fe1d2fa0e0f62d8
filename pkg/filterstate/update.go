package filterstate

import (
	"slices"
	"strings"
)

// Source identifies the kind of control a change came from.
type Source uint8

const (
	SourceText     Source = iota // Text input; commits on blur or Enter
	SourceCheckbox               // Multi-select; accumulates values
	SourceRadio                  // Exclusive choice (OPT_LIST, RATING)
	SourceSlider                 // Range slider
	SourceSelect                 // Sort-by select
	SourceImage                  // Image gallery click
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceText:
		return "text"
	case SourceCheckbox:
		return "checkbox"
	case SourceRadio:
		return "radio"
	case SourceSlider:
		return "slider"
	case SourceSelect:
		return "select"
	case SourceImage:
		return "image"
	default:
		return "unknown"
	}
}

// Immediate reports whether a change from this source commits right away
// (outside apply mode). Text inputs wait for blur or Enter.
func (s Source) Immediate() bool {
	return s != SourceText
}

// Change is one user edit of a control.
type Change struct {
	// Key is the control id, which is the filter key it writes.
	Key   string
	Value string

	Source Source

	// Checked is the new checkbox state. Ignored for other sources.
	Checked bool

	// Placeholder is the control's placeholder, used as the sibling value
	// when only one half of a range has been set.
	Placeholder string
}

// Apply updates s with c.
//
// Checkbox changes add to (or, when unchecked, remove from) the comma-joined
// list stored under the key; every other source replaces the value. Keys
// ending in _Min or _Max also recompute the combined range value, first
// filling an unset sibling with the placeholder.
func (s *State) Apply(c Change) {
	if c.Source == SourceCheckbox {
		s.toggle(c.Key, c.Value, c.Checked)
	} else {
		s.Set(c.Key, c.Value)
	}

	switch {
	case isShadow(c.Key, MinSuffix):
		base := strings.TrimSuffix(c.Key, MinSuffix)
		if !s.Has(base + MaxSuffix) {
			s.Set(base+MaxSuffix, c.Placeholder)
		}
		s.Set(base, c.Value+"-"+s.Value(base+MaxSuffix))
	case isShadow(c.Key, MaxSuffix):
		base := strings.TrimSuffix(c.Key, MaxSuffix)
		if !s.Has(base + MinSuffix) {
			s.Set(base+MinSuffix, c.Placeholder)
		}
		s.Set(base, s.Value(base+MinSuffix)+"-"+c.Value)
	}
}

func (s *State) toggle(key, value string, checked bool) {
	items := s.List(key)
	idx := slices.Index(items, value)
	switch {
	case checked && idx < 0:
		items = append(items, value)
	case !checked && idx >= 0:
		items = slices.Delete(items, idx, idx+1)
	default:
		return
	}
	s.Set(key, strings.Join(items, ","))
}

func isShadow(key, suffix string) bool {
	return len(key) > len(suffix) && strings.HasSuffix(key, suffix)
}
