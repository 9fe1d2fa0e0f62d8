package filterstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestApplyCheckboxAccumulates(t *testing.T) {
	s := New()
	s.Apply(Change{Key: "brands", Value: "Nike", Source: SourceCheckbox, Checked: true})
	s.Apply(Change{Key: "brands", Value: "Levis", Source: SourceCheckbox, Checked: true})

	assert.Equal(t, "Nike,Levis", s.Value("brands"))

	// Re-checking is idempotent.
	s.Apply(Change{Key: "brands", Value: "Nike", Source: SourceCheckbox, Checked: true})
	assert.Equal(t, "Nike,Levis", s.Value("brands"))
}

func TestApplyCheckboxUncheck(t *testing.T) {
	s := FromMap(map[string]string{"brands": "Nike,Addidas,Levis"})

	s.Apply(Change{Key: "brands", Value: "Addidas", Source: SourceCheckbox})
	assert.Equal(t, "Nike,Levis", s.Value("brands"))

	s.Apply(Change{Key: "brands", Value: "Nike", Source: SourceCheckbox})
	s.Apply(Change{Key: "brands", Value: "Levis", Source: SourceCheckbox})
	v, ok := s.Get("brands")
	assert.True(t, ok, "entries are never deleted")
	assert.Equal(t, "", v)
}

func TestApplyReplaces(t *testing.T) {
	s := FromMap(map[string]string{"ram": "2GB"})
	s.Apply(Change{Key: "ram", Value: "8GB", Source: SourceRadio})
	assert.Equal(t, "8GB", s.Value("ram"))
}

func TestApplyRange(t *testing.T) {
	tests := []struct {
		name    string
		initial map[string]string
		change  Change
		want    map[string]string
	}{
		{
			name:    "min with max unset uses placeholder",
			initial: map[string]string{},
			change:  Change{Key: "price_Min", Value: "10", Placeholder: "65536"},
			want:    map[string]string{"price_Min": "10", "price_Max": "65536", "price": "10-65536"},
		},
		{
			name:    "max with min unset uses placeholder",
			initial: map[string]string{},
			change:  Change{Key: "price_Max", Value: "500", Placeholder: "0"},
			want:    map[string]string{"price_Min": "0", "price_Max": "500", "price": "0-500"},
		},
		{
			name:    "min keeps existing max",
			initial: map[string]string{"price": "1-5", "price_Min": "1", "price_Max": "5"},
			change:  Change{Key: "price_Min", Value: "3", Placeholder: "65536"},
			want:    map[string]string{"price_Min": "3", "price_Max": "5", "price": "3-5"},
		},
		{
			name:    "suffix alone is not a shadow key",
			initial: map[string]string{},
			change:  Change{Key: "_Min", Value: "3"},
			want:    map[string]string{"_Min": "3"},
		},
		{
			name:    "infix is not a shadow key",
			initial: map[string]string{},
			change:  Change{Key: "a_Minute", Value: "3"},
			want:    map[string]string{"a_Minute": "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromMap(tt.initial)
			s.Apply(tt.change)
			if diff := cmp.Diff(tt.want, s.Map()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, s.RangeConsistent("price"))
		})
	}
}

func TestSourceImmediate(t *testing.T) {
	assert.False(t, SourceText.Immediate())
	for _, src := range []Source{SourceCheckbox, SourceRadio, SourceSlider, SourceSelect, SourceImage} {
		assert.True(t, src.Immediate(), src.String())
	}
}

func TestStateHelpers(t *testing.T) {
	s := New()
	s.SetRange("price", "1", "9")
	assert.Equal(t, []string{"price", "price_Max", "price_Min"}, s.Keys())
	assert.Equal(t, "1-9", s.Value("price"))

	clone := s.Clone()
	clone.Set("price", "x")
	assert.Equal(t, "1-9", s.Value("price"))
	assert.False(t, clone.RangeConsistent("price"))

	assert.Nil(t, s.List("missing"))
	s.Set("brands", "a,b")
	assert.Equal(t, []string{"a", "b"}, s.List("brands"))
}
