package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

func TestToggleOption(t *testing.T) {
	var selected []string
	selected = ToggleOption(selected, "A")
	selected = ToggleOption(selected, "C")
	assert.Equal(t, "A,C", EncodeMulti(selected))

	selected = ToggleOption(selected, "A")
	assert.Equal(t, "C", EncodeMulti(selected))
}

func TestToggleOptionDoesNotMutateInput(t *testing.T) {
	in := []string{"A", "B"}
	out := ToggleOption(in, "A")
	assert.Equal(t, []string{"A", "B"}, in)
	assert.Equal(t, []string{"B"}, out)
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	start := []string{"A", "B"}
	once := ToggleOption(start, "C")
	twice := ToggleOption(once, "C")
	assert.Equal(t, start, twice)
}

func TestMultiRoundTrip(t *testing.T) {
	sequences := [][]string{
		{},
		{"A"},
		{"A", "B", "A", "C"},
		{"C", "B", "A", "B", "D"},
		{"opt-1", "opt-2", "opt-3", "opt-2", "opt-1", "opt-1"},
	}
	for _, toggles := range sequences {
		var selected []string
		for _, opt := range toggles {
			selected = ToggleOption(selected, opt)
		}
		decoded := DecodeMulti(EncodeMulti(selected))
		if len(selected) == 0 {
			assert.Empty(t, decoded)
			continue
		}
		assert.Equal(t, selected, decoded, "toggles %v", toggles)
	}
}

func TestDecodeMultiSkipsEmptySegments(t *testing.T) {
	assert.Nil(t, DecodeMulti(""))
	assert.Equal(t, []string{"A", "B"}, DecodeMulti("A,,B,"))
}

func TestValueEncodeByType(t *testing.T) {
	v := Decode(domain.FieldTypeCheckboxMulti, "x,y")
	require.Equal(t, []string{"x", "y"}, v.Selected())
	assert.Equal(t, "x,y", v.Encode())
	assert.Equal(t, "y", v.Toggle("x").Encode())

	text := Decode(domain.FieldTypeText, "a,b")
	assert.Equal(t, "a,b", text.Encode())
	assert.Empty(t, text.Selected())

	assert.True(t, Scalar(domain.FieldTypeNumber, "   ").IsBlank())
	assert.True(t, Multi().IsBlank())
}
