package fields

import (
	"strings"

	"github.com/samber/lo"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// MultiDelimiter joins the selected options of a checkbox-multi field.
// Option values never contain it.
const MultiDelimiter = ","

// Values maps field name to its encoded string value.
type Values map[string]string

// Value is the in-memory form of one field's input. Checkbox-multi fields carry
// their selection as an ordered set; every other type carries a single string.
// Strings are produced only by Encode.
type Value struct {
	Type     domain.FieldType
	scalar   string
	selected []string
}

// Scalar builds a single-string value for the given type.
func Scalar(fieldType domain.FieldType, raw string) Value {
	return Value{Type: fieldType, scalar: raw}
}

// Multi builds a checkbox-multi value from an ordered selection.
func Multi(selected ...string) Value {
	return Value{Type: domain.FieldTypeCheckboxMulti, selected: lo.Uniq(selected)}
}

// Decode parses an encoded value for the given field type.
func Decode(fieldType domain.FieldType, raw string) Value {
	if fieldType == domain.FieldTypeCheckboxMulti {
		return Value{Type: fieldType, selected: DecodeMulti(raw)}
	}
	return Scalar(fieldType, raw)
}

// Encode returns the string stored for the value.
func (v Value) Encode() string {
	if v.Type == domain.FieldTypeCheckboxMulti {
		return EncodeMulti(v.selected)
	}
	return v.scalar
}

// Selected returns a copy of the checkbox-multi selection.
func (v Value) Selected() []string {
	return append([]string(nil), v.selected...)
}

// IsBlank reports whether the encoded value is empty after trimming.
func (v Value) IsBlank() bool {
	return strings.TrimSpace(v.Encode()) == ""
}

// Toggle returns the value with option added to or removed from the selection.
func (v Value) Toggle(option string) Value {
	return Value{Type: domain.FieldTypeCheckboxMulti, selected: ToggleOption(v.selected, option)}
}

// ToggleOption removes option from selected when present, otherwise appends it.
// The input slice is never modified.
func ToggleOption(selected []string, option string) []string {
	if lo.Contains(selected, option) {
		return lo.Without(selected, option)
	}
	out := make([]string, 0, len(selected)+1)
	out = append(out, selected...)
	return append(out, option)
}

// EncodeMulti joins an ordered selection.
func EncodeMulti(selected []string) string {
	return strings.Join(selected, MultiDelimiter)
}

// DecodeMulti splits an encoded selection, preserving order.
func DecodeMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := lo.Filter(strings.Split(raw, MultiDelimiter), func(part string, _ int) bool {
		return part != ""
	})
	return lo.Uniq(parts)
}
