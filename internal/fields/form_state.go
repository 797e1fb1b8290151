package fields

import (
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// FormState holds the values of one form bound to one template schema.
// It is owned by a single form session and is not safe for concurrent use.
//
// Values set by the user are marked dirty; automatic population through
// SetDefault and ApplySuggestion never overwrites a dirty value.
type FormState struct {
	schema []domain.FieldDefinition
	byName map[string]domain.FieldDefinition
	values map[string]Value
	dirty  map[string]bool

	classification     domain.ClassificationSuggestion
	rootCauseDirty     bool
	issueCategoryDirty bool
}

// NewFormState returns an empty state with no schema.
func NewFormState() *FormState {
	s := &FormState{}
	s.Clear()
	return s
}

// Clear drops the schema, all values, dirty flags and classification.
func (s *FormState) Clear() {
	s.schema = nil
	s.byName = map[string]domain.FieldDefinition{}
	s.values = map[string]Value{}
	s.dirty = map[string]bool{}
	s.classification = domain.ClassificationSuggestion{}
	s.rootCauseDirty = false
	s.issueCategoryDirty = false
}

// Install clears the state and binds it to schema.
func (s *FormState) Install(schema []domain.FieldDefinition) {
	s.Clear()
	s.schema = append([]domain.FieldDefinition(nil), schema...)
	for _, f := range s.schema {
		s.byName[f.Name] = f
	}
}

// Schema returns the bound fields in order.
func (s *FormState) Schema() []domain.FieldDefinition {
	return append([]domain.FieldDefinition(nil), s.schema...)
}

// Field looks up a bound field by name.
func (s *FormState) Field(name string) (domain.FieldDefinition, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Get returns the current value of a field.
func (s *FormState) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set stores a user-entered encoded value and marks the field dirty.
func (s *FormState) Set(name, raw string) error {
	field, ok := s.byName[name]
	if !ok {
		return unknownField(name)
	}
	s.values[name] = Decode(field.Type, raw)
	s.dirty[name] = true
	return nil
}

// Toggle flips option in a checkbox-multi field and marks it dirty.
func (s *FormState) Toggle(name, option string) error {
	field, ok := s.byName[name]
	if !ok {
		return unknownField(name)
	}
	if field.Type != domain.FieldTypeCheckboxMulti {
		return apperrors.NewValidationError("field does not accept multiple options",
			map[string]any{"field": name, "type": string(field.Type)})
	}
	current, ok := s.values[name]
	if !ok {
		current = Multi()
	}
	s.values[name] = current.Toggle(option)
	s.dirty[name] = true
	return nil
}

// SetDefault stores an automatically derived value unless the user already
// edited the field or it holds a non-blank value. It reports whether the
// value was applied.
func (s *FormState) SetDefault(name, raw string) bool {
	field, ok := s.byName[name]
	if !ok || s.dirty[name] {
		return false
	}
	if current, exists := s.values[name]; exists && !current.IsBlank() {
		return false
	}
	s.values[name] = Decode(field.Type, raw)
	return true
}

// Dirty reports whether the user edited the field.
func (s *FormState) Dirty(name string) bool {
	return s.dirty[name]
}

// Values returns the encoded values keyed by field name.
func (s *FormState) Values() Values {
	out := make(Values, len(s.values))
	for name, v := range s.values {
		out[name] = v.Encode()
	}
	return out
}

// CustomFieldValues returns the non-blank values in schema order.
func (s *FormState) CustomFieldValues() []domain.CustomFieldValue {
	out := make([]domain.CustomFieldValue, 0, len(s.values))
	for _, f := range s.schema {
		v, ok := s.values[f.Name]
		if !ok || v.IsBlank() {
			continue
		}
		out = append(out, domain.CustomFieldValue{FieldID: f.ID, FieldName: f.Name, Value: v.Encode()})
	}
	return out
}

// SetRootCause records a user choice and suppresses later suggestions for it.
func (s *FormState) SetRootCause(rc domain.RootCause) {
	s.classification.RootCause = rc
	s.rootCauseDirty = true
}

// SetIssueCategory records a user choice and suppresses later suggestions for it.
func (s *FormState) SetIssueCategory(ic domain.IssueCategory) {
	s.classification.IssueCategory = ic
	s.issueCategoryDirty = true
}

// ApplySuggestion fills the classification sides the user has not chosen.
// Unset sides of the suggestion leave the current value untouched.
func (s *FormState) ApplySuggestion(suggestion domain.ClassificationSuggestion) {
	if !s.rootCauseDirty && suggestion.RootCause != domain.RootCauseUnset {
		s.classification.RootCause = suggestion.RootCause
	}
	if !s.issueCategoryDirty && suggestion.IssueCategory != domain.IssueCategoryUnset {
		s.classification.IssueCategory = suggestion.IssueCategory
	}
}

// Classification returns the current root cause and issue category.
func (s *FormState) Classification() domain.ClassificationSuggestion {
	return s.classification
}

func unknownField(name string) error {
	return apperrors.NewValidationError("unknown field", map[string]any{"field": name})
}
