package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

func testSchema() []domain.FieldDefinition {
	return []domain.FieldDefinition{
		{ID: "f1", Name: "branch", Label: "Cabang", Type: domain.FieldTypeDropdown, SortOrder: 1},
		{ID: "f2", Name: "channels", Label: "Channels", Type: domain.FieldTypeCheckboxMulti, SortOrder: 2,
			Options: []domain.FieldOption{{Value: "A"}, {Value: "B"}, {Value: "C"}}},
		{ID: "f3", Name: "notes", Label: "Notes", Type: domain.FieldTypeTextarea, SortOrder: 3},
	}
}

func TestFormStateToggleAndValues(t *testing.T) {
	s := NewFormState()
	s.Install(testSchema())

	require.NoError(t, s.Toggle("channels", "A"))
	require.NoError(t, s.Toggle("channels", "C"))
	assert.Equal(t, "A,C", s.Values()["channels"])
	require.NoError(t, s.Toggle("channels", "A"))
	assert.Equal(t, "C", s.Values()["channels"])
	assert.True(t, s.Dirty("channels"))
}

func TestFormStateRejectsBadEdits(t *testing.T) {
	s := NewFormState()
	s.Install(testSchema())

	for name, err := range map[string]error{
		"toggle on textarea": s.Toggle("notes", "A"),
		"toggle unknown":     s.Toggle("missing", "A"),
		"set unknown":        s.Set("missing", "x"),
	} {
		require.Error(t, err, name)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), name)
	}

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, s.Set("missing", "x"), &domainErr)
	assert.Equal(t, "missing", domainErr.Details["field"])
	assert.Empty(t, s.Values())
}

func TestFormStateDefaultsRespectDirty(t *testing.T) {
	s := NewFormState()
	s.Install(testSchema())

	require.NoError(t, s.Set("branch", "MDO"))
	assert.False(t, s.SetDefault("branch", "JKT"))
	assert.Equal(t, "MDO", s.Values()["branch"])

	assert.True(t, s.SetDefault("notes", "auto"))
	assert.False(t, s.SetDefault("notes", "again"))
	assert.Equal(t, "auto", s.Values()["notes"])
}

func TestFormStateClassificationDirty(t *testing.T) {
	s := NewFormState()
	s.Install(testSchema())

	s.ApplySuggestion(domain.ClassificationSuggestion{RootCause: domain.RootCauseSystemError, IssueCategory: domain.IssueCategoryProblem})
	s.SetIssueCategory(domain.IssueCategoryComplaint)
	s.ApplySuggestion(domain.ClassificationSuggestion{RootCause: domain.RootCauseHumanError, IssueCategory: domain.IssueCategoryRequest})

	got := s.Classification()
	assert.Equal(t, domain.RootCauseHumanError, got.RootCause)
	assert.Equal(t, domain.IssueCategoryComplaint, got.IssueCategory)

	s.ApplySuggestion(domain.ClassificationSuggestion{})
	assert.Equal(t, domain.RootCauseHumanError, s.Classification().RootCause)
}

func TestFormStateClearAndCustomFieldValues(t *testing.T) {
	s := NewFormState()
	s.Install(testSchema())
	require.NoError(t, s.Set("notes", "hello"))
	require.NoError(t, s.Set("branch", "  "))
	require.NoError(t, s.Toggle("channels", "B"))

	assert.Equal(t, []domain.CustomFieldValue{
		{FieldID: "f2", FieldName: "channels", Value: "B"},
		{FieldID: "f3", FieldName: "notes", Value: "hello"},
	}, s.CustomFieldValues())

	s.Clear()
	assert.Empty(t, s.Values())
	assert.Empty(t, s.Schema())
	assert.False(t, s.Dirty("notes"))
}
