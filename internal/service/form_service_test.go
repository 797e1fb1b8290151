package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/fields"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

func prefillCatalog() *memCatalog {
	catalog := testCatalog()
	catalog.fields["tpl-hw"] = []domain.FieldDefinition{
		{ID: "f1", Name: "unit_kerja", Label: "Unit Kerja", Type: domain.FieldTypeDropdown, Required: true, SortOrder: 1},
		{ID: "f2", Name: "nama_cabang", Label: "Nama Cabang", Type: domain.FieldTypeText, SortOrder: 2},
		{ID: "f3", Name: "notes", Type: domain.FieldTypeTextarea, SortOrder: 3},
	}
	catalog.options = map[string][]domain.MasterDataOption{
		"unit_kerja": {
			{Value: "KCU", Label: "Kantor Cabang Utama"},
			{Value: "KCP-01", Label: "Kantor Cabang Pembantu Ranai"},
		},
	}
	return catalog
}

func newFormService(catalog *memCatalog) *FormService {
	return NewFormService(FormDependencies{
		Templates: catalog,
		Registry:  fields.NewRegistry(catalog, zap.NewNop()),
		Options:   catalog,
		Logger:    zap.NewNop(),
	})
}

func TestPrefillAutofillsDepartmentAndClassifies(t *testing.T) {
	svc := newFormService(prefillCatalog())
	user := &domain.User{ID: "u-1", Department: &domain.Department{ID: "d-1", Name: "Kantor Cabang Utama"}}

	result, err := svc.Prefill(context.Background(), user, "tpl-hw")
	require.NoError(t, err)

	assert.Equal(t, "tpl-hw", result.Template.ID)
	require.Len(t, result.Fields, 3)
	assert.Equal(t, "KCU", result.Values["unit_kerja"])
	assert.Equal(t, "Kantor Cabang Utama", result.Values["nama_cabang"])
	assert.NotContains(t, result.Values, "notes")
	assert.ElementsMatch(t, []string{"unit_kerja", "nama_cabang"}, result.Autofilled)
	assert.Equal(t, domain.RootCauseSystemError, result.Classification.RootCause)
	assert.Equal(t, domain.IssueCategoryProblem, result.Classification.IssueCategory)
}

func TestPrefillWithoutDepartmentOnlyClassifies(t *testing.T) {
	svc := newFormService(prefillCatalog())

	result, err := svc.Prefill(context.Background(), &domain.User{ID: "u-2"}, "tpl-hw")
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.Empty(t, result.Autofilled)
	assert.False(t, result.Classification.Empty())
}

func TestPrefillSurvivesMasterDataOutage(t *testing.T) {
	catalog := prefillCatalog()
	catalog.optsErr = errBackend
	svc := newFormService(catalog)
	user := &domain.User{ID: "u-1", Department: &domain.Department{Name: "Kantor Cabang Utama"}}

	result, err := svc.Prefill(context.Background(), user, "tpl-hw")
	require.NoError(t, err)
	assert.NotContains(t, result.Values, "unit_kerja")
	assert.Equal(t, "Kantor Cabang Utama", result.Values["nama_cabang"])
}

func TestPrefillErrors(t *testing.T) {
	svc := newFormService(prefillCatalog())
	_, err := svc.Prefill(context.Background(), &domain.User{ID: "u-1"}, "nope")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	catalog := prefillCatalog()
	catalog.fieldsErr = errBackend
	_, err = newFormService(catalog).Fields(context.Background(), "tpl-hw")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSchemaLoad))
}

func TestFieldsAreOrdered(t *testing.T) {
	svc := newFormService(testCatalog())
	schema, err := svc.Fields(context.Background(), "tpl-hw")
	require.NoError(t, err)
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"unit_kerja", "symptoms", "notes"}, names)
}

type recordingInvalidator struct {
	templates []string
	fields    []string
	err       error
}

func (r *recordingInvalidator) InvalidateTemplate(_ context.Context, templateID string) error {
	r.templates = append(r.templates, templateID)
	return r.err
}

func (r *recordingInvalidator) InvalidateOptions(_ context.Context, fieldNames ...string) error {
	r.fields = append(r.fields, fieldNames...)
	return r.err
}

func TestRefreshDropsCachedEntries(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, newFormService(prefillCatalog()).RefreshTemplate(ctx, "tpl-hw"))

	inv := &recordingInvalidator{}
	catalog := prefillCatalog()
	svc := NewFormService(FormDependencies{
		Templates: catalog,
		Registry:  fields.NewRegistry(catalog, zap.NewNop()),
		Options:   catalog,
		Cache:     inv,
	})
	require.NoError(t, svc.RefreshTemplate(ctx, "tpl-hw"))
	require.NoError(t, svc.RefreshMasterData(ctx, "unit_kerja"))
	assert.Equal(t, []string{"tpl-hw"}, inv.templates)
	assert.Equal(t, []string{"unit_kerja"}, inv.fields)

	inv.err = errors.New("redis down")
	err := svc.RefreshMasterData(ctx, "unit_kerja")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}
