package fields

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// Source yields the raw field definitions of a template.
type Source interface {
	Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error)
}

// Registry resolves template ids to ordered field schemas.
type Registry struct {
	source Source
	logger *zap.Logger
}

// NewRegistry constructs a registry over source.
func NewRegistry(source Source, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{source: source, logger: logger}
}

// LoadFields returns the template's fields ordered by SortOrder. Every failure
// is reported as a SchemaLoadError and is not retried.
func (r *Registry) LoadFields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error) {
	if strings.TrimSpace(templateID) == "" {
		return nil, apperrors.NewSchemaLoadError(templateID, errors.New("template id required"))
	}
	raw, err := r.source.Fields(ctx, templateID)
	if err != nil {
		r.logger.Warn("load fields failed", zap.String("template_id", templateID), zap.Error(err))
		if apperrors.IsCode(err, apperrors.CodeSchemaLoad) {
			return nil, err
		}
		return nil, apperrors.NewSchemaLoadError(templateID, err)
	}

	fields := make([]domain.FieldDefinition, len(raw))
	copy(fields, raw)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].SortOrder < fields[j].SortOrder
	})

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, apperrors.NewSchemaLoadError(templateID, errors.New("duplicate field name "+f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return fields, nil
}
