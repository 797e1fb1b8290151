package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanryp/servicedesk-sub004/internal/classify"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/fields"
	"github.com/yanryp/servicedesk-sub004/internal/match"
	"github.com/yanryp/servicedesk-sub004/internal/observability"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// OptionLookup resolves master-data options for a field.
type OptionLookup interface {
	Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error)
}

// CacheInvalidator drops cached schemas and master data.
type CacheInvalidator interface {
	InvalidateTemplate(ctx context.Context, templateID string) error
	InvalidateOptions(ctx context.Context, fieldNames ...string) error
}

// FormDependencies wires the catalog service. Cache is nil when caching is off.
type FormDependencies struct {
	Templates  TemplateLookup
	Registry   *fields.Registry
	Options    OptionLookup
	Cache      CacheInvalidator
	Resolver   match.Resolver
	Classifier classify.Classifier
	Keywords   []string
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// PrefillResult is a template schema with the values a new form starts with.
type PrefillResult struct {
	Template       *domain.Template
	Fields         []domain.FieldDefinition
	Values         fields.Values
	Autofilled     []string
	Classification domain.ClassificationSuggestion
}

// FormService serves templates, schemas and master data, and pre-populates
// forms for clients that do not run a session of their own.
type FormService struct {
	deps   FormDependencies
	logger *zap.Logger
}

// NewFormService builds the service.
func NewFormService(deps FormDependencies) *FormService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = match.NewTieredResolver()
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.NewKeywordClassifier(nil)
	}
	return &FormService{deps: deps, logger: deps.Logger}
}

// Template returns template metadata.
func (s *FormService) Template(ctx context.Context, id string) (*domain.Template, error) {
	tpl, err := s.deps.Templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"templateId": id})
		}
		return nil, err
	}
	return tpl, nil
}

// Fields returns the ordered schema of a template.
func (s *FormService) Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error) {
	schema, err := s.deps.Registry.LoadFields(ctx, templateID)
	if err != nil {
		s.deps.Metrics.SchemaLoaded("error")
		return nil, err
	}
	s.deps.Metrics.SchemaLoaded("ok")
	return schema, nil
}

// Options returns master-data options for a field.
func (s *FormService) Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error) {
	if s.deps.Options == nil {
		return []domain.MasterDataOption{}, nil
	}
	return s.deps.Options.Options(ctx, fieldName)
}

// Prefill loads a template for user and applies department autofill and the
// classification suggestion. Master-data failures leave fields on their
// static options.
func (s *FormService) Prefill(ctx context.Context, user *domain.User, templateID string) (*PrefillResult, error) {
	var (
		tpl    *domain.Template
		schema []domain.FieldDefinition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tpl, err = s.Template(gctx, templateID)
		return err
	})
	g.Go(func() error {
		var err error
		schema, err = s.Fields(gctx, templateID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := fields.NewFormState()
	state.Install(schema)

	var filled []string
	if department := user.DepartmentName(); department != "" {
		options := s.eligibleOptions(ctx, schema)
		filled = fields.Autofill(state, department, options, s.deps.Resolver, s.deps.Keywords)
	}
	state.ApplySuggestion(s.deps.Classifier.Classify(tpl.CategoryName, tpl.ServiceName, tpl.Name))

	if filled == nil {
		filled = []string{}
	}
	return &PrefillResult{
		Template:       tpl,
		Fields:         schema,
		Values:         state.Values(),
		Autofilled:     filled,
		Classification: state.Classification(),
	}, nil
}

// RefreshTemplate drops the cached schema of a template so the next load
// reads the catalog again.
func (s *FormService) RefreshTemplate(ctx context.Context, templateID string) error {
	if s.deps.Cache == nil {
		return nil
	}
	if err := s.deps.Cache.InvalidateTemplate(ctx, templateID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("template cache refreshed", zap.String("template_id", templateID))
	return nil
}

// RefreshMasterData drops the cached options of one field.
func (s *FormService) RefreshMasterData(ctx context.Context, fieldName string) error {
	if s.deps.Cache == nil {
		return nil
	}
	if err := s.deps.Cache.InvalidateOptions(ctx, fieldName); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("master data cache refreshed", zap.String("field", fieldName))
	return nil
}

func (s *FormService) eligibleOptions(ctx context.Context, schema []domain.FieldDefinition) map[string][]domain.MasterDataOption {
	eligible := fields.EligibleFields(schema, s.deps.Keywords)
	out := make(map[string][]domain.MasterDataOption, len(eligible))
	if s.deps.Options == nil || len(eligible) == 0 {
		return out
	}

	results := make([][]domain.MasterDataOption, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	for i, field := range eligible {
		i, field := i, field
		g.Go(func() error {
			opts, err := s.deps.Options.Options(gctx, field.Name)
			if err != nil {
				s.logger.Warn("master data unavailable", zap.String("field", field.Name), zap.Error(err))
				return nil
			}
			results[i] = opts
			return nil
		})
	}
	_ = g.Wait()

	for i, field := range eligible {
		if len(results[i]) > 0 {
			out[field.Name] = results[i]
		}
	}
	return out
}
