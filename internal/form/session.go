package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanryp/servicedesk-sub004/internal/classify"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/fields"
	"github.com/yanryp/servicedesk-sub004/internal/match"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// ErrStaleTemplate is returned by SelectTemplate when another template was
// selected before the load completed. The loaded data is discarded.
var ErrStaleTemplate = errors.New("template selection superseded")

// ErrNoTemplate is returned when an edit or submit arrives before a template is installed.
var ErrNoTemplate = errors.New("no template selected")

const submitInFlightMessage = "submission already in progress"

// TemplateSource resolves template metadata.
type TemplateSource interface {
	Template(ctx context.Context, id string) (*domain.Template, error)
}

// OptionSource resolves master-data options for a field.
type OptionSource interface {
	Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error)
}

// ProfileSource resolves the signed-in user.
type ProfileSource interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// TicketSubmitter persists a new ticket and returns its id.
type TicketSubmitter interface {
	CreateTicket(ctx context.Context, submission domain.TicketSubmission) (string, error)
}

// Dependencies wires a Session to its collaborators. Resolver, Classifier
// and Logger default when nil.
type Dependencies struct {
	Templates  TemplateSource
	Fields     fields.Source
	Options    OptionSource
	Profile    ProfileSource
	Tickets    TicketSubmitter
	Resolver   match.Resolver
	Classifier classify.Classifier
	Keywords   []string
	Logger     *zap.Logger
}

// Draft holds the fixed ticket inputs that live outside the custom fields.
type Draft struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// Session owns the state of one ticket form. All methods are safe for
// concurrent use; SelectTemplate and Submit block on their collaborators
// without holding the session lock.
type Session struct {
	deps     Dependencies
	registry *fields.Registry
	logger   *zap.Logger
	inFlight *atomic.Bool

	mu       sync.Mutex
	current  string
	selected uint64
	template *domain.Template
	state    *fields.FormState
	user     *domain.User
	options  map[string][]domain.MasterDataOption
}

// NewSession builds an empty session.
func NewSession(deps Dependencies) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = match.NewTieredResolver()
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.NewKeywordClassifier(nil)
	}
	return &Session{
		deps:     deps,
		registry: fields.NewRegistry(deps.Fields, deps.Logger),
		logger:   deps.Logger,
		inFlight: atomic.NewBool(false),
		state:    fields.NewFormState(),
	}
}

type loaded struct {
	template *domain.Template
	schema   []domain.FieldDefinition
	user     *domain.User
	options  map[string][]domain.MasterDataOption
}

// SelectTemplate switches the form to templateID. The previous values are
// cleared immediately; the new schema is installed and pre-populated once
// every collaborator has answered, unless a later selection superseded it.
// Selections are numbered, so reselecting the same template still
// supersedes a load that is in flight.
func (s *Session) SelectTemplate(ctx context.Context, templateID string) error {
	s.mu.Lock()
	s.selected++
	selection := s.selected
	s.current = templateID
	s.template = nil
	s.user = nil
	s.options = nil
	s.state.Clear()
	s.mu.Unlock()

	result, err := s.load(ctx, templateID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != selection {
		s.logger.Debug("discarding stale template load", zap.String("template_id", templateID), zap.String("current", s.current))
		return ErrStaleTemplate
	}
	if err != nil {
		return err
	}

	s.template = result.template
	s.user = result.user
	s.options = result.options
	s.state.Install(result.schema)
	s.prefillLocked()
	return nil
}

func (s *Session) load(ctx context.Context, templateID string) (loaded, error) {
	var out loaded

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tpl, err := s.deps.Templates.Template(gctx, templateID)
		if err != nil {
			return err
		}
		out.template = tpl
		return nil
	})
	g.Go(func() error {
		schema, err := s.registry.LoadFields(gctx, templateID)
		if err != nil {
			return err
		}
		out.schema = schema
		return nil
	})
	if s.deps.Profile != nil {
		g.Go(func() error {
			user, err := s.deps.Profile.CurrentUser(gctx)
			if err != nil {
				s.logger.Warn("profile unavailable; skipping autofill", zap.Error(err))
				return nil
			}
			out.user = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return loaded{}, err
	}

	out.options = s.loadOptions(ctx, out.schema)
	return out, nil
}

// loadOptions fetches master data for every autofill-eligible field
// concurrently. A failed lookup leaves the field with its static options.
func (s *Session) loadOptions(ctx context.Context, schema []domain.FieldDefinition) map[string][]domain.MasterDataOption {
	eligible := fields.EligibleFields(schema, s.deps.Keywords)
	if s.deps.Options == nil || len(eligible) == 0 {
		return map[string][]domain.MasterDataOption{}
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

	out := make(map[string][]domain.MasterDataOption, len(eligible))
	for i, field := range eligible {
		if len(results[i]) > 0 {
			out[field.Name] = results[i]
		}
	}
	return out
}

func (s *Session) prefillLocked() {
	if s.user != nil {
		filled := fields.Autofill(s.state, s.user.DepartmentName(), s.options, s.deps.Resolver, s.deps.Keywords)
		if len(filled) > 0 {
			s.logger.Debug("autofilled fields", zap.Strings("fields", filled))
		}
	}
	if s.template != nil {
		s.state.ApplySuggestion(s.deps.Classifier.Classify(s.template.CategoryName, s.template.ServiceName, s.template.Name))
	}
}

// SetValue stores a user-entered value.
func (s *Session) SetValue(name, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.template == nil {
		return ErrNoTemplate
	}
	return s.state.Set(name, raw)
}

// ToggleOption flips one option of a checkbox-multi field.
func (s *Session) ToggleOption(name, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.template == nil {
		return ErrNoTemplate
	}
	return s.state.Toggle(name, option)
}

// SetRootCause records the user's root cause choice.
func (s *Session) SetRootCause(rc domain.RootCause) error {
	if !rc.Valid() {
		return apperrors.NewValidationError("unknown root cause", map[string]any{"rootCause": string(rc)})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetRootCause(rc)
	return nil
}

// SetIssueCategory records the user's issue category choice.
func (s *Session) SetIssueCategory(ic domain.IssueCategory) error {
	if !ic.Valid() {
		return apperrors.NewValidationError("unknown issue category", map[string]any{"issueCategory": string(ic)})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetIssueCategory(ic)
	return nil
}

// Reset drops every value, dirty flag and classification choice. The schema
// of the current template stays installed.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state.Install(s.state.Schema())
}

// Validate returns the per-field errors of the current values.
func (s *Session) Validate() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fields.Validate(s.state.Values(), s.state.Schema())
}

// InFlight reports whether a submit is outstanding.
func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}

// Submit sends the form as a new ticket. A call made while another is
// outstanding fails at once with a duplicate-action error. Validation
// failures leave the form untouched; success clears it.
func (s *Session) Submit(ctx context.Context, draft Draft) (string, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return "", apperrors.NewDuplicateAction(submitInFlightMessage)
	}
	defer s.inFlight.Store(false)

	submission, selection, err := s.buildSubmission(draft)
	if err != nil {
		return "", err
	}

	id, err := s.deps.Tickets.CreateTicket(ctx, submission)
	if err != nil {
		s.logger.Warn("ticket submission failed", zap.String("template_id", submission.TemplateID), zap.Error(err))
		return "", err
	}

	s.mu.Lock()
	if s.selected == selection {
		s.resetLocked()
	}
	s.mu.Unlock()

	s.logger.Info("ticket submitted", zap.String("ticket_id", id), zap.String("template_id", submission.TemplateID))
	return id, nil
}

func (s *Session) buildSubmission(draft Draft) (domain.TicketSubmission, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.template == nil {
		return domain.TicketSubmission{}, 0, apperrors.NewValidationError(ErrNoTemplate.Error(), nil)
	}
	if errs := fields.Validate(s.state.Values(), s.state.Schema()); len(errs) > 0 {
		return domain.TicketSubmission{}, 0, apperrors.NewFieldValidationError(errs)
	}

	classification := s.state.Classification()
	return domain.TicketSubmission{
		TemplateID:        s.template.ID,
		ItemID:            s.template.ItemID,
		ServiceID:         s.template.ServiceID,
		Title:             strings.TrimSpace(draft.Title),
		Description:       strings.TrimSpace(draft.Description),
		Priority:          draft.Priority,
		RootCause:         classification.RootCause,
		IssueCategory:     classification.IssueCategory,
		CustomFieldValues: s.state.CustomFieldValues(),
	}, s.selected, nil
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	TemplateID     string
	Template       *domain.Template
	Schema         []domain.FieldDefinition
	Values         fields.Values
	Classification domain.ClassificationSuggestion
	Options        map[string][]domain.MasterDataOption
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	options := make(map[string][]domain.MasterDataOption, len(s.options))
	for k, v := range s.options {
		options[k] = append([]domain.MasterDataOption(nil), v...)
	}
	return Snapshot{
		TemplateID:     s.current,
		Template:       s.template,
		Schema:         s.state.Schema(),
		Values:         s.state.Values(),
		Classification: s.state.Classification(),
		Options:        options,
	}
}
