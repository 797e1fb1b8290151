package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/classify"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/events"
	"github.com/yanryp/servicedesk-sub004/internal/fields"
	"github.com/yanryp/servicedesk-sub004/internal/observability"
	"github.com/yanryp/servicedesk-sub004/internal/repository"
	"github.com/yanryp/servicedesk-sub004/internal/workflow"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// TemplateLookup resolves template metadata.
type TemplateLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Template, error)
}

// ruleMatcher is implemented by classifiers that can name the rule they used.
type ruleMatcher interface {
	Match(category, service, template string) (classify.Rule, bool)
}

// TicketRules holds submission limits.
type TicketRules struct {
	TitleMinLength       int
	DescriptionMinLength int
}

// TicketService coordinates ticket creation and workflow.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	templates  TemplateLookup
	registry   *fields.Registry
	classifier classify.Classifier
	policy     workflow.Policy
	sla        workflow.SLAPolicy
	rules      TicketRules
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Templates   TemplateLookup
	Registry    *fields.Registry
	Classifier  classify.Classifier
	Policy      workflow.Policy
	SLA         workflow.SLAPolicy
	Rules       TicketRules
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	OverdueOnly bool
	Limit       int
	Offset      int
}

// TicketView is a ticket with its derived read-time fields.
type TicketView struct {
	Ticket    *domain.Ticket
	IsOverdue bool
	History   []domain.TicketHistory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.NewKeywordClassifier(nil)
	}
	if deps.SLA == nil {
		deps.SLA = workflow.DefaultSLAPolicy()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		templates:  deps.Templates,
		registry:   deps.Registry,
		classifier: deps.Classifier,
		policy:     deps.Policy,
		sla:        deps.SLA,
		rules:      deps.Rules,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
}

// CreateTicket validates a submission against its template and persists it.
// Every invalid input is reported at once in a single validation error.
func (s *TicketService) CreateTicket(ctx context.Context, requester *domain.User, input domain.TicketSubmission) (*domain.Ticket, error) {
	if requester == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	templateID := strings.TrimSpace(input.TemplateID)
	if templateID == "" {
		return nil, apperrors.NewFieldValidationError(map[string]string{"templateId": "Template is required"})
	}

	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"templateId": templateID})
		}
		return nil, err
	}
	if !template.IsActive {
		return nil, apperrors.NewValidationError("template is not active", map[string]any{"templateId": templateID})
	}

	schema, err := s.registry.LoadFields(ctx, templateID)
	if err != nil {
		s.metrics.SchemaLoaded("error")
		return nil, err
	}
	s.metrics.SchemaLoaded("ok")

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	errs := make(map[string]string)
	if utf8.RuneCountInString(title) < s.rules.TitleMinLength {
		errs["title"] = fmt.Sprintf("Title must be at least %d characters", s.rules.TitleMinLength)
	}
	if utf8.RuneCountInString(description) < s.rules.DescriptionMinLength {
		errs["description"] = fmt.Sprintf("Description must be at least %d characters", s.rules.DescriptionMinLength)
	}
	if !priority.Valid() {
		errs["priority"] = "Priority must be one of low, medium, high, urgent"
	}
	if !input.RootCause.Valid() {
		errs["rootCause"] = "Unknown root cause"
	}
	if !input.IssueCategory.Valid() {
		errs["issueCategory"] = "Unknown issue category"
	}

	values := s.collectValues(schema, input.CustomFieldValues)
	for name, msg := range fields.Validate(values, schema) {
		errs[name] = msg
	}
	if len(errs) > 0 {
		for name := range errs {
			s.metrics.ValidationFailed(name)
		}
		return nil, apperrors.NewFieldValidationError(errs)
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ExternalKey:       generateTicketKey(),
		RequesterID:       requester.ID,
		TemplateID:        template.ID,
		ItemID:            firstNonNil(input.ItemID, template.ItemID),
		ServiceID:         firstNonNil(input.ServiceID, template.ServiceID),
		Title:             title,
		Description:       description,
		Status:            s.policy.InitialStatus(template, requester),
		Priority:          priority,
		RootCause:         input.RootCause,
		IssueCategory:     input.IssueCategory,
		CustomFieldValues: orderedValues(schema, values),
		SLADueAt:          s.sla.DueAt(priority, now),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.classify(ticket, template)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, &domain.TicketHistory{
		TicketID:    ticket.ID,
		ChangedByID: &requester.ID,
		ChangeType:  domain.ChangeTypeCreated,
		NewValue: map[string]any{
			"status":     ticket.Status,
			"priority":   ticket.Priority,
			"templateId": ticket.TemplateID,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(requester),
		Payload: events.TicketCreatedPayload{
			ExternalKey: ticket.ExternalKey,
			TemplateID:  ticket.TemplateID,
			Status:      ticket.Status,
			Priority:    ticket.Priority,
			Title:       ticket.Title,
			SLADueAt:    ticket.SLADueAt,
		},
	})
	s.metrics.TicketCreated(string(ticket.Status))
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("template_id", ticket.TemplateID),
		zap.String("status", string(ticket.Status)))
	return ticket, nil
}

// collectValues maps submitted values onto schema field names, matching by
// field id first and name second. Checkbox-multi values are re-encoded so
// duplicates and empty segments are dropped. Unknown fields are ignored.
func (s *TicketService) collectValues(schema []domain.FieldDefinition, submitted []domain.CustomFieldValue) fields.Values {
	byID := make(map[string]domain.FieldDefinition, len(schema))
	byName := make(map[string]domain.FieldDefinition, len(schema))
	for _, f := range schema {
		if f.ID != "" {
			byID[f.ID] = f
		}
		byName[f.Name] = f
	}

	values := make(fields.Values, len(submitted))
	for _, v := range submitted {
		field, ok := byID[v.FieldID]
		if !ok {
			field, ok = byName[v.FieldName]
		}
		if !ok {
			s.logger.Debug("ignoring value for unknown field", zap.String("field_id", v.FieldID), zap.String("field_name", v.FieldName))
			continue
		}
		values[field.Name] = fields.Decode(field.Type, v.Value).Encode()
	}
	return values
}

func orderedValues(schema []domain.FieldDefinition, values fields.Values) []domain.CustomFieldValue {
	out := make([]domain.CustomFieldValue, 0, len(values))
	for _, f := range schema {
		raw, ok := values[f.Name]
		if !ok {
			continue
		}
		out = append(out, domain.CustomFieldValue{FieldID: f.ID, FieldName: f.Name, Value: raw})
	}
	return out
}

// classify fills the classification sides the requester left unset.
func (s *TicketService) classify(ticket *domain.Ticket, template *domain.Template) {
	if ticket.RootCause != domain.RootCauseUnset && ticket.IssueCategory != domain.IssueCategoryUnset {
		return
	}
	var suggestion domain.ClassificationSuggestion
	if m, ok := s.classifier.(ruleMatcher); ok {
		rule, hit := m.Match(template.CategoryName, template.ServiceName, template.Name)
		if !hit {
			s.metrics.ClassifierHit("none")
			return
		}
		s.metrics.ClassifierHit(rule.Name)
		suggestion = rule.Suggestion
	} else {
		suggestion = s.classifier.Classify(template.CategoryName, template.ServiceName, template.Name)
	}
	if ticket.RootCause == domain.RootCauseUnset {
		ticket.RootCause = suggestion.RootCause
	}
	if ticket.IssueCategory == domain.IssueCategoryUnset {
		ticket.IssueCategory = suggestion.IssueCategory
	}
}

// DecideApproval records a manager decision on a pending ticket. A decision
// on a ticket that was already decided, including one that lost a race to a
// concurrent approver, yields a duplicate-action error.
func (s *TicketService) DecideApproval(ctx context.Context, approver *domain.User, ticketID string, action domain.ApprovalAction, comment string) (*domain.Ticket, error) {
	if approver == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	from := ticket.Status
	tr, err := workflow.Decide(ticket, action, approver.ID, comment, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateFromStatus(ctx, ticket, from); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.NewDuplicateAction("approval already recorded for this ticket")
		}
		return nil, err
	}

	s.recordHistory(ctx, &domain.TicketHistory{
		TicketID:    ticket.ID,
		ChangedByID: &approver.ID,
		ChangeType:  domain.ChangeTypeApproval,
		OldValue:    map[string]any{"status": tr.From},
		NewValue: map[string]any{
			"status":  tr.To,
			"action":  action,
			"comment": tr.Comment,
		},
	})

	eventType := events.EventTicketApproved
	if action == domain.ApprovalActionReject {
		eventType = events.EventTicketRejected
	}
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		Actor:    userActor(approver),
		Payload: events.ApprovalDecidedPayload{
			Action:    action,
			Comment:   tr.Comment,
			NewStatus: tr.To,
		},
	})
	s.metrics.ApprovalDecided(string(action))
	s.metrics.StatusChanged(string(tr.From), string(tr.To))
	s.logger.Info("approval decided",
		zap.String("ticket_id", ticket.ID),
		zap.String("action", string(action)),
		zap.String("approver_id", approver.ID))
	return ticket, nil
}

// Start moves an open ticket to in-progress.
func (s *TicketService) Start(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, "", func(t *domain.Ticket, now time.Time) (workflow.Transition, error) {
		return workflow.Start(t, actor.ID, now)
	})
}

// Resolve moves an open or in-progress ticket to resolved.
func (s *TicketService) Resolve(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, "", func(t *domain.Ticket, now time.Time) (workflow.Transition, error) {
		return workflow.Resolve(t, actor.ID, now)
	})
}

// Close moves a resolved, open or in-progress ticket to closed.
func (s *TicketService) Close(ctx context.Context, actor *domain.User, ticketID, comment string) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, comment, func(t *domain.Ticket, now time.Time) (workflow.Transition, error) {
		return workflow.Close(t, actor.ID, comment, now)
	})
}

func (s *TicketService) transition(ctx context.Context, actor *domain.User, ticketID, comment string, apply func(*domain.Ticket, time.Time) (workflow.Transition, error)) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	tr, err := apply(ticket, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateFromStatus(ctx, ticket, tr.From); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.NewConflict("ticket status changed, reload and retry", map[string]any{"ticketId": ticketID})
		}
		return nil, err
	}

	s.recordHistory(ctx, &domain.TicketHistory{
		TicketID:    ticket.ID,
		ChangedByID: &actor.ID,
		ChangeType:  domain.ChangeTypeStatus,
		OldValue:    map[string]any{"status": tr.From},
		NewValue:    map[string]any{"status": tr.To, "comment": comment},
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: tr.From,
			NewStatus: tr.To,
			Comment:   comment,
		},
	})
	s.metrics.StatusChanged(string(tr.From), string(tr.To))
	return ticket, nil
}

// GetTicket returns a ticket with its history. Requesters only see their own tickets.
func (s *TicketService) GetTicket(ctx context.Context, viewer *domain.User, ticketID string) (*TicketView, error) {
	if viewer == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if viewer.Role == domain.UserRoleRequester && ticket.RequesterID != viewer.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	history := []domain.TicketHistory{}
	if s.history != nil {
		if history, err = s.history.ListByTicket(ctx, ticket.ID); err != nil {
			return nil, err
		}
	}
	return &TicketView{
		Ticket:    ticket,
		IsOverdue: workflow.IsOverdue(ticket, s.now()),
		History:   history,
	}, nil
}

// ListTickets returns a page of tickets visible to viewer.
func (s *TicketService) ListTickets(ctx context.Context, viewer *domain.User, filter TicketListFilter) ([]TicketView, error) {
	if viewer == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	now := s.now()
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if viewer.Role == domain.UserRoleRequester {
		repoFilter.RequesterID = &viewer.ID
	}
	if filter.OverdueOnly {
		repoFilter.OverdueAt = &now
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	views := make([]TicketView, len(tickets))
	for i := range tickets {
		views[i] = TicketView{Ticket: &tickets[i], IsOverdue: workflow.IsOverdue(&tickets[i], now)}
	}
	return views, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// recordHistory appends an audit entry. The ticket change is already
// committed, so a failed write is logged rather than returned.
func (s *TicketService) recordHistory(ctx context.Context, entry *domain.TicketHistory) {
	if s.history == nil {
		return
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("record ticket history failed",
			zap.String("ticket_id", entry.TicketID),
			zap.String("change_type", string(entry.ChangeType)),
			zap.Error(err))
	}
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}
