package dto

import (
	"time"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// CustomFieldValue is one submitted custom field.
type CustomFieldValue struct {
	FieldID   string `json:"fieldId"`
	FieldName string `json:"fieldName,omitempty"`
	Value     string `json:"value"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TemplateID        string                `json:"templateId"`
	ItemID            *string               `json:"itemId,omitempty"`
	ServiceID         *string               `json:"serviceId,omitempty"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Priority          domain.TicketPriority `json:"priority,omitempty"`
	RootCause         domain.RootCause      `json:"rootCause,omitempty"`
	IssueCategory     domain.IssueCategory  `json:"issueCategory,omitempty"`
	CustomFieldValues []CustomFieldValue    `json:"customFieldValues"`
}

// CreateTicketResponse carries the id of the new ticket.
type CreateTicketResponse struct {
	TicketID    string              `json:"ticketId"`
	ExternalKey string              `json:"externalKey"`
	Status      domain.TicketStatus `json:"status"`
}

// ApprovalRequest payload.
type ApprovalRequest struct {
	Action  domain.ApprovalAction `json:"action"`
	Comment string                `json:"comment,omitempty"`
}

// TransitionRequest payload for resolve and close.
type TransitionRequest struct {
	Comment string `json:"comment,omitempty"`
}

// ApprovalResponse describes the recorded manager decision.
type ApprovalResponse struct {
	Action    domain.ApprovalAction `json:"action"`
	Comment   string                `json:"comment,omitempty"`
	DecidedBy string                `json:"decidedBy"`
	DecidedAt time.Time             `json:"decidedAt"`
}

// HistoryEntryResponse is one audit entry.
type HistoryEntryResponse struct {
	ID            string                  `json:"id"`
	ChangeType    domain.TicketChangeType `json:"changeType"`
	ChangedByID   *string                 `json:"changedById,omitempty"`
	ChangedByName *string                 `json:"changedByName,omitempty"`
	OldValue      map[string]any          `json:"oldValue,omitempty"`
	NewValue      map[string]any          `json:"newValue,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID                string                 `json:"id"`
	ExternalKey       string                 `json:"externalKey"`
	RequesterID       string                 `json:"requesterId"`
	TemplateID        string                 `json:"templateId"`
	ItemID            *string                `json:"itemId,omitempty"`
	ServiceID         *string                `json:"serviceId,omitempty"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Status            domain.TicketStatus    `json:"status"`
	Priority          domain.TicketPriority  `json:"priority"`
	RootCause         domain.RootCause       `json:"rootCause,omitempty"`
	IssueCategory     domain.IssueCategory   `json:"issueCategory,omitempty"`
	CustomFieldValues []CustomFieldValue     `json:"customFieldValues"`
	Approval          *ApprovalResponse      `json:"approval,omitempty"`
	SLADueAt          *time.Time             `json:"slaDueAt"`
	IsOverdue         bool                   `json:"isOverdue"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
	ClosedAt          *time.Time             `json:"closedAt,omitempty"`
	History           []HistoryEntryResponse `json:"history,omitempty"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Items    []TicketResponse `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// NewTicketResponse maps a ticket and its derived overdue flag.
func NewTicketResponse(t *domain.Ticket, overdue bool) TicketResponse {
	resp := TicketResponse{
		ID:                t.ID,
		ExternalKey:       t.ExternalKey,
		RequesterID:       t.RequesterID,
		TemplateID:        t.TemplateID,
		ItemID:            t.ItemID,
		ServiceID:         t.ServiceID,
		Title:             t.Title,
		Description:       t.Description,
		Status:            t.Status,
		Priority:          t.Priority,
		RootCause:         t.RootCause,
		IssueCategory:     t.IssueCategory,
		CustomFieldValues: NewCustomFieldValues(t.CustomFieldValues),
		SLADueAt:          t.SLADueAt,
		IsOverdue:         overdue,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		ClosedAt:          t.ClosedAt,
	}
	if t.Approval != nil {
		resp.Approval = &ApprovalResponse{
			Action:    t.Approval.Action,
			Comment:   t.Approval.Comment,
			DecidedBy: t.Approval.DecidedBy,
			DecidedAt: t.Approval.DecidedAt,
		}
	}
	return resp
}

// WithHistory attaches audit entries to the response.
func (r TicketResponse) WithHistory(entries []domain.TicketHistory) TicketResponse {
	r.History = make([]HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		r.History = append(r.History, HistoryEntryResponse{
			ID:            h.ID,
			ChangeType:    h.ChangeType,
			ChangedByID:   h.ChangedByID,
			ChangedByName: h.ChangedByName,
			OldValue:      h.OldValue,
			NewValue:      h.NewValue,
			CreatedAt:     h.CreatedAt,
		})
	}
	return r
}

// ToDomain rebuilds the ticket aggregate from a response.
func (r TicketResponse) ToDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:                r.ID,
		ExternalKey:       r.ExternalKey,
		RequesterID:       r.RequesterID,
		TemplateID:        r.TemplateID,
		ItemID:            r.ItemID,
		ServiceID:         r.ServiceID,
		Title:             r.Title,
		Description:       r.Description,
		Status:            r.Status,
		Priority:          r.Priority,
		RootCause:         r.RootCause,
		IssueCategory:     r.IssueCategory,
		CustomFieldValues: CustomFieldValuesToDomain(r.CustomFieldValues),
		SLADueAt:          r.SLADueAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		ClosedAt:          r.ClosedAt,
	}
	if r.Approval != nil {
		t.Approval = &domain.ApprovalDecision{
			Action:    r.Approval.Action,
			Comment:   r.Approval.Comment,
			DecidedBy: r.Approval.DecidedBy,
			DecidedAt: r.Approval.DecidedAt,
		}
	}
	return t
}

func NewCustomFieldValues(values []domain.CustomFieldValue) []CustomFieldValue {
	out := make([]CustomFieldValue, 0, len(values))
	for _, v := range values {
		out = append(out, CustomFieldValue{FieldID: v.FieldID, FieldName: v.FieldName, Value: v.Value})
	}
	return out
}

func CustomFieldValuesToDomain(values []CustomFieldValue) []domain.CustomFieldValue {
	out := make([]domain.CustomFieldValue, 0, len(values))
	for _, v := range values {
		out = append(out, domain.CustomFieldValue{FieldID: v.FieldID, FieldName: v.FieldName, Value: v.Value})
	}
	return out
}
