package events

import (
	"time"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketApproved      EventType = "ticket_approved"
	EventTicketRejected      EventType = "ticket_rejected"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Actor identifies the user behind an event.
type Actor struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ExternalKey string                `json:"external_key"`
	TemplateID  string                `json:"template_id"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
	SLADueAt    *time.Time            `json:"sla_due_at,omitempty"`
}

// ApprovalDecidedPayload is carried by ticket_approved and ticket_rejected.
type ApprovalDecidedPayload struct {
	Action    domain.ApprovalAction `json:"action"`
	Comment   string                `json:"comment,omitempty"`
	NewStatus domain.TicketStatus   `json:"new_status"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}
