package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusPendingApproval TicketStatus = "pending-approval"
	TicketStatusInProgress      TicketStatus = "in-progress"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusPendingApproval, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ApprovalAction is a manager decision on a pending ticket.
type ApprovalAction string

const (
	ApprovalActionApprove ApprovalAction = "approve"
	ApprovalActionReject  ApprovalAction = "reject"
)

// ApprovalDecision records the single manager sign-off a ticket can receive.
type ApprovalDecision struct {
	Action    ApprovalAction
	Comment   string
	DecidedBy string
	DecidedAt time.Time
}

// CustomFieldValue pairs a field definition with its encoded value.
type CustomFieldValue struct {
	FieldID   string
	FieldName string
	Value     string
}

// Ticket is the aggregate for helpdesk requests.
type Ticket struct {
	ID                string
	ExternalKey       string
	RequesterID       string
	TemplateID        string
	ItemID            *string
	ServiceID         *string
	Title             string
	Description       string
	Status            TicketStatus
	Priority          TicketPriority
	RootCause         RootCause
	IssueCategory     IssueCategory
	CustomFieldValues []CustomFieldValue
	Approval          *ApprovalDecision
	SLADueAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ClosedAt          *time.Time
}
