package workflow

import (
	"strings"
	"time"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// RejectCommentRequired is the validation message for a reject without comment.
const RejectCommentRequired = "Comments are required when rejecting a ticket"

// Action names a workflow transition.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionStart   Action = "start"
	ActionResolve Action = "resolve"
	ActionClose   Action = "close"
)

// Transition describes an applied status change.
type Transition struct {
	Action  Action
	From    domain.TicketStatus
	To      domain.TicketStatus
	ActorID string
	Comment string
	At      time.Time
}

type edge struct {
	from []domain.TicketStatus
	to   domain.TicketStatus
}

// closed is terminal and resolved cannot be reopened; neither has outgoing
// edges other than resolved -> closed.
var transitions = map[Action]edge{
	ActionApprove: {from: []domain.TicketStatus{domain.TicketStatusPendingApproval}, to: domain.TicketStatusOpen},
	ActionReject:  {from: []domain.TicketStatus{domain.TicketStatusPendingApproval}, to: domain.TicketStatusClosed},
	ActionStart:   {from: []domain.TicketStatus{domain.TicketStatusOpen}, to: domain.TicketStatusInProgress},
	ActionResolve: {from: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}, to: domain.TicketStatusResolved},
	ActionClose:   {from: []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusOpen, domain.TicketStatusInProgress}, to: domain.TicketStatusClosed},
}

// CanApply reports whether action is defined from status.
func CanApply(status domain.TicketStatus, action Action) bool {
	e, ok := transitions[action]
	if !ok {
		return false
	}
	for _, candidate := range e.from {
		if candidate == status {
			return true
		}
	}
	return false
}

// Approve moves a pending ticket to open. The comment is optional.
func Approve(ticket *domain.Ticket, approverID, comment string, now time.Time) (Transition, error) {
	return decide(ticket, domain.ApprovalActionApprove, approverID, comment, now)
}

// Reject closes a pending ticket. A non-blank comment is required; without one
// the ticket is left untouched.
func Reject(ticket *domain.Ticket, approverID, comment string, now time.Time) (Transition, error) {
	return decide(ticket, domain.ApprovalActionReject, approverID, comment, now)
}

// Start moves an open ticket to in-progress.
func Start(ticket *domain.Ticket, actorID string, now time.Time) (Transition, error) {
	return apply(ticket, ActionStart, actorID, "", now)
}

// Resolve moves an open or in-progress ticket to resolved.
func Resolve(ticket *domain.Ticket, actorID string, now time.Time) (Transition, error) {
	return apply(ticket, ActionResolve, actorID, "", now)
}

// Close moves a resolved, open or in-progress ticket to closed.
func Close(ticket *domain.Ticket, actorID, comment string, now time.Time) (Transition, error) {
	return apply(ticket, ActionClose, actorID, comment, now)
}

// Decide dispatches an approval action.
func Decide(ticket *domain.Ticket, action domain.ApprovalAction, approverID, comment string, now time.Time) (Transition, error) {
	switch action {
	case domain.ApprovalActionApprove, domain.ApprovalActionReject:
		return decide(ticket, action, approverID, comment, now)
	default:
		return Transition{}, apperrors.NewValidationError("action must be approve or reject", map[string]any{"action": string(action)})
	}
}

func decide(ticket *domain.Ticket, action domain.ApprovalAction, approverID, comment string, now time.Time) (Transition, error) {
	wfAction := ActionApprove
	if action == domain.ApprovalActionReject {
		wfAction = ActionReject
	}
	if ticket.Status != domain.TicketStatusPendingApproval && ticket.Approval != nil {
		return Transition{}, apperrors.NewDuplicateAction("approval already recorded for this ticket")
	}
	if !CanApply(ticket.Status, wfAction) {
		return Transition{}, apperrors.NewInvalidTransition(string(ticket.Status), string(wfAction))
	}
	comment = strings.TrimSpace(comment)
	if action == domain.ApprovalActionReject && comment == "" {
		return Transition{}, apperrors.NewValidationError(RejectCommentRequired, map[string]any{"comment": RejectCommentRequired})
	}

	tr, err := apply(ticket, wfAction, approverID, comment, now)
	if err != nil {
		return Transition{}, err
	}
	ticket.Approval = &domain.ApprovalDecision{
		Action:    action,
		Comment:   comment,
		DecidedBy: approverID,
		DecidedAt: now,
	}
	return tr, nil
}

func apply(ticket *domain.Ticket, action Action, actorID, comment string, now time.Time) (Transition, error) {
	if !CanApply(ticket.Status, action) {
		return Transition{}, apperrors.NewInvalidTransition(string(ticket.Status), string(action))
	}
	tr := Transition{
		Action:  action,
		From:    ticket.Status,
		To:      transitions[action].to,
		ActorID: actorID,
		Comment: comment,
		At:      now,
	}
	ticket.Status = tr.To
	ticket.UpdatedAt = now
	if tr.To == domain.TicketStatusClosed {
		closedAt := now
		ticket.ClosedAt = &closedAt
	}
	return tr, nil
}

// IsOverdue reports whether the ticket's SLA due time is strictly before now and
// the ticket is not closed. It is derived on every read and never stored.
func IsOverdue(ticket *domain.Ticket, now time.Time) bool {
	if ticket == nil || ticket.SLADueAt == nil {
		return false
	}
	return now.After(*ticket.SLADueAt) && ticket.Status != domain.TicketStatusClosed
}
