package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yanryp/servicedesk-sub004/internal/api/dto"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/workflow"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// WorkflowService applies manager decisions and agent transitions.
type WorkflowService interface {
	DecideApproval(ctx context.Context, approver *domain.User, ticketID string, action domain.ApprovalAction, comment string) (*domain.Ticket, error)
	Start(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error)
	Resolve(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error)
	Close(ctx context.Context, actor *domain.User, ticketID, comment string) (*domain.Ticket, error)
}

// StaffTicketsHandler handles the approval and status endpoints used by
// managers and agents.
type StaffTicketsHandler struct {
	workflow WorkflowService
	now      func() time.Time
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(workflowService WorkflowService) *StaffTicketsHandler {
	return &StaffTicketsHandler{workflow: workflowService, now: time.Now}
}

// SubmitApproval PUT /tickets/:id/approval.
func (h *StaffTicketsHandler) SubmitApproval(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.DecideApproval(c.UserContext(), user, c.Params("id"), req.Action, req.Comment)
	if err != nil {
		return err
	}
	return h.respond(c, ticket)
}

// Start POST /tickets/:id/start.
func (h *StaffTicketsHandler) Start(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.workflow.Start(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return h.respond(c, ticket)
}

// Resolve POST /tickets/:id/resolve.
func (h *StaffTicketsHandler) Resolve(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.workflow.Resolve(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return h.respond(c, ticket)
}

// Close POST /tickets/:id/close. The body is optional.
func (h *StaffTicketsHandler) Close(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.workflow.Close(c.UserContext(), user, c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return h.respond(c, ticket)
}

func (h *StaffTicketsHandler) respond(c *fiber.Ctx, ticket *domain.Ticket) error {
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, workflow.IsOverdue(ticket, h.now()))})
}
