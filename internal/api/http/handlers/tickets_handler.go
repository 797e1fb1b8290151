package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yanryp/servicedesk-sub004/internal/api/dto"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/service"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// TicketService is the requester-facing ticket surface.
type TicketService interface {
	CreateTicket(ctx context.Context, requester *domain.User, input domain.TicketSubmission) (*domain.Ticket, error)
	GetTicket(ctx context.Context, viewer *domain.User, ticketID string) (*service.TicketView, error)
	ListTickets(ctx context.Context, viewer *domain.User, filter service.TicketListFilter) ([]service.TicketView, error)
}

// TicketsHandler manages ticket creation and reads.
type TicketsHandler struct {
	service TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), user, domain.TicketSubmission{
		TemplateID:        req.TemplateID,
		ItemID:            req.ItemID,
		ServiceID:         req.ServiceID,
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		RootCause:         req.RootCause,
		IssueCategory:     req.IssueCategory,
		CustomFieldValues: dto.CustomFieldValuesToDomain(req.CustomFieldValues),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreateTicketResponse{
		TicketID:    ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Status:      ticket.Status,
	}})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	filter, page, pageSize := parseTicketQuery(c)
	views, err := h.service.ListTickets(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.NewTicketResponse(v.Ticket, v.IsOverdue))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{Items: items, Page: page, PageSize: pageSize}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetTicket(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(view.Ticket, view.IsOverdue).WithHistory(view.History)})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, int, int) {
	filter := service.TicketListFilter{}
	for _, part := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(part))
	}
	for _, part := range splitQuery(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(part))
	}
	filter.OverdueOnly = c.QueryBool("overdue", false)

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, page, pageSize
}

func splitQuery(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
