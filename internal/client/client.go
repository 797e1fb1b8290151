package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/api/dto"
	"github.com/yanryp/servicedesk-sub004/internal/config"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

const defaultTimeout = 15 * time.Second

// Client talks to the portal REST API. It satisfies the template, field,
// master-data, profile and ticket collaborators of a form session.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a client from configuration.
func New(cfg config.ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// WithToken returns a copy that authenticates with a bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	var resp dto.AuthResponse
	err := c.do(ctx, fiber.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// Template fetches template metadata.
func (c *Client) Template(ctx context.Context, id string) (*domain.Template, error) {
	var resp dto.TemplateResponse
	if err := c.do(ctx, fiber.MethodGet, "/templates/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// Fields fetches a template's field schema. Any failure is a schema load error.
func (c *Client) Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error) {
	var resp dto.FieldsResponse
	if err := c.do(ctx, fiber.MethodGet, "/templates/"+url.PathEscape(templateID)+"/fields", nil, &resp); err != nil {
		return nil, apperrors.NewSchemaLoadError(templateID, err)
	}
	return dto.FieldDefinitionsToDomain(templateID, resp.Fields), nil
}

// Options fetches master-data options for a field.
func (c *Client) Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error) {
	var resp dto.MasterDataResponse
	if err := c.do(ctx, fiber.MethodGet, "/master-data/"+url.PathEscape(fieldName), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Options, nil
}

// CurrentUser fetches the signed-in user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var resp dto.ProfileResponse
	if err := c.do(ctx, fiber.MethodGet, "/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// CreateTicket submits a ticket and returns its id.
func (c *Client) CreateTicket(ctx context.Context, submission domain.TicketSubmission) (string, error) {
	req := dto.CreateTicketRequest{
		TemplateID:        submission.TemplateID,
		ItemID:            submission.ItemID,
		ServiceID:         submission.ServiceID,
		Title:             submission.Title,
		Description:       submission.Description,
		Priority:          submission.Priority,
		RootCause:         submission.RootCause,
		IssueCategory:     submission.IssueCategory,
		CustomFieldValues: dto.NewCustomFieldValues(submission.CustomFieldValues),
	}
	var resp dto.CreateTicketResponse
	if err := c.do(ctx, fiber.MethodPost, "/tickets", req, &resp); err != nil {
		return "", err
	}
	return resp.TicketID, nil
}

// Ticket fetches one ticket.
func (c *Client) Ticket(ctx context.Context, id string) (*domain.Ticket, error) {
	var resp dto.TicketResponse
	if err := c.do(ctx, fiber.MethodGet, "/tickets/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// SubmitApproval records a manager decision and returns the updated ticket.
func (c *Client) SubmitApproval(ctx context.Context, ticketID string, action domain.ApprovalAction, comment string) (*domain.Ticket, error) {
	var resp dto.TicketResponse
	body := dto.ApprovalRequest{Action: action, Comment: comment}
	if err := c.do(ctx, fiber.MethodPut, "/tickets/"+url.PathEscape(ticketID)+"/approval", body, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransportError(0, "request cancelled", err)
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		agent.JSON(body)
	}
	agent.Timeout(c.effectiveTimeout(ctx))

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return apperrors.NewTransportError(0, "invalid request", err)
	}

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		c.logger.Warn("portal request failed", zap.String("method", method), zap.String("path", path), zap.Errors("errors", errs))
		return apperrors.NewTransportError(0, "", errors.Join(errs...))
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		c.logger.Debug("portal request rejected", zap.String("method", method), zap.String("path", path), zap.Int("status", status))
		return decodeError(status, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &env); err != nil {
		return apperrors.NewTransportError(status, "invalid response body", err)
	}
	if len(env.Data) == 0 {
		return apperrors.NewTransportError(status, "response has no data", nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.NewTransportError(status, "invalid response body", err)
	}
	return nil
}

func (c *Client) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

// decodeError maps an error envelope to a typed error. Duplicate actions,
// validation failures and invalid transitions keep their kind; everything
// else becomes a transport error carrying the server message.
func decodeError(status int, body []byte) error {
	var env dto.ErrorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := env.Error.Message

	switch {
	case status == http.StatusConflict && env.Error.Code == apperrors.CodeDuplicateAction:
		return apperrors.NewDuplicateAction(msg)
	case status == http.StatusConflict && env.Error.Code == apperrors.CodeInvalidTransition:
		return apperrors.NewDomainError(apperrors.CodeInvalidTransition, msg, status, env.Error.Details)
	case status == http.StatusBadRequest && env.Error.Code == apperrors.CodeValidation:
		return apperrors.NewValidationError(msg, env.Error.Details)
	}
	return apperrors.NewTransportError(status, msg, nil)
}
