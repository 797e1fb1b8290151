package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/yanryp/servicedesk-sub004/internal/api/dto"
	"github.com/yanryp/servicedesk-sub004/internal/auth"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/service"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

// AuthService is the login and profile surface the handler needs.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// UsersHandler exposes login and the current user's profile.
type UsersHandler struct {
	auth AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt}})
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	profile, err := h.auth.Profile(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

func principalUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal.User, nil
}
