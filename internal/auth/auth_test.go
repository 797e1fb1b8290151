package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

type stubUsers map[string]*domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(&domain.User{ID: "u-1", Role: domain.UserRoleManager})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, domain.UserRoleManager, claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", 5).GenerateToken(&domain.User{ID: "u-1"})
	require.NoError(t, err)
	_, err = NewTokenManager("two", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken(&domain.User{ID: "u-1"})
	require.NoError(t, err)
	_, err = NewTokenManager("secret", 1).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hashed, "s3cret!"))
	assert.Error(t, ComparePassword(hashed, "wrong"))
}

func newAuthApp(tm *TokenManager, users stubUsers) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/any", mw.Handle, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/managers", mw.Handle, RequireRole(domain.UserRoleManager), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestMiddlewareAndRoles(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	users := stubUsers{
		"req": {ID: "req", Role: domain.UserRoleRequester, Status: domain.UserStatusActive},
		"mgr": {ID: "mgr", Role: domain.UserRoleManager, Status: domain.UserStatusActive},
		"adm": {ID: "adm", Role: domain.UserRoleAdmin, Status: domain.UserStatusActive},
		"off": {ID: "off", Role: domain.UserRoleManager, Status: domain.UserStatusSuspended},
	}
	app := newAuthApp(tm, users)

	tokenFor := func(id string) string {
		tok, _, err := tm.GenerateToken(users[id])
		require.NoError(t, err)
		return "Bearer " + tok
	}
	ghost, _, err := tm.GenerateToken(&domain.User{ID: "ghost"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/any", "", fiber.StatusUnauthorized},
		{"requester any", "/any", tokenFor("req"), fiber.StatusNoContent},
		{"requester managers", "/managers", tokenFor("req"), fiber.StatusForbidden},
		{"manager", "/managers", tokenFor("mgr"), fiber.StatusNoContent},
		{"admin", "/managers", tokenFor("adm"), fiber.StatusNoContent},
		{"unknown user", "/any", "Bearer " + ghost, fiber.StatusUnauthorized},
		{"suspended", "/any", tokenFor("off"), fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
