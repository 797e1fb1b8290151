package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanryp/servicedesk-sub004/internal/auth"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

func newAuthFixture(t *testing.T) (*AuthService, *auth.TokenManager) {
	t.Helper()
	hash, err := auth.HashPassword("rahasia123", bcrypt.MinCost)
	require.NoError(t, err)
	users := &memUsers{byID: map[string]*domain.User{
		"u-1": {ID: "u-1", Email: "teller@bank.test", PasswordHash: hash, Role: domain.UserRoleRequester, Status: domain.UserStatusActive,
			Department: &domain.Department{ID: "d-1", Name: "Kantor Cabang Utama"}},
		"u-2": {ID: "u-2", Email: "old@bank.test", PasswordHash: hash, Role: domain.UserRoleAgent, Status: domain.UserStatusSuspended},
	}}
	tokens := auth.NewTokenManager("test-secret", 30)
	return NewAuthService(users, tokens, nil), tokens
}

func TestLoginIssuesToken(t *testing.T) {
	svc, tokens := newAuthFixture(t)

	result, err := svc.Login(context.Background(), " teller@bank.test ", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", result.User.ID)

	claims, err := tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, domain.UserRoleRequester, claims.Role)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{name: "missing input", email: "", password: "x", code: apperrors.CodeValidation},
		{name: "unknown email", email: "nobody@bank.test", password: "rahasia123", code: apperrors.CodeUnauthorized},
		{name: "wrong password", email: "teller@bank.test", password: "salah", code: apperrors.CodeUnauthorized},
		{name: "suspended", email: "old@bank.test", password: "rahasia123", code: apperrors.CodeForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			assert.True(t, apperrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestProfile(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.Profile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Kantor Cabang Utama", user.DepartmentName())

	_, err = svc.Profile(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
