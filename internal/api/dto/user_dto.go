package dto

import (
	"time"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DepartmentResponse names the caller's organizational unit.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileResponse is the current user as seen by the form.
type ProfileResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Role       domain.UserRole     `json:"role"`
	Department *DepartmentResponse `json:"department,omitempty"`
}

func NewProfileResponse(u *domain.User) ProfileResponse {
	resp := ProfileResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	if u.Department != nil {
		resp.Department = &DepartmentResponse{ID: u.Department.ID, Name: u.Department.Name}
	}
	return resp
}

func (p ProfileResponse) ToDomain() *domain.User {
	u := &domain.User{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role, Status: domain.UserStatusActive}
	if p.Department != nil {
		u.Department = &domain.Department{ID: p.Department.ID, Name: p.Department.Name}
	}
	return u
}
