package domain

import "time"

// UserStatus represents lifecycle states for a portal user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// UserRole enumerates portal roles.
type UserRole string

const (
	UserRoleRequester UserRole = "requester"
	UserRoleAgent     UserRole = "agent"
	UserRoleManager   UserRole = "manager"
	UserRoleAdmin     UserRole = "admin"
)

// User is the domain model for portal users.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Department   *Department
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DepartmentName returns the user's department name or "".
func (u *User) DepartmentName() string {
	if u == nil || u.Department == nil {
		return ""
	}
	return u.Department.Name
}
