package workflow

import (
	"strings"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// Policy decides whether a new ticket needs manager sign-off.
type Policy struct {
	RolesRequiringApproval      []domain.UserRole
	CategoriesRequiringApproval []string
}

// RequiresApproval reports whether the template or requester triggers sign-off.
func (p Policy) RequiresApproval(template *domain.Template, requester *domain.User) bool {
	if template != nil && template.RequiresApproval {
		return true
	}
	if requester != nil {
		for _, role := range p.RolesRequiringApproval {
			if role == requester.Role {
				return true
			}
		}
	}
	if template != nil {
		for _, category := range p.CategoriesRequiringApproval {
			if category != "" && strings.EqualFold(strings.TrimSpace(category), strings.TrimSpace(template.CategoryName)) {
				return true
			}
		}
	}
	return false
}

// InitialStatus is pending-approval when sign-off is required, otherwise open.
func (p Policy) InitialStatus(template *domain.Template, requester *domain.User) domain.TicketStatus {
	if p.RequiresApproval(template, requester) {
		return domain.TicketStatusPendingApproval
	}
	return domain.TicketStatusOpen
}
