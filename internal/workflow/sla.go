package workflow

import (
	"time"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// SLAPolicy maps a priority to its resolution window.
type SLAPolicy map[domain.TicketPriority]time.Duration

// DefaultSLAPolicy returns the built-in windows.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{
		domain.TicketPriorityUrgent: 4 * time.Hour,
		domain.TicketPriorityHigh:   8 * time.Hour,
		domain.TicketPriorityMedium: 24 * time.Hour,
		domain.TicketPriorityLow:    72 * time.Hour,
	}
}

// DueAt returns createdAt plus the window, or nil when the priority has none.
func (p SLAPolicy) DueAt(priority domain.TicketPriority, createdAt time.Time) *time.Time {
	window, ok := p[priority]
	if !ok || window <= 0 {
		return nil
	}
	due := createdAt.Add(window)
	return &due
}
