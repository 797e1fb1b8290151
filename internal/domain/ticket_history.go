package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeCreated  TicketChangeType = "CREATED"
	ChangeTypeStatus   TicketChangeType = "STATUS_CHANGE"
	ChangeTypeApproval TicketChangeType = "APPROVAL_DECISION"
)

// TicketHistory is an immutable audit trail entry. ChangedByName is only
// populated on reads.
type TicketHistory struct {
	ID            string
	TicketID      string
	ChangedByID   *string
	ChangedByName *string
	ChangeType    TicketChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
