package domain

// TicketSubmission is everything a requester sends to open a ticket.
type TicketSubmission struct {
	TemplateID        string
	ItemID            *string
	ServiceID         *string
	Title             string
	Description       string
	Priority          TicketPriority
	RootCause         RootCause
	IssueCategory     IssueCategory
	CustomFieldValues []CustomFieldValue
}
