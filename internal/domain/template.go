package domain

// Template is a catalog entry pairing a category with a dynamic field schema.
type Template struct {
	ID               string
	Name             string
	CategoryName     string
	ServiceName      string
	ItemID           *string
	ServiceID        *string
	RequiresApproval bool
	IsActive         bool
}
