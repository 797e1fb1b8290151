package domain

// Department is the organizational unit a user belongs to.
type Department struct {
	ID   string
	Name string
}
