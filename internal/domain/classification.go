package domain

// RootCause classifies why an issue happened.
type RootCause string

const (
	RootCauseUnset          RootCause = ""
	RootCauseHumanError     RootCause = "human_error"
	RootCauseSystemError    RootCause = "system_error"
	RootCauseExternalFactor RootCause = "external_factor"
	RootCauseUndetermined   RootCause = "undetermined"
)

// Valid reports whether r is unset or a known root cause.
func (r RootCause) Valid() bool {
	switch r {
	case RootCauseUnset, RootCauseHumanError, RootCauseSystemError, RootCauseExternalFactor, RootCauseUndetermined:
		return true
	}
	return false
}

// IssueCategory classifies what kind of ticket this is.
type IssueCategory string

const (
	IssueCategoryUnset     IssueCategory = ""
	IssueCategoryRequest   IssueCategory = "request"
	IssueCategoryComplaint IssueCategory = "complaint"
	IssueCategoryProblem   IssueCategory = "problem"
)

// Valid reports whether c is unset or a known category.
func (c IssueCategory) Valid() bool {
	switch c {
	case IssueCategoryUnset, IssueCategoryRequest, IssueCategoryComplaint, IssueCategoryProblem:
		return true
	}
	return false
}

// ClassificationSuggestion is a pair of inferred defaults. Either side may be unset.
type ClassificationSuggestion struct {
	RootCause     RootCause     `json:"rootCause,omitempty"`
	IssueCategory IssueCategory `json:"issueCategory,omitempty"`
}

// Empty reports whether no rule produced a value.
func (s ClassificationSuggestion) Empty() bool {
	return s.RootCause == RootCauseUnset && s.IssueCategory == IssueCategoryUnset
}
