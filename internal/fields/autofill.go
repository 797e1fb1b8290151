package fields

import (
	"strings"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/match"
)

// DefaultAutofillKeywords mark organizational-unit fields by name or label.
var DefaultAutofillKeywords = []string{"unit", "department", "divisi", "bagian", "cabang", "capem"}

// AutofillEligible reports whether a field's name or label contains a keyword.
func AutofillEligible(field domain.FieldDefinition, keywords []string) bool {
	if keywords == nil {
		keywords = DefaultAutofillKeywords
	}
	name := strings.ToLower(field.Name)
	label := strings.ToLower(field.Label)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(name, kw) || strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// EligibleFields returns the autofill-eligible fields of schema in order.
func EligibleFields(schema []domain.FieldDefinition, keywords []string) []domain.FieldDefinition {
	var out []domain.FieldDefinition
	for _, f := range schema {
		if AutofillEligible(f, keywords) {
			out = append(out, f)
		}
	}
	return out
}

// Autofill sets every eligible, untouched field to the option best matching
// department. Candidates come from options keyed by field name, falling back to
// the field's own option list; free-text fields take the department name as is.
// It returns the names of the fields it filled.
func Autofill(state *FormState, department string, options map[string][]domain.MasterDataOption, resolver match.Resolver, keywords []string) []string {
	if strings.TrimSpace(department) == "" || resolver == nil {
		return nil
	}
	var filled []string
	for _, field := range EligibleFields(state.Schema(), keywords) {
		if !field.Type.IsChoice() && len(field.Options) == 0 {
			if state.SetDefault(field.Name, department) {
				filled = append(filled, field.Name)
			}
			continue
		}
		candidates := options[field.Name]
		if len(candidates) == 0 {
			candidates = OptionsAsMasterData(field.Options)
		}
		if len(candidates) == 0 {
			continue
		}
		best, ok := resolver.FindBestMatch(department, candidates)
		if !ok {
			continue
		}
		if state.SetDefault(field.Name, best.Value) {
			filled = append(filled, field.Name)
		}
	}
	return filled
}

// OptionsAsMasterData converts a field's static options into candidates.
func OptionsAsMasterData(opts []domain.FieldOption) []domain.MasterDataOption {
	out := make([]domain.MasterDataOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, domain.MasterDataOption{Value: o.Value, Label: o.Label})
	}
	return out
}
