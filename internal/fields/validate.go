package fields

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// Validate checks required fields in schema order and returns a message per
// invalid field name. Only presence is checked; numeric and date fields are
// judged on their string form and unknown types count as free text.
func Validate(values Values, schema []domain.FieldDefinition) map[string]string {
	errs := make(map[string]string)
	for _, field := range schema {
		if !field.Required {
			continue
		}
		raw, ok := values[field.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			errs[field.Name] = RequiredMessage(field)
		}
	}
	return errs
}

// RequiredMessage is the message shown for a missing required field.
func RequiredMessage(field domain.FieldDefinition) string {
	return DisplayLabel(field) + " is required"
}

// DisplayLabel returns the field label, or a title-cased form of its name.
func DisplayLabel(field domain.FieldDefinition) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	name := strings.NewReplacer("_", " ", "-", " ").Replace(field.Name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}
