package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

func TestValidateRequiredTextWithoutLabel(t *testing.T) {
	schema := []domain.FieldDefinition{{Name: "contact_phone", Type: domain.FieldTypeText, Required: true}}
	errs := Validate(Values{"contact_phone": ""}, schema)
	assert.Equal(t, map[string]string{"contact_phone": "Contact Phone is required"}, errs)
}

func TestValidateFlagsExactlyBlankRequiredFields(t *testing.T) {
	schema := []domain.FieldDefinition{
		{Name: "account_no", Label: "Account Number", Type: domain.FieldTypeNumber, Required: true},
		{Name: "branch", Label: "Branch", Type: domain.FieldTypeDropdown, Required: true},
		{Name: "channels", Label: "Channels", Type: domain.FieldTypeCheckboxMulti, Required: true},
		{Name: "notes", Label: "Notes", Type: domain.FieldTypeTextarea},
		{Name: "incident_at", Label: "Incident Time", Type: domain.FieldTypeDateTime, Required: true},
		{Name: "custom", Label: "Custom", Type: domain.FieldType("signature"), Required: true},
	}

	tests := []struct {
		name   string
		values Values
		want   []string
	}{
		{
			name:   "all missing",
			values: Values{},
			want:   []string{"account_no", "branch", "channels", "incident_at", "custom"},
		},
		{
			name: "whitespace counts as missing",
			values: Values{
				"account_no": "  ", "branch": "\t", "channels": "A", "incident_at": "2024-01-01T10:00", "custom": "x",
			},
			want: []string{"account_no", "branch"},
		},
		{
			name: "non numeric number passes presence check",
			values: Values{
				"account_no": "abc", "branch": "JKT", "channels": "A,B", "incident_at": "yesterday", "custom": "sig",
			},
			want: nil,
		},
		{
			name:   "optional field never flagged",
			values: Values{"account_no": "1", "branch": "b", "channels": "c", "incident_at": "d", "custom": "e", "notes": ""},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.values, schema)
			got := make([]string, 0, len(errs))
			for name := range errs {
				got = append(got, name)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestDisplayLabelPrefersLabel(t *testing.T) {
	assert.Equal(t, "Nomor Rekening", DisplayLabel(domain.FieldDefinition{Name: "acct", Label: " Nomor Rekening "}))
	assert.Equal(t, "Unit Kerja", DisplayLabel(domain.FieldDefinition{Name: "unit-kerja"}))
}
