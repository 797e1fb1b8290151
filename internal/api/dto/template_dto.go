package dto

import (
	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// TemplateResponse describes a catalog template.
type TemplateResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CategoryName     string  `json:"categoryName"`
	ServiceName      string  `json:"serviceName"`
	ItemID           *string `json:"itemId,omitempty"`
	ServiceID        *string `json:"serviceId,omitempty"`
	RequiresApproval bool    `json:"requiresApproval"`
}

// FieldDefinition is the wire form of a custom field.
type FieldDefinition struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Label       string               `json:"label"`
	Type        domain.FieldType     `json:"type"`
	Required    bool                 `json:"required"`
	Options     []domain.FieldOption `json:"options,omitempty"`
	Placeholder string               `json:"placeholder,omitempty"`
	HelpText    string               `json:"helpText,omitempty"`
	MaxLength   int                  `json:"maxLength,omitempty"`
	SortOrder   int                  `json:"sortOrder"`
}

// FieldsResponse lists a template's fields in display order.
type FieldsResponse struct {
	TemplateID string            `json:"templateId"`
	Fields     []FieldDefinition `json:"fields"`
}

// MasterDataResponse lists options for one field.
type MasterDataResponse struct {
	Field   string                    `json:"field"`
	Options []domain.MasterDataOption `json:"options"`
}

// PrefillResponse is a schema with its automatically derived values.
type PrefillResponse struct {
	Template       TemplateResponse                `json:"template"`
	Fields         []FieldDefinition               `json:"fields"`
	Values         map[string]string               `json:"values"`
	Autofilled     []string                        `json:"autofilled"`
	Classification domain.ClassificationSuggestion `json:"classification"`
}

func NewTemplateResponse(t *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:               t.ID,
		Name:             t.Name,
		CategoryName:     t.CategoryName,
		ServiceName:      t.ServiceName,
		ItemID:           t.ItemID,
		ServiceID:        t.ServiceID,
		RequiresApproval: t.RequiresApproval,
	}
}

func (r TemplateResponse) ToDomain() *domain.Template {
	return &domain.Template{
		ID:               r.ID,
		Name:             r.Name,
		CategoryName:     r.CategoryName,
		ServiceName:      r.ServiceName,
		ItemID:           r.ItemID,
		ServiceID:        r.ServiceID,
		RequiresApproval: r.RequiresApproval,
		IsActive:         true,
	}
}

func NewFieldDefinitions(defs []domain.FieldDefinition) []FieldDefinition {
	out := make([]FieldDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, FieldDefinition{
			ID:          d.ID,
			Name:        d.Name,
			Label:       d.Label,
			Type:        d.Type,
			Required:    d.Required,
			Options:     d.Options,
			Placeholder: d.Placeholder,
			HelpText:    d.HelpText,
			MaxLength:   d.MaxLength,
			SortOrder:   d.SortOrder,
		})
	}
	return out
}

// FieldDefinitionsToDomain maps wire fields back, stamping templateID on each.
func FieldDefinitionsToDomain(templateID string, defs []FieldDefinition) []domain.FieldDefinition {
	out := make([]domain.FieldDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, domain.FieldDefinition{
			ID:          d.ID,
			TemplateID:  templateID,
			Name:        d.Name,
			Label:       d.Label,
			Type:        d.Type,
			Required:    d.Required,
			Options:     d.Options,
			Placeholder: d.Placeholder,
			HelpText:    d.HelpText,
			MaxLength:   d.MaxLength,
			SortOrder:   d.SortOrder,
		})
	}
	return out
}
