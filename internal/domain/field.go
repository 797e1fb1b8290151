package domain

// FieldType tags the input variant of a custom field.
type FieldType string

const (
	FieldTypeText           FieldType = "text"
	FieldTypeNumber         FieldType = "number"
	FieldTypeDate           FieldType = "date"
	FieldTypeDateTime       FieldType = "datetime"
	FieldTypeDropdown       FieldType = "dropdown"
	FieldTypeRadio          FieldType = "radio"
	FieldTypeCheckboxSingle FieldType = "checkbox-single"
	FieldTypeCheckboxMulti  FieldType = "checkbox-multi"
	FieldTypeTextarea       FieldType = "textarea"
)

// IsChoice reports whether the type draws its values from an option list.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeRadio, FieldTypeCheckboxSingle, FieldTypeCheckboxMulti:
		return true
	}
	return false
}

// FieldOption is one selectable value of a choice field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDefinition describes one custom field of a template.
type FieldDefinition struct {
	ID          string
	TemplateID  string
	Name        string
	Label       string
	Type        FieldType
	Required    bool
	Options     []FieldOption
	Placeholder string
	HelpText    string
	MaxLength   int
	SortOrder   int
}
