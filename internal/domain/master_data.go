package domain

import "strings"

// MasterDataOption is a candidate value for a choice field supplied by master data.
type MasterDataOption struct {
	Value       string `json:"value"`
	Label       string `json:"label,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// DisplayLabel returns the first non-empty of label, displayName and name.
func (o MasterDataOption) DisplayLabel() string {
	for _, candidate := range []string{o.Label, o.DisplayName, o.Name} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}
