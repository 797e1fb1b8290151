package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name          string               `yaml:"name"`
	Keywords      []string             `yaml:"keywords"`
	RootCause     domain.RootCause     `yaml:"root_cause"`
	IssueCategory domain.IssueCategory `yaml:"issue_category"`
}

// LoadRules reads an ordered rule table from a YAML file. An empty path
// returns DefaultRules.
func LoadRules(path string) ([]Rule, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule table. Every rule needs a name, at least one
// keyword and a known, non-empty suggestion.
func ParseRules(data []byte) ([]Rule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse classifier rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("classifier rules: no rules defined")
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("classifier rule %d: name is required", i)
		}
		if len(entry.Keywords) == 0 {
			return nil, fmt.Errorf("classifier rule %q: keywords are required", entry.Name)
		}
		suggestion := domain.ClassificationSuggestion{RootCause: entry.RootCause, IssueCategory: entry.IssueCategory}
		if !suggestion.RootCause.Valid() || !suggestion.IssueCategory.Valid() || suggestion.Empty() {
			return nil, fmt.Errorf("classifier rule %q: invalid suggestion %q/%q", entry.Name, entry.RootCause, entry.IssueCategory)
		}
		rules = append(rules, Rule{Name: entry.Name, Keywords: entry.Keywords, Suggestion: suggestion})
	}
	return rules, nil
}
