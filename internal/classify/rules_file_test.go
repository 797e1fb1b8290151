package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

const sampleRules = `
rules:
  - name: atm
    keywords: [ATM, "kartu tertelan"]
    root_cause: external_factor
    issue_category: complaint
  - name: hardware
    keywords: [printer]
    root_cause: system_error
    issue_category: problem
`

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]byte(sampleRules))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "atm", rules[0].Name)

	c := NewKeywordClassifier(rules)
	got := c.Classify("Layanan ATM", "", "Printer ATM")
	assert.Equal(t, domain.ClassificationSuggestion{
		RootCause:     domain.RootCauseExternalFactor,
		IssueCategory: domain.IssueCategoryComplaint,
	}, got)

	rule, ok := c.Match("", "", "Kartu Tertelan di mesin")
	require.True(t, ok)
	assert.Equal(t, "atm", rule.Name)
}

func TestParseRulesRejectsBadTables(t *testing.T) {
	tests := map[string]string{
		"empty":            "rules: []",
		"missing name":     "rules:\n  - keywords: [x]\n    root_cause: human_error\n",
		"missing keywords": "rules:\n  - name: a\n    root_cause: human_error\n",
		"unknown value":    "rules:\n  - name: a\n    keywords: [x]\n    root_cause: bad_luck\n",
		"empty suggestion": "rules:\n  - name: a\n    keywords: [x]\n",
		"not yaml":         "rules: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))
	rules, err = LoadRules(path)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
