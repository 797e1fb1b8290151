package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// Classifier infers default root cause and issue category from catalog names.
type Classifier interface {
	Classify(category, service, template string) domain.ClassificationSuggestion
}

// Rule maps a keyword set to a suggestion.
type Rule struct {
	Name       string
	Keywords   []string
	Suggestion domain.ClassificationSuggestion
}

// DefaultRules returns the built-in rule table. Order matters: the first rule
// with a keyword hit wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "infrastructure",
			Keywords: []string{"hardware", "infrastructure", "network", "technical", "server", "printer", "computer"},
			Suggestion: domain.ClassificationSuggestion{
				RootCause:     domain.RootCauseSystemError,
				IssueCategory: domain.IssueCategoryProblem,
			},
		},
		{
			Name:     "account",
			Keywords: []string{"user", "account", "access", "permission", "password", "login"},
			Suggestion: domain.ClassificationSuggestion{
				RootCause:     domain.RootCauseHumanError,
				IssueCategory: domain.IssueCategoryRequest,
			},
		},
		{
			Name:     "application",
			Keywords: []string{"software", "application", "system", "app"},
			Suggestion: domain.ClassificationSuggestion{
				RootCause:     domain.RootCauseSystemError,
				IssueCategory: domain.IssueCategoryProblem,
			},
		},
		{
			Name:     "service-request",
			Keywords: []string{"request", "service", "transaction", "transfer", "klaim"},
			Suggestion: domain.ClassificationSuggestion{
				RootCause:     domain.RootCauseHumanError,
				IssueCategory: domain.IssueCategoryRequest,
			},
		},
	}
}

// KeywordClassifier evaluates an ordered rule list by substring match.
type KeywordClassifier struct {
	rules []Rule
}

// NewKeywordClassifier builds a classifier over rules, or DefaultRules when nil.
func NewKeywordClassifier(rules []Rule) *KeywordClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	lower := cases.Lower(language.Und)
	normalized := make([]Rule, len(rules))
	for i, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.TrimSpace(lower.String(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized[i] = Rule{Name: rule.Name, Keywords: keywords, Suggestion: rule.Suggestion}
	}
	return &KeywordClassifier{rules: normalized}
}

// Classify implements Classifier. No matching rule yields an empty suggestion.
func (c *KeywordClassifier) Classify(category, service, template string) domain.ClassificationSuggestion {
	rule, ok := c.Match(category, service, template)
	if !ok {
		return domain.ClassificationSuggestion{}
	}
	return rule.Suggestion
}

// Match returns the first rule with a keyword found in any input.
func (c *KeywordClassifier) Match(category, service, template string) (Rule, bool) {
	lower := cases.Lower(language.Und)
	inputs := []string{lower.String(category), lower.String(service), lower.String(template)}
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			for _, in := range inputs {
				if strings.Contains(in, kw) {
					return rule, true
				}
			}
		}
	}
	return Rule{}, false
}
