package match

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// Resolver picks the master-data option that best matches free text.
type Resolver interface {
	FindBestMatch(query string, candidates []domain.MasterDataOption) (domain.MasterDataOption, bool)
}

// Tier is one matching strategy over normalized query and label.
type Tier struct {
	Name  string
	Match func(query, label string) bool
}

// Result describes which tier produced a match.
type Result struct {
	Option domain.MasterDataOption
	Tier   string
}

// TieredResolver evaluates tiers in order; the first tier with any hit wins and
// ties inside a tier go to the earliest candidate.
type TieredResolver struct {
	tiers []Tier
}

// NewTieredResolver builds a resolver. With no tiers the default
// exact, substring, token-overlap chain is used.
func NewTieredResolver(tiers ...Tier) *TieredResolver {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	return &TieredResolver{tiers: tiers}
}

// DefaultTiers returns exact, substring and token-overlap tiers.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "exact", Match: exactMatch},
		{Name: "substring", Match: substringMatch},
		{Name: "token", Match: tokenOverlap},
	}
}

// FindBestMatch implements Resolver.
func (r *TieredResolver) FindBestMatch(query string, candidates []domain.MasterDataOption) (domain.MasterDataOption, bool) {
	res, ok := r.Match(query, candidates)
	return res.Option, ok
}

// Match returns the winning option along with the tier that matched.
func (r *TieredResolver) Match(query string, candidates []domain.MasterDataOption) (Result, bool) {
	q := Normalize(query)
	if q == "" || len(candidates) == 0 {
		return Result{}, false
	}
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = Normalize(c.DisplayLabel())
	}
	for _, tier := range r.tiers {
		for i, label := range labels {
			if label == "" {
				continue
			}
			if tier.Match(q, label) {
				return Result{Option: candidates[i], Tier: tier.Name}, true
			}
		}
	}
	return Result{}, false
}

// Normalize trims and case-folds s.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func exactMatch(query, label string) bool {
	return query == label
}

func substringMatch(query, label string) bool {
	return strings.Contains(label, query) || strings.Contains(query, label)
}

func tokenOverlap(query, label string) bool {
	labelWords := strings.Fields(label)
	for _, qw := range strings.Fields(query) {
		for _, lw := range labelWords {
			if strings.Contains(lw, qw) || strings.Contains(qw, lw) {
				return true
			}
		}
	}
	return false
}
