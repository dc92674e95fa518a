// Package company matches imported company names against companies the caller
// already holds.
package company

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/normalize"
)

// MatchKind reports how a name was matched.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
	MatchNone  MatchKind = "none"
)

// Match is the outcome of a lookup. Company is nil when Kind is MatchNone.
type Match struct {
	Kind    MatchKind
	Company *model.ExistingCompany
}

// Matcher resolves names against a fixed lookup table. It is safe for concurrent use.
type Matcher struct {
	companies []model.ExistingCompany
	folded    []string
}

// NewMatcher creates a Matcher over existing. Table order breaks ties.
func NewMatcher(existing []model.ExistingCompany) *Matcher {
	m := &Matcher{
		companies: existing,
		folded:    make([]string, len(existing)),
	}
	for i, c := range existing {
		m.folded[i] = normalize.Fold(c.Name)
	}
	return m
}

// Len returns the size of the lookup table.
func (m *Matcher) Len() int {
	return len(m.companies)
}

// Find resolves name with a three-pass cascade; the first pass with a hit wins:
//  1. Exact name match (surrounding whitespace ignored)
//  2. Case-insensitive name match (reported as exact)
//  3. Substring containment in either direction, accent-insensitive (fuzzy)
func (m *Matcher) Find(name string) Match {
	name = strings.TrimSpace(name)
	if name == "" {
		return Match{Kind: MatchNone}
	}

	// Pass 1: exact.
	for i := range m.companies {
		if strings.TrimSpace(m.companies[i].Name) == name {
			return Match{Kind: MatchExact, Company: &m.companies[i]}
		}
	}

	// Pass 2: case-insensitive.
	for i := range m.companies {
		if strings.EqualFold(strings.TrimSpace(m.companies[i].Name), name) {
			return Match{Kind: MatchExact, Company: &m.companies[i]}
		}
	}

	// Pass 3: containment either way.
	folded := normalize.Fold(name)
	for i, candidate := range m.folded {
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, folded) || strings.Contains(folded, candidate) {
			zap.L().Debug("company: fuzzy match",
				zap.String("name", name),
				zap.String("matched", m.companies[i].Name),
			)
			return Match{Kind: MatchFuzzy, Company: &m.companies[i]}
		}
	}

	return Match{Kind: MatchNone}
}
