package role

import (
	"math"
	"strings"

	"github.com/sells-group/media-import/internal/model"
)

// Profile is everything inferred from one title.
type Profile struct {
	Seniority       model.Seniority       `json:"seniority"`
	Specializations []string              `json:"specializations"`
	BudgetAuthority model.BudgetAuthority `json:"budget_authority"`
	DecisionMaking  bool                  `json:"decision_making"`
}

// Engine evaluates a Rules table against titles. It is safe for concurrent use.
type Engine struct {
	rules Rules
}

// New creates an Engine over rules. Keywords are lower-cased once here.
func New(rules Rules) *Engine {
	r := rules
	r.Seniority = make([]SeniorityRule, len(rules.Seniority))
	for i, s := range rules.Seniority {
		r.Seniority[i] = SeniorityRule{Level: s.Level, Keywords: lowerAll(s.Keywords)}
	}
	r.Budget = make([]BudgetRule, len(rules.Budget))
	for i, b := range rules.Budget {
		r.Budget[i] = BudgetRule{Authority: b.Authority, Keywords: lowerAll(b.Keywords)}
	}
	r.DecisionKeywords = lowerAll(rules.DecisionKeywords)
	r.Specializations = make([]Specialization, len(rules.Specializations))
	for i, s := range rules.Specializations {
		r.Specializations[i] = Specialization{Label: s.Label, Keywords: lowerAll(s.Keywords)}
	}
	r.Relevance = make([]RelevanceKeyword, len(rules.Relevance))
	for i, k := range rules.Relevance {
		r.Relevance[i] = RelevanceKeyword{Keyword: strings.ToLower(k.Keyword), Weight: k.Weight}
	}
	return &Engine{rules: r}
}

// Default returns an Engine over DefaultRules.
func Default() *Engine {
	return New(DefaultRules())
}

// Rules returns the engine's tables.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Infer derives every attribute of a Profile from title.
func (e *Engine) Infer(title string) Profile {
	lower := strings.ToLower(title)
	return Profile{
		Seniority:       e.seniority(lower),
		Specializations: e.specializations(lower),
		BudgetAuthority: e.budget(lower),
		DecisionMaking:  containsAny(lower, e.rules.DecisionKeywords...),
	}
}

// Seniority returns the first matching level, or the default.
func (e *Engine) Seniority(title string) model.Seniority {
	return e.seniority(strings.ToLower(title))
}

// Specializations returns every matching label in table order. Never nil.
func (e *Engine) Specializations(title string) []string {
	return e.specializations(strings.ToLower(title))
}

// BudgetAuthority returns the first matching authority, or the default.
func (e *Engine) BudgetAuthority(title string) model.BudgetAuthority {
	return e.budget(strings.ToLower(title))
}

// DecisionMaking reports whether the title contains a decision keyword.
func (e *Engine) DecisionMaking(title string) bool {
	return containsAny(strings.ToLower(title), e.rules.DecisionKeywords...)
}

// Relevance scores title 0-100 against the media-role table. Each matched
// keyword adds its weight once; the sum is capped at 100.
func (e *Engine) Relevance(title string) float64 {
	lower := strings.ToLower(title)
	if strings.TrimSpace(lower) == "" {
		return 0
	}
	var score float64
	for _, k := range e.rules.Relevance {
		if k.Keyword != "" && strings.Contains(lower, k.Keyword) {
			score += k.Weight
		}
	}
	return math.Min(score, 100)
}

// MatchedRelevanceKeywords lists the relevance keywords found in title.
func (e *Engine) MatchedRelevanceKeywords(title string) []string {
	lower := strings.ToLower(title)
	var matched []string
	for _, k := range e.rules.Relevance {
		if k.Keyword != "" && strings.Contains(lower, k.Keyword) {
			matched = append(matched, k.Keyword)
		}
	}
	return matched
}

func (e *Engine) seniority(lower string) model.Seniority {
	for _, r := range e.rules.Seniority {
		if containsAny(lower, r.Keywords...) {
			return r.Level
		}
	}
	return e.rules.DefaultSeniority
}

func (e *Engine) budget(lower string) model.BudgetAuthority {
	for _, r := range e.rules.Budget {
		if containsAny(lower, r.Keywords...) {
			return r.Authority
		}
	}
	return e.rules.DefaultBudget
}

func (e *Engine) specializations(lower string) []string {
	labels := []string{}
	for _, s := range e.rules.Specializations {
		if containsAny(lower, s.Keywords...) {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

func containsAny(s string, keywords ...string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
