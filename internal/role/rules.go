// Package role infers seniority, specializations, budget authority, and
// decision-making from free-text job titles.
package role

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/media-import/internal/model"
)

// SeniorityRule maps any of its keywords to a level. Rules are evaluated in order.
type SeniorityRule struct {
	Level    model.Seniority `yaml:"level"`
	Keywords []string        `yaml:"keywords"`
}

// BudgetRule maps any of its keywords to an authority level. Rules are evaluated in order.
type BudgetRule struct {
	Authority model.BudgetAuthority `yaml:"authority"`
	Keywords  []string              `yaml:"keywords"`
}

// Specialization is a label applied when any keyword appears in the title.
type Specialization struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// RelevanceKeyword is one weighted indicator of a media-buying or planning role.
type RelevanceKeyword struct {
	Keyword string  `yaml:"keyword"`
	Weight  float64 `yaml:"weight"`
}

// Rules is the complete keyword table set. All matching is substring
// containment against the lower-cased title.
type Rules struct {
	Seniority        []SeniorityRule       `yaml:"seniority"`
	DefaultSeniority model.Seniority       `yaml:"default_seniority"`
	Budget           []BudgetRule          `yaml:"budget"`
	DefaultBudget    model.BudgetAuthority `yaml:"default_budget"`
	DecisionKeywords []string              `yaml:"decision_keywords"`
	Specializations  []Specialization      `yaml:"specializations"`
	Relevance        []RelevanceKeyword    `yaml:"relevance"`
}

// DefaultRules returns the built-in tables.
func DefaultRules() Rules {
	return Rules{
		Seniority: []SeniorityRule{
			{model.SeniorityCLevel, []string{"cmo", "chief", "ceo", "president"}},
			{model.SeniorityVP, []string{"vp", "vice president"}},
			{model.SeniorityDirector, []string{"director", "head of"}},
			{model.SeniorityManager, []string{"manager", "lead"}},
			{model.SeniorityAssociate, []string{"associate", "specialist"}},
		},
		DefaultSeniority: model.SeniorityCoordinator,
		Budget: []BudgetRule{
			{model.BudgetHigh, []string{"cmo", "chief", "vp", "director"}},
			{model.BudgetMedium, []string{"manager", "lead"}},
			{model.BudgetLow, []string{"associate", "specialist"}},
		},
		DefaultBudget:    model.BudgetNone,
		DecisionKeywords: []string{"director", "manager", "head", "lead", "chief", "vp", "president"},
		Specializations: []Specialization{
			{"Programmatic", []string{"programmatic", "dsp", "rtb", "demand side"}},
			{"Social Media", []string{"social", "facebook", "instagram", "twitter", "linkedin", "tiktok"}},
			{"Search", []string{"search", "seo", "sem", "ppc"}},
			{"Display", []string{"display", "banner"}},
			{"Video", []string{"video", "ctv", "ott", "youtube", "streaming"}},
			{"Mobile", []string{"mobile", "in-app"}},
			{"Brand", []string{"brand"}},
			{"Performance", []string{"performance", "acquisition", "growth"}},
			{"E-commerce", []string{"e-commerce", "ecommerce", "retail media", "marketplace"}},
			{"B2B", []string{"b2b", "enterprise"}},
		},
		Relevance: []RelevanceKeyword{
			{"media", 30},
			{"programmatic", 30},
			{"buyer", 30},
			{"buying", 30},
			{"marketing", 30},
			{"cmo", 30},
			{"planner", 25},
			{"planning", 25},
			{"advertising", 25},
			{"ad ops", 20},
			{"trading", 20},
			{"digital", 15},
			{"brand", 15},
			{"partnerships", 10},
			{"acquisition", 10},
			{"performance", 10},
			{"growth", 10},
			{"agency", 10},
			{"communications", 10},
		},
	}
}

// LoadRules reads rule tables from YAML. Sections absent from the file keep
// their defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "role: read rules %s", path)
	}

	var file Rules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Rules{}, eris.Wrap(err, "role: parse rules")
	}

	rules := DefaultRules()
	if len(file.Seniority) > 0 {
		rules.Seniority = file.Seniority
	}
	if file.DefaultSeniority != "" {
		rules.DefaultSeniority = file.DefaultSeniority
	}
	if len(file.Budget) > 0 {
		rules.Budget = file.Budget
	}
	if file.DefaultBudget != "" {
		rules.DefaultBudget = file.DefaultBudget
	}
	if len(file.DecisionKeywords) > 0 {
		rules.DecisionKeywords = file.DecisionKeywords
	}
	if len(file.Specializations) > 0 {
		rules.Specializations = file.Specializations
	}
	if len(file.Relevance) > 0 {
		rules.Relevance = file.Relevance
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks enum values and relevance weights.
func (r Rules) Validate() error {
	var errs []string
	for i, s := range r.Seniority {
		if !s.Level.Valid() {
			errs = append(errs, fmt.Sprintf("seniority[%d]: unknown level %q", i, s.Level))
		}
	}
	if !r.DefaultSeniority.Valid() {
		errs = append(errs, fmt.Sprintf("default_seniority: unknown level %q", r.DefaultSeniority))
	}
	for i, b := range r.Budget {
		if !b.Authority.Valid() {
			errs = append(errs, fmt.Sprintf("budget[%d]: unknown authority %q", i, b.Authority))
		}
	}
	if !r.DefaultBudget.Valid() {
		errs = append(errs, fmt.Sprintf("default_budget: unknown authority %q", r.DefaultBudget))
	}
	for i, s := range r.Specializations {
		if s.Label == "" {
			errs = append(errs, fmt.Sprintf("specializations[%d]: label is required", i))
		}
	}
	// Non-positive weights would let an extra keyword lower the score.
	for _, k := range r.Relevance {
		if k.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("relevance %q: weight must be > 0", k.Keyword))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("role: invalid rules: %s", strings.Join(errs, "; "))
	}
	return nil
}
