package role

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/media-import/internal/model"
)

func TestSeniority(t *testing.T) {
	t.Parallel()

	e := Default()
	tests := []struct {
		title string
		want  model.Seniority
	}{
		{"Chief Marketing Officer", model.SeniorityCLevel},
		{"CMO", model.SeniorityCLevel},
		{"President, North America", model.SeniorityCLevel},
		{"VP Marketing", model.SeniorityVP},
		{"SVP, Media", model.SeniorityVP},
		// "president" is a C-level keyword, so it also claims "Vice President".
		{"Vice President, Media", model.SeniorityCLevel},
		{"Director of Programmatic", model.SeniorityDirector},
		{"Head of Social", model.SeniorityDirector},
		{"Media Manager", model.SeniorityManager},
		{"Team Lead, Search", model.SeniorityManager},
		{"Media Associate", model.SeniorityAssociate},
		{"Paid Social Specialist", model.SeniorityAssociate},
		{"Media Coordinator", model.SeniorityCoordinator},
		{"", model.SeniorityCoordinator},
		// First rule wins: "chief" outranks "director".
		{"Chief of Staff to the Director", model.SeniorityCLevel},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.Seniority(tt.title))
		})
	}
}

func TestChiefMarketingOfficer(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"Chief Marketing Officer", "Global Chief Marketing Officer", "chief marketing officer (EMEA)"} {
		p := Default().Infer(title)
		assert.Equal(t, model.SeniorityCLevel, p.Seniority, title)
		assert.True(t, p.DecisionMaking, title)
		assert.Equal(t, model.BudgetHigh, p.BudgetAuthority, title)
	}
}

func TestSpecializations(t *testing.T) {
	t.Parallel()

	e := Default()
	tests := []struct {
		title string
		want  []string
	}{
		{"Chief Financial Officer", []string{}},
		{"Coordinator", []string{}},
		{"", []string{}},
		{"Programmatic & Social Lead", []string{"Programmatic", "Social Media"}},
		{"Social and Programmatic Buyer", []string{"Programmatic", "Social Media"}},
		{"DSP Trader", []string{"Programmatic"}},
		{"Director, CTV and Video", []string{"Video"}},
		{"Brand Performance Manager", []string{"Brand", "Performance"}},
		{"Retail Media Lead", []string{"E-commerce"}},
		{"B2B Paid Search Manager", []string{"Search", "B2B"}},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			got := e.Specializations(tt.title)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBudgetAuthority(t *testing.T) {
	t.Parallel()

	e := Default()
	tests := []struct {
		title string
		want  model.BudgetAuthority
	}{
		{"CMO", model.BudgetHigh},
		{"VP, Media", model.BudgetHigh},
		{"Director of Media", model.BudgetHigh},
		{"Media Manager", model.BudgetMedium},
		{"Lead Buyer", model.BudgetMedium},
		{"Media Associate", model.BudgetLow},
		{"SEO Specialist", model.BudgetLow},
		{"Coordinator", model.BudgetNone},
		{"President", model.BudgetNone},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.BudgetAuthority(tt.title))
		})
	}
}

func TestDecisionMaking(t *testing.T) {
	t.Parallel()

	e := Default()
	for _, title := range []string{"Director", "Media Manager", "Head of Growth", "Team Lead", "Chief of Staff", "VP Sales", "President"} {
		assert.True(t, e.DecisionMaking(title), title)
	}
	for _, title := range []string{"Coordinator", "Media Associate", "Analyst", ""} {
		assert.False(t, e.DecisionMaking(title), title)
	}
}

func TestRelevance(t *testing.T) {
	t.Parallel()

	e := Default()
	assert.Zero(t, e.Relevance(""))
	assert.Zero(t, e.Relevance("Coordinator"))
	assert.Zero(t, e.Relevance("Chief Financial Officer"))

	one := e.Relevance("Media Coordinator")
	two := e.Relevance("Media Buyer")
	three := e.Relevance("Programmatic Media Buyer")
	assert.Greater(t, one, 0.0)
	assert.GreaterOrEqual(t, two, one)
	assert.GreaterOrEqual(t, three, two)

	assert.LessOrEqual(t, e.Relevance("Digital Media Buying Planning Marketing Advertising Programmatic"), 100.0)
}

func TestRelevance_MonotonicInMatches(t *testing.T) {
	t.Parallel()

	e := Default()
	title := ""
	prev := 0.0
	for _, kw := range []string{"digital", "media", "planner", "advertising", "brand", "buyer"} {
		title += kw + " "
		score := e.Relevance(title)
		assert.GreaterOrEqual(t, score, prev, title)
		prev = score
	}
	assert.Equal(t, []string{"media", "buyer", "planner", "advertising", "digital", "brand"},
		e.MatchedRelevanceKeywords(title))
}

func TestNew_CaseInsensitiveKeywords(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	rules.Specializations = []Specialization{{Label: "Audio", Keywords: []string{"PODCAST"}}}
	e := New(rules)
	assert.Equal(t, []string{"Audio"}, e.Specializations("Podcast Sales Lead"))
	// The caller's rules are not mutated.
	assert.Equal(t, "PODCAST", rules.Specializations[0].Keywords[0])
}
