package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/role"
)

func TestDefaultWeights_Valid(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 100, maxScore(w), 0.001)
	assert.NoError(t, ValidateWeights(w))
}

func TestValidateWeights_Errors(t *testing.T) {
	w := DefaultWeights()
	w.Email = -1
	w.Seniority = map[model.Seniority]float64{"INTERN": 5}
	err := ValidateWeights(w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be >= 0")
	assert.Contains(t, err.Error(), `unknown seniority "INTERN"`)
	assert.Contains(t, err.Error(), "should sum to 100")
}

func TestContactQualityScore_CMOBeatsCoordinator(t *testing.T) {
	cmo := ContactQualityScore(model.ContactCandidate{
		Title:          "Chief Marketing Officer",
		Email:          "cmo@acme.com",
		Phone:          "555-123-4567",
		LinkedInURL:    "https://linkedin.com/in/cmo",
		Seniority:      model.SeniorityCLevel,
		DecisionMaking: true,
	})
	coord := ContactQualityScore(model.ContactCandidate{
		Title:     "Coordinator",
		Seniority: model.SeniorityCoordinator,
	})
	assert.Greater(t, cmo.Score, coord.Score)

	// marketing=30 -> 12, completeness 30, C_LEVEL 20, decision 10.
	assert.Equal(t, 72, cmo.Score)
	assert.Equal(t, 2, coord.Score)
}

func TestContactQualityScore_Components(t *testing.T) {
	tests := []struct {
		name    string
		contact model.ContactCandidate
		want    int
	}{
		{"empty defaults to coordinator", model.ContactCandidate{}, 2},
		{"unknown seniority defaults to coordinator", model.ContactCandidate{Seniority: "INTERN"}, 2},
		{"email only", model.ContactCandidate{Email: "a@b.com", Seniority: model.SeniorityManager}, 18},
		{"vp with phone and linkedin", model.ContactCandidate{Phone: "5551234567", LinkedInURL: "x", Seniority: model.SeniorityVP}, 35},
		{"director decision maker", model.ContactCandidate{Seniority: model.SeniorityDirector, DecisionMaking: true}, 22},
		{"associate media buyer", model.ContactCandidate{Title: "Media Buyer", Seniority: model.SeniorityAssociate}, 29},
		{"digital associate", model.ContactCandidate{Title: "Digital", Seniority: model.SeniorityAssociate}, 11},
		{"natural maximum", model.ContactCandidate{
			Title:          "CMO, Media Programmatic Buyer",
			Email:          "a@b.com",
			Phone:          "5551234567",
			LinkedInURL:    "x",
			Seniority:      model.SeniorityCLevel,
			DecisionMaking: true,
		}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContactQualityScore(tt.contact)
			assert.Equal(t, tt.want, got.Score)
			assert.GreaterOrEqual(t, got.Score, 0)
			assert.LessOrEqual(t, got.Score, 100)
		})
	}
}

func TestContactQualityScore_Monotone(t *testing.T) {
	titles := []string{
		"Coordinator",
		"Digital Coordinator",
		"Digital Media Coordinator",
		"Digital Media Planning Coordinator",
		"Digital Media Planning and Buying Coordinator",
	}
	prev := -1
	for _, title := range titles {
		got := ContactQualityScore(model.ContactCandidate{Title: title})
		assert.GreaterOrEqual(t, got.Score, prev, title)
		prev = got.Score
	}
}

func TestContactQualityScore_Recommendations(t *testing.T) {
	low := ContactQualityScore(model.ContactCandidate{Title: "Coordinator"})
	require.Len(t, low.Recommendations, 3)
	assert.Contains(t, low.Recommendations[0], "Verify role relevance")
	assert.Contains(t, low.Recommendations[1], "Critical")
	assert.Contains(t, low.Recommendations[2], "not be optimal")

	strong := ContactQualityScore(model.ContactCandidate{
		Title:          "VP Media Buying",
		Email:          "a@b.com",
		Seniority:      model.SeniorityVP,
		DecisionMaking: true,
	})
	// media + buying = 60 -> 24 + 10 + 15 + 10.
	assert.Equal(t, 59, strong.Score)
	assert.Empty(t, strong.Recommendations)

	phoneOnly := ContactQualityScore(model.ContactCandidate{Phone: "5551234567"})
	for _, r := range phoneOnly.Recommendations {
		assert.NotContains(t, r, "Critical")
	}
}

func TestContactQualityScore_Factors(t *testing.T) {
	got := ContactQualityScore(model.ContactCandidate{
		Title:          "Media Planner",
		Email:          "a@b.com",
		Seniority:      model.SeniorityManager,
		DecisionMaking: true,
	})
	assert.Contains(t, got.Factors, "Has email")
	assert.Contains(t, got.Factors, "Seniority MANAGER")
	assert.Contains(t, got.Factors, "Decision maker")
	assert.Contains(t, got.Factors[0], "media")
	assert.NotContains(t, got.Factors, "Has phone")

	none := ContactQualityScore(model.ContactCandidate{})
	assert.Equal(t, "No media-role keywords in title", none.Factors[0])
}

func TestScorer_CustomEngine(t *testing.T) {
	rules := role.DefaultRules()
	rules.Relevance = []role.RelevanceKeyword{{Keyword: "sommelier", Weight: 100}}
	s := New(role.New(rules), DefaultWeights())

	got := s.Contact(model.ContactCandidate{Title: "Head Sommelier", Seniority: model.SeniorityDirector})
	assert.Equal(t, 52, got.Score)
	assert.InDelta(t, 100, got.Relevance, 0.001)
}

func TestScorer_Rank(t *testing.T) {
	s := New(nil, DefaultWeights())
	ranked := s.Rank([]model.ContactCandidate{
		{Title: "Coordinator"},
		{Title: "Media Director", Email: "a@b.com", Seniority: model.SeniorityDirector},
		{Title: "Coordinator"},
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, 1, ranked[0].Index)
	assert.Equal(t, 0, ranked[1].Index)
	assert.Equal(t, 2, ranked[2].Index)
}
