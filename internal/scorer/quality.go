package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/role"
)

const (
	lowScoreThreshold     = 50
	lowRelevanceThreshold = 50
)

// QualityScore is the rating of one contact.
type QualityScore struct {
	Score           int      `json:"score"`
	Relevance       float64  `json:"relevance"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// Scorer computes QualityScores. It is safe for concurrent use.
type Scorer struct {
	engine  *role.Engine
	weights Weights
}

// New creates a Scorer. A nil engine uses role.Default().
func New(engine *role.Engine, weights Weights) *Scorer {
	if engine == nil {
		engine = role.Default()
	}
	return &Scorer{engine: engine, weights: weights}
}

var defaultScorer = New(nil, DefaultWeights())

// ContactQualityScore scores c with the default weights and relevance table.
func ContactQualityScore(c model.ContactCandidate) QualityScore {
	return defaultScorer.Contact(c)
}

// Contact scores c. Seniority falls back to COORDINATOR when unset or unknown.
func (s *Scorer) Contact(c model.ContactCandidate) QualityScore {
	w := s.weights
	factors := []string{}

	relevance := s.engine.Relevance(c.Title)
	total := w.RelevanceFactor * relevance
	if hits := s.engine.MatchedRelevanceKeywords(c.Title); len(hits) > 0 {
		factors = append(factors, fmt.Sprintf("Role relevance %.0f%% (%s)", relevance, strings.Join(hits, ", ")))
	} else {
		factors = append(factors, "No media-role keywords in title")
	}

	hasEmail := strings.TrimSpace(c.Email) != ""
	hasPhone := strings.TrimSpace(c.Phone) != ""
	if hasEmail {
		total += w.Email
		factors = append(factors, "Has email")
	}
	if hasPhone {
		total += w.Phone
		factors = append(factors, "Has phone")
	}
	if strings.TrimSpace(c.LinkedInURL) != "" {
		total += w.LinkedIn
		factors = append(factors, "Has LinkedIn profile")
	}

	level := c.Seniority
	pts, ok := w.Seniority[level]
	if !ok {
		level = model.SeniorityCoordinator
		pts = w.Seniority[level]
	}
	total += pts
	factors = append(factors, fmt.Sprintf("Seniority %s", level))

	if c.DecisionMaking {
		total += w.DecisionMaking
		factors = append(factors, "Decision maker")
	}

	score := int(math.Round(total))

	recs := []string{}
	if score < lowScoreThreshold {
		recs = append(recs, "Verify role relevance and fill in missing contact details")
	}
	if !hasEmail && !hasPhone {
		recs = append(recs, "Critical: no email or phone, contact cannot be reached")
	}
	if relevance < lowRelevanceThreshold {
		recs = append(recs, "Title may not be optimal for media targeting")
	}

	return QualityScore{
		Score:           score,
		Relevance:       relevance,
		Factors:         factors,
		Recommendations: recs,
	}
}

// Ranked pairs a contact index with its score.
type Ranked struct {
	Index int          `json:"index"`
	Score QualityScore `json:"quality"`
}

// Rank scores every contact and orders them best first. Ties keep input order.
func (s *Scorer) Rank(contacts []model.ContactCandidate) []Ranked {
	out := make([]Ranked, len(contacts))
	for i, c := range contacts {
		out[i] = Ranked{Index: i, Score: s.Contact(c)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Score > out[j].Score.Score
	})
	return out
}
