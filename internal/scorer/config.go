// Package scorer rates how useful an imported contact is for media outreach.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/media-import/internal/model"
)

// Weights holds the point allocation of a quality score. The defaults sum to 100.
type Weights struct {
	// RelevanceFactor scales the 0-100 role relevance into points.
	RelevanceFactor float64                     `yaml:"relevance_factor" json:"relevance_factor"`
	Email           float64                     `yaml:"email" json:"email"`
	Phone           float64                     `yaml:"phone" json:"phone"`
	LinkedIn        float64                     `yaml:"linkedin" json:"linkedin"`
	Seniority       map[model.Seniority]float64 `yaml:"seniority" json:"seniority"`
	DecisionMaking  float64                     `yaml:"decision_making" json:"decision_making"`
}

// DefaultWeights returns the standard allocation: relevance 40, completeness 30,
// seniority 20, decision-making 10.
func DefaultWeights() Weights {
	return Weights{
		RelevanceFactor: 0.4,
		Email:           10,
		Phone:           10,
		LinkedIn:        10,
		Seniority: map[model.Seniority]float64{
			model.SeniorityCLevel:      20,
			model.SeniorityVP:          15,
			model.SeniorityDirector:    12,
			model.SeniorityManager:     8,
			model.SeniorityAssociate:   5,
			model.SeniorityCoordinator: 2,
		},
		DecisionMaking: 10,
	}
}

// maxScore returns the highest score the weights can produce.
func maxScore(w Weights) float64 {
	var top float64
	for _, pts := range w.Seniority {
		top = math.Max(top, pts)
	}
	return 100*w.RelevanceFactor + w.Email + w.Phone + w.LinkedIn + top + w.DecisionMaking
}

// ValidateWeights checks that w is internally consistent.
func ValidateWeights(w Weights) error {
	var errs []string

	named := []struct {
		name string
		v    float64
	}{
		{"relevance_factor", w.RelevanceFactor},
		{"email", w.Email},
		{"phone", w.Phone},
		{"linkedin", w.LinkedIn},
		{"decision_making", w.DecisionMaking},
	}
	for _, n := range named {
		if n.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", n.name))
		}
	}
	for level, pts := range w.Seniority {
		if !level.Valid() {
			errs = append(errs, fmt.Sprintf("unknown seniority %q", level))
		}
		if pts < 0 {
			errs = append(errs, fmt.Sprintf("seniority %s must be >= 0", level))
		}
	}

	// Allow tolerance for floating-point.
	if top := maxScore(w); math.Abs(top-100) > 1 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.1f", top))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: weights validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
