// Package scoring implements the score aggregator: normalization of raw
// analyzer scores, site-type weighting, exponential-decay penalties, ordered
// quality caps and the final clamp. Every constant lives in Params so the
// whole table can be swapped without touching the arithmetic.
package scoring

import "github.com/pagegrade/pagegrade/internal/model"

// NormBand maps one category's unbounded raw score onto the common 10..100
// scale. Base is the normalized value of an average raw score; the band tops
// out at 80 before clamping so no category alone can reach 100.
type NormBand struct {
	MinExpected float64
	MaxExpected float64
	Base        float64
}

// PenaltyParams parameterizes one exponential-decay penalty term.
type PenaltyParams struct {
	Max   float64
	Decay float64
}

// IssueCounts are the classified issue totals one aggregation runs against.
type IssueCounts struct {
	Critical int
	Major    int
	Template int
}

// Sum returns critical+major+template, the count the combined caps key on.
func (c IssueCounts) Sum() int { return c.Critical + c.Major + c.Template }

// QualityCap is one ordered cap rule. Applies reports whether the rule is
// active for the given counts and platform.
type QualityCap struct {
	Name    string
	Cap     float64
	Applies func(c IssueCounts, platform model.Platform) bool
}

// Params is the complete, externally swappable parameter set of the
// aggregator.
type Params struct {
	Normalization map[model.Category]NormBand

	// NormalizedCeiling is the pre-clamp top of every normalization band.
	NormalizedCeiling float64
	// NormalizedMin and NormalizedMax clamp each normalized score.
	NormalizedMin float64
	NormalizedMax float64

	CriticalPenalty PenaltyParams
	MajorPenalty    PenaltyParams

	// GoDaddyTemplatePenalty and OtherTemplatePenalty are the flat
	// template deductions.
	GoDaddyTemplatePenalty float64
	OtherTemplatePenalty   float64

	// Caps are evaluated in order; every active cap is min-applied, so
	// the tightest active cap wins regardless of position.
	Caps []QualityCap

	// Weights maps each website type to its per-category weight profile.
	// Each profile sums to 1.0.
	Weights map[model.WebsiteType]map[model.Category]float64

	// FinalMin and FinalMax bound the reported score. Perfect and
	// catastrophic sites are intentionally unrepresentable.
	FinalMin float64
	FinalMax float64
}

// DefaultParams returns the production parameter table.
func DefaultParams() Params {
	return Params{
		Normalization: map[model.Category]NormBand{
			model.CategorySecurity:    {MinExpected: -30, MaxExpected: 30, Base: 35},
			model.CategoryPerformance: {MinExpected: -40, MaxExpected: 40, Base: 30},
			model.CategorySEO:         {MinExpected: -25, MaxExpected: 35, Base: 40},
			model.CategoryMobile:      {MinExpected: -30, MaxExpected: 30, Base: 45},
			model.CategoryContent:     {MinExpected: -20, MaxExpected: 40, Base: 45},
			model.CategoryUIUX:        {MinExpected: -35, MaxExpected: 35, Base: 30},
		},
		NormalizedCeiling: 80,
		NormalizedMin:     10,
		NormalizedMax:     100,

		CriticalPenalty: PenaltyParams{Max: 25, Decay: 0.8},
		MajorPenalty:    PenaltyParams{Max: 15, Decay: 0.7},

		GoDaddyTemplatePenalty: 5,
		OtherTemplatePenalty:   3,

		Caps: []QualityCap{
			{Name: "critical_issues>=3", Cap: 35, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Critical >= 3
			}},
			{Name: "critical_issues==2", Cap: 55, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Critical == 2
			}},
			{Name: "major_issues>=5", Cap: 45, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Major >= 5
			}},
			{Name: "major_issues>=3", Cap: 60, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Major >= 3
			}},
			{Name: "platform==godaddy", Cap: 70, Applies: func(_ IssueCounts, p model.Platform) bool {
				return p == model.PlatformGoDaddy
			}},
			{Name: "template_issues>=2", Cap: 60, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Template >= 2
			}},
			{Name: "template_issues>=1", Cap: 75, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Template >= 1
			}},
			{Name: "total_issues>=5", Cap: 25, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Sum() >= 5
			}},
			{Name: "total_issues>=3", Cap: 40, Applies: func(c IssueCounts, _ model.Platform) bool {
				return c.Sum() >= 3
			}},
		},

		Weights: map[model.WebsiteType]map[model.Category]float64{
			model.TypeWebsite: {
				model.CategorySecurity:    0.15,
				model.CategoryPerformance: 0.20,
				model.CategorySEO:         0.20,
				model.CategoryMobile:      0.20,
				model.CategoryContent:     0.10,
				model.CategoryUIUX:        0.15,
			},
			model.TypeLandingPage: {
				model.CategorySecurity:    0.15,
				model.CategoryPerformance: 0.20,
				model.CategorySEO:         0.25,
				model.CategoryMobile:      0.15,
				model.CategoryContent:     0.05,
				model.CategoryUIUX:        0.20,
			},
			model.TypeECommerce: {
				model.CategorySecurity:    0.25,
				model.CategoryPerformance: 0.20,
				model.CategorySEO:         0.15,
				model.CategoryMobile:      0.15,
				model.CategoryContent:     0.05,
				model.CategoryUIUX:        0.20,
			},
			model.TypeSearchEngine: {
				model.CategorySecurity:    0.25,
				model.CategoryPerformance: 0.40,
				model.CategorySEO:         0.05,
				model.CategoryMobile:      0.20,
				model.CategoryContent:     0.05,
				model.CategoryUIUX:        0.05,
			},
			model.TypeBlog: {
				model.CategorySecurity:    0.10,
				model.CategoryPerformance: 0.15,
				model.CategorySEO:         0.35,
				model.CategoryMobile:      0.20,
				model.CategoryContent:     0.10,
				model.CategoryUIUX:        0.10,
			},
			model.TypePortfolio: {
				model.CategorySecurity:    0.10,
				model.CategoryPerformance: 0.30,
				model.CategorySEO:         0.15,
				model.CategoryMobile:      0.20,
				model.CategoryContent:     0.05,
				model.CategoryUIUX:        0.20,
			},
			model.TypeWebApp: {
				model.CategorySecurity:    0.20,
				model.CategoryPerformance: 0.30,
				model.CategorySEO:         0.05,
				model.CategoryMobile:      0.25,
				model.CategoryContent:     0.05,
				model.CategoryUIUX:        0.15,
			},
			model.TypeCorporate: {
				model.CategorySecurity:    0.20,
				model.CategoryPerformance: 0.15,
				model.CategorySEO:         0.25,
				model.CategoryMobile:      0.15,
				model.CategoryContent:     0.10,
				model.CategoryUIUX:        0.15,
			},
		},

		FinalMin: 5,
		FinalMax: 90,
	}
}

// ProfileFor returns the weight profile for t, falling back to the generic
// website profile when t is unknown.
func (p Params) ProfileFor(t model.WebsiteType) map[model.Category]float64 {
	if profile, ok := p.Weights[t]; ok {
		return profile
	}
	return p.Weights[model.TypeWebsite]
}
