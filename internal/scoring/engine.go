package scoring

import (
	"math"

	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
)

// Engine aggregates raw category scores into a final bounded score with a
// fully reconstructable breakdown. It is stateless and safe for concurrent
// use.
type Engine struct {
	params Params
	log    logging.Logger
}

// NewEngine builds an engine over the given parameter table.
func NewEngine(params Params, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop{}
	}
	return &Engine{params: params, log: log}
}

// Params returns the engine's parameter table.
func (e *Engine) Params() Params { return e.params }

// Score runs the full aggregation. raw maps each category to the analyzer's
// unbounded raw score; issues is the combined finding list of all analyzers;
// platform is the detected builder tag. An unknown website type scores under
// the generic website profile.
func (e *Engine) Score(websiteType model.WebsiteType, raw map[model.Category]float64,
	issues []model.IssueRecord, platform model.Platform) model.ScoreBreakdown {

	if !websiteType.Known() {
		e.log.Warn("unknown website type, using website profile",
			logging.Field{Key: "website_type", Value: string(websiteType)})
		websiteType = model.TypeWebsite
	}
	profile := e.params.ProfileFor(websiteType)

	breakdown := model.ScoreBreakdown{
		Categories:  make(map[model.Category]model.CategoryResult, len(model.Categories)),
		WebsiteType: websiteType,
		Platform:    platform,
	}

	var base float64
	for _, cat := range model.Categories {
		normalized := e.Normalize(cat, raw[cat])
		weight := profile[cat]
		contribution := normalized * weight
		base += contribution
		breakdown.Categories[cat] = model.CategoryResult{
			NormalizedScore: normalized,
			Weight:          weight,
			Contribution:    contribution,
		}
	}
	breakdown.BaseWeightedScore = base

	counts := CountIssues(issues)
	breakdown.CriticalIssues = counts.Critical
	breakdown.MajorIssues = counts.Major
	breakdown.TemplateIssues = counts.Template

	breakdown.Penalties = e.penalties(counts, platform)
	breakdown.PreCapScore = base - breakdown.Penalties.Total

	capped := breakdown.PreCapScore
	for _, cap := range e.params.Caps {
		if !cap.Applies(counts, platform) {
			continue
		}
		if capped > cap.Cap {
			capped = cap.Cap
			breakdown.AppliedCaps = append(breakdown.AppliedCaps, cap.Name)
		}
	}
	breakdown.CapAdjustment = capped - breakdown.PreCapScore

	breakdown.FinalScore = int(math.Round(clamp(capped, e.params.FinalMin, e.params.FinalMax)))
	return breakdown
}

// Normalize maps one category's raw score onto the bounded normalized scale.
func (e *Engine) Normalize(cat model.Category, raw float64) float64 {
	band := e.params.Normalization[cat]
	span := band.MaxExpected - band.MinExpected
	normalized := band.Base +
		(raw-band.MinExpected)/span*(e.params.NormalizedCeiling-band.Base)
	return clamp(normalized, e.params.NormalizedMin, e.params.NormalizedMax)
}

func (e *Engine) penalties(counts IssueCounts, platform model.Platform) model.Penalties {
	p := model.Penalties{
		Critical: decayPenalty(counts.Critical, e.params.CriticalPenalty),
		Major:    decayPenalty(counts.Major, e.params.MajorPenalty),
	}
	switch {
	case platform == model.PlatformGoDaddy:
		p.Template = e.params.GoDaddyTemplatePenalty
	case platform != model.PlatformNone:
		p.Template = e.params.OtherTemplatePenalty
	}
	p.Total = p.Critical + p.Major + p.Template
	return p
}

// decayPenalty computes max*(1-e^(-decay*n)). The first issues carry most of
// the penalty; further issues add diminishing amounts up to max.
func decayPenalty(n int, params PenaltyParams) float64 {
	if n <= 0 {
		return 0
	}
	return params.Max * (1 - math.Exp(-params.Decay*float64(n)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
