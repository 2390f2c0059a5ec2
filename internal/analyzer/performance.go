package analyzer

import (
	"fmt"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

// Core-Web-Vitals thresholds (seconds, except CLS which is unitless).
const (
	fcpGood       = 1.8
	fcpAcceptable = 3.0
	lcpGood       = 2.5
	lcpAcceptable = 4.0
	clsGood       = 0.1
	clsAcceptable = 0.25
)

// Performance scores the supplied 0-100 performance metric and the
// Core-Web-Vitals timings against fixed tiers.
type Performance struct{}

func (Performance) Category() model.Category { return model.CategoryPerformance }

func (Performance) Analyze(_ *page.Document, in *model.AnalysisInput, _ model.Platform) Result {
	t := newTally(model.CategoryPerformance)
	m := in.Metrics

	switch {
	case m.PerformanceScore >= 90:
		t.add(40, "exceptional performance score")
		t.record(model.SeverityStrength,
			fmt.Sprintf("Outstanding performance (%.0f/100)", m.PerformanceScore))
	case m.PerformanceScore >= 70:
		t.add(25, "good performance score")
	case m.PerformanceScore >= 50:
		t.add(10, "below-average performance score")
		t.record(model.SeverityMajor,
			fmt.Sprintf("Below average performance (%.0f/100) - users expect faster loading", m.PerformanceScore))
	default:
		t.add(-20, "poor performance score")
		t.record(model.SeverityCritical,
			fmt.Sprintf("Poor performance (%.0f/100) - major user experience issue", m.PerformanceScore))
	}

	switch {
	case m.FCP <= fcpGood:
		t.add(15, "fast first contentful paint")
	case m.FCP <= fcpAcceptable:
		t.add(10, "acceptable first contentful paint")
	default:
		t.add(-10, "slow first contentful paint")
		t.record(model.SeverityMajor,
			fmt.Sprintf("Slow First Contentful Paint (%.1fs) - users see a blank page too long", m.FCP))
	}

	switch {
	case m.LCP <= lcpGood:
		t.add(15, "fast largest contentful paint")
	case m.LCP <= lcpAcceptable:
		t.add(5, "largest contentful paint needs improvement")
		t.record(model.SeverityMajor,
			fmt.Sprintf("Largest Contentful Paint needs improvement (%.1fs)", m.LCP))
	default:
		t.add(-15, "slow largest contentful paint")
		t.record(model.SeverityCritical,
			fmt.Sprintf("Slow Largest Contentful Paint (%.1fs) - poor user experience", m.LCP))
	}

	switch {
	case m.CLS <= clsGood:
		t.add(10, "stable layout")
	case m.CLS <= clsAcceptable:
		t.add(3, "some layout shift")
		t.record(model.SeverityMinor,
			fmt.Sprintf("Layout shift detected (CLS: %.3f) - elements jump around", m.CLS))
	default:
		t.add(-10, "significant layout shift")
		t.record(model.SeverityMajor,
			fmt.Sprintf("Significant layout shift (CLS: %.3f) - very poor user experience", m.CLS))
	}

	return t.result()
}
