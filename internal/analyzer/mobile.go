package analyzer

import (
	"strings"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

var responsiveIndicators = []string{
	"@media", "max-width", "min-width", "responsive", "mobile-first",
}

// Mobile checks the viewport configuration and responsive-design markers in
// the raw markup.
type Mobile struct{}

func (Mobile) Category() model.Category { return model.CategoryMobile }

func (Mobile) Analyze(doc *page.Document, _ *model.AnalysisInput, _ model.Platform) Result {
	t := newTally(model.CategoryMobile)

	if doc.HasViewport {
		t.add(40, "viewport meta present")
		t.record(model.SeverityStrength, "Mobile viewport configured")
	} else {
		t.add(-30, "viewport meta missing")
		t.record(model.SeverityCritical, "Missing viewport meta tag - site not mobile-friendly")
	}

	indicators := 0
	for _, marker := range responsiveIndicators {
		if strings.Contains(doc.LoweredHTML, marker) {
			indicators++
		}
	}
	switch {
	case indicators >= 3:
		t.add(15, "strong responsive markers")
		t.record(model.SeverityStrength, "Responsive design implemented")
	case indicators >= 1:
		t.add(8, "some responsive markers")
		t.record(model.SeverityStrength, "Basic responsive design present")
	default:
		t.add(-20, "no responsive markers")
		t.record(model.SeverityMajor, "No responsive design indicators found")
	}

	return t.result()
}
