package analyzer

import (
	"fmt"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

// Content scores the amount of visible text against what the declared site
// type needs. Portfolios and landing pages are expected to be concise, so
// they get their own word-count bands.
type Content struct{}

func (Content) Category() model.Category { return model.CategoryContent }

func (Content) Analyze(doc *page.Document, in *model.AnalysisInput, _ model.Platform) Result {
	t := newTally(model.CategoryContent)
	words := doc.WordCount

	switch in.WebsiteType {
	case model.TypePortfolio:
		switch {
		case words >= 200 && words <= 1000:
			t.add(25, "ideal portfolio length")
			t.record(model.SeverityStrength,
				fmt.Sprintf("Ideal content length for a portfolio (%d words)", words))
		case words < 200:
			t.add(10, "thin portfolio content")
			t.record(model.SeverityMinor,
				fmt.Sprintf("Light content (%d words) - consider expanding project descriptions", words))
		default:
			t.add(20, "rich portfolio content")
			t.record(model.SeverityStrength,
				fmt.Sprintf("Comprehensive portfolio content (%d words)", words))
		}
	case model.TypeLandingPage:
		if words >= 300 && words <= 800 {
			t.add(25, "ideal landing page length")
			t.record(model.SeverityStrength,
				fmt.Sprintf("Ideal content length for a landing page (%d words)", words))
		} else {
			t.add(10, "off-band landing page length")
			t.record(model.SeverityMinor,
				fmt.Sprintf("Landing page content outside the ideal range (%d words)", words))
		}
	default:
		if words >= 300 {
			t.add(20, "substantial content")
			t.record(model.SeverityStrength,
				fmt.Sprintf("Substantial content (%d words)", words))
		} else {
			t.add(-10, "thin content")
			t.record(model.SeverityMajor,
				fmt.Sprintf("Thin content (%d words) - may hurt rankings and engagement", words))
		}
	}

	return t.result()
}
