package analyzer_test

import (
	"strings"
	"testing"

	"github.com/pagegrade/pagegrade/internal/analyzer"
	"github.com/pagegrade/pagegrade/internal/model"
)

func pageWithWords(t *testing.T, n int) string {
	t.Helper()
	return `<html><body><p>` + strings.TrimSpace(strings.Repeat("word ", n)) + `</p></body></html>`
}

func TestContent_DefaultTypeBands(t *testing.T) {
	t.Parallel()
	var a analyzer.Content

	rich := mustDoc(t, pageWithWords(t, 400), "https://example.com/")
	res := a.Analyze(rich, &model.AnalysisInput{WebsiteType: model.TypeWebsite}, model.PlatformNone)
	checkRawConsistency(t, res)
	if res.Raw != 20 {
		t.Errorf("expected raw 20 for 400 words, got %v", res.Raw)
	}
	if !hasIssue(res, model.SeverityStrength, "Substantial content (400 words)") {
		t.Errorf("expected substantial-content strength, got %+v", res.Issues)
	}

	thin := mustDoc(t, pageWithWords(t, 50), "https://example.com/")
	res = a.Analyze(thin, &model.AnalysisInput{WebsiteType: model.TypeWebsite}, model.PlatformNone)
	if res.Raw != -10 {
		t.Errorf("expected raw -10 for 50 words, got %v", res.Raw)
	}
	if !hasIssue(res, model.SeverityMajor, "Thin content (50 words)") {
		t.Errorf("expected thin-content major, got %+v", res.Issues)
	}
}

func TestContent_PortfolioBands(t *testing.T) {
	t.Parallel()
	var a analyzer.Content
	in := &model.AnalysisInput{WebsiteType: model.TypePortfolio}

	cases := []struct {
		words int
		raw   float64
		sev   model.Severity
	}{
		{500, 25, model.SeverityStrength},
		{100, 10, model.SeverityMinor},
		{1500, 20, model.SeverityStrength},
	}
	for _, c := range cases {
		doc := mustDoc(t, pageWithWords(t, c.words), "https://example.com/")
		res := a.Analyze(doc, in, model.PlatformNone)
		if res.Raw != c.raw {
			t.Errorf("%d words: expected raw %v, got %v", c.words, c.raw, res.Raw)
		}
		if countSeverity(res, c.sev) != 1 {
			t.Errorf("%d words: expected one %s finding, got %+v", c.words, c.sev, res.Issues)
		}
	}
}

func TestContent_LandingPageBands(t *testing.T) {
	t.Parallel()
	var a analyzer.Content
	in := &model.AnalysisInput{WebsiteType: model.TypeLandingPage}

	ideal := mustDoc(t, pageWithWords(t, 500), "https://example.com/")
	res := a.Analyze(ideal, in, model.PlatformNone)
	if res.Raw != 25 {
		t.Errorf("expected raw 25 for 500 words, got %v", res.Raw)
	}

	long := mustDoc(t, pageWithWords(t, 2000), "https://example.com/")
	res = a.Analyze(long, in, model.PlatformNone)
	if res.Raw != 10 {
		t.Errorf("expected raw 10 for 2000 words, got %v", res.Raw)
	}
	if !hasIssue(res, model.SeverityMinor, "outside the ideal range") {
		t.Errorf("expected off-band minor, got %+v", res.Issues)
	}
}
