package diffing_test

import (
	"strings"
	"testing"

	"github.com/pagegrade/pagegrade/internal/diffing"
	"github.com/pagegrade/pagegrade/internal/model"
)

func auditWith(id string, score int, grade model.Grade, issues []model.IssueRecord,
	normalized map[model.Category]float64) *model.AuditResult {

	breakdown := &model.ScoreBreakdown{
		Categories: map[model.Category]model.CategoryResult{},
		FinalScore: score,
	}
	for cat, n := range normalized {
		breakdown.Categories[cat] = model.CategoryResult{NormalizedScore: n}
	}
	return &model.AuditResult{
		ID:         id,
		URL:        "https://example.com/",
		FinalScore: score,
		Grade:      grade,
		Issues:     issues,
		Breakdown:  breakdown,
	}
}

func TestCompare_ScoreAndCategoryDeltas(t *testing.T) {
	t.Parallel()
	base := auditWith("base", 55, model.GradeF, nil, map[model.Category]float64{
		model.CategorySEO:      40,
		model.CategorySecurity: 60,
	})
	head := auditWith("head", 72, model.GradeC, nil, map[model.Category]float64{
		model.CategorySEO:      70,
		model.CategorySecurity: 60,
	})

	c := diffing.Compare(base, head, nil, nil)

	if c.ScoreDelta != 17 {
		t.Errorf("score delta = %d, want 17", c.ScoreDelta)
	}
	if c.GradeFrom != model.GradeF || c.GradeTo != model.GradeC {
		t.Errorf("grades = %s -> %s", c.GradeFrom, c.GradeTo)
	}
	if len(c.Categories) != len(model.Categories) {
		t.Fatalf("expected a delta per category, got %d", len(c.Categories))
	}
	for _, d := range c.Categories {
		switch d.Category {
		case model.CategorySEO:
			if d.Delta != 30 {
				t.Errorf("seo delta = %v, want 30", d.Delta)
			}
		case model.CategorySecurity:
			if d.Delta != 0 {
				t.Errorf("security delta = %v, want 0", d.Delta)
			}
		}
	}
}

func TestCompare_NewAndResolvedIssues(t *testing.T) {
	t.Parallel()
	shared := model.IssueRecord{Severity: model.SeverityMinor, Category: model.CategorySEO,
		Message: "Missing canonical URL"}
	resolved := model.IssueRecord{Severity: model.SeverityCritical, Category: model.CategorySecurity,
		Message: "No HTTPS - customer data exposed to interception"}
	introduced := model.IssueRecord{Severity: model.SeverityMajor, Category: model.CategoryMobile,
		Message: "Missing viewport meta tag - poor mobile SEO"}

	base := auditWith("base", 40, model.GradeF,
		[]model.IssueRecord{shared, resolved}, nil)
	head := auditWith("head", 60, model.GradeD,
		[]model.IssueRecord{shared, introduced}, nil)

	c := diffing.Compare(base, head, nil, nil)

	if len(c.NewIssues) != 1 || c.NewIssues[0].Message != introduced.Message {
		t.Errorf("new issues = %+v", c.NewIssues)
	}
	if len(c.ResolvedIssues) != 1 || c.ResolvedIssues[0].Message != resolved.Message {
		t.Errorf("resolved issues = %+v", c.ResolvedIssues)
	}
}

func TestCompare_DuplicateIssuesMatchedOneForOne(t *testing.T) {
	t.Parallel()
	dup := model.IssueRecord{Severity: model.SeverityMinor, Category: model.CategoryUIUX,
		Message: "Oversized image"}

	base := auditWith("base", 50, model.GradeF, []model.IssueRecord{dup}, nil)
	head := auditWith("head", 50, model.GradeF, []model.IssueRecord{dup, dup}, nil)

	c := diffing.Compare(base, head, nil, nil)
	if len(c.NewIssues) != 1 {
		t.Errorf("second duplicate should count as new, got %+v", c.NewIssues)
	}
	if len(c.ResolvedIssues) != 0 {
		t.Errorf("nothing resolved, got %+v", c.ResolvedIssues)
	}
}

func TestCompare_HTMLChanges(t *testing.T) {
	t.Parallel()
	base := auditWith("base", 50, model.GradeF, nil, nil)
	head := auditWith("head", 50, model.GradeF, nil, nil)

	baseHTML := []byte(`<html><body><h1>Old headline text</h1></body></html>`)
	headHTML := []byte(`<html><body><h1>New headline wording</h1></body></html>`)

	c := diffing.Compare(base, head, baseHTML, headHTML)
	if len(c.HTMLChanges) == 0 {
		t.Fatal("expected html change chunks")
	}
	var added, removed bool
	for _, chunk := range c.HTMLChanges {
		switch chunk.Type {
		case "added":
			added = true
			if !strings.Contains(string(headHTML), chunk.Content) {
				t.Errorf("added chunk %q not in head html", chunk.Content)
			}
		case "removed":
			removed = true
		default:
			t.Errorf("unexpected chunk type %q", chunk.Type)
		}
	}
	if !added || !removed {
		t.Errorf("expected both added and removed chunks, got %+v", c.HTMLChanges)
	}
}

func TestCompare_SkipsHTMLWhenSnapshotMissing(t *testing.T) {
	t.Parallel()
	base := auditWith("base", 50, model.GradeF, nil, nil)
	head := auditWith("head", 50, model.GradeF, nil, nil)

	c := diffing.Compare(base, head, nil, []byte("<html></html>"))
	if c.HTMLChanges != nil {
		t.Errorf("html section should be omitted, got %+v", c.HTMLChanges)
	}
}

func TestCompare_NilBreakdowns(t *testing.T) {
	t.Parallel()
	base := &model.AuditResult{ID: "base", FinalScore: 8, Grade: model.GradeF}
	head := &model.AuditResult{ID: "head", FinalScore: 62, Grade: model.GradeD}

	c := diffing.Compare(base, head, nil, nil)
	if c.Categories != nil {
		t.Errorf("category deltas require both breakdowns, got %+v", c.Categories)
	}
	if c.ScoreDelta != 54 {
		t.Errorf("score delta = %d, want 54", c.ScoreDelta)
	}
}
