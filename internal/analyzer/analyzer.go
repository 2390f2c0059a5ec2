// Package analyzer implements the per-category heuristic analyzers. Each
// analyzer walks the shared page.Document and records typed contributions
// against a running raw score; the raw score is unbounded and is only
// normalized later by the scoring package.
package analyzer

import (
	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

// Contribution is one (delta, reason) pair added by a single check. The raw
// category score is exactly the sum of its contributions, which keeps the
// breakdown traceable to source checks.
type Contribution struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

// Result is one analyzer's output.
type Result struct {
	Category      model.Category      `json:"category"`
	Raw           float64             `json:"raw"`
	Contributions []Contribution      `json:"contributions"`
	Issues        []model.IssueRecord `json:"issues"`
}

// Analyzer evaluates one category. Implementations must not mutate the
// document or the input; all checks run, there is no early exit.
type Analyzer interface {
	Category() model.Category

	// Analyze runs every check for the category. platform is the detected
	// builder tag; only the UI/UX analyzer consumes it.
	Analyze(doc *page.Document, in *model.AnalysisInput, platform model.Platform) Result
}

// All returns one instance of every category analyzer, in breakdown order.
func All() []Analyzer {
	return []Analyzer{
		&Security{},
		&Performance{},
		&SEO{},
		&Mobile{},
		&Content{},
		&UIUX{},
	}
}

// tally accumulates contributions and issues for one category.
type tally struct {
	category model.Category
	contribs []Contribution
	issues   []model.IssueRecord
}

func newTally(c model.Category) *tally {
	return &tally{category: c}
}

func (t *tally) add(delta float64, reason string) {
	t.contribs = append(t.contribs, Contribution{Delta: delta, Reason: reason})
}

func (t *tally) raw() float64 {
	var sum float64
	for _, c := range t.contribs {
		sum += c.Delta
	}
	return sum
}

func (t *tally) record(sev model.Severity, msg string) {
	t.issues = append(t.issues, model.IssueRecord{
		Severity: sev,
		Category: t.category,
		Message:  msg,
	})
}

func (t *tally) recordDetail(sev model.Severity, msg string, detail map[string]any) {
	t.issues = append(t.issues, model.IssueRecord{
		Severity: sev,
		Category: t.category,
		Message:  msg,
		Detail:   detail,
	})
}

func (t *tally) recordPlatform(sev model.Severity, msg string, p model.Platform) {
	t.issues = append(t.issues, model.IssueRecord{
		Severity: sev,
		Category: t.category,
		Message:  msg,
		Platform: p,
	})
}

func (t *tally) count(sev model.Severity) int {
	n := 0
	for _, is := range t.issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

func (t *tally) result() Result {
	return Result{
		Category:      t.category,
		Raw:           t.raw(),
		Contributions: t.contribs,
		Issues:        t.issues,
	}
}
