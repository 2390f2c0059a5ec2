// Package diffing compares two audits of the same site: score and
// per-category deltas, findings that appeared or disappeared, and the drift
// between the stored HTML snapshots.
package diffing

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/pagegrade/pagegrade/internal/model"
)

// CategoryDelta is the normalized-score movement of one category between two
// audits.
type CategoryDelta struct {
	Category model.Category `json:"category"`
	Base     float64        `json:"base"`
	Head     float64        `json:"head"`
	Delta    float64        `json:"delta"`
}

// HTMLChunk is one changed region of the page between the two snapshots.
type HTMLChunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Comparison is the full diff between a base audit and a head audit.
type Comparison struct {
	BaseID string `json:"base_id"`
	HeadID string `json:"head_id"`

	ScoreDelta int         `json:"score_delta"`
	GradeFrom  model.Grade `json:"grade_from"`
	GradeTo    model.Grade `json:"grade_to"`

	Categories []CategoryDelta `json:"categories,omitempty"`

	NewIssues      []model.IssueRecord `json:"new_issues,omitempty"`
	ResolvedIssues []model.IssueRecord `json:"resolved_issues,omitempty"`

	HTMLChanges []HTMLChunk `json:"html_changes,omitempty"`
}

// Compare diffs two audit results. baseHTML and headHTML may be nil when a
// snapshot is unavailable; the HTML section is then omitted.
func Compare(base, head *model.AuditResult, baseHTML, headHTML []byte) *Comparison {
	c := &Comparison{
		BaseID:     base.ID,
		HeadID:     head.ID,
		ScoreDelta: head.FinalScore - base.FinalScore,
		GradeFrom:  base.Grade,
		GradeTo:    head.Grade,
	}

	c.Categories = categoryDeltas(base.Breakdown, head.Breakdown)
	c.NewIssues = missingFrom(base.Issues, head.Issues)
	c.ResolvedIssues = missingFrom(head.Issues, base.Issues)

	if len(baseHTML) > 0 && len(headHTML) > 0 {
		c.HTMLChanges = diffHTML(baseHTML, headHTML)
	}
	return c
}

func categoryDeltas(base, head *model.ScoreBreakdown) []CategoryDelta {
	if base == nil || head == nil {
		return nil
	}
	out := make([]CategoryDelta, 0, len(model.Categories))
	for _, cat := range model.Categories {
		b := base.Categories[cat].NormalizedScore
		h := head.Categories[cat].NormalizedScore
		out = append(out, CategoryDelta{
			Category: cat,
			Base:     b,
			Head:     h,
			Delta:    h - b,
		})
	}
	return out
}

// missingFrom returns the issues in have that do not occur in reference,
// matched by severity, category and message. Duplicate findings are matched
// one-for-one.
func missingFrom(reference, have []model.IssueRecord) []model.IssueRecord {
	remaining := make(map[string]int, len(reference))
	for _, is := range reference {
		remaining[issueKey(is)]++
	}

	var out []model.IssueRecord
	for _, is := range have {
		key := issueKey(is)
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		out = append(out, is)
	}
	return out
}

func issueKey(is model.IssueRecord) string {
	return string(is.Severity) + "\x00" + string(is.Category) + "\x00" + is.Message
}

// diffHTML computes semantic character-level changes between the two
// snapshots, dropping whitespace-only chunks.
func diffHTML(base, head []byte) []HTMLChunk {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(base), string(head), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var chunks []HTMLChunk
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
		case diffmatchpatch.DiffDelete:
			kind = "removed"
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, HTMLChunk{Type: kind, Content: d.Text})
	}
	return chunks
}
