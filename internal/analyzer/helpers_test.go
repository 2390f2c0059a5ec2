package analyzer_test

import (
	"strings"
	"testing"

	"github.com/pagegrade/pagegrade/internal/analyzer"
	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

func mustDoc(t *testing.T, html, finalURL string) *page.Document {
	t.Helper()
	doc, err := page.New(html, finalURL)
	if err != nil {
		t.Fatalf("page.New: %v", err)
	}
	return doc
}

// hasIssue reports whether res contains a finding of the given severity
// whose message contains substr.
func hasIssue(res analyzer.Result, sev model.Severity, substr string) bool {
	for _, is := range res.Issues {
		if is.Severity == sev && strings.Contains(is.Message, substr) {
			return true
		}
	}
	return false
}

func countSeverity(res analyzer.Result, sev model.Severity) int {
	n := 0
	for _, is := range res.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// rawFromContributions re-sums the contribution list; every analyzer must
// keep Raw equal to this sum.
func rawFromContributions(res analyzer.Result) float64 {
	var sum float64
	for _, c := range res.Contributions {
		sum += c.Delta
	}
	return sum
}

func checkRawConsistency(t *testing.T, res analyzer.Result) {
	t.Helper()
	if got := rawFromContributions(res); got != res.Raw {
		t.Errorf("raw %v does not equal contribution sum %v", res.Raw, got)
	}
}
