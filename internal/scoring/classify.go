package scoring

import "github.com/pagegrade/pagegrade/internal/model"

// CountIssues tallies the finding list into the counts the penalty and cap
// rules run on. Template issues are findings tagged with a platform; a
// finding can be both severity-counted and template-counted.
func CountIssues(issues []model.IssueRecord) IssueCounts {
	var c IssueCounts
	for _, is := range issues {
		switch is.Severity {
		case model.SeverityCritical:
			c.Critical++
		case model.SeverityMajor:
			c.Major++
		}
		if is.Platform != model.PlatformNone && is.Severity != model.SeverityStrength {
			c.Template++
		}
	}
	return c
}

// GradeFor maps a final score to its letter grade.
func GradeFor(score int) model.Grade {
	switch {
	case score >= 85:
		return model.GradeA
	case score >= 75:
		return model.GradeB
	case score >= 70:
		return model.GradeC
	case score >= 60:
		return model.GradeD
	default:
		return model.GradeF
	}
}

// RiskFor maps the issue counts and final score to a business risk level.
func RiskFor(counts IssueCounts, finalScore int) model.RiskLevel {
	switch {
	case counts.Critical >= 3:
		return model.RiskCritical
	case counts.Critical >= 1 || counts.Major >= 3:
		return model.RiskHigh
	case counts.Major >= 1 || finalScore < 70:
		return model.RiskModerate
	default:
		return model.RiskLow
	}
}
