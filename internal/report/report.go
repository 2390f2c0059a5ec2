// Package report renders an audit result into client-facing narrative text.
// All wording is templated from the computed numbers; there is no model
// inference behind it.
package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/scoring"
)

// Report is the executive summary derived from one audit.
type Report struct {
	AuditID  string `json:"audit_id"`
	URL      string `json:"url"`
	Business string `json:"business"`
	Platform string `json:"platform"`

	Score  int         `json:"score"`
	Grade  model.Grade `json:"grade"`
	Status string      `json:"status"`

	ExecutiveSummary string `json:"executive_summary"`

	CategoryAssessments map[model.Category]string `json:"category_assessments"`

	RiskLevel       model.RiskLevel `json:"risk_level"`
	RiskDescription string          `json:"risk_description"`

	BusinessConsequences []string `json:"business_consequences,omitempty"`
	PriorityActions      []string `json:"priority_actions"`
	Timeline             string   `json:"timeline"`
	NextSteps            []string `json:"next_steps"`
}

// Build renders the report for result. It only reads result; repeated calls
// produce identical output.
func Build(result *model.AuditResult) *Report {
	r := &Report{
		AuditID:  result.ID,
		URL:      result.URL,
		Business: businessName(result.URL),
		Platform: platformLabel(result),
		Score:    result.FinalScore,
		Grade:    result.Grade,
		Status:   statusFor(result.FinalScore),
	}

	counts := scoring.CountIssues(result.Issues)
	r.RiskLevel = result.Risk
	r.RiskDescription = riskDescription(counts)

	r.CategoryAssessments = categoryAssessments(result.Breakdown)
	r.ExecutiveSummary = executiveSummary(r, counts)
	r.BusinessConsequences = consequences(result, counts)
	r.PriorityActions = priorityActions(result.Breakdown)
	r.Timeline = timeline(counts)
	r.NextSteps = nextSteps(counts)

	return r
}

func businessName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	name, _, _ := strings.Cut(host, ".")
	if name == "" {
		return host
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func platformLabel(result *model.AuditResult) string {
	var platform model.Platform
	if result.Breakdown != nil {
		platform = result.Breakdown.Platform
	}
	switch platform {
	case model.PlatformGoDaddy:
		return "GoDaddy Website Builder"
	case model.PlatformWix:
		return "Wix Template"
	case model.PlatformSquarespace:
		return "Squarespace Template"
	case model.PlatformWeebly:
		return "Weebly Template"
	case model.PlatformShopify:
		return "Shopify E-commerce"
	case model.PlatformWebflow:
		return "Webflow Template"
	}
	if result.FinalScore >= 75 {
		return "Custom-developed (professional)"
	}
	return "Custom-developed"
}

func statusFor(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 70:
		return "Fair"
	case score >= 60:
		return "Needs Improvement"
	default:
		return "Critical Issues"
	}
}

func riskDescription(counts scoring.IssueCounts) string {
	switch {
	case counts.Critical >= 3:
		return fmt.Sprintf("%d critical issues threatening business credibility", counts.Critical)
	case counts.Critical >= 1 || counts.Major >= 3:
		return fmt.Sprintf("%d critical + %d major issues blocking growth", counts.Critical, counts.Major)
	case counts.Major >= 1:
		return fmt.Sprintf("%d major issues limiting potential", counts.Major)
	default:
		return "Minor optimizations available"
	}
}

// categoryAssessments words each category's normalized score in three tiers.
func categoryAssessments(breakdown *model.ScoreBreakdown) map[model.Category]string {
	if breakdown == nil {
		return nil
	}
	phrases := map[model.Category][3]string{
		model.CategorySecurity: {
			"maintains robust security protocols",
			"requires security enhancements",
			"has critical security vulnerabilities requiring immediate attention",
		},
		model.CategoryPerformance: {
			"operates with optimal technical performance",
			"demonstrates acceptable loading speeds",
			"experiences performance issues affecting user engagement",
		},
		model.CategorySEO: {
			"achieves excellent search engine visibility",
			"shows potential for improved search rankings",
			"faces significant search engine optimization challenges",
		},
		model.CategoryMobile: {
			"delivers a solid mobile experience",
			"handles mobile visitors adequately",
			"fails to serve mobile visitors properly",
		},
		model.CategoryContent: {
			"presents substantial, well-sized content",
			"carries enough content to work with",
			"lacks the content depth visitors and search engines expect",
		},
		model.CategoryUIUX: {
			"delivers exceptional user experience",
			"provides functional but improvable user experience",
			"encounters serious usability and design issues",
		},
	}

	out := make(map[model.Category]string, len(model.Categories))
	for _, cat := range model.Categories {
		score := breakdown.Categories[cat].NormalizedScore
		tier := 2
		if score >= 80 {
			tier = 0
		} else if score >= 60 {
			tier = 1
		}
		out[cat] = phrases[cat][tier]
	}
	return out
}

func executiveSummary(r *Report, counts scoring.IssueCounts) string {
	var assessment string
	switch {
	case r.Score >= 85:
		assessment = fmt.Sprintf("demonstrates exceptional digital excellence with a grade %s performance. The site represents industry best practices and provides a strong competitive advantage.", r.Grade)
	case r.Score >= 75:
		assessment = fmt.Sprintf("shows solid performance with a grade %s rating, indicating a well-maintained digital presence. Strategic optimizations could elevate it to industry-leading status.", r.Grade)
	case r.Score >= 70:
		assessment = fmt.Sprintf("achieves a grade %s performance with room for strategic improvement. The foundation is solid, but targeted enhancements could significantly boost its competitive position.", r.Grade)
	case r.Score >= 60:
		assessment = fmt.Sprintf("currently scores grade %s, indicating several areas requiring attention. Addressing these issues could substantially improve online effectiveness and customer engagement.", r.Grade)
	default:
		assessment = fmt.Sprintf("faces significant challenges with a grade %s performance. Immediate action is recommended to address critical issues that may be impacting customer trust and business growth.", r.Grade)
	}

	var support string
	switch {
	case r.Score < 60:
		support = "currently hindering"
	case r.Score < 75:
		support = "not fully supporting"
	default:
		support = "effectively supporting"
	}

	total := counts.Critical + counts.Major
	return fmt.Sprintf(
		"The %s website for %s %s It %s, %s, %s, and %s. "+
			"Our analysis identified %d significant findings: %d requiring immediate attention and %d representing growth opportunities. "+
			"Overall, the website is %s the business's goals.",
		strings.ToLower(r.Platform), r.Business, assessment,
		r.CategoryAssessments[model.CategorySecurity],
		r.CategoryAssessments[model.CategorySEO],
		r.CategoryAssessments[model.CategoryUIUX],
		r.CategoryAssessments[model.CategoryPerformance],
		total, counts.Critical, counts.Major, support)
}

func consequences(result *model.AuditResult, counts scoring.IssueCounts) []string {
	var out []string
	if counts.Critical > 0 {
		out = append(out,
			"Users may not trust the business",
			"Search engines may penalize the ranking")
	}
	if counts.Major > 0 {
		out = append(out,
			"Potential customers may leave before converting",
			"Mobile users may have a poor experience")
	}

	var platform model.Platform
	if result.Breakdown != nil {
		platform = result.Breakdown.Platform
	}
	if platform == model.PlatformGoDaddy {
		out = append(out, "Template-based design looks unprofessional to clients")
	}
	for _, is := range result.Issues {
		if is.Severity == model.SeverityCritical && strings.Contains(is.Message, "HTTPS") {
			out = append(out, "Browsers show a 'Not Secure' warning to visitors")
			break
		}
	}
	return out
}

// priorityActions lists one action per category scoring under 70.
func priorityActions(breakdown *model.ScoreBreakdown) []string {
	if breakdown == nil {
		return []string{"Re-run the audit once the site is reachable to get a full assessment"}
	}

	actionFor := map[model.Category]string{
		model.CategorySecurity:    "Security Enhancement - Address security vulnerabilities to protect the business and its customers",
		model.CategorySEO:         "SEO Optimization - Improve search engine visibility to attract more customers",
		model.CategoryPerformance: "Performance Boost - Speed up the website to reduce bounce rates",
		model.CategoryUIUX:        "User Experience - Enhance design and usability for better conversions",
		model.CategoryMobile:      "Mobile Readiness - Make the site work properly on phones and tablets",
		model.CategoryContent:     "Content Expansion - Add the depth of content visitors and search engines expect",
	}

	var out []string
	for _, cat := range model.Categories {
		if breakdown.Categories[cat].NormalizedScore < 70 {
			out = append(out, actionFor[cat])
		}
	}
	if len(out) == 0 {
		out = append(out, "Optimization - Fine-tune existing strengths for maximum performance")
	}
	return out
}

func timeline(counts scoring.IssueCounts) string {
	switch {
	case counts.Critical > 0:
		return "Immediate action required - address critical issues within 1-2 weeks"
	case counts.Major > 0:
		return "Priority improvements - implement within 30 days for best results"
	default:
		return "Strategic enhancements - plan improvements over 60-90 days"
	}
}

func nextSteps(counts scoring.IssueCounts) []string {
	first := "Focus on the major issues first"
	if counts.Critical > 0 {
		first = "Address all critical issues immediately"
	}
	return []string{
		first,
		"Implement security best practices (HTTPS, security headers)",
		"Optimize for mobile users and page speed",
	}
}
