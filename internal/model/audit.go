package model

import (
	"net/http"
	"time"
)

// WebsiteType selects the weight profile used when aggregating category
// scores. Unknown values fall back to TypeWebsite at scoring time.
type WebsiteType string

const (
	TypeWebsite      WebsiteType = "website"
	TypeLandingPage  WebsiteType = "landing-page"
	TypeECommerce    WebsiteType = "e-commerce"
	TypeSearchEngine WebsiteType = "search-engine"
	TypeBlog         WebsiteType = "blog"
	TypePortfolio    WebsiteType = "portfolio"
	TypeWebApp       WebsiteType = "web-app"
	TypeCorporate    WebsiteType = "corporate"
)

// Known reports whether t is one of the declared website types.
func (t WebsiteType) Known() bool {
	switch t {
	case TypeWebsite, TypeLandingPage, TypeECommerce, TypeSearchEngine,
		TypeBlog, TypePortfolio, TypeWebApp, TypeCorporate:
		return true
	}
	return false
}

// Category identifies one scoring dimension.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategorySEO         Category = "seo"
	CategoryMobile      Category = "mobile"
	CategoryContent     Category = "content"
	CategoryUIUX        Category = "uiux"
)

// Categories lists every scoring category in a fixed order. The order is
// used wherever a deterministic iteration matters (breakdowns, reports).
var Categories = []Category{
	CategorySecurity,
	CategoryPerformance,
	CategorySEO,
	CategoryMobile,
	CategoryContent,
	CategoryUIUX,
}

// Severity classifies a finding. Strength is a positive finding; the other
// three are issues in decreasing order of impact.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityStrength Severity = "strength"
)

// Platform is a detected website-builder fingerprint. At most one platform
// is attached to an audit; PlatformNone means no builder was recognized.
type Platform string

const (
	PlatformNone        Platform = ""
	PlatformGoDaddy     Platform = "godaddy"
	PlatformWix         Platform = "wix"
	PlatformSquarespace Platform = "squarespace"
	PlatformWeebly      Platform = "weebly"
	PlatformShopify     Platform = "shopify"
	PlatformWebflow     Platform = "webflow"
)

// IssueRecord is one structured finding produced by an analyzer. Ordering
// within a category is insertion order; duplicates are allowed and counted.
type IssueRecord struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`

	// Platform is set on template/builder-related findings so the
	// classifier can count them without message matching.
	Platform Platform `json:"platform,omitempty"`

	// Detail optionally carries structured context for the finding
	// (e.g. missing header names, offending image sources).
	Detail map[string]any `json:"detail,omitempty"`
}

// PerformanceMetrics is the externally supplied metrics bundle. Timings are
// seconds except TotalBlockingTime and FID which are milliseconds, matching
// the upstream metric source.
type PerformanceMetrics struct {
	PerformanceScore  float64 `json:"performance_score"`
	FCP               float64 `json:"fcp"`
	LCP               float64 `json:"lcp"`
	CLS               float64 `json:"cls"`
	FID               float64 `json:"fid"`
	SpeedIndex        float64 `json:"speed_index"`
	TotalBlockingTime float64 `json:"total_blocking_time"`
}

// SecurityProbe carries the results of the upstream TLS and path probes.
type SecurityProbe struct {
	// CertChecked is false when the probe could not complete; the
	// analyzer scores that as an unverifiable certificate.
	CertChecked    bool `json:"cert_checked"`
	CertExpiryDays int  `json:"cert_expiry_days"`

	// ExposedPaths are sensitive paths the probe found reachable
	// (HTTP 200 or 403).
	ExposedPaths []string `json:"exposed_paths,omitempty"`
}

// AnalysisInput is everything the analyzers consume for one audit.
// It is built once by the pipeline and treated as immutable.
type AnalysisInput struct {
	URL         string      `json:"url"`
	WebsiteType WebsiteType `json:"website_type"`

	// FinalURL is the URL after redirects; the scheme check runs
	// against it, not the requested URL.
	FinalURL     string        `json:"final_url"`
	StatusCode   int           `json:"status_code"`
	HTML         string        `json:"-"`
	Headers      http.Header   `json:"-"`
	ResponseTime time.Duration `json:"response_time"`
	ContentBytes int           `json:"content_bytes"`

	Security SecurityProbe      `json:"security"`
	Metrics  PerformanceMetrics `json:"metrics"`
}

// CategoryResult records one category's normalized score and its weighted
// contribution to the base score.
type CategoryResult struct {
	NormalizedScore float64 `json:"normalized_score"`
	Weight          float64 `json:"weight"`
	Contribution    float64 `json:"contribution"`
}

// Penalties holds each penalty term applied during aggregation.
type Penalties struct {
	Critical float64 `json:"critical"`
	Major    float64 `json:"major"`
	Template float64 `json:"template"`
	Total    float64 `json:"total"`
}

// ScoreBreakdown records every intermediate value of the aggregation so the
// final score can be re-derived from the breakdown alone:
//
//	base_weighted_score - penalties.total + cap_adjustment ≈ final_score
type ScoreBreakdown struct {
	Categories map[Category]CategoryResult `json:"categories"`
	Penalties  Penalties                   `json:"penalties"`

	BaseWeightedScore float64 `json:"base_weighted_score"`
	PreCapScore       float64 `json:"pre_cap_score"`
	CapAdjustment     float64 `json:"cap_adjustment"`
	FinalScore        int     `json:"final_score"`

	WebsiteType    WebsiteType `json:"website_type"`
	CriticalIssues int         `json:"critical_issues"`
	MajorIssues    int         `json:"major_issues"`
	TemplateIssues int         `json:"template_issues"`
	Platform       Platform    `json:"platform,omitempty"`

	// AppliedCaps names the quality caps that actually lowered the
	// score, in application order.
	AppliedCaps []string `json:"applied_caps,omitempty"`
}

// Grade is the letter grade derived from the final score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// RiskLevel is the coarse business-risk classification.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskModerate RiskLevel = "MODERATE"
	RiskLow      RiskLevel = "LOW"
)

// AuditResult is the complete outcome of one audit invocation. Every
// invocation of the pipeline yields one, including failure paths.
type AuditResult struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	WebsiteType WebsiteType `json:"website_type"`
	Status      string      `json:"status"`

	FinalScore int       `json:"final_score"`
	Grade      Grade     `json:"grade"`
	Risk       RiskLevel `json:"risk_level"`

	Issues    []IssueRecord   `json:"issues"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Strengths returns the positive findings in insertion order.
func (r *AuditResult) Strengths() []IssueRecord {
	var out []IssueRecord
	for _, is := range r.Issues {
		if is.Severity == SeverityStrength {
			out = append(out, is)
		}
	}
	return out
}

// Problems returns the non-strength findings in insertion order.
func (r *AuditResult) Problems() []IssueRecord {
	var out []IssueRecord
	for _, is := range r.Issues {
		if is.Severity != SeverityStrength {
			out = append(out, is)
		}
	}
	return out
}
