// Package audit contains the pipeline turning one fetched page into a
// complete AuditResult, plus the service that runs audits end to end.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagegrade/pagegrade/internal/analyzer"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
	"github.com/pagegrade/pagegrade/internal/scoring"
)

// Fixed deterministic scores for non-scoreable outcomes.
const (
	scoreSSLError        = 3
	scoreTimeout         = 8
	scoreConnectionError = 2
	scoreNonSuccess      = 5
	scoreDegraded        = 10
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRunning   = "running"
)

// Pipeline scores one already-fetched page. It never returns an error: every
// invocation, including internal analyzer failures, yields a complete
// AuditResult.
type Pipeline struct {
	engine    *scoring.Engine
	analyzers []analyzer.Analyzer
	logger    logging.Logger
}

func NewPipeline(engine *scoring.Engine, logger logging.Logger) *Pipeline {
	return NewPipelineFor(engine, analyzer.All(), logger)
}

// NewPipelineFor builds a pipeline over an explicit analyzer set. Most
// callers want NewPipeline, which runs the full set.
func NewPipelineFor(engine *scoring.Engine, analyzers []analyzer.Analyzer, logger logging.Logger) *Pipeline {
	return &Pipeline{
		engine:    engine,
		analyzers: analyzers,
		logger:    logger.With(logging.Field{Key: "component", Value: "pipeline"}),
	}
}

// Run analyzes in and aggregates the final score. Analyzers run in parallel
// over the shared read-only document; a panic inside any analyzer degrades
// the whole audit to a fixed low score instead of propagating.
func (p *Pipeline) Run(in *model.AnalysisInput) *model.AuditResult {
	started := time.Now()

	doc, err := page.New(in.HTML, in.FinalURL)
	if err != nil {
		p.logger.Error("document parse failed",
			logging.Field{Key: "url", Value: in.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return p.degraded(in, started, "Page could not be parsed for analysis")
	}

	platform := analyzer.DetectPlatform(doc)
	if platform != model.PlatformNone {
		p.logger.Info("builder platform detected",
			logging.Field{Key: "url", Value: in.URL},
			logging.Field{Key: "platform", Value: string(platform)})
	}

	results := make([]analyzer.Result, len(p.analyzers))
	failures := make([]model.Category, len(p.analyzers))

	var wg sync.WaitGroup
	for i, a := range p.analyzers {
		wg.Add(1)
		go func(i int, a analyzer.Analyzer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					failures[i] = a.Category()
					p.logger.Error("analyzer panicked",
						logging.Field{Key: "category", Value: string(a.Category())},
						logging.Field{Key: "panic", Value: fmt.Sprint(r)})
				}
			}()
			results[i] = a.Analyze(doc, in, platform)
		}(i, a)
	}
	wg.Wait()

	for _, cat := range failures {
		if cat != "" {
			return p.degraded(in, started,
				fmt.Sprintf("Internal analysis failure in the %s check", cat))
		}
	}

	raw := make(map[model.Category]float64, len(results))
	var issues []model.IssueRecord
	for _, res := range results {
		raw[res.Category] = res.Raw
		issues = append(issues, res.Issues...)
	}

	breakdown := p.engine.Score(in.WebsiteType, raw, issues, platform)
	counts := scoring.CountIssues(issues)

	result := &model.AuditResult{
		ID:          uuid.NewString(),
		URL:         in.URL,
		WebsiteType: breakdown.WebsiteType,
		Status:      StatusCompleted,
		FinalScore:  breakdown.FinalScore,
		Grade:       scoring.GradeFor(breakdown.FinalScore),
		Risk:        scoring.RiskFor(counts, breakdown.FinalScore),
		Issues:      issues,
		Breakdown:   &breakdown,
		CreatedAt:   started,
		CompletedAt: time.Now(),
	}

	p.logger.Info("audit scored",
		logging.Field{Key: "url", Value: in.URL},
		logging.Field{Key: "score", Value: result.FinalScore},
		logging.Field{Key: "grade", Value: string(result.Grade)},
		logging.Field{Key: "critical", Value: counts.Critical},
		logging.Field{Key: "major", Value: counts.Major})

	return result
}

// FailureResult converts a fetch failure into the fixed deterministic result
// for its kind. The aggregator is never invoked on this path.
func (p *Pipeline) FailureResult(rawURL string, websiteType model.WebsiteType, ferr *model.FetchError) *model.AuditResult {
	now := time.Now()

	var score int
	var msg string
	switch ferr.Kind {
	case model.FetchSSLError:
		score = scoreSSLError
		msg = "SSL/TLS failure - visitors cannot establish a secure connection"
	case model.FetchTimeout:
		score = scoreTimeout
		msg = "Site took too long to respond and the audit timed out"
	case model.FetchConnectionError:
		score = scoreConnectionError
		msg = "Site is unreachable - connection failed"
	case model.FetchNonSuccessStatus:
		score = scoreNonSuccess
		msg = fmt.Sprintf("Site returned HTTP %d instead of a page", ferr.StatusCode)
	default:
		score = scoreConnectionError
		msg = "Site could not be fetched"
	}

	if !websiteType.Known() {
		websiteType = model.TypeWebsite
	}

	issues := []model.IssueRecord{{
		Severity: model.SeverityCritical,
		Category: model.CategorySecurity,
		Message:  msg,
	}}

	return &model.AuditResult{
		ID:          uuid.NewString(),
		URL:         rawURL,
		WebsiteType: websiteType,
		Status:      StatusFailed,
		FinalScore:  score,
		Grade:       scoring.GradeFor(score),
		Risk:        scoring.RiskFor(scoring.CountIssues(issues), score),
		Issues:      issues,
		CreatedAt:   now,
		CompletedAt: now,
	}
}

func (p *Pipeline) degraded(in *model.AnalysisInput, started time.Time, msg string) *model.AuditResult {
	websiteType := in.WebsiteType
	if !websiteType.Known() {
		websiteType = model.TypeWebsite
	}

	issues := []model.IssueRecord{{
		Severity: model.SeverityCritical,
		Category: model.CategoryContent,
		Message:  msg,
	}}

	return &model.AuditResult{
		ID:          uuid.NewString(),
		URL:         in.URL,
		WebsiteType: websiteType,
		Status:      StatusCompleted,
		FinalScore:  scoreDegraded,
		Grade:       scoring.GradeFor(scoreDegraded),
		Risk:        scoring.RiskFor(scoring.CountIssues(issues), scoreDegraded),
		Issues:      issues,
		CreatedAt:   started,
		CompletedAt: time.Now(),
	}
}
