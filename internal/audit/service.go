package audit

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagegrade/pagegrade/internal/fetcher"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/store"
)

var ErrInvalidURL = errors.New("audit: url must be absolute http or https")

// Coarse progress stages reported while an audit runs.
const (
	StageFetching  = "fetching"
	StageAnalyzing = "analyzing"
)

// ProgressNotifier receives audit lifecycle updates. The websocket hub
// implements it; a no-op implementation is fine.
type ProgressNotifier interface {
	AuditUpdated(result *model.AuditResult)

	// AuditStage reports that a running audit entered a stage.
	AuditStage(auditID string, stage string)
}

// NopNotifier discards updates.
type NopNotifier struct{}

func (NopNotifier) AuditUpdated(*model.AuditResult) {}
func (NopNotifier) AuditStage(string, string) {}

// Service runs complete audits: fetch, analyze, score, persist, notify.
// Audits share nothing, so any number can run concurrently.
type Service struct {
	fetcher  *fetcher.Fetcher
	pipeline *Pipeline
	store    store.Store
	notifier ProgressNotifier
	logger   logging.Logger

	// auditTimeout bounds one full audit including all probes.
	auditTimeout time.Duration

	wg sync.WaitGroup
}

func NewService(f *fetcher.Fetcher, p *Pipeline, st store.Store, notifier ProgressNotifier, logger logging.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		fetcher:      f,
		pipeline:     p,
		store:        st,
		notifier:     notifier,
		logger:       logger.With(logging.Field{Key: "component", Value: "audit"}),
		auditTimeout: 60 * time.Second,
	}
}

// ValidateURL rejects inputs the fetcher cannot meaningfully attempt.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

// Run performs one audit synchronously and persists the result. It always
// returns a complete AuditResult when the URL is valid; fetch failures are
// scored, not surfaced as errors.
func (s *Service) Run(ctx context.Context, rawURL string, websiteType model.WebsiteType) (*model.AuditResult, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	result, html := s.execute(ctx, id, rawURL, websiteType)
	result.ID = id

	if err := s.store.Create(ctx, result, html); err != nil {
		return nil, err
	}
	s.notifier.AuditUpdated(result)
	return result, nil
}

// Submit starts an audit asynchronously and returns the running placeholder
// record. The completed result replaces it in the store and is broadcast to
// the notifier.
func (s *Service) Submit(rawURL string, websiteType model.WebsiteType) (*model.AuditResult, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if !websiteType.Known() {
		websiteType = model.TypeWebsite
	}

	placeholder := &model.AuditResult{
		ID:          uuid.NewString(),
		URL:         rawURL,
		WebsiteType: websiteType,
		Status:      StatusRunning,
		Issues:      []model.IssueRecord{},
		CreatedAt:   time.Now(),
		CompletedAt: time.Now(),
	}
	if err := s.store.Create(context.Background(), placeholder, nil); err != nil {
		return nil, err
	}
	s.notifier.AuditUpdated(placeholder)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.auditTimeout)
		defer cancel()

		result, html := s.execute(ctx, placeholder.ID, rawURL, websiteType)
		result.ID = placeholder.ID
		result.CreatedAt = placeholder.CreatedAt

		if err := s.store.Update(context.Background(), result, html); err != nil {
			s.logger.Error("failed to persist audit result",
				logging.Field{Key: "audit_id", Value: result.ID},
				logging.Field{Key: "error", Value: err.Error()})
			return
		}
		s.notifier.AuditUpdated(result)
	}()

	return placeholder, nil
}

// Wait blocks until all in-flight audits have finished. Used on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) execute(ctx context.Context, auditID, rawURL string, websiteType model.WebsiteType) (*model.AuditResult, []byte) {
	s.notifier.AuditStage(auditID, StageFetching)
	in, err := s.fetcher.Fetch(ctx, rawURL, websiteType)
	if err != nil {
		var ferr *model.FetchError
		if !errors.As(err, &ferr) {
			ferr = &model.FetchError{Kind: model.FetchConnectionError, Err: err}
		}
		return s.pipeline.FailureResult(rawURL, websiteType, ferr), nil
	}
	s.notifier.AuditStage(auditID, StageAnalyzing)
	return s.pipeline.Run(in), []byte(in.HTML)
}
