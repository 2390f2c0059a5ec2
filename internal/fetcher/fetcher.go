// Package fetcher performs all network I/O of an audit: the page fetch, the
// TLS certificate probe and the sensitive-path probe. Everything downstream
// of it is pure in-memory computation.
package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
)

// Fetcher retrieves a page and its security probes and assembles the
// AnalysisInput the analyzers run on.
type Fetcher struct {
	cfg       Config
	client    *http.Client
	probe     *http.Client
	pagespeed *pagespeedClient
	logger    logging.Logger
}

// New creates a Fetcher. httpClient may be nil, in which case a default
// client with the configured page timeout is constructed.
func New(cfg Config, logger logging.Logger, httpClient *http.Client) *Fetcher {
	componentLogger := logger.With(logging.Field{Key: "component", Value: "fetcher"})

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.PageTimeout}
	}

	f := &Fetcher{
		cfg:    cfg,
		client: httpClient,
		probe:  &http.Client{Timeout: cfg.PathProbeTimeout},
		logger: componentLogger,
	}
	if cfg.PageSpeedEndpoint != "" {
		f.pagespeed = newPagespeedClient(cfg.PageSpeedEndpoint, cfg.PageSpeedTimeout, componentLogger)
	}
	return f
}

// Fetch retrieves rawURL, runs the certificate and path probes, and returns
// the complete AnalysisInput. A failure to retrieve the page in a scoreable
// form is returned as *model.FetchError; probe failures degrade the probe
// fields instead of failing the fetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, websiteType model.WebsiteType) (*model.AnalysisInput, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchConnectionError, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		ferr := classify(err)
		f.logger.Warn("page fetch failed",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "kind", Value: string(ferr.Kind)},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, ferr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		f.logger.Warn("page fetch returned non-success status",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &model.FetchError{Kind: model.FetchNonSuccessStatus, StatusCode: resp.StatusCode}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchConnectionError, Err: fmt.Errorf("read body: %w", err)}
	}
	elapsed := time.Since(start)

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	metrics := FallbackMetrics(elapsed)
	if f.pagespeed != nil {
		if m, err := f.pagespeed.Metrics(ctx, finalURL); err == nil {
			metrics = m
		} else {
			f.logger.Warn("pagespeed metrics unavailable, using load-time estimate",
				logging.Field{Key: "url", Value: finalURL},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	in := &model.AnalysisInput{
		URL:          rawURL,
		WebsiteType:  websiteType,
		FinalURL:     finalURL,
		StatusCode:   resp.StatusCode,
		HTML:         string(body),
		Headers:      resp.Header,
		ResponseTime: elapsed,
		ContentBytes: len(body),
		Metrics:      metrics,
	}

	if u, err := url.Parse(finalURL); err == nil && u.Scheme == "https" {
		in.Security = f.probeCertificate(ctx, u.Host)
	}
	in.Security.ExposedPaths = f.probeSensitivePaths(ctx, finalURL)

	f.logger.Info("page fetched",
		logging.Field{Key: "url", Value: rawURL},
		logging.Field{Key: "final_url", Value: finalURL},
		logging.Field{Key: "bytes", Value: len(body)},
		logging.Field{Key: "elapsed", Value: elapsed.String()})

	return in, nil
}

// decodeBody reads the response body, converting legacy charsets to UTF-8
// based on the Content-Type header and the document itself.
func decodeBody(resp *http.Response) ([]byte, error) {
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return io.ReadAll(resp.Body)
	}
	return io.ReadAll(reader)
}

// probeCertificate connects to host:443 and inspects the leaf certificate.
// An unreachable or unverifiable endpoint yields CertChecked=false.
func (f *Fetcher) probeCertificate(ctx context.Context, host string) model.SecurityProbe {
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "443")
	}

	dialCtx, cancel := context.WithTimeout(ctx, f.cfg.CertProbeTimeout)
	defer cancel()

	dialer := &tls.Dialer{Config: &tls.Config{}}
	conn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		f.logger.Debug("certificate probe failed",
			logging.Field{Key: "host", Value: host},
			logging.Field{Key: "error", Value: err.Error()})
		return model.SecurityProbe{}
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return model.SecurityProbe{}
	}

	days := int(time.Until(certs[0].NotAfter).Hours() / 24)
	return model.SecurityProbe{CertChecked: true, CertExpiryDays: days}
}

// probeSensitivePaths requests the first few sensitive paths under the
// page's origin. A 200 or 403 answer counts as exposed; 403 still confirms
// the path exists.
func (f *Fetcher) probeSensitivePaths(ctx context.Context, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	origin := base.Scheme + "://" + base.Host

	paths := f.cfg.SensitivePaths
	if len(paths) > f.cfg.MaxPathProbes {
		paths = paths[:f.cfg.MaxPathProbes]
	}

	var exposed []string
	for _, path := range paths {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+path, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)

		resp, err := f.probe.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusForbidden {
			exposed = append(exposed, path)
			f.logger.Warn("sensitive path reachable",
				logging.Field{Key: "path", Value: path},
				logging.Field{Key: "status", Value: resp.StatusCode})
		}
	}
	return exposed
}

// classify maps a transport error onto the fetch-failure taxonomy.
func classify(err error) *model.FetchError {
	var certErr *tls.CertificateVerificationError
	var hostErr x509.HostnameError
	var authErr x509.UnknownAuthorityError
	var invErr x509.CertificateInvalidError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &authErr) || errors.As(err, &invErr) {
		return &model.FetchError{Kind: model.FetchSSLError, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &model.FetchError{Kind: model.FetchTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &model.FetchError{Kind: model.FetchTimeout, Err: err}
	}

	return &model.FetchError{Kind: model.FetchConnectionError, Err: err}
}
