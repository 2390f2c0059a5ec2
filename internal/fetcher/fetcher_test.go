package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagegrade/pagegrade/internal/fetcher"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
)

func testConfig() fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.PageTimeout = 5 * time.Second
	cfg.PathProbeTimeout = 2 * time.Second
	return cfg
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><head><title>hi</title></head><body>ok</body></html>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	f := fetcher.New(testConfig(), logging.Nop{}, ts.Client())
	in, err := f.Fetch(context.Background(), ts.URL+"/", model.TypeWebsite)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if in.StatusCode != 200 {
		t.Errorf("status = %d", in.StatusCode)
	}
	if !strings.Contains(in.HTML, "<title>hi</title>") {
		t.Errorf("body not captured: %q", in.HTML)
	}
	if in.ContentBytes != len(in.HTML) {
		t.Errorf("content bytes %d != html length %d", in.ContentBytes, len(in.HTML))
	}
	if in.Metrics.PerformanceScore <= 0 || in.Metrics.FCP <= 0 {
		t.Errorf("fallback metrics not populated: %+v", in.Metrics)
	}
	if len(in.Security.ExposedPaths) != 0 {
		t.Errorf("no sensitive paths should be exposed, got %v", in.Security.ExposedPaths)
	}
	if !strings.Contains(gotUA, "Chrome") {
		t.Errorf("expected browser user agent, got %q", gotUA)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/landing", http.StatusMovedPermanently)
		case "/landing":
			_, _ = w.Write([]byte(`<html>landing</html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	f := fetcher.New(testConfig(), logging.Nop{}, ts.Client())
	in, err := f.Fetch(context.Background(), ts.URL+"/", model.TypeWebsite)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasSuffix(in.FinalURL, "/landing") {
		t.Errorf("final URL should be the redirect target, got %q", in.FinalURL)
	}
	if in.URL != ts.URL+"/" {
		t.Errorf("original URL should be preserved, got %q", in.URL)
	}
}

func TestFetch_SensitivePathsExposed(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`<html>ok</html>`))
		case "/.env":
			_, _ = w.Write([]byte("SECRET=1"))
		case "/.git/":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	f := fetcher.New(testConfig(), logging.Nop{}, ts.Client())
	in, err := f.Fetch(context.Background(), ts.URL+"/", model.TypeWebsite)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// 200 and 403 both count; /admin/ answers 404 and does not.
	want := []string{"/.env", "/.git/"}
	if len(in.Security.ExposedPaths) != len(want) {
		t.Fatalf("exposed paths = %v, want %v", in.Security.ExposedPaths, want)
	}
	for i, p := range want {
		if in.Security.ExposedPaths[i] != p {
			t.Errorf("exposed[%d] = %q, want %q", i, in.Security.ExposedPaths[i], p)
		}
	}
}

func TestFetch_ProbesAtMostConfiguredPaths(t *testing.T) {
	t.Parallel()
	probed := map[string]bool{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`<html>ok</html>`))
			return
		}
		probed[r.URL.Path] = true
		http.NotFound(w, r)
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.MaxPathProbes = 2
	f := fetcher.New(cfg, logging.Nop{}, ts.Client())
	if _, err := f.Fetch(context.Background(), ts.URL+"/", model.TypeWebsite); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(probed) != 2 {
		t.Errorf("expected 2 path probes, got %d: %v", len(probed), probed)
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	f := fetcher.New(testConfig(), logging.Nop{}, ts.Client())
	_, err := f.Fetch(context.Background(), ts.URL+"/", model.TypeWebsite)

	var ferr *model.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *model.FetchError, got %v", err)
	}
	if ferr.Kind != model.FetchNonSuccessStatus || ferr.StatusCode != 500 {
		t.Errorf("classified as %s/%d, want %s/500", ferr.Kind, ferr.StatusCode, model.FetchNonSuccessStatus)
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := ts.URL
	ts.Close()

	f := fetcher.New(testConfig(), logging.Nop{}, nil)
	_, err := f.Fetch(context.Background(), addr+"/", model.TypeWebsite)

	var ferr *model.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *model.FetchError, got %v", err)
	}
	if ferr.Kind != model.FetchConnectionError {
		t.Errorf("classified as %s, want %s", ferr.Kind, model.FetchConnectionError)
	}
}

func TestFetch_Timeout(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.PageTimeout = 50 * time.Millisecond
	f := fetcher.New(cfg, logging.Nop{}, nil)
	_, err := f.Fetch(context.Background(), ts.URL+"/", model.TypeWebsite)

	var ferr *model.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *model.FetchError, got %v", err)
	}
	if ferr.Kind != model.FetchTimeout {
		t.Errorf("classified as %s, want %s", ferr.Kind, model.FetchTimeout)
	}
}

func TestFetch_PageSpeedMetrics(t *testing.T) {
	t.Parallel()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer page.Close()

	var gotQuery string
	psi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"lighthouseResult": {
				"categories": {"performance": {"score": 0.92}},
				"audits": {
					"first-contentful-paint": {"numericValue": 1800},
					"largest-contentful-paint": {"numericValue": 2500},
					"cumulative-layout-shift": {"numericValue": 0.05},
					"first-input-delay": {"numericValue": 70},
					"speed-index": {"numericValue": 3100},
					"total-blocking-time": {"numericValue": 150}
				}
			}
		}`))
	}))
	defer psi.Close()

	cfg := testConfig()
	cfg.PageSpeedEndpoint = psi.URL
	f := fetcher.New(cfg, logging.Nop{}, page.Client())

	in, err := f.Fetch(context.Background(), page.URL+"/", model.TypeWebsite)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(gotQuery, "url=") || !strings.Contains(gotQuery, "strategy=mobile") {
		t.Errorf("pagespeed query = %q, want url and mobile strategy", gotQuery)
	}
	m := in.Metrics
	if m.PerformanceScore != 92 {
		t.Errorf("PerformanceScore = %v, want 92", m.PerformanceScore)
	}
	if m.FCP != 1.8 || m.LCP != 2.5 || m.SpeedIndex != 3.1 {
		t.Errorf("paint timings not converted to seconds: %+v", m)
	}
	if m.CLS != 0.05 || m.FID != 70 || m.TotalBlockingTime != 150 {
		t.Errorf("raw-valued metrics wrong: %+v", m)
	}
}

func TestFetch_PageSpeedFailureFallsBack(t *testing.T) {
	t.Parallel()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer page.Close()

	psi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	defer psi.Close()

	cfg := testConfig()
	cfg.PageSpeedEndpoint = psi.URL
	f := fetcher.New(cfg, logging.Nop{}, page.Client())

	in, err := f.Fetch(context.Background(), page.URL+"/", model.TypeWebsite)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// The load-time estimate carries fixed FID and blocking-time defaults.
	if in.Metrics.FID != 100 || in.Metrics.TotalBlockingTime != 200 || in.Metrics.CLS != 0.1 {
		t.Errorf("expected load-time estimate, got %+v", in.Metrics)
	}
}

func TestFallbackMetrics(t *testing.T) {
	t.Parallel()
	m := fetcher.FallbackMetrics(2 * time.Second)
	if m.PerformanceScore != 60 {
		t.Errorf("performance score = %v, want 60", m.PerformanceScore)
	}
	if m.FCP != 2 || m.LCP != 2.4 {
		t.Errorf("fcp/lcp = %v/%v, want 2/2.4", m.FCP, m.LCP)
	}
	if m.SpeedIndex != 2000 {
		t.Errorf("speed index = %v, want 2000", m.SpeedIndex)
	}

	slow := fetcher.FallbackMetrics(10 * time.Second)
	if slow.PerformanceScore != 0 {
		t.Errorf("score must floor at 0, got %v", slow.PerformanceScore)
	}
}
