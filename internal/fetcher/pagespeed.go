package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
)

// pagespeedClient queries a PageSpeed Insights compatible endpoint for the
// performance metrics bundle. It exists only when an endpoint is configured;
// any failure makes the fetcher fall back to the load-time estimate.
type pagespeedClient struct {
	endpoint string
	client   *http.Client
	logger   logging.Logger
}

func newPagespeedClient(endpoint string, timeout time.Duration, logger logging.Logger) *pagespeedClient {
	return &pagespeedClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Metrics runs the endpoint's mobile strategy against pageURL and maps the
// lighthouse audit values into the metrics bundle. Paint timings arrive in
// milliseconds and are converted to seconds; TotalBlockingTime and FID stay
// in milliseconds.
func (c *pagespeedClient) Metrics(ctx context.Context, pageURL string) (model.PerformanceMetrics, error) {
	reqURL := c.endpoint + "?url=" + url.QueryEscape(pageURL) + "&strategy=mobile"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.PerformanceMetrics{}, fmt.Errorf("build pagespeed request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return model.PerformanceMetrics{}, fmt.Errorf("pagespeed request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.PerformanceMetrics{}, fmt.Errorf("pagespeed returned status %d", resp.StatusCode)
	}

	var body struct {
		LighthouseResult struct {
			Categories struct {
				Performance struct {
					Score float64 `json:"score"`
				} `json:"performance"`
			} `json:"categories"`
			Audits map[string]struct {
				NumericValue float64 `json:"numericValue"`
			} `json:"audits"`
		} `json:"lighthouseResult"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.PerformanceMetrics{}, fmt.Errorf("decode pagespeed response: %w", err)
	}

	audits := body.LighthouseResult.Audits
	numeric := func(key string) float64 { return audits[key].NumericValue }

	return model.PerformanceMetrics{
		PerformanceScore:  body.LighthouseResult.Categories.Performance.Score * 100,
		FCP:               numeric("first-contentful-paint") / 1000,
		LCP:               numeric("largest-contentful-paint") / 1000,
		CLS:               numeric("cumulative-layout-shift"),
		FID:               numeric("first-input-delay"),
		SpeedIndex:        numeric("speed-index") / 1000,
		TotalBlockingTime: numeric("total-blocking-time"),
	}, nil
}
