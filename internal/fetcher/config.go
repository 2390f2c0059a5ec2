package fetcher

import "time"

type Config struct {
	PageTimeout      time.Duration
	CertProbeTimeout time.Duration
	PathProbeTimeout time.Duration

	UserAgent string

	// PageSpeedEndpoint, when set, is queried for real performance
	// metrics (Google's public endpoint works without a key:
	// https://www.googleapis.com/pagespeedonline/v5/runPagespeed).
	// When empty, or whenever the query fails, metrics are estimated
	// from the observed load time instead.
	PageSpeedEndpoint string
	PageSpeedTimeout  time.Duration

	// SensitivePaths are probed for accidental exposure. Only the first
	// MaxPathProbes are requested to keep the audit polite.
	SensitivePaths []string
	MaxPathProbes  int
}

func DefaultConfig() Config {
	return Config{
		PageTimeout:      15 * time.Second,
		CertProbeTimeout: 10 * time.Second,
		PathProbeTimeout: 5 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		PageSpeedTimeout: 30 * time.Second,
		SensitivePaths: []string{
			"/.env", "/.git/", "/admin/", "/wp-admin/", "/wp-config.php",
			"/config/", "/backup/", "/database/", "/.htaccess",
		},
		MaxPathProbes: 3,
	}
}
