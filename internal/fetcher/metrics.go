package fetcher

import (
	"time"

	"github.com/pagegrade/pagegrade/internal/model"
)

// FallbackMetrics estimates a performance bundle from the observed page load
// time when no richer metrics source is available. The estimate is
// deterministic for a given load time.
func FallbackMetrics(loadTime time.Duration) model.PerformanceMetrics {
	secs := loadTime.Seconds()
	score := 100 - secs*20
	if score < 0 {
		score = 0
	}
	return model.PerformanceMetrics{
		PerformanceScore:  score,
		FCP:               secs,
		LCP:               secs * 1.2,
		CLS:               0.1,
		FID:               100,
		SpeedIndex:        secs * 1000,
		TotalBlockingTime: 200,
	}
}
