package analyzer

import (
	"fmt"
	"strings"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

// securityHeaders maps each expected response header to the risk described
// when it is absent.
var securityHeaders = []struct {
	name string
	risk string
}{
	{"Strict-Transport-Security", "HSTS protection missing - vulnerable to downgrade attacks"},
	{"X-Frame-Options", "clickjacking protection missing - site can be embedded maliciously"},
	{"X-Content-Type-Options", "MIME-type sniffing protection missing"},
	{"Content-Security-Policy", "XSS protection missing - vulnerable to code injection"},
	{"X-XSS-Protection", "cross-site scripting protection disabled"},
}

var mixedContentMarkers = []string{
	`src="http://`, `href="http://`, `action="http://`,
	`src='http://`, `href='http://`, `action='http://`,
}

// Security scores HTTPS usage, certificate health, security response
// headers, mixed content and exposed sensitive paths.
type Security struct{}

func (Security) Category() model.Category { return model.CategorySecurity }

func (Security) Analyze(doc *page.Document, in *model.AnalysisInput, _ model.Platform) Result {
	t := newTally(model.CategorySecurity)

	https := strings.HasPrefix(in.FinalURL, "https://")
	if https {
		t.add(20, "https in use")
		t.record(model.SeverityStrength, "Website uses HTTPS encryption")
	} else {
		t.add(-40, "no https")
		t.record(model.SeverityCritical, "No HTTPS - customer data exposed to interception")
	}

	switch {
	case !in.Security.CertChecked:
		t.add(-5, "certificate unverifiable")
		t.record(model.SeverityMinor, "Unable to verify SSL certificate")
	case in.Security.CertExpiryDays < 30:
		t.add(-30, "certificate expiring imminently")
		t.record(model.SeverityCritical,
			fmt.Sprintf("SSL certificate expires in %d days - site will break", in.Security.CertExpiryDays))
	case in.Security.CertExpiryDays < 90:
		t.add(-10, "certificate renewal due")
		t.record(model.SeverityMajor,
			fmt.Sprintf("SSL certificate expires in %d days - plan renewal", in.Security.CertExpiryDays))
	default:
		t.add(10, "certificate valid beyond 90 days")
	}

	var missing []string
	for _, h := range securityHeaders {
		if in.Headers.Get(h.name) != "" {
			t.add(5, h.name+" present")
		} else {
			t.add(-8, h.name+" missing")
			missing = append(missing, h.risk)
		}
	}
	// Surface the top three gaps; the score already reflects all of them.
	for i, risk := range missing {
		if i >= 3 {
			break
		}
		t.record(model.SeverityMinor, "Security risk: "+risk)
	}

	if https {
		found := 0
		for _, marker := range mixedContentMarkers {
			found += strings.Count(doc.LoweredHTML, marker)
		}
		if found > 0 {
			t.add(-25, "mixed content on https page")
			t.record(model.SeverityCritical,
				fmt.Sprintf("%d insecure resources on HTTPS site - browser warnings", found))
		}
	}

	if n := len(in.Security.ExposedPaths); n > 0 {
		for _, p := range in.Security.ExposedPaths {
			t.add(-15, "sensitive path exposed: "+p)
		}
		shown := in.Security.ExposedPaths
		if len(shown) > 2 {
			shown = shown[:2]
		}
		t.recordDetail(model.SeverityCritical,
			"Sensitive files exposed: "+strings.Join(shown, ", "),
			map[string]any{"paths": in.Security.ExposedPaths})
	}

	// Small bonus for a clean posture overall.
	if t.raw() >= 20 {
		t.add(10, "no major security issues")
	}

	return t.result()
}
