package analyzer

import (
	"strings"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

// builderFingerprints maps each platform to the HTML substrings that
// identify it. Detection walks the list in order and the first platform
// with any matching fingerprint wins, so an audit carries at most one tag.
var builderFingerprints = []struct {
	platform model.Platform
	markers  []string
}{
	{model.PlatformGoDaddy, []string{
		"gd-marketing", "websitebuilder.secureserver", "gdwebsites",
		"godaddy-widget", "airo-", "gd-", "godaddy", "airo",
	}},
	{model.PlatformWix, []string{"wixstatic.com", "parastorage.com", "wixsite.com"}},
	{model.PlatformSquarespace, []string{"squarespacestatic", "squarespace-cdn", "sqsp.com"}},
	{model.PlatformWeebly, []string{"weeblycloud", "weebly-"}},
	{model.PlatformShopify, []string{"shopifycdn", "myshopify.com"}},
	{model.PlatformWebflow, []string{"webflow-"}},
}

// ambiguousMarkers are short enough to occur inside ordinary words
// ("cairo", "bgd-theme"), so they only count at a word boundary.
var ambiguousMarkers = map[string]bool{"gd-": true, "airo": true, "airo-": true}

// DetectPlatform scans the page for website-builder fingerprints and
// returns the first match, or PlatformNone.
func DetectPlatform(doc *page.Document) model.Platform {
	for _, fp := range builderFingerprints {
		for _, marker := range fp.markers {
			if markerPresent(doc.LoweredHTML, marker) {
				return fp.platform
			}
		}
	}
	return model.PlatformNone
}

func markerPresent(html, marker string) bool {
	if !ambiguousMarkers[marker] {
		return strings.Contains(html, marker)
	}
	for start := 0; ; {
		i := strings.Index(html[start:], marker)
		if i < 0 {
			return false
		}
		i += start
		if i == 0 || !isWordByte(html[i-1]) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return 'a' <= b && b <= 'z' || '0' <= b && b <= '9'
}
