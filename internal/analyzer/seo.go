package analyzer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

// aiServices maps a service label to the page/script substrings that
// indicate an integration with it.
var aiServices = []struct {
	name     string
	keywords []string
}{
	{"ElevenLabs", []string{"elevenlabs", "eleven labs", "text-to-speech ai", "voice synthesis"}},
	{"OpenAI", []string{"openai", "gpt-", "chatgpt", "dall-e", "whisper"}},
	{"Anthropic", []string{"anthropic", "claude"}},
	{"Google AI", []string{"google ai", "bard", "gemini", "tensorflow"}},
	{"AWS AI", []string{"aws ai", "amazon ai", "sagemaker", "rekognition", "polly"}},
	{"Azure AI", []string{"azure ai", "cognitive services", "azure openai"}},
	{"Hugging Face", []string{"hugging face", "transformers", "diffusers"}},
	{"Stability AI", []string{"stability ai", "stable diffusion"}},
	{"Cohere", []string{"cohere", "co:here"}},
	{"Replicate", []string{"replicate.com", "replicate ai"}},
}

// SEO scores title, meta, heading, structured-data, canonical, social-tag,
// language, URL-structure and internal-linking signals.
type SEO struct{}

func (SEO) Category() model.Category { return model.CategorySEO }

func (SEO) Analyze(doc *page.Document, in *model.AnalysisInput, _ model.Platform) Result {
	t := newTally(model.CategorySEO)

	scoreTitle(t, doc)
	scoreMetaDescription(t, doc)
	scoreH1(t, doc)
	scoreImageAlts(t, doc)
	scoreStructuredData(t, doc)
	scoreSocialTags(t, doc)
	scoreAIServices(t, doc)
	scoreCanonical(t, doc, in.FinalURL)
	scoreRobots(t, doc)

	if strings.HasPrefix(in.FinalURL, "https://") {
		t.add(10, "https enabled")
		t.record(model.SeverityStrength, "HTTPS enabled")
	} else {
		t.add(-25, "no https")
		t.record(model.SeverityCritical, "Not using HTTPS - major SEO penalty")
	}

	scoreViewport(t, doc)

	if doc.Lang != "" {
		t.add(5, "language attribute set")
		t.record(model.SeverityStrength, "Language attribute specified")
	} else {
		t.add(-5, "language attribute missing")
		t.record(model.SeverityMinor, "Missing language attribute on HTML tag")
	}

	if doc.HreflangCount > 0 {
		t.add(15, "hreflang present")
		t.record(model.SeverityStrength, "International SEO (hreflang) implemented")
	}

	scoreURLStructure(t, in.FinalURL)
	scoreHeadingHierarchy(t, doc)
	scoreInternalLinks(t, doc)

	return t.result()
}

func scoreTitle(t *tally, doc *page.Document) {
	if !doc.HasTitle {
		t.add(-25, "title missing")
		t.record(model.SeverityCritical, "Missing or empty title tag")
		return
	}
	n := len(doc.Title)
	switch {
	case n >= 30 && n <= 60:
		t.add(25, "ideal title length")
		t.record(model.SeverityStrength, fmt.Sprintf("Perfect title length (%d chars)", n))
	case n >= 15 && n <= 80:
		t.add(15, "acceptable title length")
		t.record(model.SeverityStrength, fmt.Sprintf("Good title tag length (%d chars)", n))
	default:
		t.add(-10, "poor title length")
		t.record(model.SeverityMajor, fmt.Sprintf("Poor title length (%d chars)", n))
	}
}

func scoreMetaDescription(t *tally, doc *page.Document) {
	if !doc.HasMetaDescription {
		t.add(-20, "meta description missing")
		t.record(model.SeverityCritical, "Missing meta description")
		return
	}
	n := len(doc.MetaDescription)
	switch {
	case n >= 140 && n <= 160:
		t.add(20, "ideal meta description length")
		t.record(model.SeverityStrength, "Perfect meta description length")
	case n >= 120 && n <= 180:
		t.add(15, "acceptable meta description length")
		t.record(model.SeverityStrength, "Good meta description length")
	default:
		t.add(5, "meta description present but suboptimal")
		t.recordDetail(model.SeverityMinor,
			fmt.Sprintf("Meta description length needs optimization: %d chars (optimal: 140-160)", n),
			map[string]any{"length": n, "optimal_range": "140-160"})
	}
}

func scoreH1(t *tally, doc *page.Document) {
	var h1s []string
	for _, h := range doc.Headings {
		if h.Level == 1 {
			h1s = append(h1s, h.Text)
		}
	}
	switch {
	case len(h1s) == 1 && len(h1s[0]) >= 10:
		t.add(20, "single descriptive h1")
		t.record(model.SeverityStrength, "Perfect H1 structure")
	case len(h1s) == 1:
		t.add(10, "single but short h1")
		t.record(model.SeverityMinor, "H1 is too short")
	case len(h1s) > 1:
		t.add(-15, "multiple h1 tags")
		t.record(model.SeverityMajor,
			fmt.Sprintf("Multiple H1 tags (%d) confuse search engines", len(h1s)))
	default:
		t.add(-20, "h1 missing")
		t.record(model.SeverityCritical, "Missing H1 heading")
	}
}

func scoreImageAlts(t *tally, doc *page.Document) {
	total := len(doc.Images)
	if total == 0 {
		return
	}
	withAlt := doc.ImagesWithAlt()
	ratio := float64(withAlt) / float64(total)
	switch {
	case ratio >= 0.9:
		t.add(15, "excellent alt-text coverage")
		t.record(model.SeverityStrength,
			fmt.Sprintf("Great image accessibility (%d/%d have alt text)", withAlt, total))
	case ratio >= 0.7:
		t.add(10, "good alt-text coverage")
		t.record(model.SeverityStrength, "Good image accessibility")
	default:
		t.add(-10, "poor alt-text coverage")
		var missing []string
		for _, img := range doc.Images {
			if img.Alt == "" {
				missing = append(missing, img.Src)
				if len(missing) == 3 {
					break
				}
			}
		}
		t.recordDetail(model.SeverityMajor,
			fmt.Sprintf("Poor accessibility - only %d/%d images have alt text", withAlt, total),
			map[string]any{"missing_alt_images": missing})
	}
}

func scoreStructuredData(t *tally, doc *page.Document) {
	types := schemaTypes(doc.JSONLD)
	switch {
	case len(types) > 0:
		t.add(20, "json-ld schema present")
		t.record(model.SeverityStrength,
			"Rich schema markup ("+strings.Join(types, ", ")+")")
	case doc.ItemtypeCount > 0:
		t.add(10, "microdata schema present")
		t.record(model.SeverityStrength, "Basic schema markup found")
	default:
		t.add(-10, "no structured data")
		t.record(model.SeverityMinor, "Missing structured data/schema markup")
	}
}

// schemaTypes extracts the distinct @type values from JSON-LD blocks,
// tolerating both single objects and arrays. Unparseable blocks are skipped.
func schemaTypes(blocks []string) []string {
	seen := map[string]bool{}
	collect := func(v any) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		if typ, ok := obj["@type"].(string); ok && typ != "" {
			seen[typ] = true
		}
	}
	for _, block := range blocks {
		var v any
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			continue
		}
		switch data := v.(type) {
		case map[string]any:
			collect(data)
		case []any:
			for _, item := range data {
				collect(item)
			}
		}
	}
	types := make([]string, 0, len(seen))
	for typ := range seen {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

func scoreSocialTags(t *tally, doc *page.Document) {
	essential := []string{"title", "description", "image", "url"}
	var missing []string
	for _, key := range essential {
		if doc.OpenGraph[key] == "" {
			missing = append(missing, key)
		}
	}
	switch {
	case len(missing) == 0 && len(doc.Twitter) > 0:
		t.add(15, "complete social tags")
		t.record(model.SeverityStrength, "Complete social media optimization")
	case len(doc.OpenGraph) > 0 || len(doc.Twitter) > 0:
		t.add(5, "partial social tags")
		t.record(model.SeverityStrength, "Social media tags present")
	default:
		t.add(-5, "no social tags")
		t.record(model.SeverityMinor, "Missing social media optimization (Open Graph/Twitter Cards)")
	}
}

func scoreAIServices(t *tally, doc *page.Document) {
	haystack := strings.ToLower(doc.Text) + " " + doc.ScriptText
	var detected []string
	for _, svc := range aiServices {
		for _, kw := range svc.keywords {
			if strings.Contains(haystack, kw) {
				detected = append(detected, svc.name)
				break
			}
		}
	}
	switch {
	case len(detected) >= 3:
		t.add(20, "multiple ai integrations")
		t.record(model.SeverityStrength,
			"Advanced AI integration detected ("+strings.Join(detected, ", ")+")")
	case len(detected) == 2:
		t.add(15, "ai integrations")
		t.record(model.SeverityStrength,
			"Good AI services integration ("+strings.Join(detected, ", ")+")")
	case len(detected) == 1:
		t.add(10, "ai integration")
		t.record(model.SeverityStrength,
			"AI-powered features detected ("+detected[0]+")")
	}
}

func scoreCanonical(t *tally, doc *page.Document, finalURL string) {
	if !doc.HasCanonical {
		t.add(-5, "canonical missing")
		t.record(model.SeverityMinor, "Missing canonical URL")
		return
	}
	if doc.Canonical == finalURL ||
		strings.TrimRight(doc.Canonical, "/") == strings.TrimRight(finalURL, "/") {
		t.add(10, "canonical matches url")
		t.record(model.SeverityStrength, "Proper canonical URL")
	} else {
		t.add(-5, "canonical mismatch")
		t.record(model.SeverityMinor, "Canonical URL mismatch: "+doc.Canonical)
	}
}

func scoreRobots(t *tally, doc *page.Document) {
	if !doc.HasRobots {
		return
	}
	if strings.Contains(doc.RobotsContent, "noindex") || strings.Contains(doc.RobotsContent, "nofollow") {
		t.add(-10, "restrictive robots meta")
		t.record(model.SeverityMinor, "Restrictive robots meta tag: "+doc.RobotsContent)
	} else {
		t.add(5, "permissive robots meta")
		t.record(model.SeverityStrength, "Good robots meta tag")
	}
}

func scoreViewport(t *tally, doc *page.Document) {
	switch {
	case doc.HasViewport && strings.Contains(doc.ViewportContent, "width=device-width"):
		t.add(10, "mobile viewport configured")
		t.record(model.SeverityStrength, "Mobile-optimized viewport")
	case doc.HasViewport:
		t.add(-5, "viewport misconfigured")
		t.record(model.SeverityMinor, "Poor mobile viewport configuration")
	default:
		t.add(-15, "viewport missing")
		t.record(model.SeverityMajor, "Missing viewport meta tag - poor mobile SEO")
	}
}

func scoreURLStructure(t *tally, rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	segments := strings.Split(u.Path, "/")
	clean := len(segments) <= 4 && !strings.ContainsAny(u.Path, "?&=")
	switch {
	case clean && u.RawQuery == "":
		t.add(5, "clean url structure")
		t.record(model.SeverityStrength, "Clean, SEO-friendly URL structure")
	case u.RawQuery != "":
		t.add(-3, "query parameters in url")
		t.record(model.SeverityMinor, "Complex URL parameters may hurt SEO")
	}
}

func scoreHeadingHierarchy(t *tally, doc *page.Document) {
	present := map[int]bool{}
	for _, h := range doc.Headings {
		present[h.Level] = true
	}
	var gaps []string
	for level := 2; level <= 4; level++ {
		if present[level] && !present[level-1] {
			gaps = append(gaps, fmt.Sprintf("H%d without H%d", level, level-1))
		}
	}
	if len(gaps) > 0 {
		t.add(-10, "broken heading hierarchy")
		t.record(model.SeverityMinor,
			"Poor heading hierarchy: "+strings.Join(gaps, ", "))
	} else if len(doc.Headings) >= 3 {
		t.add(15, "well-structured headings")
		t.record(model.SeverityStrength, "Well-structured heading hierarchy")
	}
}

func scoreInternalLinks(t *tally, doc *page.Document) {
	n := doc.InternalLinkCount()
	switch {
	case n >= 5:
		t.add(10, "good internal linking")
		t.record(model.SeverityStrength,
			fmt.Sprintf("Good internal linking structure (%d internal links)", n))
	case n >= 2:
		t.add(5, "basic internal linking")
		t.record(model.SeverityStrength, "Basic internal linking present")
	default:
		t.add(-5, "insufficient internal linking")
		t.record(model.SeverityMinor, "Insufficient internal linking for SEO")
	}
}
