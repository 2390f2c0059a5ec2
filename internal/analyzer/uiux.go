package analyzer

import (
	"fmt"
	"strings"

	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/page"
)

var defaultContentPatterns = []string{
	"lorem ipsum", "placeholder text", "sample text", "dummy text",
	"your content here", "add your content", "click here to edit",
	"default text", "example text", "test content", "coming soon",
	"under construction", "website under development",
	"john doe", "jane doe", "your name here", "company name",
	"your email here", "example@email.com", "test@test.com",
	"replace this text", "edit this section", "add description here",
}

var genericImagePatterns = []string{
	"placeholder", "stock-photo", "generic", "default-image",
	"sample-image", "temp-image", "test-image", "150x150",
	"via.placeholder", "picsum.photos", "lorempixel",
}

var oversizedImageMarkers = []string{"2000", "4000", "full", "original"}

var poorSpacingIndicators = []string{
	"margin: 0", "padding: 0", "margin:0", "padding:0",
	"margin: auto", "padding: 10px", "margin: 10px",
	"margin: 5px", "padding: 5px", "line-height: 1",
	"letter-spacing: normal", "word-spacing: normal",
}

var modernLayoutIndicators = []string{
	"flexbox", "grid", "flex", "display: flex", "display: grid", "css grid",
}

var customResponsiveIndicators = []string{
	"max-width", "min-width", "media query", "@media", "responsive",
}

var legacyLayoutIndicators = []string{
	"position: absolute", "float: left", "float: right", "clear: both",
	"table-layout", "vertical-align: top",
}

var commonTypos = map[string]bool{
	"recieve": true, "seperate": true, "occured": true, "necesary": true,
	"begining": true, "writting": true, "comming": true, "runing": true,
	"geting": true, "makeing": true, "takeing": true, "giveing": true,
	"definately": true, "independant": true, "accomodate": true,
	"embarass": true, "occurance": true, "recomend": true, "wierd": true,
	"freind": true, "beleive": true, "recieved": true,
}

var poorGrammarPatterns = []string{
	"i am", "we is", "they was", "dont", "cant", "wont", "youre", "its a",
	"alot", "everytime", "everyday",
}

var ctaKeywords = []string{
	"contact", "buy", "purchase", "sign up", "subscribe", "download",
	"get started", "learn more",
}

// UIUX judges design professionalism: builder/template fingerprints, default
// content, typography, navigation, media, forms, layout CSS, copy quality and
// calls to action. It is the only analyzer that consumes the platform tag.
type UIUX struct{}

func (UIUX) Category() model.Category { return model.CategoryUIUX }

func (UIUX) Analyze(doc *page.Document, _ *model.AnalysisInput, platform model.Platform) Result {
	t := newTally(model.CategoryUIUX)
	isBuilder := platform != model.PlatformNone

	// Strengths marked as standout work feed the final template assessment.
	excellent := 0

	applyBuilderPenalty(t, platform)
	scoreDefaultContent(t, doc)
	scoreTypography(t, doc, isBuilder)
	scoreParagraphs(t, doc, isBuilder)
	scoreNavigation(t, doc)
	scoreMedia(t, doc)
	excellent += scoreForms(t, doc)
	excellent += scoreLayoutCSS(t, doc, isBuilder)
	scoreCopyQuality(t, doc)
	excellent += scoreCallToAction(t, doc)

	if doc.HasViewport && strings.Contains(doc.ViewportContent, "width=device-width") {
		t.add(8, "responsive viewport")
		t.record(model.SeverityStrength, "Mobile-responsive viewport configuration")
	}

	if isBuilder {
		applyTemplateAssessment(t, platform, excellent)
	}

	return t.result()
}

func applyBuilderPenalty(t *tally, platform model.Platform) {
	switch platform {
	case model.PlatformNone:
	case model.PlatformGoDaddy:
		t.add(-10, "godaddy builder")
		t.recordPlatform(model.SeverityMinor,
			"Template-based design - consider custom upgrades for professional appearance", platform)
	case model.PlatformWix, model.PlatformSquarespace, model.PlatformWeebly:
		t.add(-12, "basic builder")
		t.recordPlatform(model.SeverityMinor,
			fmt.Sprintf("%s template - good foundation, customization opportunities available",
				titleCase(string(platform))), platform)
	default:
		t.add(-8, "website builder")
		t.recordPlatform(model.SeverityStrength,
			fmt.Sprintf("Website builder detected: %s - solid platform choice",
				titleCase(string(platform))), platform)
	}
}

func scoreDefaultContent(t *tally, doc *page.Document) {
	lowered := strings.ToLower(doc.Text)
	var found []string
	for _, pattern := range defaultContentPatterns {
		if strings.Contains(lowered, pattern) {
			found = append(found, pattern)
		}
	}
	if len(found) > 0 {
		t.add(float64(-8*len(found)), "default template content")
		t.recordDetail(model.SeverityCritical,
			fmt.Sprintf("Default/template content found (%d instances): %s",
				len(found), strings.Join(found, ", ")),
			map[string]any{"patterns": found})
	} else if doc.WordCount > 100 {
		t.add(5, "substantial custom content")
	}
}

func scoreTypography(t *tally, doc *page.Document, isBuilder bool) {
	if len(doc.Headings) == 0 {
		if doc.WordCount > 100 {
			penalty := 15.0
			if isBuilder {
				penalty = 25
			}
			t.add(-penalty, "no headings")
			t.record(model.SeverityCritical, "No headings - poor content structure")
		}
		return
	}

	levels := make([]int, len(doc.Headings))
	distinct := map[int]bool{}
	for i, h := range doc.Headings {
		levels[i] = h.Level
		distinct[h.Level] = true
	}

	proper := true
	var skips []string
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] > levels[i+1]+1 {
			proper = false
			skips = append(skips, fmt.Sprintf("Skipped from H%d to H%d", levels[i+1], levels[i]))
		}
	}

	switch {
	case proper && len(distinct) >= 3:
		t.add(10, "proper heading hierarchy")
	case proper && len(distinct) >= 2:
		t.add(5, "acceptable heading hierarchy")
	default:
		penalty := 12.0
		if isBuilder {
			penalty = 20
		}
		t.add(-penalty, "broken heading hierarchy")
		msg := "Poor typography hierarchy - unprofessional appearance"
		if len(skips) > 0 {
			msg += ": " + strings.Join(skips, "; ")
		}
		t.record(model.SeverityCritical, msg)
	}
}

func scoreParagraphs(t *tally, doc *page.Document, isBuilder bool) {
	if len(doc.Paragraphs) == 0 {
		return
	}
	long, veryLong := 0, 0
	for _, p := range doc.Paragraphs {
		words := len(strings.Fields(p))
		if words > 200 {
			veryLong++
		}
		if words > 100 {
			long++
		}
	}
	if veryLong > 0 {
		penalty := 15.0
		if isBuilder {
			penalty = 20
		}
		t.add(-penalty, "text walls")
		t.record(model.SeverityCritical, "Poor readability - text walls without proper breaks")
	} else if float64(long) > float64(len(doc.Paragraphs))*0.6 {
		penalty := 10.0
		if isBuilder {
			penalty = 15
		}
		t.add(-penalty, "paragraphs too long")
		t.record(model.SeverityMinor, "Poor text formatting - paragraphs too long")
	}
}

func scoreNavigation(t *tally, doc *page.Document) {
	if !doc.HasNavStructure {
		t.add(-15, "no navigation structure")
		t.record(model.SeverityCritical, "No clear navigation structure")
		return
	}
	switch {
	case doc.NavLinkCount >= 3:
		t.add(10, "clear navigation")
		t.record(model.SeverityStrength, "Clear navigation structure")
	case doc.NavLinkCount >= 1:
		t.add(5, "basic navigation")
		t.record(model.SeverityStrength, "Basic navigation present")
	default:
		t.add(-5, "empty navigation")
		t.record(model.SeverityMinor, "Limited navigation - may confuse users")
	}
}

func scoreMedia(t *tally, doc *page.Document) {
	if len(doc.Images) == 0 {
		return
	}

	missingAlt := len(doc.Images) - doc.ImagesWithAlt()
	if missingAlt > 0 {
		t.add(float64(-3*missingAlt), "images missing alt text")
		t.record(model.SeverityCritical,
			fmt.Sprintf("%d/%d images missing alt text - accessibility violation",
				missingAlt, len(doc.Images)))
	}

	generic := 0
	for _, img := range doc.Images {
		src := strings.ToLower(img.Src)
		alt := strings.ToLower(img.Alt)
		for _, pattern := range genericImagePatterns {
			if strings.Contains(src, pattern) || strings.Contains(alt, pattern) {
				generic++
				break
			}
		}
	}
	if float64(generic) > float64(len(doc.Images))*0.3 {
		t.add(-15, "generic placeholder images")
		t.record(model.SeverityMinor,
			fmt.Sprintf("Too many generic/placeholder images (%d/%d)", generic, len(doc.Images)))
	}

	oversized := 0
	for _, img := range doc.Images {
		src := strings.ToLower(img.Src)
		for _, marker := range oversizedImageMarkers {
			if strings.Contains(src, marker) {
				oversized++
				break
			}
		}
	}
	if oversized > 0 {
		t.add(float64(-5*oversized), "oversized images")
		t.record(model.SeverityMinor,
			fmt.Sprintf("%d potentially oversized images - may slow loading", oversized))
	}
}

func scoreForms(t *tally, doc *page.Document) (excellent int) {
	if doc.FormCount == 0 || len(doc.Inputs) == 0 {
		return 0
	}
	labeled := 0
	for _, in := range doc.Inputs {
		if in.ID != "" && doc.LabelForIDs[in.ID] {
			labeled++
		}
	}
	ratio := float64(labeled) / float64(len(doc.Inputs))
	switch {
	case ratio >= 0.8:
		t.add(10, "well-labeled forms")
		t.record(model.SeverityStrength, "Well-labeled forms for accessibility")
		return 1
	case ratio >= 0.5:
		t.add(5, "partially labeled forms")
		t.record(model.SeverityStrength, "Good form labeling")
	default:
		t.add(-8, "unlabeled form inputs")
		t.record(model.SeverityMinor,
			fmt.Sprintf("Poor form accessibility - %d/%d inputs missing labels",
				len(doc.Inputs)-labeled, len(doc.Inputs)))
	}
	return 0
}

func scoreLayoutCSS(t *tally, doc *page.Document, isBuilder bool) (excellent int) {
	styles := doc.StyleText

	spacing := 0
	for _, indicator := range poorSpacingIndicators {
		if strings.Contains(styles, indicator) {
			spacing++
		}
	}
	modern := containsAny(styles, modernLayoutIndicators)
	responsive := containsAny(styles, customResponsiveIndicators)

	switch {
	case isBuilder && spacing > 3:
		t.add(-20, "template spacing")
		t.record(model.SeverityCritical, "Template-based spacing - unprofessional layout")
	case spacing > 5:
		t.add(-15, "inconsistent spacing")
		t.record(model.SeverityCritical, "Poor spacing consistency - amateur design")
	case modern && responsive:
		t.add(15, "modern responsive css")
		t.record(model.SeverityStrength, "Professional layout with modern CSS techniques")
		excellent = 1
	case modern:
		t.add(8, "modern layout css")
		t.record(model.SeverityStrength, "Good modern layout techniques")
	}

	legacy := 0
	for _, indicator := range legacyLayoutIndicators {
		if strings.Contains(styles, indicator) {
			legacy++
		}
	}
	if legacy > 2 && isBuilder {
		t.add(-12, "legacy layout techniques")
		t.record(model.SeverityCritical, "Outdated layout techniques - template-based design")
	}

	return excellent
}

func scoreCopyQuality(t *tally, doc *page.Document) {
	lowered := strings.ToLower(doc.Text)

	typos := map[string]bool{}
	for _, word := range strings.Fields(lowered) {
		clean := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, word)
		if commonTypos[clean] {
			typos[clean] = true
		}
	}
	if len(typos) > 0 {
		t.add(float64(-5*len(typos)), "spelling errors")
		t.record(model.SeverityCritical,
			fmt.Sprintf("Spelling errors detected - unprofessional (%d unique typos)", len(typos)))
	}

	grammar := 0
	for _, pattern := range poorGrammarPatterns {
		if strings.Contains(lowered, pattern) {
			grammar++
		}
	}
	if grammar > 2 {
		t.add(float64(-2*grammar), "grammar issues")
		t.record(model.SeverityMinor, "Grammar/punctuation issues detected - affects professionalism")
	}
}

func scoreCallToAction(t *tally, doc *page.Document) (excellent int) {
	candidates := make([]string, 0, len(doc.Anchors)+len(doc.Buttons))
	for _, a := range doc.Anchors {
		candidates = append(candidates, a.Text)
	}
	candidates = append(candidates, doc.Buttons...)

	ctas := 0
	for _, text := range candidates {
		lowered := strings.ToLower(strings.TrimSpace(text))
		if len(lowered) >= 50 {
			continue
		}
		for _, kw := range ctaKeywords {
			if strings.Contains(lowered, kw) {
				ctas++
				break
			}
		}
	}

	switch {
	case ctas >= 2:
		t.add(12, "clear calls to action")
		t.record(model.SeverityStrength, "Clear call-to-action elements")
		return 1
	case ctas == 1:
		t.add(6, "call to action present")
		t.record(model.SeverityStrength, "Call-to-action present")
	default:
		t.add(-8, "no call to action")
		t.record(model.SeverityMinor, "Missing clear call-to-action elements")
	}
	return 0
}

// applyTemplateAssessment closes out builder-hosted pages: accumulated
// critical findings or a total absence of standout strengths pulls the score
// down further, and the cheapest builders carry a hard raw ceiling.
func applyTemplateAssessment(t *tally, platform model.Platform, excellent int) {
	if t.count(model.SeverityCritical) >= 3 {
		t.add(-15, "multiple template quality issues")
		t.record(model.SeverityCritical, "Multiple template/design quality issues detected")
	} else if excellent == 0 {
		t.add(-10, "no professional customization")
		t.record(model.SeverityCritical, "Template-based site lacks professional customization")
	}

	switch platform {
	case model.PlatformGoDaddy:
		if raw := t.raw(); raw > 45 {
			t.add(45-raw, "builder raw ceiling")
		}
		t.record(model.SeverityCritical, "GoDaddy template limits professional design quality")
	case model.PlatformWix, model.PlatformWeebly:
		if raw := t.raw(); raw > 50 {
			t.add(50-raw, "builder raw ceiling")
			t.record(model.SeverityCritical, "Template-based design limits professional appearance")
		}
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
