// Package page provides a single parsed-document view of a fetched HTML
// page. All analyzers share one Document read-only; every field is computed
// eagerly at construction so concurrent readers never mutate it.
package page

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one h1..h6 element with non-empty text.
type Heading struct {
	Level int
	Text  string
}

// Image is one img element.
type Image struct {
	Src   string
	Alt   string
	Class string
}

// Input is one input/textarea/select element.
type Input struct {
	Type        string
	Name        string
	ID          string
	Placeholder string
}

// Anchor is one a element with an href.
type Anchor struct {
	Href string
	Text string
}

// Document is the shared read-only parse result for one page.
type Document struct {
	URL  string
	Host string
	Path string

	Title    string
	HasTitle bool

	MetaDescription    string
	HasMetaDescription bool

	Headings   []Heading
	Paragraphs []string

	Images  []Image
	Anchors []Anchor

	// Buttons holds the visible text of button elements.
	Buttons []string

	// NavLinkCount counts anchors inside nav/header elements and
	// elements whose class mentions "nav".
	NavLinkCount    int
	HasNavStructure bool

	FormCount   int
	Inputs      []Input
	LabelForIDs map[string]bool

	Canonical    string
	HasCanonical bool

	RobotsContent string
	HasRobots     bool

	ViewportContent string
	HasViewport     bool

	Lang          string
	HreflangCount int

	JSONLD        []string
	ItemtypeCount int

	OpenGraph map[string]string
	Twitter   map[string]string

	// Text is the visible text with whitespace collapsed.
	Text      string
	WordCount int

	// LoweredHTML, StyleText and ScriptText are lowercase views used by
	// substring heuristics.
	LoweredHTML string
	StyleText   string
	ScriptText  string
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// New parses html and extracts everything the analyzers need. finalURL is
// the post-redirect URL; internal-link and canonical checks run against it.
// A parse failure returns an error; analyzers are never given a nil Document.
func New(html, finalURL string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	d := &Document{
		URL:         finalURL,
		LoweredHTML: strings.ToLower(html),
		LabelForIDs: map[string]bool{},
		OpenGraph:   map[string]string{},
		Twitter:     map[string]string{},
	}
	if u, err := url.Parse(finalURL); err == nil {
		d.Host = u.Host
		d.Path = u.Path
	}

	d.Text = strings.Join(strings.Fields(gq.Text()), " ")
	d.WordCount = len(wordRe.FindAllString(d.Text, -1))

	extractHead(d, gq)
	extractStructure(d, gq)
	extractMedia(d, gq)
	extractForms(d, gq)
	extractStylesAndScripts(d, gq)

	return d, nil
}

func extractHead(d *Document, gq *goquery.Document) {
	if sel := gq.Find("title").First(); sel.Length() > 0 {
		d.Title = strings.TrimSpace(sel.Text())
		d.HasTitle = d.Title != ""
	}

	gq.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(attr(s, "name"))
		prop := strings.ToLower(attr(s, "property"))
		content := attr(s, "content")

		switch {
		case name == "description":
			d.MetaDescription = strings.TrimSpace(content)
			d.HasMetaDescription = d.MetaDescription != ""
		case name == "robots":
			d.RobotsContent = strings.ToLower(strings.TrimSpace(content))
			d.HasRobots = d.RobotsContent != ""
		case name == "viewport":
			d.ViewportContent = strings.ToLower(strings.TrimSpace(content))
			d.HasViewport = true
		case strings.HasPrefix(prop, "og:"):
			d.OpenGraph[strings.TrimPrefix(prop, "og:")] = content
		case strings.HasPrefix(name, "twitter:"):
			d.Twitter[strings.TrimPrefix(name, "twitter:")] = content
		}
	})

	gq.Find("link").Each(func(_ int, s *goquery.Selection) {
		rel := strings.ToLower(attr(s, "rel"))
		switch rel {
		case "canonical":
			if href := attr(s, "href"); href != "" {
				d.Canonical = href
				d.HasCanonical = true
			}
		case "alternate":
			if attr(s, "hreflang") != "" {
				d.HreflangCount++
			}
		}
	})

	if lang, ok := gq.Find("html").First().Attr("lang"); ok {
		d.Lang = strings.TrimSpace(lang)
	}
}

func extractStructure(d *Document, gq *goquery.Document) {
	gq.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		d.Headings = append(d.Headings, Heading{
			Level: int(s.Nodes[0].Data[1] - '0'),
			Text:  text,
		})
	})

	gq.Find("p").Each(func(_ int, s *goquery.Selection) {
		d.Paragraphs = append(d.Paragraphs, strings.TrimSpace(s.Text()))
	})

	gq.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		d.Anchors = append(d.Anchors, Anchor{
			Href: attr(s, "href"),
			Text: strings.TrimSpace(s.Text()),
		})
	})

	gq.Find("button").Each(func(_ int, s *goquery.Selection) {
		d.Buttons = append(d.Buttons, strings.TrimSpace(s.Text()))
	})

	nav := gq.Find("nav, header, [class*=nav], [class*=Nav]")
	d.HasNavStructure = nav.Length() > 0
	d.NavLinkCount = nav.Find("a").Length()
}

func extractMedia(d *Document, gq *goquery.Document) {
	gq.Find("img").Each(func(_ int, s *goquery.Selection) {
		d.Images = append(d.Images, Image{
			Src:   attr(s, "src"),
			Alt:   strings.TrimSpace(attr(s, "alt")),
			Class: attr(s, "class"),
		})
	})
}

func extractForms(d *Document, gq *goquery.Document) {
	d.FormCount = gq.Find("form").Length()

	gq.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		typ := strings.ToLower(attr(s, "type"))
		if typ == "" {
			typ = goquery.NodeName(s)
		}
		d.Inputs = append(d.Inputs, Input{
			Type:        typ,
			Name:        attr(s, "name"),
			ID:          attr(s, "id"),
			Placeholder: attr(s, "placeholder"),
		})
	})

	gq.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		if f := attr(s, "for"); f != "" {
			d.LabelForIDs[f] = true
		}
	})
}

func extractStylesAndScripts(d *Document, gq *goquery.Document) {
	var styles []string
	gq.Find("style").Each(func(_ int, s *goquery.Selection) {
		styles = append(styles, s.Text())
	})
	gq.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		styles = append(styles, attr(s, "style"))
	})
	d.StyleText = strings.ToLower(strings.Join(styles, " "))

	var scripts []string
	gq.Find("script").Each(func(_ int, s *goquery.Selection) {
		if strings.EqualFold(attr(s, "type"), "application/ld+json") {
			d.JSONLD = append(d.JSONLD, s.Text())
			return
		}
		scripts = append(scripts, s.Text())
	})
	d.ScriptText = strings.ToLower(strings.Join(scripts, " "))

	d.ItemtypeCount = gq.Find("[itemtype]").Length()
}

// InternalLinkCount counts anchors pointing at the document's own host or
// using a root-relative path.
func (d *Document) InternalLinkCount() int {
	n := 0
	for _, a := range d.Anchors {
		if strings.HasPrefix(a.Href, "/") || (d.Host != "" && strings.Contains(a.Href, d.Host)) {
			n++
		}
	}
	return n
}

// ImagesWithAlt returns how many images carry non-empty alt text.
func (d *Document) ImagesWithAlt() int {
	n := 0
	for _, img := range d.Images {
		if img.Alt != "" {
			n++
		}
	}
	return n
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}
