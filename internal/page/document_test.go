package page_test

import (
	"testing"

	"github.com/pagegrade/pagegrade/internal/page"
)

const fixtureHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Fixture Page</title>
<meta name="description" content="A small page used to exercise the parser.">
<meta name="robots" content="index, follow">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Fixture">
<meta name="twitter:card" content="summary">
<link rel="canonical" href="https://example.com/page">
<link rel="alternate" hreflang="fr" href="https://example.com/fr/page">
<script type="application/ld+json">{"@type":"WebPage"}</script>
<script>console.log("app code");</script>
<style>body { margin: 0 }</style>
</head>
<body>
<nav><a href="/home">Home</a><a href="/docs">Docs</a></nav>
<h1>Main Heading</h1>
<h2>Sub Heading</h2>
<p>First paragraph of body text.</p>
<p>Second paragraph with more words.</p>
<img src="/logo.png" alt="Company logo">
<img src="/banner.png">
<a href="https://example.com/internal">Internal</a>
<a href="https://other.net/">External</a>
<button>Send message</button>
<form>
<label for="name">Name</label>
<input type="text" id="name" name="name">
<input type="email" name="email" placeholder="Email">
</form>
<div itemtype="https://schema.org/Organization"></div>
</body>
</html>`

func TestNew_ExtractsEverything(t *testing.T) {
	t.Parallel()
	doc, err := page.New(fixtureHTML, "https://example.com/page")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if doc.Title != "Fixture Page" || !doc.HasTitle {
		t.Errorf("title = %q (has=%v)", doc.Title, doc.HasTitle)
	}
	if doc.MetaDescription != "A small page used to exercise the parser." {
		t.Errorf("meta description = %q", doc.MetaDescription)
	}
	if doc.RobotsContent != "index, follow" {
		t.Errorf("robots = %q", doc.RobotsContent)
	}
	if !doc.HasViewport || doc.ViewportContent != "width=device-width, initial-scale=1" {
		t.Errorf("viewport = %q (has=%v)", doc.ViewportContent, doc.HasViewport)
	}
	if doc.Lang != "en" {
		t.Errorf("lang = %q", doc.Lang)
	}
	if doc.Host != "example.com" || doc.Path != "/page" {
		t.Errorf("host/path = %q %q", doc.Host, doc.Path)
	}

	if len(doc.Headings) != 2 || doc.Headings[0].Level != 1 || doc.Headings[1].Level != 2 {
		t.Errorf("headings = %+v", doc.Headings)
	}
	if doc.Headings[0].Text != "Main Heading" {
		t.Errorf("h1 text = %q", doc.Headings[0].Text)
	}
	if len(doc.Paragraphs) != 2 {
		t.Errorf("expected 2 paragraphs, got %d", len(doc.Paragraphs))
	}

	if len(doc.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(doc.Images))
	}
	if doc.ImagesWithAlt() != 1 {
		t.Errorf("expected 1 image with alt, got %d", doc.ImagesWithAlt())
	}

	if len(doc.Buttons) != 1 || doc.Buttons[0] != "Send message" {
		t.Errorf("buttons = %v", doc.Buttons)
	}

	if !doc.HasNavStructure || doc.NavLinkCount != 2 {
		t.Errorf("nav: has=%v links=%d", doc.HasNavStructure, doc.NavLinkCount)
	}

	if doc.FormCount != 1 {
		t.Errorf("form count = %d", doc.FormCount)
	}
	if len(doc.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(doc.Inputs))
	}
	if !doc.LabelForIDs["name"] {
		t.Errorf("label for=name not tracked: %v", doc.LabelForIDs)
	}

	if doc.Canonical != "https://example.com/page" || !doc.HasCanonical {
		t.Errorf("canonical = %q", doc.Canonical)
	}
	if doc.HreflangCount != 1 {
		t.Errorf("hreflang count = %d", doc.HreflangCount)
	}

	if len(doc.JSONLD) != 1 {
		t.Errorf("jsonld blocks = %v", doc.JSONLD)
	}
	if doc.ItemtypeCount != 1 {
		t.Errorf("itemtype count = %d", doc.ItemtypeCount)
	}

	if doc.OpenGraph["title"] != "Fixture" {
		t.Errorf("og:title = %q", doc.OpenGraph["title"])
	}
	if doc.Twitter["card"] != "summary" {
		t.Errorf("twitter:card = %q", doc.Twitter["card"])
	}

	if doc.WordCount == 0 {
		t.Error("word count should be non-zero")
	}
}

func TestDocument_InternalLinkCount(t *testing.T) {
	t.Parallel()
	doc, err := page.New(fixtureHTML, "https://example.com/page")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// /home, /docs and the absolute example.com link; other.net is external.
	if got := doc.InternalLinkCount(); got != 3 {
		t.Errorf("internal link count = %d, want 3", got)
	}
}

func TestNew_SeparatesJSONLDFromScripts(t *testing.T) {
	t.Parallel()
	doc, err := page.New(fixtureHTML, "https://example.com/page")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if doc.JSONLD[0] != `{"@type":"WebPage"}` {
		t.Errorf("jsonld = %q", doc.JSONLD[0])
	}
	if want := `console.log("app code");`; doc.ScriptText != want {
		t.Errorf("script text = %q, want %q", doc.ScriptText, want)
	}
}

func TestNew_EmptyDocument(t *testing.T) {
	t.Parallel()
	doc, err := page.New("", "https://example.com/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if doc.HasTitle || doc.HasMetaDescription || doc.HasViewport || doc.HasCanonical {
		t.Errorf("empty document should have no head signals: %+v", doc)
	}
	if doc.WordCount != 0 {
		t.Errorf("word count = %d, want 0", doc.WordCount)
	}
}
