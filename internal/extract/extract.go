package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Extractor applies the ranked selector cascade over parsed article pages.
// Real-world news sites use wildly inconsistent markup; the cascade degrades
// to paragraph scraping so recall stays high without site-specific adapters.
type Extractor struct {
	rules Rules
}

// New builds an extractor for the given rule set.
func New(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Document wraps a parsed page together with its source URL so relative
// links can be resolved.
type Document struct {
	doc       *goquery.Document
	sourceURL string
}

// Metadata is the title/image/byline information scraped from meta tags and
// common markup, before any sentinel substitution.
type Metadata struct {
	Title         string
	Description   string
	Image         string
	Author        string
	PublishedDate string
}

// Parse builds a Document from raw markup.
func (e *Extractor) Parse(html []byte, sourceURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc, sourceURL: sourceURL}, nil
}

// Metadata extracts title, image, description, author and published date.
// Open Graph tags win over Twitter cards, which win over plain markup.
func (e *Extractor) Metadata(d *Document) Metadata {
	doc := d.doc

	meta := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return collapseText(val)
			}
		}
		return ""
	}
	text := func(sel string) string {
		return collapseText(doc.Find(sel).First().Text())
	}
	attr := func(sel, name string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr(name); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	m := Metadata{}
	m.Title = firstNonEmpty(
		meta(`meta[property="og:title"]`),
		meta(`meta[name="twitter:title"]`),
		text("title"),
		text("h1"),
	)
	m.Description = firstNonEmpty(
		meta(`meta[property="og:description"]`),
		meta(`meta[name="twitter:description"]`),
		meta(`meta[name="description"]`),
	)
	m.Image = ResolveURL(firstNonEmpty(
		meta(`meta[property="og:image"]`),
		meta(`meta[name="twitter:image"]`),
		attr(`img[class*="featured"], img[class*="hero"], img[class*="main"]`, "src"),
		attr("img", "src"),
	), d.sourceURL)
	m.Author = firstNonEmpty(
		meta(`meta[name="author"]`),
		meta(`meta[property="article:author"]`),
		text(`span[class*="author"]`),
		text(`div[class*="author"]`),
	)
	m.PublishedDate = firstNonEmpty(
		meta(`meta[property="article:published_time"]`),
		attr("time", "datetime"),
		meta(`meta[name="date"]`),
	)

	return m
}

// FullContent runs the full-article cascade; empty string means nothing
// cleared the thresholds and no qualifying paragraph survived.
func (e *Extractor) FullContent(d *Document) string {
	return e.content(d, e.rules.FullSelectors, e.rules.FullMinChars,
		e.rules.FullParagraphMinChars, e.rules.FullParagraphCap, e.rules.FullPhraseDenylist)
}

// SummaryContent runs the summary-oriented cascade with lower thresholds and
// a stricter paragraph denylist.
func (e *Extractor) SummaryContent(d *Document) string {
	return e.content(d, e.rules.SummarySelectors, e.rules.SummaryMinChars,
		e.rules.SummaryParagraphMinChars, e.rules.SummaryParagraphCap, e.rules.SummaryPhraseDenylist)
}

func (e *Extractor) content(d *Document, selectors []string, minChars, paragraphMin, paragraphCap int, phraseDenylist []string) string {
	for _, sel := range selectors {
		node := d.doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		candidate := node.Clone()
		for _, strip := range e.rules.StripSelectors {
			candidate.Find(strip).Remove()
		}

		text := collapseText(candidate.Text())
		if utf8.RuneCountInString(text) > minChars {
			return text
		}
	}

	return e.paragraphs(d, paragraphMin, paragraphCap, phraseDenylist)
}

// paragraphs is the last-resort extraction: every <p> that looks like body
// text, joined with blank-line separators.
func (e *Extractor) paragraphs(d *Document, minChars, maxParagraphs int, phraseDenylist []string) string {
	kept := make([]string, 0, maxParagraphs)
	d.doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseText(s.Text())
		if utf8.RuneCountInString(text) <= minChars {
			return true
		}
		if isBoilerplateParagraph(text, phraseDenylist) {
			return true
		}
		kept = append(kept, text)
		return len(kept) < maxParagraphs
	})
	return strings.Join(kept, "\n\n")
}

var (
	dateLineRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`)
	bylineRe   = regexp.MustCompile(`^por\s+\p{L}+\s*$`)
)

func isBoilerplateParagraph(text string, phraseDenylist []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phraseDenylist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return dateLineRe.MatchString(lower) || bylineRe.MatchString(lower)
}

// ResolveURL turns protocol-relative and root-relative URLs into absolute
// ones using the source page's origin. Anything else passes through.
func ResolveURL(raw, sourceURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if strings.HasPrefix(raw, "/") {
		parsed, err := url.Parse(sourceURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return raw
		}
		return parsed.Scheme + "://" + parsed.Host + raw
	}
	return raw
}

// collapseText trims and collapses all whitespace runs to single spaces.
func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
