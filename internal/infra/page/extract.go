// Package page turns raw HTML into readable text and markdown, and computes display statistics.
package page

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"page-summarizer/internal/domain"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat maps the form value to a Format; anything unknown is markdown.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatHTML)) {
		return FormatHTML
	}
	return FormatMarkdown
}

// Content is the readable part of a page.
type Content struct {
	URL      string
	Title    string
	HTML     string // inner HTML of the main element after noise removal
	Markdown string
	Text     string
	Format   Format
	// Links counts anchors with an href inside the main element; LinkChars is their text length in runes.
	Links     int
	LinkChars int
}

// Payload is what gets summarized: markdown when available, plain text otherwise.
func (c *Content) Payload() string {
	if strings.TrimSpace(c.Markdown) != "" {
		return c.Markdown
	}
	return c.Text
}

// Rendered is the body shown to the user for the requested format.
func (c *Content) Rendered() string {
	if c.Format == FormatHTML {
		return c.HTML
	}
	return c.Markdown
}

var noiseSelector = strings.Join([]string{
	"script", "style", "noscript", "template", "iframe", "svg", "form",
	"nav", "footer", "header", "aside",
	".ad", ".ads", ".advertisement", ".sidebar", ".cookie-banner", ".popup",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[aria-hidden=true]",
}, ", ")

// DefaultContentSelectors are tried in order; the first match wins, else <body>.
func DefaultContentSelectors() []string {
	return []string{
		"main",
		"article",
		"[role=main]",
		".content",
		"#content",
		".main-content",
		"#main-content",
	}
}

// Extract parses rawHTML and returns the main content. pageURL is used to absolutize links.
func Extract(rawHTML, pageURL string, format Format) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrExtractionFailed, err)
	}

	title := cleanWhitespace(doc.Find("title").First().Text())
	if title == "" {
		title = cleanWhitespace(doc.Find("h1").First().Text())
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, sel := range DefaultContentSelectors() {
		if s := doc.Find(sel); s.Length() > 0 {
			main = s.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}
	if main.Length() == 0 {
		main = doc.Selection
	}

	text := cleanWhitespace(main.Text())
	if text == "" {
		return nil, domain.ErrEmptyContent
	}

	inner, err := main.Html()
	if err != nil {
		return nil, fmt.Errorf("%w: render html: %v", domain.ErrExtractionFailed, err)
	}

	conv := md.NewConverter(md.DomainFromURL(pageURL), true, nil)
	markdown := strings.TrimSpace(conv.Convert(main))

	c := &Content{
		URL:      pageURL,
		Title:    title,
		HTML:     strings.TrimSpace(inner),
		Markdown: markdown,
		Text:     text,
		Format:   format,
	}
	main.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		c.Links++
		c.LinkChars += len([]rune(cleanWhitespace(a.Text())))
	})
	return c, nil
}

var spaceRun = regexp.MustCompile(`[ \t\f\v\r]+`)
var blankLines = regexp.MustCompile(`\n\s*\n+`)

// cleanWhitespace collapses runs of spaces and blank lines.
func cleanWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
