package content

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var (
	// CookieSelectors are tried in order to dismiss a consent banner.
	CookieSelectors = []string{"cookie-banner", ".cookie-consent", "#cookie-accept"}
	// PopupSelectors are tried in order to dismiss a modal.
	PopupSelectors = []string{".popup", ".overlay", ".modal", ".modal-dialog"}
)

const (
	mainSelector   = `main, article, .post, .text, [role="main"]`
	chromeSelector = "nav, aside, footer, header, .sidebar, .menu"
)

var arxivRe = regexp.MustCompile(`^https?://(?:www\.)?arxiv\.org/abs/`)

// IsArxiv reports whether u is an arXiv abstract page.
func IsArxiv(u string) bool {
	return arxivRe.MatchString(u)
}

// ParseArxiv renders the title, authors and abstract of an arXiv abstract
// page. It returns "" when none of them can be found.
func ParseArxiv(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(doc.Find("h1.title").First().Text()), "Title:"))
	var authors []string
	doc.Find(".authors a").Each(func(_ int, s *goquery.Selection) {
		if a := strings.TrimSpace(s.Text()); a != "" {
			authors = append(authors, a)
		}
	})
	abstract := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(doc.Find("blockquote.abstract").First().Text()), "Abstract:"))
	if title == "" && len(authors) == 0 && abstract == "" {
		return ""
	}
	return "Title: " + title + "\nAuthors: " + strings.Join(authors, ", ") + "\n\nAbstract:\n" + abstract
}

// ExtractText returns the paragraph text of the main content region of html.
// Navigation chrome is removed first; paragraphs are trimmed, empty ones are
// skipped and the rest joined by a blank line. When that yields nothing a
// readability pass over the whole document is tried.
func ExtractText(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if text := paragraphs(doc); text != "" {
		return text
	}
	return readabilityText(html, pageURL)
}

func paragraphs(doc *goquery.Document) string {
	root := doc.Find(mainSelector).First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		return ""
	}
	root.Find(chromeSelector).Remove()

	var parts []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

func readabilityText(html, pageURL string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
