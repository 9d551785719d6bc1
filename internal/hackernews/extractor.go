package hackernews

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gophersignal/internal/model"
)

// Feed identifies which listing a page belongs to.
type Feed int

const (
	// FeedTop is the front page ranking served at "/".
	FeedTop Feed = iota
	// FeedFront is the recycled per-day feed served at "/front".
	FeedFront
)

func (f Feed) String() string {
	if f == FeedFront {
		return "front"
	}
	return "top"
}

// Page is one parsed listing page.
type Page struct {
	Articles []model.Article
	NextURL  string
}

var (
	digitsRe = regexp.MustCompile(`\d+`)
	itemIDRe = regexp.MustCompile(`item\?id=(\d+)`)
)

// Extractor turns a listing document into articles. BaseURL is used to
// rebuild pagination links of the recycled feed.
type Extractor struct {
	BaseURL string
}

// Parse extracts the submissions and the next page link from doc, which was
// loaded from pageURL.
func (e Extractor) Parse(doc *goquery.Document, pageURL string, feed Feed) Page {
	base, _ := url.Parse(pageURL)
	return Page{
		Articles: e.Submissions(doc, base, feed),
		NextURL:  e.NextURL(doc, base, feed),
	}
}

// Submissions returns every submission row of the page. On the recycled feed
// only rows carrying a flagged, dead or dupe marker are kept.
func (e Extractor) Submissions(doc *goquery.Document, base *url.URL, feed Feed) []model.Article {
	var out []model.Article
	doc.Find("tr.athing.submission").Each(func(_ int, row *goquery.Selection) {
		subtext := row.Next()
		id := rowID(row, subtext)
		if id == 0 {
			return
		}
		a := model.Article{HNID: id, Source: model.SourceHackerNews}
		a.Rank = firstInt(row.Find("span.rank").First().Text())

		title := row.Find("span.titleline > a").First()
		a.Title = strings.TrimSpace(title.Text())
		if href, ok := title.Attr("href"); ok {
			a.Link = resolve(base, href)
		}
		if a.Link == "" {
			return
		}
		line := strings.ToLower(title.Parent().Text())
		a.Flagged = strings.Contains(line, "[flagged]")
		a.Dead = strings.Contains(line, "[dead]")
		a.Dupe = strings.Contains(line, "[dupe]")

		a.Upvotes = firstInt(subtext.Find(".score").First().Text())
		subtext.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !strings.Contains(strings.ToLower(s.Text()), "comment") {
				return true
			}
			a.CommentCount = firstInt(s.Text())
			if href, ok := s.Attr("href"); ok {
				a.CommentLink = resolve(base, href)
			}
			return false
		})

		if feed == FeedFront && !a.Struck() {
			return
		}
		out = append(out, a)
	})
	return out
}

// NextURL returns the absolute URL of the next page, or "" on the last page.
func (e Extractor) NextURL(doc *goquery.Document, base *url.URL, feed Feed) string {
	href, ok := doc.Find("a.morelink").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	if feed == FeedTop {
		return resolve(base, href)
	}
	u, err := url.Parse(resolve(base, href))
	if err != nil {
		return ""
	}
	q := u.Query()
	day, p := q.Get("day"), q.Get("p")
	if day == "" || p == "" {
		return ""
	}
	return FrontURL(e.BaseURL, day, p)
}

// FrontURL builds "<base>/front?day=D&p=P".
func FrontURL(baseURL, day, p string) string {
	return strings.TrimRight(baseURL, "/") + "/front?day=" + url.QueryEscape(day) + "&p=" + url.QueryEscape(p)
}

func rowID(row, subtext *goquery.Selection) int {
	if id, err := strconv.Atoi(strings.TrimSpace(row.AttrOr("id", ""))); err == nil && id > 0 {
		return id
	}
	var id int
	subtext.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := itemIDRe.FindStringSubmatch(s.AttrOr("href", "")); m != nil {
			id, _ = strconv.Atoi(m[1])
			return false
		}
		return true
	})
	return id
}

func firstInt(s string) int {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
