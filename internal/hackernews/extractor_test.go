package hackernews

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const topFixture = `<html><body><table>
<tr class="athing submission" id="101">
  <td class="title"><span class="rank">1.</span></td>
  <td class="title"><span class="titleline"><a href="https://example.com/a">Alpha</a><span class="sitebit comhead"> (<a href="from?site=example.com"><span class="sitestr">example.com</span></a>)</span></span></td>
</tr>
<tr><td class="subtext"><span class="subline"><span class="score" id="score_101">123 points</span> by <a href="user?id=pg">pg</a> | <a href="hide?id=101">hide</a> | <a href="item?id=101">45&nbsp;comments</a></span></td></tr>
<tr class="athing submission">
  <td class="title"><span class="rank">2.</span></td>
  <td class="title"><span class="titleline"><a href="item?id=202">Ask HN: Beta</a></span></td>
</tr>
<tr><td class="subtext"><span class="subline"><a href="item?id=202">discuss</a></span></td></tr>
<tr class="athing submission">
  <td class="title"><span class="rank">3.</span></td>
  <td class="title"><span class="titleline"><a href="https://example.com/noid">No id</a></span></td>
</tr>
<tr><td class="subtext"></td></tr>
<tr class="athing submission" id="404">
  <td class="title"><span class="rank">4.</span></td>
  <td class="title"><span class="titleline"><a href="https://example.com/g">Gamma</a> [flagged] [dupe]</span></td>
</tr>
<tr><td class="subtext"><span class="score">7 points</span> | <a href="item?id=404">1&nbsp;comment</a></td></tr>
<tr class="athing submission" id="505">
  <td class="title"><span class="rank">5.</span></td>
  <td class="title"><span class="titleline">[flagged]</span></td>
</tr>
<tr><td class="subtext"><a href="item?id=505">discuss</a></td></tr>
</table>
<a href="?p=2" class="morelink" rel="next">More</a>
</body></html>`

func parseFixture(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestSubmissionsTopFeed(t *testing.T) {
	doc := parseFixture(t, topFixture)
	base, _ := url.Parse("https://news.ycombinator.com/")
	got := Extractor{BaseURL: DefaultBaseURL}.Submissions(doc, base, FeedTop)
	if len(got) != 3 {
		t.Fatalf("expected 3 articles (rows without id or title link dropped), got %d", len(got))
	}

	a := got[0]
	if a.HNID != 101 || a.Rank != 1 || a.Title != "Alpha" || a.Link != "https://example.com/a" {
		t.Fatalf("unexpected first article: %+v", a)
	}
	if a.Upvotes != 123 || a.CommentCount != 45 || a.CommentLink != "https://news.ycombinator.com/item?id=101" {
		t.Fatalf("unexpected subtext values: %+v", a)
	}
	if a.Struck() {
		t.Fatalf("first article should carry no flags")
	}
	if a.Source != "Hacker News" {
		t.Fatalf("unexpected source %q", a.Source)
	}

	b := got[1]
	if b.HNID != 202 {
		t.Fatalf("expected id from subtext link, got %d", b.HNID)
	}
	if b.Link != "https://news.ycombinator.com/item?id=202" {
		t.Fatalf("relative link not resolved: %q", b.Link)
	}
	if b.Upvotes != 0 || b.CommentCount != 0 || b.CommentLink != "" {
		t.Fatalf("missing subtext values should be zero: %+v", b)
	}

	for _, a := range got {
		if a.HNID == 505 || a.Link == "" {
			t.Fatalf("row without a title link kept: %+v", a)
		}
	}

	c := got[2]
	if !c.Flagged || !c.Dupe || c.Dead {
		t.Fatalf("unexpected flags: %+v", c)
	}
	if c.CommentCount != 1 || c.Upvotes != 7 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestSubmissionsFrontFeedKeepsOnlyStruck(t *testing.T) {
	doc := parseFixture(t, topFixture)
	base, _ := url.Parse("https://news.ycombinator.com/front")
	got := Extractor{BaseURL: DefaultBaseURL}.Submissions(doc, base, FeedFront)
	if len(got) != 1 || got[0].HNID != 404 {
		t.Fatalf("expected only the flagged article, got %+v", got)
	}
}

func TestNextURL(t *testing.T) {
	e := Extractor{BaseURL: "https://hn.test"}

	top := parseFixture(t, topFixture)
	base, _ := url.Parse("https://hn.test/")
	if got := e.NextURL(top, base, FeedTop); got != "https://hn.test/?p=2" {
		t.Fatalf("top next url: %q", got)
	}

	front := parseFixture(t, `<a class="morelink" href="front?day=2024-05-01&amp;p=3">More</a>`)
	base, _ = url.Parse("https://mirror.example/front")
	if got := e.NextURL(front, base, FeedFront); got != "https://hn.test/front?day=2024-05-01&p=3" {
		t.Fatalf("front next url: %q", got)
	}

	bad := parseFixture(t, `<a class="morelink" href="front?p=3">More</a>`)
	if got := e.NextURL(bad, base, FeedFront); got != "" {
		t.Fatalf("expected no next url without day, got %q", got)
	}

	last := parseFixture(t, `<table></table>`)
	if got := e.NextURL(last, base, FeedTop); got != "" {
		t.Fatalf("expected empty next url on last page, got %q", got)
	}
}
