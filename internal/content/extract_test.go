package content

import "testing"

func TestIsArxiv(t *testing.T) {
	cases := map[string]bool{
		"https://arxiv.org/abs/2401.00001":    true,
		"http://www.arxiv.org/abs/2401.00001": true,
		"https://arxiv.org/pdf/2401.00001":    false,
		"https://example.com/arxiv.org/abs/1": false,
	}
	for u, want := range cases {
		if got := IsArxiv(u); got != want {
			t.Errorf("IsArxiv(%q) = %v, want %v", u, got, want)
		}
	}
}

func TestParseArxiv(t *testing.T) {
	html := `<html><body>
<h1 class="title mathjax"><span class="descriptor">Title:</span>Attention Is Enough</h1>
<div class="authors"><span class="descriptor">Authors:</span><a href="/a/1">Ada Lovelace</a>, <a href="/a/2">Alan Turing</a></div>
<blockquote class="abstract mathjax"><span class="descriptor">Abstract:</span>We show things.
</blockquote>
</body></html>`
	want := "Title: Attention Is Enough\nAuthors: Ada Lovelace, Alan Turing\n\nAbstract:\nWe show things."
	if got := ParseArxiv(html); got != want {
		t.Fatalf("unexpected arxiv text:\n%q\nwant\n%q", got, want)
	}
	if got := ParseArxiv("<html><body><p>nothing</p></body></html>"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestExtractTextPrefersMainRegion(t *testing.T) {
	html := `<html><body>
<p>outside</p>
<article>
  <nav><p>menu item</p></nav>
  <p>  First paragraph.  </p>
  <p>   </p>
  <div class="sidebar"><p>related</p></div>
  <p>Second paragraph.</p>
  <footer><p>copyright</p></footer>
</article>
</body></html>`
	want := "First paragraph.\n\nSecond paragraph."
	if got := ExtractText(html, "https://example.com/post"); got != want {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractTextFallsBackToBody(t *testing.T) {
	html := `<html><body><header><p>site name</p></header><div><p>Body text.</p></div></body></html>`
	if got := ExtractText(html, "https://example.com/"); got != "Body text." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractTextEmptyDocument(t *testing.T) {
	if got := ExtractText("", "https://example.com/"); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
