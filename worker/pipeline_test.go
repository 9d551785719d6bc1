package worker

import (
	"testing"

	"gophersignal/internal/model"
)

func art(id int, content string) model.Article {
	return model.Article{HNID: id, Title: string(rune('A' + id%26)), Link: "https://example.com/", Content: content}
}

func hnIDs(articles []model.Article) []int {
	out := make([]int, len(articles))
	for i, a := range articles {
		out[i] = a.HNID
	}
	return out
}

func equalIDs(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCategorizeOverlaps(t *testing.T) {
	front := []model.Article{
		{HNID: 1, Flagged: true},
		{HNID: 2, Dead: true, Flagged: true},
		{HNID: 3, Dupe: true},
	}
	b := Categorize(front)
	if !equalIDs(hnIDs(b.Flagged), []int{1, 2}) || !equalIDs(hnIDs(b.Dead), []int{2}) || !equalIDs(hnIDs(b.Dupe), []int{3}) {
		t.Fatalf("unexpected buckets %+v", b)
	}
}

func TestMergeOrderAndUniqueness(t *testing.T) {
	top := []model.Article{art(1, ""), art(2, ""), art(3, "")}
	b := Buckets{
		Flagged: []model.Article{art(10, ""), art(11, "")},
		Dead:    []model.Article{art(11, ""), art(12, "")},
		Dupe:    []model.Article{art(2, ""), art(13, "")},
	}
	got := hnIDs(Merge(top, b))
	want := []int{1, 2, 3, 10, 11, 12, 13}
	if !equalIDs(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
}

func TestSelectTopFirstThenFlagged(t *testing.T) {
	top := []model.Article{art(1, "a"), art(2, "b"), art(3, "c")}
	flagged := []model.Article{art(10, "x"), art(11, "y")}
	merged := Merge(top, Buckets{Flagged: flagged})

	sel := SelectForSummary(merged, top, flagged, 1, 2)
	if !equalIDs(hnIDs(sel.Articles), []int{1, 10}) || sel.Top != 1 {
		t.Fatalf("selection = %v top=%d", hnIDs(sel.Articles), sel.Top)
	}
}

func TestSelectSkipsMissingContentAndCapsTotal(t *testing.T) {
	top := []model.Article{art(1, ""), art(2, "b"), art(3, "c"), art(4, "d")}
	flagged := []model.Article{art(10, "x"), art(11, "")}
	merged := Merge(top, Buckets{Flagged: flagged})

	sel := SelectForSummary(merged, top, flagged, 30, 4)
	if !equalIDs(hnIDs(sel.Articles), []int{2, 3, 4, 10}) || sel.Top != 3 {
		t.Fatalf("selection = %v top=%d", hnIDs(sel.Articles), sel.Top)
	}

	sel = SelectForSummary(merged, top, flagged, 30, 2)
	if !equalIDs(hnIDs(sel.Articles), []int{2, 3}) || sel.Top != 2 {
		t.Fatalf("total cap must win over top cap: %v top=%d", hnIDs(sel.Articles), sel.Top)
	}
}

func TestSelectUsesFetchedContentFromMerged(t *testing.T) {
	top := []model.Article{art(1, "")}
	merged := []model.Article{art(1, "fetched later")}
	sel := SelectForSummary(merged, top, nil, 30, 40)
	if len(sel.Articles) != 1 || sel.Articles[0].Content != "fetched later" {
		t.Fatalf("expected merged content to be used, got %+v", sel.Articles)
	}
}

func TestArrange(t *testing.T) {
	merged := []model.Article{art(1, "a"), art(2, ""), art(3, "c"), art(10, "x"), art(11, "")}
	summarized := []model.Article{art(1, "a"), art(3, "c"), art(10, "x")}
	for i := range summarized {
		summarized[i].Summary = "s"
	}

	got := Arrange(merged, summarized, 2, model.NoSummary)
	if !equalIDs(hnIDs(got), []int{11, 2, 10, 3, 1}) {
		t.Fatalf("Arrange order = %v", hnIDs(got))
	}
	for _, a := range got {
		if a.Summary == "" {
			t.Fatalf("article %d persisted without a summary", a.HNID)
		}
	}
	if got[0].Summary != model.NoSummary || got[4].Summary != "s" {
		t.Fatalf("unexpected summaries %q %q", got[0].Summary, got[4].Summary)
	}
}
