package worker

import (
	"slices"

	"gophersignal/internal/model"
)

// Buckets splits the recycled feed by moderation marker. An article carrying
// several markers appears in each matching bucket.
type Buckets struct {
	Flagged []model.Article
	Dead    []model.Article
	Dupe    []model.Article
}

// Categorize sorts recycled-feed articles into buckets, keeping feed order.
func Categorize(articles []model.Article) Buckets {
	var b Buckets
	for _, a := range articles {
		if a.Flagged {
			b.Flagged = append(b.Flagged, a)
		}
		if a.Dead {
			b.Dead = append(b.Dead, a)
		}
		if a.Dupe {
			b.Dupe = append(b.Dupe, a)
		}
	}
	return b
}

// Merge concatenates top stories, flagged, dead and dupe in that order.
// An id seen earlier wins, so every id appears once.
func Merge(top []model.Article, b Buckets) []model.Article {
	seen := make(map[int]struct{}, len(top)+len(b.Flagged)+len(b.Dead)+len(b.Dupe))
	out := make([]model.Article, 0, len(top)+len(b.Flagged)+len(b.Dead)+len(b.Dupe))
	for _, list := range [][]model.Article{top, b.Flagged, b.Dead, b.Dupe} {
		for _, a := range list {
			if _, dup := seen[a.HNID]; dup {
				continue
			}
			seen[a.HNID] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// Selection is the ordered set handed to the summarizer. The first Top
// entries are top stories, the rest flagged.
type Selection struct {
	Articles []model.Article
	Top      int
}

// SelectForSummary picks merged articles that have content: top stories up
// to maxTop, then flagged ones until maxTotal is reached. Content is read
// from merged; top and flagged only decide membership.
func SelectForSummary(merged, top, flagged []model.Article, maxTop, maxTotal int) Selection {
	if maxTop > maxTotal {
		maxTop = maxTotal
	}
	topIDs := ids(top)
	flaggedIDs := ids(flagged)

	var sel Selection
	for _, a := range merged {
		if sel.Top >= maxTop {
			break
		}
		if _, ok := topIDs[a.HNID]; ok && a.HasContent() {
			sel.Articles = append(sel.Articles, a)
			sel.Top++
		}
	}
	for _, a := range merged {
		if len(sel.Articles) >= maxTotal {
			break
		}
		if _, isTop := topIDs[a.HNID]; isTop {
			continue
		}
		if _, ok := flaggedIDs[a.HNID]; ok && a.HasContent() {
			sel.Articles = append(sel.Articles, a)
		}
	}
	return sel
}

// Arrange builds the persisted batch: unsummarized articles first, then
// summarized flagged, then summarized top stories, each group reversed so
// the earliest-ranked entry is written last. Unsummarized articles carry
// defaultSummary.
func Arrange(merged, summarized []model.Article, top int, defaultSummary string) []model.Article {
	top = min(top, len(summarized))
	done := ids(summarized)

	out := make([]model.Article, 0, len(merged))
	for _, a := range merged {
		if _, ok := done[a.HNID]; ok {
			continue
		}
		if a.Summary == "" {
			a.Summary = defaultSummary
		}
		out = append(out, a)
	}
	slices.Reverse(out)

	flagged := slices.Clone(summarized[top:])
	slices.Reverse(flagged)
	topDone := slices.Clone(summarized[:top])
	slices.Reverse(topDone)

	out = append(out, flagged...)
	return append(out, topDone...)
}

func ids(articles []model.Article) map[int]struct{} {
	m := make(map[int]struct{}, len(articles))
	for _, a := range articles {
		m[a.HNID] = struct{}{}
	}
	return m
}
