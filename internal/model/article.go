package model

// Summary sentinels persisted in place of a synthesized summary.
const (
	// NoSummary marks an article that was attempted but produced nothing usable.
	NoSummary = "no summary available"
	// SummaryError marks an article whose summarization failed outright.
	SummaryError = "error during summarization"
)

// SourceHackerNews is stored in the source column of every article.
const SourceHackerNews = "Hacker News"

// Article represents a single Hacker News submission moving through a run.
type Article struct {
	HNID         int    `json:"hn_id"`
	Title        string `json:"title"`
	Link         string `json:"link"`
	Rank         int    `json:"article_rank"`
	Flagged      bool   `json:"flagged"`
	Dead         bool   `json:"dead"`
	Dupe         bool   `json:"dupe"`
	Upvotes      int    `json:"upvotes"`
	CommentCount int    `json:"comment_count"`
	CommentLink  string `json:"comment_link"`
	Content      string `json:"content,omitempty"`
	Summary      string `json:"summary,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	CommitHash   string `json:"commit_hash,omitempty"`
	Source       string `json:"source"`
}

// HasContent reports whether a body was fetched for the article.
func (a Article) HasContent() bool {
	return a.Content != ""
}

// Struck reports whether any moderation marker is set.
func (a Article) Struck() bool {
	return a.Flagged || a.Dead || a.Dupe
}
