package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"gophersignal/internal/model"
)

// DefaultMaxContentLength caps the stored article body, in characters.
const DefaultMaxContentLength = 45000

// ErrNotFound is returned by point updates that matched no article.
var ErrNotFound = errors.New("storage: article not found")

// rowsPerStatement keeps a multi-row insert well under the Postgres
// bind parameter limit.
const rowsPerStatement = 500

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"hn_id", "title", "link", "article_rank", "flagged", "dead", "dupe",
	"upvotes", "comment_count", "comment_link", "content", "summary",
	"model_name", "commit_hash", "source", "created_at", "updated_at",
}

// title, link, source and created_at are never rewritten; an empty body
// does not erase a previously fetched one, and a placeholder summary does
// not replace a real one. %[1]s is the quoted placeholder list.
const upsertSuffix = `ON CONFLICT (hn_id) DO UPDATE SET
	article_rank = EXCLUDED.article_rank,
	flagged = EXCLUDED.flagged,
	dead = EXCLUDED.dead,
	dupe = EXCLUDED.dupe,
	upvotes = EXCLUDED.upvotes,
	comment_count = EXCLUDED.comment_count,
	comment_link = EXCLUDED.comment_link,
	content = CASE WHEN EXCLUDED.content <> '' THEN EXCLUDED.content ELSE articles.content END,
	summary = CASE WHEN EXCLUDED.summary IN (%[1]s) AND COALESCE(articles.summary, '') NOT IN ('', %[1]s) THEN articles.summary ELSE EXCLUDED.summary END,
	model_name = CASE WHEN EXCLUDED.summary IN (%[1]s) AND COALESCE(articles.summary, '') NOT IN ('', %[1]s) THEN articles.model_name ELSE EXCLUDED.model_name END,
	commit_hash = EXCLUDED.commit_hash,
	updated_at = NOW()`

// PostgresStore persists articles into the articles table.
type PostgresStore struct {
	db           *sql.DB
	maxContent   int
	placeholders []string
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, maxContent int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(db, maxContent), nil
}

// NewPostgresStore wraps an existing handle.
func NewPostgresStore(db *sql.DB, maxContent int) *PostgresStore {
	if maxContent <= 0 {
		maxContent = DefaultMaxContentLength
	}
	return &PostgresStore{
		db:           db,
		maxContent:   maxContent,
		placeholders: []string{model.NoSummary, model.SummaryError},
	}
}

// KeepSummariesOver adds summary texts that count as placeholders, such as
// a configured default summary. An upsert carrying a placeholder keeps the
// summary and model name already stored.
func (s *PostgresStore) KeepSummariesOver(texts ...string) {
	for _, t := range texts {
		if t != "" {
			s.placeholders = append(s.placeholders, t)
		}
	}
}

func (s *PostgresStore) suffix() string {
	quoted := make([]string, len(s.placeholders))
	for i, p := range s.placeholders {
		quoted[i] = pq.QuoteLiteral(p)
	}
	return fmt.Sprintf(upsertSuffix, strings.Join(quoted, ", "))
}

// SaveArticles upserts the batch by hn_id in one transaction. Duplicate ids
// inside the batch collapse to the last occurrence.
func (s *PostgresStore) SaveArticles(ctx context.Context, articles []model.Article) error {
	batch := dedupe(articles)
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(batch); start += rowsPerStatement {
		end := min(start+rowsPerStatement, len(batch))
		query, args, err := s.upsert(batch[start:end]).ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert articles: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Info("storage: articles saved", "count", len(batch))
	return nil
}

func (s *PostgresStore) upsert(rows []model.Article) sq.InsertBuilder {
	q := psql.Insert("articles").Columns(articleColumns...)
	for _, a := range rows {
		source := a.Source
		if source == "" {
			source = model.SourceHackerNews
		}
		q = q.Values(
			a.HNID, a.Title, a.Link, a.Rank, a.Flagged, a.Dead, a.Dupe,
			a.Upvotes, a.CommentCount, a.CommentLink, truncateRunes(a.Content, s.maxContent), a.Summary,
			a.ModelName, a.CommitHash, source, sq.Expr("NOW()"), sq.Expr("NOW()"),
		)
	}
	return q.Suffix(s.suffix())
}

// MarkDead flags an article as dead.
func (s *PostgresStore) MarkDead(ctx context.Context, hnID int) error {
	return s.mark(ctx, hnID, "dead")
}

// MarkDuplicate flags an article as a duplicate.
func (s *PostgresStore) MarkDuplicate(ctx context.Context, hnID int) error {
	return s.mark(ctx, hnID, "dupe")
}

func (s *PostgresStore) mark(ctx context.Context, hnID int, column string) error {
	query, args, err := psql.Update("articles").
		Set(column, true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"hn_id": hnID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark %s: %w", column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark %s %d: %w", column, hnID, ErrNotFound)
	}
	return nil
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// dedupe keeps one article per id, with the values of its last occurrence,
// at the position of its first occurrence.
func dedupe(articles []model.Article) []model.Article {
	index := make(map[int]int, len(articles))
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if a.HNID == 0 {
			continue
		}
		if i, ok := index[a.HNID]; ok {
			out[i] = a
			continue
		}
		index[a.HNID] = len(out)
		out = append(out, a)
	}
	return out
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
