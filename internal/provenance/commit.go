// Package provenance resolves the commit identifier stamped on saved articles.
package provenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

// Unknown is used when no source yields a commit.
const Unknown = "unknown"

const shortLen = 7

// Options locates the repository.
type Options struct {
	Override string // used verbatim when set
	Token    string
	Owner    string
	Repo     string
	Branch   string
	APIURL   string // defaults to https://api.github.com
}

// CommitResolver tries, in order: the override, the GitHub commits API,
// the local git checkout.
type CommitResolver struct {
	opts Options
	http *http.Client
	git  func(ctx context.Context) (string, error)
}

// NewCommitResolver creates a resolver.
func NewCommitResolver(opts Options) *CommitResolver {
	if opts.APIURL == "" {
		opts.APIURL = "https://api.github.com"
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &CommitResolver{
		opts: opts,
		http: &http.Client{Timeout: 10 * time.Second},
		git:  localGit,
	}
}

// CommitHash never fails; it falls back to Unknown.
func (r *CommitResolver) CommitHash(ctx context.Context) string {
	if h := strings.TrimSpace(r.opts.Override); h != "" {
		return h
	}
	if r.opts.Owner != "" && r.opts.Repo != "" {
		h, err := r.fromGitHub(ctx)
		if err == nil {
			return h
		}
		slog.Warn("provenance: github lookup failed", "err", err)
	}
	h, err := r.git(ctx)
	if err == nil && h != "" {
		return h
	}
	slog.Warn("provenance: local git failed, using unknown", "err", err)
	return Unknown
}

type commitResponse struct {
	SHA string `json:"sha"`
}

func (r *CommitResolver) fromGitHub(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s",
		strings.TrimRight(r.opts.APIURL, "/"),
		url.PathEscape(r.opts.Owner), url.PathEscape(r.opts.Repo), url.PathEscape(r.opts.Branch))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if r.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.opts.Token)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("github: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var c commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return "", err
	}
	return short(c.SHA)
}

func localGit(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func short(sha string) (string, error) {
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return "", errors.New("empty sha")
	}
	if len(sha) > shortLen {
		sha = sha[:shortLen]
	}
	return sha, nil
}
