// Package prompt holds the summarization prompts. Defaults are embedded; a
// directory of Markdown files can override them per tier.
package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"
)

// Tier names a summarization strategy.
type Tier string

const (
	TierStructured Tier = "structured"
	TierFallback   Tier = "fallback"
)

// Data is what user templates are executed with. Values are expected to be
// escaped already.
type Data struct {
	Title   string
	Content string
}

//go:embed templates/*.tmpl
var builtin embed.FS

type tierPrompt struct {
	system string
	user   *template.Template
}

// Set is an immutable collection of prompts, one per tier.
type Set struct {
	tiers map[Tier]tierPrompt
}

// Default returns the embedded prompts.
func Default() *Set {
	s := &Set{tiers: make(map[Tier]tierPrompt)}
	for _, t := range []Tier{TierStructured, TierFallback} {
		sys, err := builtin.ReadFile("templates/" + string(t) + "_system.tmpl")
		if err != nil {
			panic(err)
		}
		user, err := builtin.ReadFile("templates/" + string(t) + "_user.tmpl")
		if err != nil {
			panic(err)
		}
		s.tiers[t] = tierPrompt{
			system: strings.TrimSpace(string(sys)),
			user:   template.Must(template.New(string(t)).Parse(string(user))),
		}
	}
	return s
}

// Load returns the embedded prompts overridden by <dir>/structured.md and
// <dir>/fallback.md when present. A file's body replaces the system prompt;
// a "user" frontmatter key replaces the user template.
func Load(dir string) (*Set, error) {
	s := Default()
	if strings.TrimSpace(dir) == "" {
		return s, nil
	}
	for _, t := range []Tier{TierStructured, TierFallback} {
		path := filepath.Join(dir, string(t)+".md")
		doc, err := ParseFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("prompt: parse %s: %w", path, err)
		}
		p := s.tiers[t]
		if body := strings.TrimSpace(doc.Body); body != "" {
			p.system = body
		}
		if user := doc.String("user"); strings.TrimSpace(user) != "" {
			tpl, err := template.New(string(t)).Parse(user)
			if err != nil {
				return nil, fmt.Errorf("prompt: %s user template: %w", path, err)
			}
			p.user = tpl
		}
		s.tiers[t] = p
		slog.Info("prompt: override loaded", "tier", t, "path", path)
	}
	return s, nil
}

// Render returns the system and user messages for tier.
func (s *Set) Render(tier Tier, d Data) (system, user string, err error) {
	p, ok := s.tiers[tier]
	if !ok {
		return "", "", fmt.Errorf("prompt: unknown tier %q", tier)
	}
	var buf bytes.Buffer
	if err := p.user.Execute(&buf, d); err != nil {
		return "", "", fmt.Errorf("prompt: render %s: %w", tier, err)
	}
	return p.system, buf.String(), nil
}
