package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseWithFrontmatter(t *testing.T) {
	content := "" +
		"---\n" +
		"user: |-\n" +
		"  T={{.Title}}\n" +
		"---\n\n" +
		"You summarize things.\n"
	doc, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := doc.String("user"); got != "T={{.Title}}" {
		t.Errorf("unexpected user value %q", got)
	}
	if !strings.Contains(doc.Body, "You summarize things.") {
		t.Errorf("body missing text; got %q", doc.Body)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	body := "# Hello\n\nNo frontmatter here.\n"
	doc, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(doc.Frontmatter) != 0 {
		t.Fatalf("expected empty frontmatter, got: %+v", doc.Frontmatter)
	}
	if doc.Body != body {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", body, doc.Body)
	}
}

func TestDefaultRender(t *testing.T) {
	s := Default()
	sys, user, err := s.Render(TierStructured, Data{Title: "A &amp; B", Content: "body text"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(sys, "core_idea") {
		t.Errorf("structured system prompt should describe the schema: %q", sys)
	}
	if !strings.Contains(user, "<title>A &amp; B</title>") || !strings.Contains(user, "body text") {
		t.Errorf("unexpected user prompt %q", user)
	}
	if _, _, err := s.Render(Tier("nope"), Data{}); err == nil {
		t.Errorf("expected error for unknown tier")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	override := "---\nuser: \"Summarize: {{.Title}}\"\n---\nCustom fallback system.\n"
	if err := os.WriteFile(filepath.Join(dir, "fallback.md"), []byte(override), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sys, user, err := s.Render(TierFallback, Data{Title: "Go 2"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if sys != "Custom fallback system." || user != "Summarize: Go 2" {
		t.Fatalf("override not applied: sys=%q user=%q", sys, user)
	}
	// structured tier keeps the embedded prompt
	sys, _, _ = s.Render(TierStructured, Data{})
	if !strings.Contains(sys, "core_idea") {
		t.Fatalf("structured prompt should be untouched")
	}
}

func TestLoadBadTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "structured.md"), []byte("---\nuser: \"{{.Title\"\n---\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected template parse error")
	}
}
