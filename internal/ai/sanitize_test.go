package ai

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"captcha", "Please complete the CAPTCHA to continue", "no summary available"},
		{"robot", "Are you a robot? Click here.", "no summary available"},
		{"ipv4", "Server at 192.168.0.10 was hit.", "Server at REDACTED was hit."},
		{"labels", "Context: Go got faster.\nCore idea: generics help.\n- Insight 1: kept as list", "Go got faster.\ngenerics help.\n- kept as list"},
		{"echoed field names", "- insight_1: one\n* insight_2: two\n  • insight_3: three", "- one\n* two\n  • three"},
		{"about captchas", "CAPTCHAs are getting harder for humans than for bots.", "CAPTCHAs are getting harder for humans than for bots."},
		{"captcha wall", "To continue, solve the captcha below.", "no summary available"},
		{"blank runs", "one\n\n\n\ntwo\n \n\nthree", "one\n\ntwo\n\nthree"},
		{"empty", "   \n", "no summary available"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("%s: Sanitize(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`<script>a && b</script>`); got != "&lt;script&gt;a &amp;&amp; b&lt;/script&gt;" {
		t.Fatalf("unexpected escape %q", got)
	}
	if got := Escape("&lt;"); got != "&amp;lt;" {
		t.Fatalf("ampersand must be escaped before brackets, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("short content changed: %q", got)
	}
	got := Truncate(strings.Repeat("a", 20), 10)
	if got != strings.Repeat("a", 10)+"\n\n[Content truncated]" {
		t.Fatalf("unexpected truncation %q", got)
	}
	// the limit counts characters, not bytes
	got = Truncate("ééééé", 3)
	if got != "ééé\n\n[Content truncated]" {
		t.Fatalf("multibyte truncation: %q", got)
	}
	cjk := strings.Repeat("語", 2500)
	got = Truncate(cjk, 2000)
	if !strings.HasPrefix(got, strings.Repeat("語", 2000)+"\n\n") || strings.HasPrefix(got, strings.Repeat("語", 2001)) {
		t.Fatalf("expected 2000 characters kept, got %d bytes", len(got))
	}
	if got := Truncate(strings.Repeat("語", 10), 10); got != strings.Repeat("語", 10) {
		t.Fatalf("content at the limit must be unchanged: %q", got)
	}
}

func TestStructuredLines(t *testing.T) {
	s := StructuredSummary{
		Context: "ctx", CoreIdea: "idea", Insight1: "i1", Insight2: "i2", Insight3: "i3",
		Insight5: "i5", AuthorConclusion: "end", Warning: "may be truncated",
	}
	want := []string{"ctx", "idea", "- i1", "- i2", "- i3", "- i5", "end", "(may be truncated)"}
	got := s.Lines()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	if s.missingField() != "" {
		t.Fatalf("no mandatory field is missing")
	}
	s.Insight3 = " "
	if s.missingField() != "insight_3" {
		t.Fatalf("expected insight_3 to be missing")
	}
}

func TestReportedError(t *testing.T) {
	for _, v := range []string{"", "none", "N/A", "null", "No error."} {
		if e := (StructuredSummary{Error: v}).reportedError(); e != "" {
			t.Errorf("%q should be trivial, got %q", v, e)
		}
	}
	if e := (StructuredSummary{Error: "paywalled page"}).reportedError(); e != "paywalled page" {
		t.Errorf("unexpected reported error %q", e)
	}
}

func TestStructuredLinesEchoedLabelsStripped(t *testing.T) {
	s := StructuredSummary{
		Context: "context: ctx", CoreIdea: "core_idea: idea",
		Insight1: "insight_1: one", Insight2: "insight_2: two", Insight3: "three",
		AuthorConclusion: "author_conclusion: end",
	}
	got := Sanitize(strings.Join(s.Lines(), "\n"))
	want := "ctx\nidea\n- one\n- two\n- three\nend"
	if got != want {
		t.Fatalf("Sanitize(Lines()) = %q, want %q", got, want)
	}
}
