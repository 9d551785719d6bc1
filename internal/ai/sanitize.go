package ai

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"gophersignal/internal/model"
)

const truncationNotice = "\n\n[Content truncated]"

var (
	captchaRe    = regexp.MustCompile(`(?i)(?:complete|solve|enter) the captcha|captcha (?:check|challenge|verification) (?:required|failed)|verify (?:that )?you are (?:a )?human|are you a robot|unusual traffic from your`)
	ipv4Re       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	labelRe      = regexp.MustCompile(`^([ \t]*(?:[-*•][ \t]+)?)[A-Za-z][A-Za-z0-9_ ]{0,29}:[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*)+\n`)
)

var promptEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape neutralizes markup in text placed inside a prompt.
func Escape(s string) string {
	return promptEscaper.Replace(s)
}

// Truncate cuts content to max characters and appends a notice when
// anything was dropped.
func Truncate(content string, max int) string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content
	}
	n := 0
	for i := range content {
		if n == max {
			return content[:i] + truncationNotice
		}
		n++
	}
	return content
}

// Sanitize post-processes model output. Text that looks like a captcha page
// becomes the no-summary sentinel; IPv4 addresses are redacted; leading
// "Label:" prefixes are stripped per line, keeping any list bullet; runs of
// blank lines collapse.
func Sanitize(text string) string {
	if captchaRe.MatchString(text) {
		return model.NoSummary
	}
	text = ipv4Re.ReplaceAllString(text, "REDACTED")

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(labelRe.ReplaceAllString(l, "$1"), " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return model.NoSummary
	}
	return text
}
