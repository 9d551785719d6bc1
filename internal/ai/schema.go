package ai

import (
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// StructuredSummary is the tier one response.
type StructuredSummary struct {
	Context          string `json:"context"`
	CoreIdea         string `json:"core_idea"`
	Insight1         string `json:"insight_1"`
	Insight2         string `json:"insight_2"`
	Insight3         string `json:"insight_3"`
	Insight4         string `json:"insight_4,omitempty"`
	Insight5         string `json:"insight_5,omitempty"`
	AuthorConclusion string `json:"author_conclusion"`
	Warning          string `json:"warning,omitempty"`
	Error            string `json:"error,omitempty"`
}

// FallbackSummary is the tier two response.
type FallbackSummary struct {
	Summary string `json:"summary"`
}

var (
	structuredRequired = []string{"context", "core_idea", "insight_1", "insight_2", "insight_3", "author_conclusion"}

	structuredSchema = jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"context":           {Type: jsonschema.String, Description: "Background the reader needs, one sentence."},
			"core_idea":         {Type: jsonschema.String, Description: "The main point of the article, one sentence."},
			"insight_1":         {Type: jsonschema.String},
			"insight_2":         {Type: jsonschema.String},
			"insight_3":         {Type: jsonschema.String},
			"insight_4":         {Type: jsonschema.String},
			"insight_5":         {Type: jsonschema.String},
			"author_conclusion": {Type: jsonschema.String},
			"warning":           {Type: jsonschema.String, Description: "Set when the text looks truncated or off-topic."},
			"error":             {Type: jsonschema.String, Description: "Set only when the text cannot be summarized."},
		},
		Required:             structuredRequired,
		AdditionalProperties: false,
	}

	fallbackSchema = jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"summary": {Type: jsonschema.String},
		},
		Required:             []string{"summary"},
		AdditionalProperties: false,
	}
)

// trivialErrors are values models put in the error field when nothing is wrong.
var trivialErrors = map[string]bool{
	"": true, "none": true, "null": true, "n/a": true, "na": true,
	"no": true, "no error": true, "false": true, "ok": true,
}

// reportedError returns the model-reported error, or "" when it is trivial.
func (s StructuredSummary) reportedError() string {
	e := strings.TrimSpace(s.Error)
	if trivialErrors[strings.ToLower(strings.Trim(e, ". "))] {
		return ""
	}
	return e
}

// missingField returns the first blank mandatory field.
func (s StructuredSummary) missingField() string {
	fields := []struct{ name, value string }{
		{"context", s.Context},
		{"core_idea", s.CoreIdea},
		{"insight_1", s.Insight1},
		{"insight_2", s.Insight2},
		{"insight_3", s.Insight3},
		{"author_conclusion", s.AuthorConclusion},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// Lines assembles the summary text, one non-empty line per field.
func (s StructuredSummary) Lines() []string {
	var lines []string
	add := func(prefix, v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, prefix+v)
		}
	}
	add("", s.Context)
	add("", s.CoreIdea)
	for _, in := range []string{s.Insight1, s.Insight2, s.Insight3, s.Insight4, s.Insight5} {
		add("- ", in)
	}
	add("", s.AuthorConclusion)
	if w := strings.TrimSpace(s.Warning); w != "" {
		add("", "("+w+")")
	}
	return lines
}
