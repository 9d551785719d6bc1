package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Request is one schema-constrained chat completion.
type Request struct {
	// Name identifies the response schema.
	Name   string
	System string
	User   string
	Schema *jsonschema.Definition
}

// Completer issues chat completions and decodes the JSON answer into out.
type Completer interface {
	Complete(ctx context.Context, req Request, out any) error
	Model() string
}

// Config describes an OpenAI-compatible endpoint such as Ollama's /v1.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // optional
	MaxTokens   int
	Temperature float32
	TopP        float32
	Timeout     time.Duration // per call, retries excluded
	MaxRetries  int
	RetryDelay  time.Duration
}

// OpenAIClient implements Completer using the Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	cfg    Config
	retry  RetryPolicy
}

// NewOpenAI creates a client. The model must be set.
func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("ai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		client: c,
		cfg:    cfg,
		retry:  NewRetryPolicy(cfg.MaxRetries, cfg.RetryDelay),
	}, nil
}

// Model returns the configured model name.
func (o *OpenAIClient) Model() string { return o.cfg.Model }

// Complete sends req and decodes the first choice into out.
func (o *OpenAIClient) Complete(ctx context.Context, req Request, out any) error {
	var content string
	err := o.retry.Do(ctx, func(ctx context.Context) error {
		c, err := o.create(ctx, req)
		content = c
		return err
	})
	if err != nil {
		return fmt.Errorf("ai: %s completion: %w", req.Name, err)
	}
	content = stripCodeFence(content)
	if content == "" {
		return fmt.Errorf("ai: %s completion: %w", req.Name, ErrEmptyResponse)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("ai: decode %s response: %w", req.Name, err)
	}
	return nil
}

func (o *OpenAIClient) create(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	cr := openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
		TopP:        o.cfg.TopP,
	}
	if req.Schema != nil {
		cr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Name,
				Schema: req.Schema,
			},
		}
	}
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, cr)
	if err != nil {
		return "", err
	}
	slog.Debug("ai: completion", "schema", req.Name, "took", time.Since(start), "tokens", resp.Usage.TotalTokens)
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
