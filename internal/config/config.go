package config

import "time"

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel   string `mapstructure:"log_level"`
	CommitHash string `mapstructure:"commit_hash"` // explicit provenance override
}

// HackerNewsConfig controls the listing scraper.
type HackerNewsConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TopPages   int    `mapstructure:"top_pages"`   // page ceiling for top stories
	FrontPages int    `mapstructure:"front_pages"` // page ceiling for the /front feed
}

// BrowserConfig selects and tunes the page rendering backend.
type BrowserConfig struct {
	Driver            string        `mapstructure:"driver"` // chrome, http, cloudflare
	ExecPath          string        `mapstructure:"exec_path"`
	Headful           bool          `mapstructure:"headful"`
	UserAgent         string        `mapstructure:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
}

// CloudflareConfig holds Browser Rendering API credentials.
type CloudflareConfig struct {
	AccountID string `mapstructure:"account_id"`
	Token     string `mapstructure:"token"`
}

// FetchConfig controls article content fetching.
type FetchConfig struct {
	Delay       time.Duration `mapstructure:"delay"`         // pacing between fetches, also per host
	MaxInFlight int           `mapstructure:"max_in_flight"` // 1 keeps fetching strictly sequential
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`     // redis content cache, negative disables
}

// SummarizerConfig describes the LLM endpoint and summarization limits.
type SummarizerConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	MaxContentLength int           `mapstructure:"max_content_length"`
	MinContentLength int           `mapstructure:"min_content_length"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Temperature      float32       `mapstructure:"temperature"`
	TopP             float32       `mapstructure:"top_p"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	PromptsDir       string        `mapstructure:"prompts_dir"`
	Progress         bool          `mapstructure:"progress"`
}

// WorkflowConfig caps how much of a run gets summarized.
type WorkflowConfig struct {
	MaxTopSummaries   int    `mapstructure:"max_top_summaries"`
	MaxTotalSummaries int    `mapstructure:"max_total_summaries"`
	DefaultSummary    string `mapstructure:"default_summary"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	DSN              string `mapstructure:"dsn"`
	MaxContentLength int    `mapstructure:"max_content_length"`
}

// RedisConfig holds redis connection settings. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// GitHubConfig locates the repository used for commit provenance.
type GitHubConfig struct {
	Token  string `mapstructure:"token"`
	Owner  string `mapstructure:"owner"`
	Repo   string `mapstructure:"repo"`
	Branch string `mapstructure:"branch"`
	APIURL string `mapstructure:"api_url"`
}

// MetricsConfig controls the optional Pushgateway export.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ScheduleConfig drives the serve command.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HackerNews HackerNewsConfig `mapstructure:"hackernews"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
}

// EnvBindings maps config keys to the environment variables that may supply them.
var EnvBindings = map[string][]string{
	"app.commit_hash":         {"COMMIT_HASH"},
	"summarizer.api_key":      {"OPENAI_API_KEY", "OLLAMA_API_KEY"},
	"summarizer.base_url":     {"OLLAMA_BASE_URL", "OPENAI_BASE_URL"},
	"summarizer.model":        {"OLLAMA_MODEL", "OPENAI_MODEL"},
	"database.dsn":            {"DATABASE_URL"},
	"redis.addr":              {"REDIS_ADDR"},
	"redis.password":          {"REDIS_PASSWORD"},
	"github.token":            {"GH_TOKEN", "GITHUB_TOKEN"},
	"cloudflare.account_id":   {"CLOUDFLARE_ACCOUNT_ID"},
	"cloudflare.token":        {"CLOUDFLARE_API_TOKEN"},
	"metrics.pushgateway_url": {"PUSHGATEWAY_URL"},
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.HackerNews.BaseURL == "" {
		c.HackerNews.BaseURL = "https://news.ycombinator.com"
	}
	if c.HackerNews.TopPages == 0 {
		c.HackerNews.TopPages = 2
	}
	if c.HackerNews.FrontPages == 0 {
		c.HackerNews.FrontPages = 10
	}
	if c.Browser.Driver == "" {
		c.Browser.Driver = "chrome"
	}
	if c.Browser.NavigationTimeout == 0 {
		c.Browser.NavigationTimeout = 30 * time.Second
	}
	if c.Fetch.Delay == 0 {
		c.Fetch.Delay = time.Second
	}
	if c.Fetch.MaxInFlight <= 0 {
		c.Fetch.MaxInFlight = 1
	}
	if c.Fetch.CacheTTL == 0 {
		c.Fetch.CacheTTL = 24 * time.Hour
	}
	if c.Summarizer.BaseURL == "" {
		c.Summarizer.BaseURL = "http://localhost:11434/v1"
	}
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = "llama3.1"
	}
	if c.Summarizer.MaxContentLength == 0 {
		c.Summarizer.MaxContentLength = 2000
	}
	if c.Summarizer.MinContentLength == 0 {
		c.Summarizer.MinContentLength = 300
	}
	if c.Summarizer.MaxTokens == 0 {
		c.Summarizer.MaxTokens = 500
	}
	if c.Summarizer.Temperature == 0 {
		c.Summarizer.Temperature = 0.3
	}
	if c.Summarizer.TopP == 0 {
		c.Summarizer.TopP = 0.9
	}
	if c.Summarizer.Timeout == 0 {
		c.Summarizer.Timeout = 60 * time.Second
	}
	if c.Summarizer.MaxRetries == 0 {
		c.Summarizer.MaxRetries = 3
	}
	if c.Summarizer.RetryDelay == 0 {
		c.Summarizer.RetryDelay = 2 * time.Second
	}
	if c.Workflow.MaxTopSummaries == 0 {
		c.Workflow.MaxTopSummaries = 30
	}
	if c.Workflow.MaxTotalSummaries == 0 {
		c.Workflow.MaxTotalSummaries = 40
	}
	if c.Database.MaxContentLength == 0 {
		c.Database.MaxContentLength = 45000
	}
	if c.Redis.LockTTL == 0 {
		c.Redis.LockTTL = 2 * time.Hour
	}
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = "main"
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = "https://api.github.com"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "gophersignal_scraper"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 * * * *"
	}
}
