package config

import (
	"testing"
	"time"
)

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()

	if c.HackerNews.TopPages != 2 || c.HackerNews.FrontPages != 10 {
		t.Fatalf("page defaults: %+v", c.HackerNews)
	}
	if c.Fetch.Delay != time.Second || c.Fetch.MaxInFlight != 1 {
		t.Fatalf("fetch defaults: %+v", c.Fetch)
	}
	if c.Workflow.MaxTopSummaries != 30 || c.Workflow.MaxTotalSummaries != 40 {
		t.Fatalf("workflow defaults: %+v", c.Workflow)
	}
	if c.Summarizer.MinContentLength != 300 || c.Summarizer.MaxContentLength != 2000 {
		t.Fatalf("summarizer length defaults: %+v", c.Summarizer)
	}
	if c.Summarizer.Timeout != 60*time.Second {
		t.Fatalf("llm timeout default = %v", c.Summarizer.Timeout)
	}
	if c.Database.MaxContentLength != 45000 {
		t.Fatalf("content cap default = %d", c.Database.MaxContentLength)
	}
	if c.Browser.NavigationTimeout != 30*time.Second {
		t.Fatalf("navigation timeout default = %v", c.Browser.NavigationTimeout)
	}
}

func TestFillDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{
		Workflow: WorkflowConfig{MaxTopSummaries: 5, MaxTotalSummaries: 7},
		Browser:  BrowserConfig{Driver: "http"},
	}
	c.FillDefaults()
	if c.Workflow.MaxTopSummaries != 5 || c.Workflow.MaxTotalSummaries != 7 || c.Browser.Driver != "http" {
		t.Fatalf("explicit values overwritten: %+v %+v", c.Workflow, c.Browser)
	}
}

func TestEnvBindingsCoverCredentials(t *testing.T) {
	for _, key := range []string{"database.dsn", "summarizer.api_key", "redis.addr", "github.token", "app.commit_hash"} {
		if len(EnvBindings[key]) == 0 {
			t.Errorf("no environment binding for %s", key)
		}
	}
}
