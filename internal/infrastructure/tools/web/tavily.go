package web

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kirillkom/discord-research-agent/internal/infrastructure/resilience"
)

const (
	tavilyBaseURL    = "https://api.tavily.com"
	tavilyMaxResults = 5
	searchMaxChars   = 4000
)

// TavilyClient runs web searches against the Tavily API and formats the
// top results as readable text.
type TavilyClient struct {
	rest     *resty.Client
	apiKey   string
	executor *resilience.Executor
}

func NewTavilyClient(apiKey string, timeout time.Duration, executor *resilience.Executor) *TavilyClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rest := resty.New().
		SetBaseURL(tavilyBaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &TavilyClient{rest: rest, apiKey: apiKey, executor: executor}
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("tavily search: TAVILY_API_KEY is not configured")
	}

	var parsed tavilyResponse
	call := func(ctx context.Context) error {
		resp, err := c.rest.R().
			SetContext(ctx).
			SetBody(map[string]any{
				"api_key":        c.apiKey,
				"query":          query,
				"max_results":    tavilyMaxResults,
				"include_answer": true,
			}).
			SetResult(&parsed).
			Post("/search")
		if err != nil {
			return fmt.Errorf("tavily search request: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("tavily search status: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "tavily.search", call, resilience.ClassifyNetworkError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}

	return formatResults(query, parsed), nil
}

func formatResults(query string, parsed tavilyResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)
	if answer := strings.TrimSpace(parsed.Answer); answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n", answer)
	}
	if len(parsed.Results) == 0 {
		b.WriteString("No results found.")
		return b.String()
	}
	for i, result := range parsed.Results {
		if i >= tavilyMaxResults {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s\n%s\n%s\n", i+1, strings.TrimSpace(result.Title), result.URL, strings.TrimSpace(result.Content))
	}

	text := b.String()
	if len(text) > searchMaxChars {
		text = text[:searchMaxChars] + "\n... (content truncated)"
	}
	return text
}
