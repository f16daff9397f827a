// Package web implements the outbound information tools that talk to the
// open web: direct URL fetching and Tavily search.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

const (
	// fetchMaxChars caps raw fetched content before it ever reaches the
	// dispatcher's transcript policy.
	fetchMaxChars = 4000

	fetchUserAgent = "Mozilla/5.0 (compatible; DiscordResearchAgent/1.0)"
)

// Fetcher retrieves a URL and reduces it to plain text. HTML is stripped
// of markup and chrome elements; JSON and text/* pass through; anything
// else is rejected.
type Fetcher struct {
	httpClient *http.Client
	maxChars   int
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxChars:   fetchMaxChars,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch url: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read fetch response: %w", err)
	}

	var text string
	switch {
	case strings.Contains(contentType, "text/html"):
		text, err = extractText(string(body))
		if err != nil {
			return "", fmt.Errorf("parse html: %w", err)
		}
	case strings.Contains(contentType, "application/json"), strings.Contains(contentType, "text/"):
		text = string(body)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "fetch url", fmt.Errorf("unsupported content type: %s", contentType))
	}

	if len(text) > f.maxChars {
		text = text[:f.maxChars] + "\n... (content truncated)"
	}
	return text, nil
}

// skippedElements are dropped wholesale during text extraction, matching
// the usual page chrome.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
}

func extractText(rawHTML string) (string, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return strings.Join(lines, "\n"), nil
}
