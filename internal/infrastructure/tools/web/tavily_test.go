package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchRequiresAPIKey(t *testing.T) {
	client := NewTavilyClient("", 0, nil)

	_, err := client.Search(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "TAVILY_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestSearchFormatsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["api_key"] != "tvly-test" || req["query"] != "go structured logging" {
			t.Errorf("unexpected request body: %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"answer": "Use log/slog.",
			"results": []map[string]string{
				{"title": "slog docs", "url": "https://pkg.go.dev/log/slog", "content": "Package slog provides structured logging."},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClient("tvly-test", 0, nil)
	client.rest.SetBaseURL(server.URL)

	text, err := client.Search(context.Background(), "go structured logging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		`Search results for "go structured logging":`,
		"Answer: Use log/slog.",
		"1. slog docs",
		"https://pkg.go.dev/log/slog",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output, got %q", want, text)
		}
	}
}

func TestSearchReportsUpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClient("tvly-bad", 0, nil)
	client.rest.SetBaseURL(server.URL)

	_, err := client.Search(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "tavily search status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFormatResultsHandlesEmpty(t *testing.T) {
	text := formatResults("nothing", tavilyResponse{})
	if !strings.Contains(text, "No results found.") {
		t.Fatalf("expected empty marker, got %q", text)
	}
}
