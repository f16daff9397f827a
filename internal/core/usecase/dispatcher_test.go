package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/contentstore"
)

func newTestDispatcher(tools Toolbox) (*Dispatcher, *contentstore.Store) {
	store := contentstore.New()
	return NewDispatcher(tools, store, 0, nil), store
}

func TestDispatchIsolatesFailuresAndKeepsOrder(t *testing.T) {
	d, _ := newTestDispatcher(Toolbox{
		Fetcher:  &fakeFetcher{err: errors.New("dial tcp: connection refused")},
		Searcher: &fakeSearcher{content: "search hits"},
	})

	calls := []domain.ToolCall{
		{Kind: domain.ToolFetchURL, Reason: "check docs", URL: "https://example.com"},
		{Kind: domain.ToolTavilySearch, Reason: "look up", Query: "go slog"},
	}
	successes, failures, events := d.Dispatch(context.Background(), calls)

	if len(successes) != 1 {
		t.Fatalf("expected 1 success, got %d", len(successes))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if !strings.HasPrefix(failures[0], "FetchUrl failed (check docs): ") {
		t.Fatalf("unexpected failure format: %q", failures[0])
	}
	if !strings.HasPrefix(successes[0], "TavilySearch (look up, go slog):\n") {
		t.Fatalf("unexpected success label: %q", successes[0])
	}
	if len(events) != 2 || events[0].Status != domain.ToolStatusError || events[1].Status != domain.ToolStatusOK {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestDispatchShortContentPassesThrough(t *testing.T) {
	d, store := newTestDispatcher(Toolbox{
		Fetcher: &fakeFetcher{content: strings.Repeat("a", MaxContextLength)},
	})

	successes, _, _ := d.Dispatch(context.Background(), []domain.ToolCall{
		{Kind: domain.ToolFetchURL, Reason: "check docs", URL: "https://example.com"},
	})

	if len(successes) != 1 {
		t.Fatalf("expected 1 success, got %d", len(successes))
	}
	if strings.Contains(successes[0], "[Content truncated") {
		t.Fatalf("content at the boundary must not be truncated: %q", successes[0][:80])
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing stored for short content, got %d entries", store.Len())
	}
}

func TestDispatchOversizedContentIsStoredAndPreviewed(t *testing.T) {
	full := strings.Repeat("b", MaxContextLength+1)
	d, store := newTestDispatcher(Toolbox{
		Fetcher: &fakeFetcher{content: full},
	})

	successes, _, _ := d.Dispatch(context.Background(), []domain.ToolCall{
		{Kind: domain.ToolFetchURL, Reason: "check docs", URL: "https://example.com"},
	})
	if len(successes) != 1 {
		t.Fatalf("expected 1 success, got %d", len(successes))
	}
	out := successes[0]

	if !strings.Contains(out, fmt.Sprintf("[Content truncated - %d chars total]", len(full))) {
		t.Fatalf("expected truncation notice, got %q", out)
	}

	marker := "[Full content stored: SHA="
	idx := strings.Index(out, marker)
	if idx < 0 {
		t.Fatalf("expected stored-content notice, got %q", out)
	}
	key := out[idx+len(marker) : idx+len(marker)+8]

	stored, ok := store.Get(key)
	if !ok {
		t.Fatalf("expected full content stored under %q", key)
	}
	if stored != full {
		t.Fatalf("stored content does not match original (%d vs %d chars)", len(stored), len(full))
	}

	label := "FetchUrl (check docs, https://example.com):\n"
	preview := strings.TrimPrefix(out, label)
	preview = preview[:strings.Index(preview, "\n\n[Content truncated")]
	if len(preview) != MaxContextLength-truncationReserve {
		t.Fatalf("expected %d preview chars, got %d", MaxContextLength-truncationReserve, len(preview))
	}
}

func TestDispatchStoredContentIsNeverReTruncated(t *testing.T) {
	d, store := newTestDispatcher(Toolbox{})
	full := strings.Repeat("c", 3*MaxContextLength)
	key := store.Put(full)

	successes, failures, _ := d.Dispatch(context.Background(), []domain.ToolCall{
		{Kind: domain.ToolStoredContent, Reason: "read the rest", SHAKey: key},
	})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(successes) != 1 {
		t.Fatalf("expected 1 success, got %d", len(successes))
	}
	if !strings.Contains(successes[0], full) {
		t.Fatalf("expected full stored content in result, got %d chars", len(successes[0]))
	}
	if strings.Contains(successes[0], "[Content truncated") {
		t.Fatalf("retrieved content must not be re-truncated")
	}
}

func TestDispatchStoredContentMissingKey(t *testing.T) {
	d, _ := newTestDispatcher(Toolbox{})

	_, failures, _ := d.Dispatch(context.Background(), []domain.ToolCall{
		{Kind: domain.ToolStoredContent, Reason: "read the rest", SHAKey: "0badc0de"},
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if !strings.Contains(failures[0], "not found") {
		t.Fatalf("expected not-found failure, got %q", failures[0])
	}
}

func TestDispatchFormatsModelList(t *testing.T) {
	d, _ := newTestDispatcher(Toolbox{
		Models: &fakeModels{models: []string{"llama3.1:8b", "qwen2.5:7b"}},
	})

	successes, _, _ := d.Dispatch(context.Background(), []domain.ToolCall{
		{Kind: domain.ToolOllamaModels, Reason: "check availability"},
	})
	if len(successes) != 1 {
		t.Fatalf("expected 1 success, got %d", len(successes))
	}
	want := "GetOllamaModels (check availability):\nAvailable models:\n- llama3.1:8b\n- qwen2.5:7b"
	if successes[0] != want {
		t.Fatalf("unexpected model list: %q", successes[0])
	}
}

func TestDispatchUnknownToolKindFails(t *testing.T) {
	d, _ := newTestDispatcher(Toolbox{})

	_, failures, _ := d.Dispatch(context.Background(), []domain.ToolCall{
		{Kind: domain.ToolKind("Teleport"), Reason: "nope"},
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if !strings.Contains(failures[0], "unknown tool kind") {
		t.Fatalf("unexpected failure: %q", failures[0])
	}
}
