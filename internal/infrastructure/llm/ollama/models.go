package ollama

import (
	"context"
	"strings"

	"github.com/kirillkom/discord-research-agent/internal/infrastructure/resilience"
)

// ModelCatalog lists the models available on the upstream host. Unlike the
// oracle call this is a plain information tool, so it may carry retry and
// breaker policy.
type ModelCatalog struct {
	client   *Client
	executor *resilience.Executor
}

func NewModelCatalog(client *Client, executor *resilience.Executor) *ModelCatalog {
	return &ModelCatalog{client: client, executor: executor}
}

// ListModels handles both upstream shapes: the native /api/tags response
// with "models"/"name" and the OpenAI-compatible /models response with
// "data"/"id".
func (m *ModelCatalog) ListModels(ctx context.Context) ([]string, error) {
	url := m.client.baseURL + "/api/tags"
	if strings.Contains(m.client.baseURL, "/v1") {
		url = m.client.baseURL + "/models"
	}

	var response struct {
		Models []modelEntry `json:"models"`
		Data   []modelEntry `json:"data"`
	}

	call := func(ctx context.Context) error {
		return m.client.getJSON(ctx, url, &response, "list models")
	}

	var err error
	if m.executor != nil {
		err = m.executor.Execute(ctx, "ollama.list_models", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("list models", err)
	}

	entries := response.Models
	if len(entries) == 0 {
		entries = response.Data
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if id := entry.id(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type modelEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e modelEntry) id() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}
