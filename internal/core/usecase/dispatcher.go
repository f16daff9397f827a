package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
	"github.com/kirillkom/discord-research-agent/internal/core/ports"
)

const (
	// MaxContextLength bounds how much of a single tool result enters the
	// transcript. Longer results are previewed and stored by content hash.
	MaxContextLength = 2000

	truncationReserve = 200
)

// Toolbox bundles the capability providers the dispatcher can reach.
// Action-tier capabilities (reader, writer, runner) are only reachable
// through an approved perform_action decision; the loop enforces that.
type Toolbox struct {
	Fetcher  ports.WebFetcher
	Searcher ports.WebSearcher
	Reader   ports.FileReader
	Writer   ports.FileWriter
	Runner   ports.CommandRunner
	Models   ports.ModelLister
}

// Dispatcher executes batches of tool calls with partial-failure
// semantics: every call in a batch is attempted, failures are formatted
// and collected separately, and results keep request order.
type Dispatcher struct {
	tools       Toolbox
	store       ports.ContentStore
	toolTimeout time.Duration
	logger      *slog.Logger
}

func NewDispatcher(tools Toolbox, store ports.ContentStore, toolTimeout time.Duration, logger *slog.Logger) *Dispatcher {
	if toolTimeout <= 0 {
		toolTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		tools:       tools,
		store:       store,
		toolTimeout: toolTimeout,
		logger:      logger,
	}
}

// Dispatch runs each request in order and splits the formatted outcomes
// into successes and failures. One request's failure never aborts the
// rest of the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []domain.ToolCall) (successes, failures []string, events []domain.ToolEvent) {
	for _, call := range calls {
		content, err := d.invoke(ctx, call)
		if err != nil {
			d.logger.Warn("tool_call_failed", "tool", string(call.Kind), "reason", call.Reason, "error", err)
			failures = append(failures, formatFailure(call, err))
			events = append(events, domain.ToolEvent{Tool: call.Kind, Status: domain.ToolStatusError})
			continue
		}
		if call.Kind == domain.ToolStoredContent {
			// Re-truncating retrieved content would make anything past the
			// preview permanently unreachable.
			successes = append(successes, formatLabel(call)+content)
		} else {
			successes = append(successes, d.present(content, formatLabel(call)))
		}
		events = append(events, domain.ToolEvent{Tool: call.Kind, Status: domain.ToolStatusOK})
	}
	return successes, failures, events
}

func (d *Dispatcher) invoke(ctx context.Context, call domain.ToolCall) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.toolTimeout)
	defer cancel()

	switch call.Kind {
	case domain.ToolFetchURL:
		return d.tools.Fetcher.Fetch(callCtx, call.URL)
	case domain.ToolTavilySearch:
		return d.tools.Searcher.Search(callCtx, call.Query)
	case domain.ToolStoredContent:
		content, ok := d.store.Get(strings.TrimSpace(call.SHAKey))
		if !ok {
			return "", domain.WrapError(domain.ErrNotFound, "stored content", fmt.Errorf("no content for SHA key %q", call.SHAKey))
		}
		return content, nil
	case domain.ToolOllamaModels:
		models, err := d.tools.Models.ListModels(callCtx)
		if err != nil {
			return "", err
		}
		return formatModelList(models), nil
	case domain.ToolReadFile:
		return d.tools.Reader.ReadFile(callCtx, call.Path)
	case domain.ToolWriteFile:
		return d.tools.Writer.WriteFile(callCtx, call.Path, call.Content)
	case domain.ToolBash:
		return d.tools.Runner.Run(callCtx, call.Command)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "dispatch", fmt.Errorf("unknown tool kind %q", call.Kind))
	}
}

// present applies the oversized-content policy: short content passes
// through labeled; long content is stored whole under its hash and only a
// preview plus a retrieval notice enters the transcript.
func (d *Dispatcher) present(content, labelPrefix string) string {
	if len(content) <= MaxContextLength {
		return labelPrefix + content
	}

	key := d.store.Put(content)
	preview := content[:MaxContextLength-truncationReserve]
	return fmt.Sprintf(
		"%s%s\n\n[Content truncated - %d chars total]\n[Full content stored: SHA=%s]\n[Use GetStoredContentTool with SHA '%s' to access full content]",
		labelPrefix, preview, len(content), key, key,
	)
}

func formatLabel(call domain.ToolCall) string {
	if target := call.Target(); target != "" && call.Kind != domain.ToolStoredContent {
		return fmt.Sprintf("%s (%s, %s):\n", call.Kind, call.Reason, target)
	}
	return fmt.Sprintf("%s (%s):\n", call.Kind, call.Reason)
}

func formatFailure(call domain.ToolCall, err error) string {
	return fmt.Sprintf("%s failed (%s): %v", call.Kind, call.Reason, err)
}

func formatModelList(models []string) string {
	if len(models) == 0 {
		return "No models available."
	}
	lines := make([]string, 0, len(models)+1)
	lines = append(lines, "Available models:")
	for _, model := range models {
		lines = append(lines, "- "+model)
	}
	return strings.Join(lines, "\n")
}
