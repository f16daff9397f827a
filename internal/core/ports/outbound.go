package ports

import (
	"context"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

// StepOracle is the structured language-model call: given the ordered
// session transcript, it returns exactly one decision variant. Transport
// or model faults come back as an error and are fatal to the invocation.
type StepOracle interface {
	Step(ctx context.Context, messages []domain.Message) (domain.AgentDecision, error)
}

// ConversationMemory is one session's bounded message log. Appends beyond
// capacity evict oldest-first. Implementations are not safe for concurrent
// use; callers serialize per-session access.
type ConversationMemory interface {
	AddUser(content string)
	AddAssistant(content string)
	AddToolResult(content string)
	AddError(content string)
	Snapshot() []domain.Message
	Clear()
}

// SessionRegistry owns conversation memories keyed by session id.
// Memories are created lazily on first reference and live for the process
// lifetime.
type SessionRegistry interface {
	Memory(sessionID string) ConversationMemory
	Clear(sessionID string)
}

// ContentStore is the content-addressed blob store backing the
// oversized-output policy. Put is idempotent for identical content.
type ContentStore interface {
	Put(content string) (key string)
	Get(key string) (content string, ok bool)
	Clear()
}

// WebFetcher retrieves a URL as plain text.
type WebFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// WebSearcher runs a web search and returns formatted result text.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// FileReader reads a file as text.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (string, error)
}

// FileWriter writes text to a file, creating parent directories as needed,
// and returns a confirmation message.
type FileWriter interface {
	WriteFile(ctx context.Context, path, content string) (string, error)
}

// CommandRunner executes a shell command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ModelLister returns the model identifiers available on the upstream
// model host.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Transcriber converts an audio payload to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// RunEventPublisher emits fire-and-forget audit events for completed agent
// runs. Implementations must not block the loop on delivery.
type RunEventPublisher interface {
	PublishRunEvent(ctx context.Context, event domain.RunEvent) error
}
