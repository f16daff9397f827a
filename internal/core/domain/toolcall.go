package domain

// ToolKind discriminates tool call requests. The kind is set by whatever
// decodes the oracle's structured output, never inferred from which
// arguments happen to be populated.
type ToolKind string

const (
	ToolFetchURL      ToolKind = "FetchUrl"
	ToolTavilySearch  ToolKind = "TavilySearch"
	ToolStoredContent ToolKind = "GetStoredContent"
	ToolOllamaModels  ToolKind = "GetOllamaModels"
	ToolReadFile      ToolKind = "ReadFile"
	ToolWriteFile     ToolKind = "WriteFile"
	ToolBash          ToolKind = "Bash"
)

// ToolCall is a tagged tool invocation request. Only the argument fields
// relevant to Kind are meaningful; Reason is carried on every variant for
// approval UIs and result labeling.
type ToolCall struct {
	Kind   ToolKind `json:"kind"`
	Reason string   `json:"reason,omitempty"`

	URL     string `json:"url,omitempty"`
	Query   string `json:"query,omitempty"`
	SHAKey  string `json:"sha_key,omitempty"`
	Path    string `json:"file_path,omitempty"`
	Content string `json:"content,omitempty"`
	Command string `json:"command,omitempty"`
}

// Mutating reports whether the call belongs to the action tier that must
// pass human approval before execution. Everything else is read-only and
// safe to auto-execute.
func (c ToolCall) Mutating() bool {
	switch c.Kind {
	case ToolReadFile, ToolWriteFile, ToolBash:
		return true
	default:
		return false
	}
}

// Target returns the identifying argument shown next to the reason in
// formatted results (URL, query, path or command, depending on the kind).
func (c ToolCall) Target() string {
	switch c.Kind {
	case ToolFetchURL:
		return c.URL
	case ToolTavilySearch:
		return c.Query
	case ToolStoredContent:
		return c.SHAKey
	case ToolReadFile, ToolWriteFile:
		return c.Path
	case ToolBash:
		return c.Command
	default:
		return ""
	}
}
