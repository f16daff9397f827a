package domain

import "time"

// ToolEvent records one tool invocation outcome inside a run.
type ToolEvent struct {
	Tool   ToolKind `json:"tool"`
	Status string   `json:"status"`
}

const (
	ToolStatusOK    = "ok"
	ToolStatusError = "error"
)

// RunEvent is the audit record published after each terminal loop outcome.
type RunEvent struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id"`
	Outcome    ResultKind  `json:"outcome"`
	Iterations int         `json:"iterations"`
	ToolEvents []ToolEvent `json:"tool_events,omitempty"`
	At         time.Time   `json:"at"`
}
