package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	// RoleError carries a tool-dispatch failure back to the oracle as
	// context. It is not a fatal loop error.
	RoleError Role = "error"
)

// Message is one entry in a session transcript. Messages are immutable
// once appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
