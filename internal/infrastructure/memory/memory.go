package memory

import (
	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

const DefaultCapacity = 20

// Memory is a bounded, ordered message log for one session. Appends beyond
// capacity evict the oldest messages first. Not safe for concurrent use;
// the caller serializes per-session access.
type Memory struct {
	capacity int
	messages []domain.Message
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) AddUser(content string) {
	m.append(domain.Message{Role: domain.RoleUser, Content: content})
}

func (m *Memory) AddAssistant(content string) {
	m.append(domain.Message{Role: domain.RoleAssistant, Content: content})
}

func (m *Memory) AddToolResult(content string) {
	m.append(domain.Message{Role: domain.RoleTool, Content: content})
}

func (m *Memory) AddError(content string) {
	m.append(domain.Message{Role: domain.RoleError, Content: content})
}

func (m *Memory) append(msg domain.Message) {
	m.messages = append(m.messages, msg)
	if len(m.messages) > m.capacity {
		trimmed := make([]domain.Message, m.capacity)
		copy(trimmed, m.messages[len(m.messages)-m.capacity:])
		m.messages = trimmed
	}
}

// Snapshot returns a copy of the current transcript, never the live slice,
// so dispatch logic can iterate while later appends mutate the log.
func (m *Memory) Snapshot() []domain.Message {
	out := make([]domain.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *Memory) Len() int {
	return len(m.messages)
}

func (m *Memory) Clear() {
	m.messages = nil
}
