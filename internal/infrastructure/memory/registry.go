package memory

import (
	"sync"

	"github.com/kirillkom/discord-research-agent/internal/core/ports"
)

// Registry maps session ids to their conversation memories. The map itself
// is safe for concurrent use across sessions; the memories it hands out
// are not, and callers serialize per-session access.
type Registry struct {
	capacity int

	mu       sync.Mutex
	sessions map[string]*Memory
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		sessions: make(map[string]*Memory),
	}
}

// Memory returns the session's log, creating it on first reference.
func (r *Registry) Memory(sessionID string) ports.ConversationMemory {
	r.mu.Lock()
	defer r.mu.Unlock()

	mem, ok := r.sessions[sessionID]
	if !ok {
		mem = NewMemory(r.capacity)
		r.sessions[sessionID] = mem
	}
	return mem
}

func (r *Registry) Clear(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mem, ok := r.sessions[sessionID]; ok {
		mem.Clear()
	}
}
