package memory

import (
	"fmt"
	"testing"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

func TestMemoryEvictsOldestBeyondCapacity(t *testing.T) {
	mem := NewMemory(3)
	for i := 0; i < 5; i++ {
		mem.AddUser(fmt.Sprintf("message %d", i))
	}

	if mem.Len() != 3 {
		t.Fatalf("expected capacity 3 after overflow, got %d", mem.Len())
	}
	messages := mem.Snapshot()
	if messages[0].Content != "message 2" {
		t.Fatalf("expected oldest surviving message to be 'message 2', got %q", messages[0].Content)
	}
	if messages[2].Content != "message 4" {
		t.Fatalf("expected newest message last, got %q", messages[2].Content)
	}
}

func TestMemoryPreservesRoles(t *testing.T) {
	mem := NewMemory(10)
	mem.AddUser("question")
	mem.AddToolResult("tool output")
	mem.AddError("tool failure")
	mem.AddAssistant("answer")

	messages := mem.Snapshot()
	wantRoles := []domain.Role{domain.RoleUser, domain.RoleTool, domain.RoleError, domain.RoleAssistant}
	for i, want := range wantRoles {
		if messages[i].Role != want {
			t.Fatalf("expected role %s at index %d, got %s", want, i, messages[i].Role)
		}
	}
}

func TestSnapshotIsDetachedFromLaterAppends(t *testing.T) {
	mem := NewMemory(10)
	mem.AddUser("first")

	snapshot := mem.Snapshot()
	mem.AddUser("second")

	if len(snapshot) != 1 {
		t.Fatalf("expected snapshot unaffected by later appends, got %d messages", len(snapshot))
	}
}

func TestMemoryClear(t *testing.T) {
	mem := NewMemory(10)
	mem.AddUser("hello")
	mem.Clear()

	if mem.Len() != 0 {
		t.Fatalf("expected empty memory after clear, got %d messages", mem.Len())
	}
}

func TestRegistryReturnsSameMemoryPerSession(t *testing.T) {
	reg := NewRegistry(5)

	reg.Memory("a").AddUser("hello")
	if got := len(reg.Memory("a").Snapshot()); got != 1 {
		t.Fatalf("expected shared memory for the same session, got %d messages", got)
	}
	if got := len(reg.Memory("b").Snapshot()); got != 0 {
		t.Fatalf("expected separate memory per session, got %d messages", got)
	}
}

func TestRegistryClearEmptiesOnlyTargetSession(t *testing.T) {
	reg := NewRegistry(5)
	reg.Memory("a").AddUser("hello")
	reg.Memory("b").AddUser("hi")

	reg.Clear("a")

	if got := len(reg.Memory("a").Snapshot()); got != 0 {
		t.Fatalf("expected cleared session to be empty, got %d messages", got)
	}
	if got := len(reg.Memory("b").Snapshot()); got != 1 {
		t.Fatalf("expected other session untouched, got %d messages", got)
	}
}
