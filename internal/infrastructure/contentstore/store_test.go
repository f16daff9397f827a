package contentstore

import "testing"

func TestPutReturnsShortDeterministicKey(t *testing.T) {
	store := New()

	key := store.Put("hello world")
	if len(key) != keyLength {
		t.Fatalf("expected %d-char key, got %q", keyLength, key)
	}
	if again := store.Put("hello world"); again != key {
		t.Fatalf("expected identical content to map to the same key, got %q and %q", key, again)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single entry for duplicate content, got %d", store.Len())
	}
	if other := store.Put("hello there"); other == key {
		t.Fatalf("expected different content to map to a different key")
	}
}

func TestGetRoundTrip(t *testing.T) {
	store := New()
	key := store.Put("the full tool output")

	content, ok := store.Get(key)
	if !ok {
		t.Fatalf("expected stored content under %q", key)
	}
	if content != "the full tool output" {
		t.Fatalf("unexpected content: %q", content)
	}

	if _, ok := store.Get("ffffffff"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestClearDropsAllEntries(t *testing.T) {
	store := New()
	key := store.Put("volatile")
	store.Clear()

	if _, ok := store.Get(key); ok {
		t.Fatalf("expected no entries after clear")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after clear, got %d", store.Len())
	}
}
