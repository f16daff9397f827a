// Package contentstore keeps full tool outputs addressable by a short
// content hash, so the agent loop can truncate oversized results without
// losing them.
package contentstore

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// keyLength is the number of hex characters kept from the SHA-256 digest.
// Collisions inside the truncated space are accepted as a known limitation.
const keyLength = 8

// Store is an in-memory content-addressed blob store. Entries are never
// mutated and only removed by Clear; growth is unbounded by design.
type Store struct {
	mu      sync.RWMutex
	entries map[string]string
}

func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// Put stores content under its hash key and returns the key. Storing
// identical content twice yields the same key.
func (s *Store) Put(content string) string {
	key := hashKey(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = content
	return key
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.entries[key]
	return content, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
}

func hashKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:keyLength]
}
