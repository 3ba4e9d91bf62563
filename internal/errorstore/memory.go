package errorstore

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Provider. Entries live until cleared or until the
// process exits.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]map[string]string)}
}

func (m *Memory) ForSession(id string) Store {
	return &memorySession{parent: m, id: id}
}

type memorySession struct {
	parent *Memory
	id     string
}

func (s *memorySession) Set(_ context.Context, key, message string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	entries, ok := s.parent.sessions[s.id]
	if !ok {
		entries = make(map[string]string)
		s.parent.sessions[s.id] = entries
	}
	entries[key] = message
	return nil
}

func (s *memorySession) Clear(_ context.Context, key string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	entries, ok := s.parent.sessions[s.id]
	if !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(s.parent.sessions, s.id)
	}
	return nil
}

func (s *memorySession) Load(_ context.Context) (map[string]string, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()

	out := make(map[string]string, len(s.parent.sessions[s.id]))
	maps.Copy(out, s.parent.sessions[s.id])
	return out, nil
}
