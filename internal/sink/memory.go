package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryStore keeps destinations in memory. Content becomes visible on
// Close; an aborted sink leaves no entry.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Create implements Store.
func (m *MemoryStore) Create(ctx context.Context, name string) (Sink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memorySink{store: m, name: name}, nil
}

// Open implements Store.
func (m *MemoryStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m.Bytes(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Bytes returns a copy of the committed content of name.
func (m *MemoryStore) Bytes(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Names returns the committed names in sorted order.
func (m *MemoryStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type memorySink struct {
	store *MemoryStore
	name  string
	buf   bytes.Buffer
	done  bool
}

func (s *memorySink) Write(p []byte) (int, error) {
	if s.done {
		return 0, ErrClosed
	}
	return s.buf.Write(p)
}

func (s *memorySink) Close() error {
	if s.done {
		return ErrClosed
	}
	s.done = true
	s.store.mu.Lock()
	s.store.objects[s.name] = s.buf.Bytes()
	s.store.mu.Unlock()
	return nil
}

func (s *memorySink) Abort() error {
	s.done = true
	s.buf.Reset()
	return nil
}
