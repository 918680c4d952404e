package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rfkit/rfkit/pkg/errors"
)

// MemoryStore keeps figures in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	figures map[string]*Figure
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{figures: make(map[string]*Figure)}
}

// Get retrieves a figure by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Figure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fig, ok := s.figures[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeFigureNotFound, "figure %s not found", id)
	}
	cp := *fig
	return &cp, nil
}

// Put stores or replaces a figure.
func (s *MemoryStore) Put(_ context.Context, fig *Figure) error {
	if fig.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "figure has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *fig
	s.figures[fig.ID] = &cp
	return nil
}

// List returns all figures, newest first, without SVG payloads.
func (s *MemoryStore) List(_ context.Context) ([]*Figure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Figure, 0, len(s.figures))
	for _, fig := range s.figures {
		cp := *fig
		cp.SVG = nil
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a figure.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.figures, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
