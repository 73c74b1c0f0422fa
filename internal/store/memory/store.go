package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wurt83ow/yandex-dialogs/internal/store"
)

// Store хранит подключения в памяти процесса.
// Используется, когда адрес СУБД не задан.
type Store struct {
	mu      sync.RWMutex
	entries map[string]store.Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]store.Entry)}
}

func (s *Store) SaveEntry(_ context.Context, e store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.ID]; ok {
		return store.ErrConflict
	}
	for _, existing := range s.entries {
		if existing.WebhookID == e.WebhookID {
			return store.ErrConflict
		}
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.entries[e.ID] = e
	return nil
}

func (s *Store) ListEntries(_ context.Context) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]store.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}
