package baseline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps entries in memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: map[string]*Entry{}}
}

func (r *MemoryRepository) List(context.Context) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		copied := *entry
		out = append(out, &copied)
	}
	sortEntries(out)
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, fingerprint string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[strings.TrimSpace(fingerprint)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, fingerprint)
	}
	copied := *entry
	return &copied, nil
}

func (r *MemoryRepository) Add(_ context.Context, entry *Entry) (*Entry, error) {
	if entry == nil || strings.TrimSpace(entry.Fingerprint) == "" {
		return nil, fmt.Errorf("baseline: entry fingerprint is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	r.entries[copied.Fingerprint] = &copied
	out := copied
	return &out, nil
}

func (r *MemoryRepository) Replace(_ context.Context, entries []*Entry) error {
	next := make(map[string]*Entry, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		copied := *entry
		if copied.ID == uuid.Nil {
			copied.ID = uuid.New()
		}
		next[copied.Fingerprint] = &copied
	}
	r.mu.Lock()
	r.entries = next
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Clear(context.Context) error {
	r.mu.Lock()
	r.entries = map[string]*Entry{}
	r.mu.Unlock()
	return nil
}
