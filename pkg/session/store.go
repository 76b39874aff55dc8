package session

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/listgraph/pkg/errors"
)

// Store keeps workspaces by id.
type Store interface {
	// Add stores ws and starts its expiry clock.
	Add(ws *Workspace)
	// Get returns the workspace with id and extends its lifetime. Unknown
	// ids fail with SESSION_NOT_FOUND, expired ones with SESSION_EXPIRED.
	Get(id string) (*Workspace, error)
	// Delete removes a workspace. Deleting an unknown id is not an error.
	Delete(id string)
	// List returns the live workspaces, oldest first.
	List() []*Workspace
	// Cleanup removes expired workspaces and returns how many were removed.
	Cleanup() int
}

// MemoryStore is an in-process Store with sliding expiry.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*Workspace
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore returns a store expiring workspaces idle for ttl. A
// non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{items: make(map[string]*Workspace), ttl: ttl, now: time.Now}
}

// Add implements Store.
func (s *MemoryStore) Add(ws *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws.expiresAt = s.now().Add(s.ttl)
	s.items[ws.ID] = ws
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.items[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "workspace %q not found", id)
	}
	now := s.now()
	if now.After(ws.expiresAt) {
		delete(s.items, id)
		return nil, errors.New(errors.ErrCodeSessionExpired, "workspace %q expired", id)
	}
	ws.expiresAt = now.Add(s.ttl)
	return ws, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// List implements Store.
func (s *MemoryStore) List() []*Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]*Workspace, 0, len(s.items))
	for _, ws := range s.items {
		if !now.After(ws.expiresAt) {
			out = append(out, ws)
		}
	}
	slices.SortFunc(out, func(a, b *Workspace) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Cleanup implements Store.
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, ws := range s.items {
		if now.After(ws.expiresAt) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored workspaces, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run calls Cleanup every interval until ctx is done. onCleanup, if set,
// receives the number of removed workspaces when it is non-zero.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration, onCleanup func(int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Cleanup(); n > 0 && onCleanup != nil {
				onCleanup(n)
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
