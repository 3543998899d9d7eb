package store

import (
	"context"
	"sync"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// MemoryStore keeps match snapshots in an in-process map. It is the
// reference implementation: no durability, but the full Store contract
// including copy independence, since every load rebuilds a fresh entity
// from the stored snapshot.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*match.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*match.Snapshot)}
}

// Save persists the match's snapshot, overwriting any previous record.
func (s *MemoryStore) Save(ctx context.Context, m *match.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := m.Snapshot()
	s.mu.Lock()
	s.snapshots[snap.ID] = snap
	s.mu.Unlock()
	return nil
}

// Load rebuilds a match from its stored snapshot.
func (s *MemoryStore) Load(ctx context.Context, id string) (*match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	snap, ok := s.snapshots[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return match.Restore(snap)
}

// Delete removes a match and reports whether a record was removed.
func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return false, nil
	}
	delete(s.snapshots, id)
	return true, nil
}

// Exists checks whether a match is stored.
func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[id]
	return ok, nil
}

// LoadAll rebuilds every stored match.
func (s *MemoryStore) LoadAll(ctx context.Context) ([]*match.Match, error) {
	return s.loadWhere(ctx, func(*match.Snapshot) bool { return true })
}

// LoadByStatus rebuilds the matches currently in the given status.
func (s *MemoryStore) LoadByStatus(ctx context.Context, status match.Status) ([]*match.Match, error) {
	return s.loadWhere(ctx, func(snap *match.Snapshot) bool { return snap.Status == status })
}

// LoadByParticipant rebuilds the matches a participant plays in.
func (s *MemoryStore) LoadByParticipant(ctx context.Context, participantID string) ([]*match.Match, error) {
	return s.loadWhere(ctx, func(snap *match.Snapshot) bool {
		return snap.White == participantID || snap.Black == participantID
	})
}

// CountActive counts the matches in ACTIVE status.
func (s *MemoryStore) CountActive(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, snap := range s.snapshots {
		if snap.Status == match.StatusActive {
			count++
		}
	}
	return count, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) loadWhere(ctx context.Context, keep func(*match.Snapshot) bool) ([]*match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var picked []*match.Snapshot
	for _, snap := range s.snapshots {
		if keep(snap) {
			picked = append(picked, snap)
		}
	}
	s.mu.RUnlock()

	matches := make([]*match.Match, 0, len(picked))
	for _, snap := range picked {
		m, err := match.Restore(snap)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}
