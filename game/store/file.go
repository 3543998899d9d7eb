package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// FileStore persists one JSON snapshot per match under a directory. Files
// are named <id>.json; writes go through a temp file and rename so a crash
// mid-write never leaves a half-written record.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store, creating the directory if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create matches directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the match's snapshot to its JSON file.
func (s *FileStore) Save(ctx context.Context, m *match.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := m.Snapshot()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match %s: %w", snap.ID, err)
	}

	path := s.filePath(snap.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write match file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize match file: %w", err)
	}
	return nil
}

// Load reads a match's JSON file and rebuilds the entity.
func (s *FileStore) Load(ctx context.Context, id string) (*match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.readSnapshot(id)
	if err != nil {
		return nil, err
	}
	return match.Restore(snap)
}

// Delete removes a match's file and reports whether one existed.
func (s *FileStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := os.Remove(s.filePath(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove match file: %w", err)
	}
	return true, nil
}

// Exists checks whether a match's file is present.
func (s *FileStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.filePath(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadAll rebuilds every stored match.
func (s *FileStore) LoadAll(ctx context.Context) ([]*match.Match, error) {
	return s.loadWhere(ctx, func(*match.Snapshot) bool { return true })
}

// LoadByStatus rebuilds the matches currently in the given status.
func (s *FileStore) LoadByStatus(ctx context.Context, status match.Status) ([]*match.Match, error) {
	return s.loadWhere(ctx, func(snap *match.Snapshot) bool { return snap.Status == status })
}

// LoadByParticipant rebuilds the matches a participant plays in.
func (s *FileStore) LoadByParticipant(ctx context.Context, participantID string) ([]*match.Match, error) {
	return s.loadWhere(ctx, func(snap *match.Snapshot) bool {
		return snap.White == participantID || snap.Black == participantID
	})
}

// CountActive counts the stored matches in ACTIVE status. It reads
// snapshots only; no replay happens.
func (s *FileStore) CountActive(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ids, err := s.listIDs()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, id := range ids {
		snap, err := s.readSnapshot(id)
		if err != nil {
			return 0, err
		}
		if snap.Status == match.StatusActive {
			count++
		}
	}
	return count, nil
}

// HealthCheck verifies the matches directory is readable.
func (s *FileStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.ReadDir(s.dir); err != nil {
		return fmt.Errorf("matches directory unavailable: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) loadWhere(ctx context.Context, keep func(*match.Snapshot) bool) ([]*match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.listIDs()
	if err != nil {
		return nil, err
	}

	matches := make([]*match.Match, 0, len(ids))
	for _, id := range ids {
		snap, err := s.readSnapshot(id)
		if err != nil {
			return nil, err
		}
		if !keep(snap) {
			continue
		}
		m, err := match.Restore(snap)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *FileStore) listIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read matches directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

func (s *FileStore) readSnapshot(id string) (*match.Snapshot, error) {
	data, err := os.ReadFile(s.filePath(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}

	var snap match.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &match.CorruptStateError{ID: id, Err: fmt.Errorf("unreadable match file: %w", err)}
	}
	return &snap, nil
}

func (s *FileStore) filePath(id string) string {
	return filepath.Join(s.dir, id+".json")
}
