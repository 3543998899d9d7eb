package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// eachStore runs a subtest against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		fn(t, s)
	})

	t.Run("file", func(t *testing.T) {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "matches"))
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func newStoredMatch(t *testing.T, s Store, id, white, black string, moves ...string) *match.Match {
	t.Helper()
	m, err := match.New(id, white, black, nil)
	if err != nil {
		t.Fatalf("match.New failed: %v", err)
	}
	for _, mv := range moves {
		if _, err := m.ApplyMove(mv); err != nil {
			t.Fatalf("ApplyMove(%s) failed: %v", mv, err)
		}
	}
	if err := s.Save(context.Background(), m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return m
}

func TestStoreSaveLoad(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		saved := newStoredMatch(t, s, "m1", "alice", "bob", "e4", "e5", "Nf3")

		loaded, err := s.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Position() != saved.Position() {
			t.Errorf("position mismatch: %s vs %s", loaded.Position(), saved.Position())
		}
		if got := loaded.MoveLog(); len(got) != 3 || got[2] != "Nf3" {
			t.Errorf("unexpected move log %v", got)
		}
		if loaded.Turn() != "bob" {
			t.Errorf("expected bob to move, got %s", loaded.Turn())
		}
	})
}

func TestStoreLoadNotFound(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.Load(context.Background(), "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreCopyIndependence(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		newStoredMatch(t, s, "m1", "alice", "bob", "e4")

		first, err := s.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if _, err := first.ApplyMove("e5"); err != nil {
			t.Fatalf("ApplyMove failed: %v", err)
		}

		// The unsaved mutation must not leak into a second load.
		second, err := s.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got := len(second.MoveLog()); got != 1 {
			t.Errorf("expected 1 stored move, got %d", got)
		}
	})
}

func TestStoreSaveOverwrites(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := newStoredMatch(t, s, "m1", "alice", "bob", "e4")

		if _, err := m.ApplyMove("e5"); err != nil {
			t.Fatalf("ApplyMove failed: %v", err)
		}
		if err := s.Save(ctx, m); err != nil {
			t.Fatalf("second Save failed: %v", err)
		}

		loaded, err := s.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got := len(loaded.MoveLog()); got != 2 {
			t.Errorf("expected 2 moves after overwrite, got %d", got)
		}
	})
}

func TestStoreDeleteAndExists(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		newStoredMatch(t, s, "m1", "alice", "bob")

		if ok, err := s.Exists(ctx, "m1"); err != nil || !ok {
			t.Errorf("expected m1 to exist, got %v %v", ok, err)
		}

		removed, err := s.Delete(ctx, "m1")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if !removed {
			t.Error("expected Delete to report removal")
		}

		if ok, _ := s.Exists(ctx, "m1"); ok {
			t.Error("m1 should be gone")
		}
		if removed, err := s.Delete(ctx, "m1"); err != nil || removed {
			t.Errorf("second delete should be a no-op, got %v %v", removed, err)
		}
	})
}

func TestStoreQueries(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		newStoredMatch(t, s, "m1", "alice", "bob")
		newStoredMatch(t, s, "m2", "alice", "carol")

		paused := newStoredMatch(t, s, "m3", "dave", "erin")
		if err := paused.Pause("dave"); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		if err := s.Save(ctx, paused); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		done := newStoredMatch(t, s, "m4", "alice", "frank")
		if err := done.Resign("frank"); err != nil {
			t.Fatalf("Resign failed: %v", err)
		}
		if err := s.Save(ctx, done); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		t.Run("LoadAll", func(t *testing.T) {
			all, err := s.LoadAll(ctx)
			if err != nil {
				t.Fatalf("LoadAll failed: %v", err)
			}
			if len(all) != 4 {
				t.Errorf("expected 4 matches, got %d", len(all))
			}
		})

		t.Run("LoadByStatus", func(t *testing.T) {
			active, err := s.LoadByStatus(ctx, match.StatusActive)
			if err != nil {
				t.Fatalf("LoadByStatus failed: %v", err)
			}
			if len(active) != 2 {
				t.Errorf("expected 2 active matches, got %d", len(active))
			}
			completed, err := s.LoadByStatus(ctx, match.StatusCompleted)
			if err != nil {
				t.Fatalf("LoadByStatus failed: %v", err)
			}
			if len(completed) != 1 {
				t.Errorf("expected 1 completed match, got %d", len(completed))
			}
		})

		t.Run("LoadByParticipant", func(t *testing.T) {
			mine, err := s.LoadByParticipant(ctx, "alice")
			if err != nil {
				t.Fatalf("LoadByParticipant failed: %v", err)
			}
			if len(mine) != 3 {
				t.Errorf("expected 3 matches for alice, got %d", len(mine))
			}
			none, err := s.LoadByParticipant(ctx, "nobody")
			if err != nil {
				t.Fatalf("LoadByParticipant failed: %v", err)
			}
			if len(none) != 0 {
				t.Errorf("expected no matches, got %d", len(none))
			}
		})

		t.Run("CountActive", func(t *testing.T) {
			count, err := s.CountActive(ctx)
			if err != nil {
				t.Fatalf("CountActive failed: %v", err)
			}
			if count != 2 {
				t.Errorf("expected 2 active matches, got %d", count)
			}
		})
	})
}

func TestStoreHealthCheck(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if err := s.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck failed: %v", err)
		}
	})
}

func TestStoreStatusTransitionPersists(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := newStoredMatch(t, s, "m1", "alice", "bob", "e4")

		if err := m.Pause("alice"); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		if err := s.Save(ctx, m); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := s.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Status() != match.StatusPaused {
			t.Errorf("expected PAUSED after reload, got %s", loaded.Status())
		}
		if by, ok := loaded.PauseRequestedBy(); !ok || by != "alice" {
			t.Errorf("pause requester lost: %q %v", by, ok)
		}
	})
}
