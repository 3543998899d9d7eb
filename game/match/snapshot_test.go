package match

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestSnapshotRestore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		tc := &TimeControl{Initial: 3 * time.Minute, Increment: 2 * time.Second}
		m, err := New("m1", "alice", "bob", tc)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		mustMove(t, m, "e4", "e5", "Nf3")
		if err := m.OfferDraw("alice"); err != nil {
			t.Fatalf("OfferDraw failed: %v", err)
		}

		snap := m.Snapshot()
		restored, err := Restore(snap)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}

		if restored.ID() != "m1" || restored.White() != "alice" || restored.Black() != "bob" {
			t.Errorf("identity fields lost: %s %s %s", restored.ID(), restored.White(), restored.Black())
		}
		if restored.Position() != m.Position() {
			t.Errorf("position mismatch: %s vs %s", restored.Position(), m.Position())
		}
		if restored.Turn() != "bob" {
			t.Errorf("turn should derive from the position; expected bob, got %s", restored.Turn())
		}
		if !reflect.DeepEqual(restored.MoveLog(), m.MoveLog()) {
			t.Errorf("move log mismatch: %v vs %v", restored.MoveLog(), m.MoveLog())
		}
		if !reflect.DeepEqual(restored.PositionHistory(), m.PositionHistory()) {
			t.Errorf("history mismatch: %v vs %v", restored.PositionHistory(), m.PositionHistory())
		}
		if from, ok := restored.DrawOfferFrom(); !ok || from != "alice" {
			t.Errorf("draw offer lost: %q %v", from, ok)
		}

		// A second snapshot of the restored match is identical.
		if !reflect.DeepEqual(restored.Snapshot(), snap) {
			t.Errorf("snapshot not stable across restore:\n%+v\nvs\n%+v", restored.Snapshot(), snap)
		}
	})

	t.Run("paused match", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "d4")
		if err := m.Pause("bob"); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}

		restored, err := Restore(m.Snapshot())
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if restored.Status() != StatusPaused {
			t.Errorf("expected PAUSED, got %s", restored.Status())
		}
		if by, ok := restored.PauseRequestedBy(); !ok || by != "bob" {
			t.Errorf("pause requester lost: %q %v", by, ok)
		}
	})

	t.Run("completed match", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "f3", "e5", "g4", "Qh4#")

		restored, err := Restore(m.Snapshot())
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if restored.Status() != StatusCompleted {
			t.Errorf("expected COMPLETED, got %s", restored.Status())
		}
		if restored.Result() != ResultBlackWins || restored.ResultDetail() != DetailCheckmate {
			t.Errorf("outcome lost: %s / %s", restored.Result(), restored.ResultDetail())
		}
	})

	t.Run("snapshot is independent", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "e4")

		snap := m.Snapshot()
		snap.MoveLog[0] = "d4"
		snap.PositionHistory["garbage"] = 9

		if m.MoveLog()[0] != "e4" {
			t.Error("mutating the snapshot must not touch the match")
		}
		if _, ok := m.PositionHistory()["garbage"]; ok {
			t.Error("mutating the snapshot history must not touch the match")
		}
	})

	t.Run("restored match is independent", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "e4")
		snap := m.Snapshot()

		restored, err := Restore(snap)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		mustMove(t, restored, "e5")

		if len(snap.MoveLog) != 1 {
			t.Error("moving the restored match must not touch the snapshot")
		}
		if len(m.MoveLog()) != 1 {
			t.Error("moving the restored match must not touch the source match")
		}
	})
}

func TestRestoreCorruption(t *testing.T) {
	t.Run("unreplayable move log", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "e4", "e5")
		snap := m.Snapshot()
		snap.MoveLog[1] = "Ke7"

		_, err := Restore(snap)
		var cse *CorruptStateError
		if !errors.As(err, &cse) {
			t.Fatalf("expected CorruptStateError, got %v", err)
		}
		if cse.ID != "m1" {
			t.Errorf("expected match id in error, got %q", cse.ID)
		}
	})

	t.Run("position mismatch", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "e4")
		snap := m.Snapshot()
		snap.Position = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

		_, err := Restore(snap)
		var cse *CorruptStateError
		if !errors.As(err, &cse) {
			t.Fatalf("expected CorruptStateError, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		m := newTestMatch(t)
		snap := m.Snapshot()
		snap.ID = ""

		if _, err := Restore(snap); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("nil snapshot", func(t *testing.T) {
		if _, err := Restore(nil); err == nil {
			t.Error("expected error for nil snapshot")
		}
	})

	t.Run("missing history rebuilt by replay", func(t *testing.T) {
		m := newTestMatch(t)
		mustMove(t, m, "Nf3", "Nf6", "Ng1", "Ng8")
		snap := m.Snapshot()
		snap.PositionHistory = nil

		restored, err := Restore(snap)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if got := restored.DrawStatus().RepetitionCount; got != 2 {
			t.Errorf("expected rebuilt repetition count 2, got %d", got)
		}
	})
}
