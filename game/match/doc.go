// Package match implements the lifecycle of a single chess match between
// two participants.
//
// The match package owns:
//   - The ACTIVE / PAUSED / COMPLETED state machine
//   - Move application, the SAN move log, and repetition bookkeeping
//   - Draw offers, resignations, pausing, and explicit completion
//   - Optional per-side clock bookkeeping with increments
//   - Snapshot serialization and replay-based restoration
//
// Core Types:
//
// Match is the aggregate root; every transition goes through its methods and
// callers never touch fields directly. Snapshot is the persisted form, and
// State is the read-only view handed to transports. Chess legality itself is
// delegated to the rules package.
//
// Usage:
//
//	m, err := match.New("m1", "alice", "bob", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	san, err := m.ApplyMove("e4")
//	if err != nil {
//		var ime *match.InvalidMoveError
//		if errors.As(err, &ime) {
//			fmt.Println("rejected:", ime.Reason)
//		}
//	}
//	_ = san
//
// Lifecycle Rules:
//
// A match starts ACTIVE at the standard opening position. ACTIVE and PAUSED
// convert into each other freely; only ACTIVE matches accept moves or reach
// COMPLETED, so a paused match must be resumed before it can end. COMPLETED
// is terminal. When a move produces checkmate, stalemate, or another
// automatic adjudication, the match completes in the same call that applied
// the move.
package match
