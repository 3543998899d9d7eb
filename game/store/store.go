package store

import (
	"context"
	"errors"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// ErrNotFound is returned when a match does not exist in storage.
var ErrNotFound = errors.New("match not found")

// Store is the persistence contract for matches. Implementations persist
// snapshots and rebuild entities on load, so a loaded match never shares
// state with the stored record or with other loads of the same id.
type Store interface {
	// Save persists the match, overwriting any previous record.
	Save(ctx context.Context, m *match.Match) error

	// Load retrieves a match by ID. Returns ErrNotFound when absent and a
	// CorruptStateError when the stored record no longer replays.
	Load(ctx context.Context, id string) (*match.Match, error)

	// Delete removes a match. It reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// Exists checks whether a match is in storage.
	Exists(ctx context.Context, id string) (bool, error)

	// LoadAll returns every stored match.
	LoadAll(ctx context.Context) ([]*match.Match, error)

	// LoadByStatus returns the matches currently in the given status.
	LoadByStatus(ctx context.Context, status match.Status) ([]*match.Match, error)

	// LoadByParticipant returns the matches a participant plays in.
	LoadByParticipant(ctx context.Context, participantID string) ([]*match.Match, error)

	// CountActive returns the number of matches in ACTIVE status.
	CountActive(ctx context.Context) (int, error)

	// HealthCheck verifies the backing storage is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}
