package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mcp-arcade/chess-match-server/game/match"
	"github.com/mcp-arcade/chess-match-server/game/rules"
	"github.com/mcp-arcade/chess-match-server/game/store"
)

// matchServiceImpl implements MatchService on top of a Store. Every mutation
// runs load -> delegate -> persist under a per-match lock, so two concurrent
// mutations of the same match cannot interleave and lose an update. Creates
// are additionally serialized behind createMu, which makes the admission
// count exact within this process.
type matchServiceImpl struct {
	store     store.Store
	maxActive int

	createMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewMatchService creates a match service with the default admission
// ceiling.
func NewMatchService(st store.Store) MatchService {
	return NewMatchServiceWithLimit(st, DefaultMaxActive)
}

// NewMatchServiceWithLimit creates a match service with an explicit ceiling
// on concurrently ACTIVE matches. A non-positive limit falls back to the
// default.
func NewMatchServiceWithLimit(st store.Store, maxActive int) MatchService {
	if maxActive <= 0 {
		maxActive = DefaultMaxActive
	}
	return &matchServiceImpl{
		store:     st,
		maxActive: maxActive,
		locks:     make(map[string]*sync.Mutex),
	}
}

// CreateMatch admits and persists a new match between two participants.
func (s *matchServiceImpl) CreateMatch(ctx context.Context, white, black string, tc *match.TimeControl) (*match.State, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	active, err := s.store.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active matches: %w", err)
	}
	if active >= s.maxActive {
		return nil, &CapacityError{Limit: s.maxActive}
	}

	m, err := match.New(uuid.NewString(), white, black, tc)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to persist match %s: %w", m.ID(), err)
	}
	return m.State(), nil
}

// GetMatch returns the current state of a match.
func (s *matchServiceImpl) GetMatch(ctx context.Context, matchID string) (*match.State, error) {
	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return m.State(), nil
}

// ListMatches returns the state of every stored match.
func (s *matchServiceImpl) ListMatches(ctx context.Context) ([]*match.State, error) {
	matches, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return states(matches), nil
}

// ListByStatus returns the matches currently in the given status.
func (s *matchServiceImpl) ListByStatus(ctx context.Context, status match.Status) ([]*match.State, error) {
	matches, err := s.store.LoadByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return states(matches), nil
}

// ListByParticipant returns the matches a participant plays in.
func (s *matchServiceImpl) ListByParticipant(ctx context.Context, participantID string) ([]*match.State, error) {
	matches, err := s.store.LoadByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return states(matches), nil
}

// DeleteMatch removes a match from storage. The lock entry stays in the
// map: ids are never reused, and dropping it here would let a racing
// lockFor hand out a second mutex for the same match while the first is
// still held.
func (s *matchServiceImpl) DeleteMatch(ctx context.Context, matchID string) error {
	lock := s.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	removed, err := s.store.Delete(ctx, matchID)
	if err != nil {
		return err
	}
	if !removed {
		return store.ErrNotFound
	}
	return nil
}

// PlayMove applies one move and persists the result. When the move ends the
// game, the completed state comes back from the same call.
func (s *matchServiceImpl) PlayMove(ctx context.Context, matchID, move string) (*MoveResult, error) {
	lock := s.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	san, err := m.ApplyMove(move)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to persist match %s: %w", matchID, err)
	}

	return &MoveResult{
		San:        san,
		State:      m.State(),
		GameOver:   m.Status() == match.StatusCompleted,
		DrawStatus: m.DrawStatus(),
	}, nil
}

// ValidateMove probes a move without mutating anything.
func (s *matchServiceImpl) ValidateMove(ctx context.Context, matchID, move string) (*match.Validation, error) {
	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	v := m.ValidateMove(move)
	return &v, nil
}

// LegalMoves lists the legal moves in a match's current position.
func (s *matchServiceImpl) LegalMoves(ctx context.Context, matchID, fromSquare string) ([]string, error) {
	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return m.LegalMoves(fromSquare), nil
}

// Resign completes the match in the other participant's favor.
func (s *matchServiceImpl) Resign(ctx context.Context, matchID, participantID string) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.Resign(participantID)
	})
}

// OfferDraw records a draw offer.
func (s *matchServiceImpl) OfferDraw(ctx context.Context, matchID, participantID string) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.OfferDraw(participantID)
	})
}

// AcceptDraw completes the match as a draw by agreement.
func (s *matchServiceImpl) AcceptDraw(ctx context.Context, matchID, participantID string) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.AcceptDraw(participantID)
	})
}

// DeclineDraw clears an outstanding draw offer.
func (s *matchServiceImpl) DeclineDraw(ctx context.Context, matchID string) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.DeclineDraw()
	})
}

// PauseMatch suspends an active match.
func (s *matchServiceImpl) PauseMatch(ctx context.Context, matchID, participantID string) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.Pause(participantID)
	})
}

// ResumeMatch returns a paused match to play.
func (s *matchServiceImpl) ResumeMatch(ctx context.Context, matchID string) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.Resume()
	})
}

// CompleteMatch ends a match with an explicit result.
func (s *matchServiceImpl) CompleteMatch(ctx context.Context, matchID string, result match.Result) (*match.State, error) {
	return s.mutate(ctx, matchID, func(m *match.Match) error {
		return m.Complete(result)
	})
}

// DrawReport returns the draw bookkeeping for a match.
func (s *matchServiceImpl) DrawReport(ctx context.Context, matchID string) (*DrawReport, error) {
	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &DrawReport{
		MatchID: m.ID(),
		Status:  m.Status(),
		Draw:    m.DrawStatus(),
	}, nil
}

// MoveHistory returns the move log in the requested format.
func (s *matchServiceImpl) MoveHistory(ctx context.Context, matchID string, format HistoryFormat) (*HistoryResult, error) {
	if format == "" {
		format = FormatPlain
	}
	if !format.Valid() {
		return nil, fmt.Errorf("unknown history format %q", format)
	}

	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}

	log := m.MoveLog()
	result := &HistoryResult{
		MatchID:    m.ID(),
		Format:     format,
		TotalMoves: len(log),
	}

	switch format {
	case FormatPlain:
		result.Plain = log
	case FormatVerbose:
		result.Verbose = verboseHistory(log)
	case FormatWithPosition:
		positioned, err := positionedHistory(m.ID(), log)
		if err != nil {
			return nil, err
		}
		result.WithPosition = positioned
	case FormatDetailed:
		detailed, err := detailedHistory(m.ID(), log)
		if err != nil {
			return nil, err
		}
		detailed.PGN = m.PGN()
		result.Detailed = detailed
	}
	return result, nil
}

// ExportPGN renders the match's full PGN transcript.
func (s *matchServiceImpl) ExportPGN(ctx context.Context, matchID string) (string, error) {
	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return "", err
	}
	return m.PGN(), nil
}

// HealthCheck verifies the backing store is reachable.
func (s *matchServiceImpl) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

// mutate runs the standard load -> delegate -> persist sequence under the
// match's lock. Delegate errors pass through unchanged so callers can
// inspect the match error taxonomy.
func (s *matchServiceImpl) mutate(ctx context.Context, matchID string, fn func(*match.Match) error) (*match.State, error) {
	lock := s.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to persist match %s: %w", matchID, err)
	}
	return m.State(), nil
}

// lockFor returns the mutex guarding one match. Entries are never removed,
// so each id maps to exactly one mutex for the life of the process.
func (s *matchServiceImpl) lockFor(matchID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[matchID] = lock
	}
	return lock
}

func states(matches []*match.Match) []*match.State {
	result := make([]*match.State, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.State())
	}
	return result
}

func verboseHistory(log []string) []VerboseMove {
	moves := make([]VerboseMove, 0, len(log))
	for i, san := range log {
		moves = append(moves, VerboseMove{
			Number: i/2 + 1,
			Side:   sideAt(i),
			San:    san,
		})
	}
	return moves
}

func positionedHistory(matchID string, log []string) ([]PositionedMove, error) {
	eng := rules.New()
	moves := make([]PositionedMove, 0, len(log))
	for i, san := range log {
		if _, err := eng.ApplyMove(san); err != nil {
			return nil, &match.CorruptStateError{ID: matchID, Err: fmt.Errorf("replaying move %d (%q): %w", i+1, san, err)}
		}
		moves = append(moves, PositionedMove{
			Number:   i/2 + 1,
			Side:     sideAt(i),
			San:      san,
			Position: eng.FEN(),
		})
	}
	return moves, nil
}

func detailedHistory(matchID string, log []string) (*DetailedHistory, error) {
	eng := rules.New()
	counts := map[string]int{eng.Fingerprint(): 1}
	moves := make([]DetailedMove, 0, len(log))
	for i, san := range log {
		if _, err := eng.ApplyMove(san); err != nil {
			return nil, &match.CorruptStateError{ID: matchID, Err: fmt.Errorf("replaying move %d (%q): %w", i+1, san, err)}
		}
		counts[eng.Fingerprint()]++
		moves = append(moves, DetailedMove{
			Number:          i/2 + 1,
			Side:            sideAt(i),
			San:             san,
			Position:        eng.FEN(),
			HalfmoveClock:   eng.HalfmoveClock(),
			RepetitionCount: counts[eng.Fingerprint()],
		})
	}
	return &DetailedHistory{Moves: moves}, nil
}

func sideAt(i int) string {
	if i%2 == 0 {
		return string(rules.SideWhite)
	}
	return string(rules.SideBlack)
}
