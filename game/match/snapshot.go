package match

import (
	"fmt"
	"time"

	"github.com/mcp-arcade/chess-match-server/game/rules"
)

// Snapshot is the full-fidelity persisted form of a match. It carries every
// field needed to reconstruct the entity; the rules engine itself is never
// serialized, it is rebuilt by replaying the move log from the opening.
type Snapshot struct {
	ID               string         `json:"id"`
	White            string         `json:"white"`
	Black            string         `json:"black"`
	Status           Status         `json:"status"`
	Result           Result         `json:"result,omitempty"`
	ResultDetail     string         `json:"result_detail,omitempty"`
	Position         string         `json:"position"`
	MoveLog          []string       `json:"move_log"`
	PositionHistory  map[string]int `json:"position_history"`
	DrawOfferFrom    *string        `json:"draw_offer_from,omitempty"`
	PauseRequestedBy *string        `json:"pause_requested_by,omitempty"`
	TimeControl      *TimeControl   `json:"time_control,omitempty"`
	Clock            *Clock         `json:"clock,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	LastMoveAt       *time.Time     `json:"last_move_at,omitempty"`
}

// Snapshot dumps the match. The returned value shares nothing with the
// entity; callers may hold or mutate it freely.
func (m *Match) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:              m.id,
		White:           m.white,
		Black:           m.black,
		Status:          m.status,
		Result:          m.result,
		ResultDetail:    m.resultDetail,
		Position:        m.engine.FEN(),
		MoveLog:         m.MoveLog(),
		PositionHistory: m.PositionHistory(),
		CreatedAt:       m.createdAt,
		UpdatedAt:       m.updatedAt,
	}
	if m.drawOfferFrom != nil {
		pid := *m.drawOfferFrom
		snap.DrawOfferFrom = &pid
	}
	if m.pauseRequestedBy != nil {
		pid := *m.pauseRequestedBy
		snap.PauseRequestedBy = &pid
	}
	if m.timeControl != nil {
		tc := *m.timeControl
		snap.TimeControl = &tc
	}
	if m.clock != nil {
		clock := *m.clock
		snap.Clock = &clock
	}
	if !m.lastMoveAt.IsZero() {
		at := m.lastMoveAt
		snap.LastMoveAt = &at
	}
	return snap
}

// Restore rebuilds a match from a snapshot. The rules engine is
// reconstructed by replaying the move log from the canonical opening; the
// turn is derived from the replayed position, never read from storage. Any
// replay rejection or position mismatch yields a CorruptStateError.
func Restore(snap *Snapshot) (*Match, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if snap.ID == "" {
		return nil, &CorruptStateError{ID: snap.ID, Err: fmt.Errorf("missing match id")}
	}

	eng := rules.New()
	for i, mv := range snap.MoveLog {
		if _, err := eng.ApplyMove(mv); err != nil {
			return nil, &CorruptStateError{
				ID:  snap.ID,
				Err: fmt.Errorf("replaying move %d (%q): %w", i+1, mv, err),
			}
		}
	}
	if snap.Position != "" && eng.FEN() != snap.Position {
		return nil, &CorruptStateError{
			ID:  snap.ID,
			Err: fmt.Errorf("replayed position %q does not match stored position %q", eng.FEN(), snap.Position),
		}
	}

	m := &Match{
		id:           snap.ID,
		white:        snap.White,
		black:        snap.Black,
		status:       snap.Status,
		result:       snap.Result,
		resultDetail: snap.ResultDetail,
		engine:       eng,
		moveLog:      make([]string, len(snap.MoveLog)),
		history:      make(map[string]int, len(snap.PositionHistory)),
		createdAt:    snap.CreatedAt,
		updatedAt:    snap.UpdatedAt,
	}
	copy(m.moveLog, snap.MoveLog)
	for k, v := range snap.PositionHistory {
		m.history[k] = v
	}
	if len(m.history) == 0 {
		// Older records may predate history tracking; rebuild it by replay.
		m.history = rebuildHistory(snap.MoveLog)
	}

	if snap.DrawOfferFrom != nil {
		pid := *snap.DrawOfferFrom
		m.drawOfferFrom = &pid
	}
	if snap.PauseRequestedBy != nil {
		pid := *snap.PauseRequestedBy
		m.pauseRequestedBy = &pid
	}
	if snap.TimeControl != nil {
		tc := *snap.TimeControl
		m.timeControl = &tc
	}
	if snap.Clock != nil {
		clock := *snap.Clock
		m.clock = &clock
	}
	if snap.LastMoveAt != nil {
		m.lastMoveAt = *snap.LastMoveAt
	}

	return m, nil
}

// rebuildHistory replays moves from the opening and counts each visited
// fingerprint, opening included.
func rebuildHistory(moveLog []string) map[string]int {
	eng := rules.New()
	history := map[string]int{eng.Fingerprint(): 1}
	for _, mv := range moveLog {
		if _, err := eng.ApplyMove(mv); err != nil {
			break
		}
		history[eng.Fingerprint()]++
	}
	return history
}
