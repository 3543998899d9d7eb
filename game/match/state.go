package match

import (
	"time"

	"github.com/mcp-arcade/chess-match-server/game/rules"
)

// State is the caller-facing view of a match. Optional fields stay nil when
// absent so "unset" never reads as a zero value.
type State struct {
	ID               string       `json:"id"`
	White            string       `json:"white"`
	Black            string       `json:"black"`
	Status           Status       `json:"status"`
	Position         string       `json:"position"`
	Turn             string       `json:"turn"`
	SideToMove       rules.Side   `json:"side_to_move"`
	MoveCount        int          `json:"move_count"`
	LastMove         string       `json:"last_move,omitempty"`
	Result           Result       `json:"result,omitempty"`
	ResultDetail     string       `json:"result_detail,omitempty"`
	DrawOfferFrom    *string      `json:"draw_offer_from,omitempty"`
	PauseRequestedBy *string      `json:"pause_requested_by,omitempty"`
	TimeControl      *TimeControl `json:"time_control,omitempty"`
	Clock            *Clock       `json:"clock,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	LastMoveAt       *time.Time   `json:"last_move_at,omitempty"`
}

// State builds an independent view of the match; mutating it never touches
// the entity.
func (m *Match) State() *State {
	st := &State{
		ID:           m.id,
		White:        m.white,
		Black:        m.black,
		Status:       m.status,
		Position:     m.engine.FEN(),
		Turn:         m.Turn(),
		SideToMove:   m.engine.SideToMove(),
		MoveCount:    len(m.moveLog),
		Result:       m.result,
		ResultDetail: m.resultDetail,
		CreatedAt:    m.createdAt,
		UpdatedAt:    m.updatedAt,
	}
	if len(m.moveLog) > 0 {
		st.LastMove = m.moveLog[len(m.moveLog)-1]
	}
	if m.drawOfferFrom != nil {
		pid := *m.drawOfferFrom
		st.DrawOfferFrom = &pid
	}
	if m.pauseRequestedBy != nil {
		pid := *m.pauseRequestedBy
		st.PauseRequestedBy = &pid
	}
	if m.timeControl != nil {
		tc := *m.timeControl
		st.TimeControl = &tc
	}
	if m.clock != nil {
		clock := *m.clock
		st.Clock = &clock
	}
	if !m.lastMoveAt.IsZero() {
		at := m.lastMoveAt
		st.LastMoveAt = &at
	}
	return st
}

// ID returns the immutable match identifier.
func (m *Match) ID() string { return m.id }

// White returns the participant playing white (first to move).
func (m *Match) White() string { return m.white }

// Black returns the participant playing black.
func (m *Match) Black() string { return m.black }

// Status returns the lifecycle state.
func (m *Match) Status() Status { return m.status }

// Result returns the outcome token, or "" while the match is unfinished.
func (m *Match) Result() Result { return m.result }

// ResultDetail returns how the match ended (checkmate, resignation,
// agreement, ...), or "" when unfinished or completed without detail.
func (m *Match) ResultDetail() string { return m.resultDetail }

// Position returns the current position encoding.
func (m *Match) Position() string { return m.engine.FEN() }

// Turn returns the participant who moves next. It is always derived from
// the position, never stored.
func (m *Match) Turn() string {
	if m.engine.SideToMove() == rules.SideWhite {
		return m.white
	}
	return m.black
}

// MoveLog returns a copy of the applied moves in SAN.
func (m *Match) MoveLog() []string {
	out := make([]string, len(m.moveLog))
	copy(out, m.moveLog)
	return out
}

// DrawOfferFrom returns the outstanding draw offer's participant, if any.
func (m *Match) DrawOfferFrom() (string, bool) {
	if m.drawOfferFrom == nil {
		return "", false
	}
	return *m.drawOfferFrom, true
}

// PauseRequestedBy returns who paused the match, if it is paused.
func (m *Match) PauseRequestedBy() (string, bool) {
	if m.pauseRequestedBy == nil {
		return "", false
	}
	return *m.pauseRequestedBy, true
}

// LegalMoves lists the legal moves in the current position, optionally
// restricted to a single starting square.
func (m *Match) LegalMoves(fromSquare string) []string {
	if fromSquare != "" {
		return m.engine.LegalMovesFrom(fromSquare)
	}
	return m.engine.LegalMoves()
}

// CreatedAt returns the creation timestamp.
func (m *Match) CreatedAt() time.Time { return m.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (m *Match) UpdatedAt() time.Time { return m.updatedAt }

// LastMoveAt returns the timestamp of the last applied move; the zero time
// means no move has been played.
func (m *Match) LastMoveAt() time.Time { return m.lastMoveAt }
