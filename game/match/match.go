package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/mcp-arcade/chess-match-server/game/rules"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
)

// Result is the outcome token of a completed match.
type Result string

const (
	ResultWhiteWins Result = "1-0"
	ResultBlackWins Result = "0-1"
	ResultDraw      Result = "1/2-1/2"
)

// Valid reports whether r is one of the recognized result tokens.
func (r Result) Valid() bool {
	switch r {
	case ResultWhiteWins, ResultBlackWins, ResultDraw:
		return true
	}
	return false
}

// Result details recorded alongside the outcome token.
const (
	DetailCheckmate            = "checkmate"
	DetailStalemate            = "stalemate"
	DetailInsufficientMaterial = "insufficient_material"
	DetailFiftyMoveRule        = "fifty_move_rule"
	DetailRepetition           = "repetition"
	DetailResignation          = "resignation"
	DetailAgreement            = "agreement"
)

// TimeControl is the optional clock configuration set at creation. A nil
// TimeControl on a match means the match is untimed; it is never encoded as
// a zero value.
type TimeControl struct {
	Initial   time.Duration `json:"initial"`
	Increment time.Duration `json:"increment"`
}

// Clock is the per-side remaining time, maintained as bookkeeping on each
// applied move. There is no active countdown.
type Clock struct {
	WhiteRemaining time.Duration `json:"white_remaining"`
	BlackRemaining time.Duration `json:"black_remaining"`
}

// Match is the aggregate root for one game between two participants. All
// state transitions happen through its methods; the service layer only
// loads, delegates, and persists. White is always first to move.
type Match struct {
	id    string
	white string
	black string

	status       Status
	result       Result
	resultDetail string

	engine  *rules.Engine
	moveLog []string
	history map[string]int

	drawOfferFrom    *string
	pauseRequestedBy *string

	timeControl *TimeControl
	clock       *Clock

	createdAt  time.Time
	updatedAt  time.Time
	lastMoveAt time.Time
}

// New creates an ACTIVE match at the opening position. The position history
// is seeded with the opening fingerprint at count 1.
func New(id, white, black string, tc *TimeControl) (*Match, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("match id cannot be empty")
	}
	if strings.TrimSpace(white) == "" || strings.TrimSpace(black) == "" {
		return nil, fmt.Errorf("both participants are required")
	}
	if white == black {
		return nil, fmt.Errorf("participants must be distinct")
	}

	eng := rules.New()
	now := time.Now().UTC()

	m := &Match{
		id:        id,
		white:     white,
		black:     black,
		status:    StatusActive,
		engine:    eng,
		moveLog:   []string{},
		history:   map[string]int{eng.Fingerprint(): 1},
		createdAt: now,
		updatedAt: now,
	}

	if tc != nil {
		if tc.Initial <= 0 {
			return nil, fmt.Errorf("time control initial time must be positive")
		}
		if tc.Increment < 0 {
			return nil, fmt.Errorf("time control increment cannot be negative")
		}
		m.timeControl = &TimeControl{Initial: tc.Initial, Increment: tc.Increment}
		m.clock = &Clock{WhiteRemaining: tc.Initial, BlackRemaining: tc.Initial}
	}

	return m, nil
}

// ApplyMove validates and applies one move. On acceptance it advances the
// position, appends to the move log, updates the repetition history and
// clocks, and, when the rules engine adjudicates the game over, completes
// the match in the same call. A rejected move mutates nothing.
func (m *Match) ApplyMove(text string) (string, error) {
	switch m.status {
	case StatusPaused:
		return "", &IllegalStateError{Reason: "paused"}
	case StatusCompleted:
		return "", &IllegalStateError{Reason: "inactive"}
	}

	mover := m.engine.SideToMove()
	san, err := m.engine.ApplyMove(text)
	if err != nil {
		return "", &InvalidMoveError{Move: text, Reason: err.Error(), Suggestion: m.suggestAlternative(text)}
	}

	now := time.Now().UTC()
	m.moveLog = append(m.moveLog, san)
	m.history[m.engine.Fingerprint()]++
	m.tickClock(mover, now)
	m.lastMoveAt = now
	m.updatedAt = now

	if m.engine.GameOver() {
		outcome, method := m.engine.Outcome()
		m.finish(Result(outcome), string(method), now)
	}

	return san, nil
}

// ValidateMove is a read-only probe: it reports whether a move would be
// accepted without touching the position, move log, or history. When the
// match is not active the rules engine is not consulted at all.
func (m *Match) ValidateMove(text string) Validation {
	switch m.status {
	case StatusPaused:
		return Validation{Reason: "match is paused"}
	case StatusCompleted:
		return Validation{Reason: "match is completed"}
	}
	if err := m.engine.ValidateMove(text); err != nil {
		return Validation{Reason: err.Error(), Suggestion: m.suggestAlternative(text)}
	}
	return Validation{Valid: true}
}

// Validation is the result of a read-only move probe.
type Validation struct {
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Complete ends the match with an explicit result. Completing an already
// completed match fails; so does completing a paused one, which must be
// resumed first.
func (m *Match) Complete(result Result) error {
	if !result.Valid() {
		return fmt.Errorf("invalid result token %q", result)
	}
	return m.complete(result, "")
}

// Resign ends the match in favor of the other participant.
func (m *Match) Resign(participantID string) error {
	if m.status == StatusActive {
		// Participant check only matters when the resignation could proceed.
		if !m.isParticipant(participantID) {
			return m.unknownParticipant(participantID)
		}
	}
	result := ResultBlackWins
	if participantID == m.black {
		result = ResultWhiteWins
	}
	return m.complete(result, DetailResignation)
}

// OfferDraw records an outstanding draw offer from a participant.
func (m *Match) OfferDraw(participantID string) error {
	if m.status != StatusActive {
		return m.notActive()
	}
	if !m.isParticipant(participantID) {
		return m.unknownParticipant(participantID)
	}
	pid := participantID
	m.drawOfferFrom = &pid
	m.updatedAt = time.Now().UTC()
	return nil
}

// AcceptDraw completes the match as a draw by agreement. Only the
// participant who did not make the offer may accept it.
func (m *Match) AcceptDraw(participantID string) error {
	if m.drawOfferFrom == nil {
		return &IllegalStateError{Reason: "no draw offer outstanding"}
	}
	if !m.isParticipant(participantID) {
		return m.unknownParticipant(participantID)
	}
	if *m.drawOfferFrom == participantID {
		return &IllegalStateError{Reason: "cannot accept own offer"}
	}
	return m.complete(ResultDraw, DetailAgreement)
}

// DeclineDraw clears an outstanding draw offer.
func (m *Match) DeclineDraw() error {
	if m.drawOfferFrom == nil {
		return &IllegalStateError{Reason: "no draw offer outstanding"}
	}
	m.drawOfferFrom = nil
	m.updatedAt = time.Now().UTC()
	return nil
}

// Pause suspends an active match on behalf of a participant. Any
// outstanding draw offer is withdrawn; offers only live on active matches.
func (m *Match) Pause(participantID string) error {
	if m.status != StatusActive {
		return m.notActive()
	}
	if !m.isParticipant(participantID) {
		return m.unknownParticipant(participantID)
	}
	pid := participantID
	m.status = StatusPaused
	m.pauseRequestedBy = &pid
	m.drawOfferFrom = nil
	m.updatedAt = time.Now().UTC()
	return nil
}

// Resume returns a paused match to play.
func (m *Match) Resume() error {
	switch m.status {
	case StatusCompleted:
		return &IllegalStateError{Reason: "match already completed"}
	case StatusActive:
		return &IllegalStateError{Reason: "match is not paused"}
	}
	m.status = StatusActive
	m.pauseRequestedBy = nil
	m.updatedAt = time.Now().UTC()
	return nil
}

// PGN renders the full game-notation transcript. It is regenerated from the
// move log and match metadata on every call rather than patched
// incrementally.
func (m *Match) PGN() string {
	result := "*"
	if m.result != "" {
		result = string(m.result)
	}
	return m.engine.PGN(map[string]string{
		"Event":  "Match " + m.id,
		"White":  m.white,
		"Black":  m.black,
		"Date":   m.createdAt.Format("2006.01.02"),
		"Result": result,
	})
}

// complete performs the ACTIVE -> COMPLETED transition. PAUSED matches must
// be resumed first; COMPLETED is terminal.
func (m *Match) complete(result Result, detail string) error {
	switch m.status {
	case StatusCompleted:
		return &IllegalStateError{Reason: "match already completed"}
	case StatusPaused:
		return &IllegalStateError{Reason: "cannot complete a paused match; resume it first"}
	}
	m.finish(result, detail, time.Now().UTC())
	return nil
}

func (m *Match) finish(result Result, detail string, now time.Time) {
	m.status = StatusCompleted
	m.result = result
	m.resultDetail = detail
	m.drawOfferFrom = nil
	m.updatedAt = now
}

// tickClock charges elapsed think time to the side that just moved and
// credits its increment. Remaining time floors at zero; flag falls are not
// adjudicated here.
func (m *Match) tickClock(mover rules.Side, now time.Time) {
	if m.clock == nil {
		return
	}
	since := m.lastMoveAt
	if since.IsZero() {
		since = m.createdAt
	}
	elapsed := now.Sub(since)
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := &m.clock.WhiteRemaining
	if mover == rules.SideBlack {
		remaining = &m.clock.BlackRemaining
	}
	*remaining -= elapsed
	if m.timeControl != nil {
		*remaining += m.timeControl.Increment
	}
	if *remaining < 0 {
		*remaining = 0
	}
}

func (m *Match) isParticipant(id string) bool {
	return id == m.white || id == m.black
}

func (m *Match) unknownParticipant(id string) error {
	return &IllegalStateError{Reason: fmt.Sprintf("participant %q is not part of this match", id)}
}

func (m *Match) notActive() error {
	if m.status == StatusPaused {
		return &IllegalStateError{Reason: "paused"}
	}
	return &IllegalStateError{Reason: "inactive"}
}

// suggestAlternative tries to name a legal move related to the rejected
// text: first by destination square, then by moved piece letter.
func (m *Match) suggestAlternative(text string) string {
	text = strings.TrimSpace(text)
	legal := m.engine.LegalMoves()
	if len(legal) == 0 {
		return ""
	}

	if sq := trailingSquare(text); sq != "" {
		for _, mv := range legal {
			if strings.Contains(strings.ToLower(mv), sq) {
				return mv
			}
		}
	}
	if len(text) > 0 && text[0] >= 'A' && text[0] <= 'Z' {
		for _, mv := range legal {
			if strings.HasPrefix(mv, text[:1]) {
				return mv
			}
		}
	}
	return legal[0]
}

// trailingSquare extracts a board square from the end of a move string,
// ignoring check/mate suffixes ("Nxe5+" -> "e5").
func trailingSquare(text string) string {
	text = strings.ToLower(strings.TrimRight(text, "+#!?"))
	if len(text) < 2 {
		return ""
	}
	file, rank := text[len(text)-2], text[len(text)-1]
	if file >= 'a' && file <= 'h' && rank >= '1' && rank <= '8' {
		return string([]byte{file, rank})
	}
	return ""
}
