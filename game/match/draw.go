package match

// DrawStatus is the advisory draw bookkeeping for an active match. The
// thresholds signal that a claimable draw is getting close; they never end
// the game themselves. Automatic adjudication (checkmate, stalemate,
// insufficient material) belongs to the rules engine.
type DrawStatus struct {
	HalfmoveClock           int  `json:"halfmove_clock"`
	MovesUntilFiftyMoveRule int  `json:"moves_until_fifty_move_rule"`
	RepetitionCount         int  `json:"repetition_count"`
	ApproachingFiftyMove    bool `json:"is_approaching_fifty_move"`
	ApproachingRepetition   bool `json:"is_approaching_repetition"`
}

// DrawStatus returns the current draw bookkeeping, or nil when the match is
// not active.
func (m *Match) DrawStatus() *DrawStatus {
	if m.status != StatusActive {
		return nil
	}
	halfmoves := m.engine.HalfmoveClock()
	repetitions := m.history[m.engine.Fingerprint()]
	return &DrawStatus{
		HalfmoveClock:           halfmoves,
		MovesUntilFiftyMoveRule: 50 - halfmoves/2,
		RepetitionCount:         repetitions,
		ApproachingFiftyMove:    halfmoves >= 80,
		ApproachingRepetition:   repetitions >= 2,
	}
}

// PositionHistory returns a copy of the fingerprint -> occurrence mapping.
func (m *Match) PositionHistory() map[string]int {
	out := make(map[string]int, len(m.history))
	for k, v := range m.history {
		out[k] = v
	}
	return out
}
