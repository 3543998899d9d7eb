package service

import (
	"fmt"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// DefaultMaxActive is the admission ceiling applied when no explicit limit
// is configured: at most this many ACTIVE matches at once.
const DefaultMaxActive = 5

// CapacityError reports a create rejected by the admission ceiling.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("active match limit reached (%d); complete or delete a match first", e.Limit)
}

// MoveResult is the outcome of an accepted move.
type MoveResult struct {
	San        string            `json:"san"`
	State      *match.State      `json:"state"`
	GameOver   bool              `json:"game_over"`
	DrawStatus *match.DrawStatus `json:"draw_status,omitempty"`
}

// DrawReport is the draw bookkeeping for one match. Draw is nil when the
// match is not active, since the thresholds only mean anything mid-game.
type DrawReport struct {
	MatchID string            `json:"match_id"`
	Status  match.Status      `json:"status"`
	Draw    *match.DrawStatus `json:"draw_status,omitempty"`
}

// HistoryFormat selects the shape of a move-history query.
type HistoryFormat string

const (
	FormatPlain        HistoryFormat = "plain"
	FormatVerbose      HistoryFormat = "verbose"
	FormatWithPosition HistoryFormat = "with_position"
	FormatDetailed     HistoryFormat = "detailed"
)

// Valid reports whether f is a recognized history format.
func (f HistoryFormat) Valid() bool {
	switch f {
	case FormatPlain, FormatVerbose, FormatWithPosition, FormatDetailed:
		return true
	}
	return false
}

// HistoryResult is a move-history query response. Exactly one of the
// format-specific fields is populated, matching the Format value.
type HistoryResult struct {
	MatchID    string        `json:"match_id"`
	Format     HistoryFormat `json:"format"`
	TotalMoves int           `json:"total_moves"`

	Plain        []string         `json:"moves,omitempty"`
	Verbose      []VerboseMove    `json:"verbose_moves,omitempty"`
	WithPosition []PositionedMove `json:"positioned_moves,omitempty"`
	Detailed     *DetailedHistory `json:"detailed,omitempty"`
}

// VerboseMove is one move with its game-numbering context.
type VerboseMove struct {
	Number int    `json:"number"`
	Side   string `json:"side"`
	San    string `json:"san"`
}

// PositionedMove is one move plus the position it produced.
type PositionedMove struct {
	Number   int    `json:"number"`
	Side     string `json:"side"`
	San      string `json:"san"`
	Position string `json:"position"`
}

// DetailedHistory carries the full per-move trace plus the transcript.
type DetailedHistory struct {
	Moves []DetailedMove `json:"moves"`
	PGN   string         `json:"pgn"`
}

// DetailedMove is one move annotated with the draw-relevant counters after
// it was played.
type DetailedMove struct {
	Number          int    `json:"number"`
	Side            string `json:"side"`
	San             string `json:"san"`
	Position        string `json:"position"`
	HalfmoveClock   int    `json:"halfmove_clock"`
	RepetitionCount int    `json:"repetition_count"`
}
