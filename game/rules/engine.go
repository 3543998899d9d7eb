package rules

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// StartingFEN is the canonical opening position every match begins from.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Side identifies which color moves.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

// Outcome is the result token of a finished game.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeWhiteWon Outcome = "1-0"
	OutcomeBlackWon Outcome = "0-1"
	OutcomeDraw     Outcome = "1/2-1/2"
)

// Method describes how a finished game ended.
type Method string

const (
	MethodNone                 Method = ""
	MethodCheckmate            Method = "checkmate"
	MethodStalemate            Method = "stalemate"
	MethodInsufficientMaterial Method = "insufficient_material"
	MethodFiftyMoveRule        Method = "fifty_move_rule"
	MethodRepetition           Method = "repetition"
)

// Engine wraps a single chess game and exposes the narrow capability the
// match layer consumes: move application, legality probes, position
// encoding, and end-of-game detection. It never makes lifecycle decisions
// itself.
type Engine struct {
	game *nchess.Game
}

// New returns an engine at the standard opening position.
func New() *Engine {
	return &Engine{game: nchess.NewGame()}
}

// NewFromFEN returns an engine seeded from a position encoding.
func NewFromFEN(fen string) (*Engine, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid position %q: %w", fen, err)
	}
	return &Engine{game: nchess.NewGame(option)}, nil
}

// NewFromPGN returns an engine loaded from a PGN transcript.
func NewFromPGN(r io.Reader) (*Engine, error) {
	option, err := nchess.PGN(r)
	if err != nil {
		return nil, fmt.Errorf("invalid PGN: %w", err)
	}
	return &Engine{game: nchess.NewGame(option)}, nil
}

// ApplyMove plays a move given in algebraic notation (UCI accepted as a
// fallback) and returns the canonical SAN of the applied move.
func (e *Engine) ApplyMove(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty move")
	}

	pos := e.game.Position()
	if err := e.game.PushNotationMove(text, nchess.AlgebraicNotation{}, nil); err == nil {
		return nchess.AlgebraicNotation{}.Encode(pos, e.lastMove()), nil
	}
	if err := e.game.PushNotationMove(strings.ToLower(text), nchess.UCINotation{}, nil); err != nil {
		return "", fmt.Errorf("move %q is not legal in the current position", text)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, e.lastMove()), nil
}

// ValidateMove reports whether a move would be accepted, without mutating
// the game. SAN is checked first, then UCI against the legal move set.
func (e *Engine) ValidateMove(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty move")
	}

	pos := e.game.Position()
	if _, err := (nchess.AlgebraicNotation{}).Decode(pos, text); err == nil {
		return nil
	}
	if mv, err := (nchess.UCINotation{}).Decode(pos, strings.ToLower(text)); err == nil {
		for _, legal := range pos.ValidMoves() {
			if legal.String() == mv.String() {
				return nil
			}
		}
	}
	return fmt.Errorf("move %q is not legal in the current position", text)
}

// LegalMoves returns all legal moves in SAN, sorted for stable output.
func (e *Engine) LegalMoves() []string {
	pos := e.game.Position()
	moves := pos.ValidMoves()
	san := make([]string, 0, len(moves))
	for _, m := range moves {
		san = append(san, nchess.AlgebraicNotation{}.Encode(pos, &m))
	}
	sort.Strings(san)
	return san
}

// LegalMovesFrom returns the legal moves starting on the given square
// ("e2", "g1", ...), in SAN.
func (e *Engine) LegalMovesFrom(square string) []string {
	square = strings.ToLower(strings.TrimSpace(square))
	pos := e.game.Position()
	var san []string
	for _, m := range pos.ValidMoves() {
		// UCI form is from-square + to-square (+ promotion).
		if strings.HasPrefix(m.String(), square) {
			san = append(san, nchess.AlgebraicNotation{}.Encode(pos, &m))
		}
	}
	sort.Strings(san)
	return san
}

// FEN returns the full position encoding, move counters included.
func (e *Engine) FEN() string {
	return e.game.FEN()
}

// Fingerprint returns the repetition key for the current position:
// placement, side to move, castling rights, and en-passant target, with the
// move counters stripped.
func (e *Engine) Fingerprint() string {
	return Fingerprint(e.game.FEN())
}

// Fingerprint reduces a FEN to its repetition key.
func Fingerprint(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}

// HalfmoveClock returns the number of half-moves since the last capture or
// pawn advance, read from the position encoding.
func (e *Engine) HalfmoveClock() int {
	fields := strings.Fields(e.game.FEN())
	if len(fields) < 5 {
		return 0
	}
	n, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0
	}
	return n
}

// SideToMove returns which color moves next.
func (e *Engine) SideToMove() Side {
	if e.game.Position().Turn() == nchess.White {
		return SideWhite
	}
	return SideBlack
}

// GameOver reports whether the engine has adjudicated the game.
func (e *Engine) GameOver() bool {
	return e.game.Outcome() != nchess.NoOutcome
}

// Outcome returns the result token and termination method once the game is
// over, or zero values while it is still in progress.
func (e *Engine) Outcome() (Outcome, Method) {
	switch e.game.Outcome() {
	case nchess.WhiteWon:
		return OutcomeWhiteWon, methodFrom(e.game.Method())
	case nchess.BlackWon:
		return OutcomeBlackWon, methodFrom(e.game.Method())
	case nchess.Draw:
		return OutcomeDraw, methodFrom(e.game.Method())
	default:
		return OutcomeNone, MethodNone
	}
}

// MovesSAN returns the SAN transcript of every move played so far.
func (e *Engine) MovesSAN() []string {
	positions := e.game.Positions()
	moves := e.game.Moves()
	san := make([]string, 0, len(moves))
	for i, m := range moves {
		san = append(san, nchess.AlgebraicNotation{}.Encode(positions[i], m))
	}
	return san
}

// PGN renders the full game transcript with the given header tag pairs.
// Tags are applied in sorted key order so output is deterministic.
func (e *Engine) PGN(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.game.AddTagPair(k, tags[k])
	}
	return strings.TrimSpace(e.game.String())
}

func (e *Engine) lastMove() *nchess.Move {
	moves := e.game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

func methodFrom(m nchess.Method) Method {
	switch m {
	case nchess.Checkmate:
		return MethodCheckmate
	case nchess.Stalemate:
		return MethodStalemate
	case nchess.InsufficientMaterial:
		return MethodInsufficientMaterial
	case nchess.FiftyMoveRule, nchess.SeventyFiveMoveRule:
		return MethodFiftyMoveRule
	case nchess.ThreefoldRepetition, nchess.FivefoldRepetition:
		return MethodRepetition
	default:
		return MethodNone
	}
}
