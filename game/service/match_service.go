package service

import (
	"context"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// MatchService defines all match-related operations exposed to transports.
// Implementations load the match, delegate to its methods, and persist the
// result; they never reach into match internals.
type MatchService interface {
	// Match lifecycle
	CreateMatch(ctx context.Context, white, black string, tc *match.TimeControl) (*match.State, error)
	GetMatch(ctx context.Context, matchID string) (*match.State, error)
	ListMatches(ctx context.Context) ([]*match.State, error)
	ListByStatus(ctx context.Context, status match.Status) ([]*match.State, error)
	ListByParticipant(ctx context.Context, participantID string) ([]*match.State, error)
	DeleteMatch(ctx context.Context, matchID string) error

	// Play
	PlayMove(ctx context.Context, matchID, move string) (*MoveResult, error)
	ValidateMove(ctx context.Context, matchID, move string) (*match.Validation, error)
	LegalMoves(ctx context.Context, matchID, fromSquare string) ([]string, error)

	// Match control
	Resign(ctx context.Context, matchID, participantID string) (*match.State, error)
	OfferDraw(ctx context.Context, matchID, participantID string) (*match.State, error)
	AcceptDraw(ctx context.Context, matchID, participantID string) (*match.State, error)
	DeclineDraw(ctx context.Context, matchID string) (*match.State, error)
	PauseMatch(ctx context.Context, matchID, participantID string) (*match.State, error)
	ResumeMatch(ctx context.Context, matchID string) (*match.State, error)
	CompleteMatch(ctx context.Context, matchID string, result match.Result) (*match.State, error)

	// Queries
	DrawReport(ctx context.Context, matchID string) (*DrawReport, error)
	MoveHistory(ctx context.Context, matchID string, format HistoryFormat) (*HistoryResult, error)
	ExportPGN(ctx context.Context, matchID string) (string, error)

	// Operational
	HealthCheck(ctx context.Context) error
}
