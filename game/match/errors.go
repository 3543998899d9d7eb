package match

import "fmt"

// IllegalStateError reports an operation that is not valid for the match's
// current status (moving while paused, pausing a completed match, accepting
// a draw offer that does not exist, ...). It is never retried.
type IllegalStateError struct {
	Reason string
}

func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Reason
}

// InvalidMoveError reports a move the rules engine rejected. Suggestion, when
// derivable, names a legal alternative touching the same square or piece.
type InvalidMoveError struct {
	Move       string
	Reason     string
	Suggestion string
}

func (e *InvalidMoveError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid move %q: %s (did you mean %s?)", e.Move, e.Reason, e.Suggestion)
	}
	return fmt.Sprintf("invalid move %q: %s", e.Move, e.Reason)
}

// CorruptStateError reports a persisted match whose move log no longer
// replays cleanly. The record is unusable until repaired out of band; the
// error is fatal for that record only.
type CorruptStateError struct {
	ID  string
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt match state %q: %v", e.ID, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}
