// Package service is the session manager: the single entry point every
// transport (REST, websocket, MCP, CLI) goes through to work with matches.
//
// The MatchService interface owns three cross-cutting concerns that the
// match entity itself stays ignorant of:
//   - Admission: creates are rejected with CapacityError once the number of
//     ACTIVE matches reaches the configured ceiling (DefaultMaxActive).
//   - Concurrency: every mutation runs load -> delegate -> persist under a
//     per-match lock, so two concurrent writes to one match serialize
//     instead of losing an update. Creates serialize behind their own lock
//     so the admission count cannot race within the process.
//   - Persistence: the service is the only code that talks to the Store;
//     matches themselves never save.
//
// Errors from the match layer (IllegalStateError, InvalidMoveError) and the
// store layer (ErrNotFound, CorruptStateError) pass through unchanged, so
// transports can map them to their own status codes with errors.Is/As.
package service
