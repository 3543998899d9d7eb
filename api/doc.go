// Package api exposes the match service over REST.
//
// Routes live under /api: match CRUD, move play and validation, draw and
// pause control, history and PGN queries, and time-control presets, plus
// /health and the /ws websocket upgrade. Failures always come back as
// {"error": "..."} with the status code derived from the error kind:
//
//	404  match not found
//	409  operation illegal in the match's current state
//	422  move rejected by the rules
//	429  admission ceiling reached
//	400  malformed request
//
// After every successful mutation the handler broadcasts the new match
// state to websocket spectators.
package api
