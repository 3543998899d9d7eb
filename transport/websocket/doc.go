// Package websocket pushes live match updates to spectators.
//
// The Hub tracks connected clients keyed by match id. After every mutation
// the API layer calls BroadcastState, and each client watching that match
// receives a state_update frame with the new match state. Clients never
// send moves over the socket; all writes go through the REST API.
package websocket
