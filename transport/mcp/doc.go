// Package mcp exposes the match server as MCP tools.
//
// The Client registers one tool per REST operation (create_match,
// play_move, draw handling, history, presets) and proxies each call to the
// HTTP API, so MCP hosts and browser clients share one source of truth.
// Tool output is plain text with an ASCII board so a model can read the
// position without parsing FEN.
package mcp
