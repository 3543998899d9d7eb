package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mcp-arcade/chess-match-server/game/config"
	"github.com/mcp-arcade/chess-match-server/game/match"
	"github.com/mcp-arcade/chess-match-server/game/service"
)

// Client proxies MCP tool calls to the REST API, so an MCP host can run
// matches against the same server that browsers and websocket spectators
// talk to.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient builds a client targeting the REST API at baseURL.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server, ready to be served over
// stdio or SSE.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"chess-match-server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Chess match server. Create two-player matches, play moves in SAN or UCI notation, and manage the match lifecycle.

Typical flow:
1. create_match with two participant names (optionally a time-control preset from list_presets)
2. play_move alternating sides; the server enforces legality and whose turn it is
3. use legal_moves / validate_move to explore a position before committing
4. draw_status shows the fifty-move and repetition counters for claimable draws
5. resign, offer_draw/accept_draw, or complete_match end the game; pause_match/resume_match suspend it

At most a handful of matches can be active at once; complete or delete one if create_match reports the limit.`),
	)
	c.registerTools()
}

// apiCall performs an HTTP request against the REST API and decodes the
// JSON response into result (which may be nil). API error envelopes become
// plain errors.
func (c *Client) apiCall(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("%s", envelope.Error)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// apiCallText is apiCall for endpoints that return plain text, like the PGN
// export.
func (c *Client) apiCallText(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return "", fmt.Errorf("%s", envelope.Error)
		}
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return string(data), nil
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_match",
		Description: "Create a new chess match between two participants. White moves first. Optionally name a time-control preset (see list_presets).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"white": map[string]interface{}{
					"type":        "string",
					"description": "Participant playing white",
				},
				"black": map[string]interface{}{
					"type":        "string",
					"description": "Participant playing black",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Time-control preset name (default: untimed)",
				},
			},
			Required: []string{"white", "black"},
		},
	}, c.handleCreateMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_match",
		Description: "Get the current state of a match, including the board, whose turn it is, and the clocks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleGetMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_matches",
		Description: "List matches, optionally filtered by status (active, paused, completed) or by participant.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Filter by status: active, paused, or completed",
					"enum":        []string{"active", "paused", "completed"},
				},
				"participant": map[string]interface{}{
					"type":        "string",
					"description": "Filter by participant name",
				},
			},
		},
	}, c.handleListMatches)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_move",
		Description: "Play a move in a match. Accepts SAN (e4, Nf3, O-O, Qxh4#) or UCI (e2e4, g1f3). The move is made for whichever side is to move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"move": map[string]interface{}{
					"type":        "string",
					"description": "Move in SAN or UCI notation",
				},
			},
			Required: []string{"match_id", "move"},
		},
	}, c.handlePlayMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_move",
		Description: "Check whether a move would be legal without playing it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"move": map[string]interface{}{
					"type":        "string",
					"description": "Move in SAN or UCI notation",
				},
			},
			Required: []string{"match_id", "move"},
		},
	}, c.handleValidateMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the legal moves in the current position, optionally only those starting from one square.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"from": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to moves from this square, e.g. e2",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_status",
		Description: "Show the draw bookkeeping for a match: halfmove clock, moves until the fifty-move rule, and repetition count.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleDrawStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resign",
		Description: "Resign a match on behalf of a participant. The opponent wins.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"participant_id": map[string]interface{}{
					"type":        "string",
					"description": "The resigning participant",
				},
			},
			Required: []string{"match_id", "participant_id"},
		},
	}, c.handleResign)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "offer_draw",
		Description: "Offer a draw. The offer stands until accepted, declined, or the match ends.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"participant_id": map[string]interface{}{
					"type":        "string",
					"description": "The offering participant",
				},
			},
			Required: []string{"match_id", "participant_id"},
		},
	}, c.handleOfferDraw)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "accept_draw",
		Description: "Accept the opponent's outstanding draw offer, ending the match as a draw by agreement.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"participant_id": map[string]interface{}{
					"type":        "string",
					"description": "The accepting participant (not the one who offered)",
				},
			},
			Required: []string{"match_id", "participant_id"},
		},
	}, c.handleAcceptDraw)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "decline_draw",
		Description: "Decline the outstanding draw offer. The match continues.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleDeclineDraw)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pause_match",
		Description: "Pause an active match. No moves are accepted until it is resumed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"participant_id": map[string]interface{}{
					"type":        "string",
					"description": "The participant requesting the pause",
				},
			},
			Required: []string{"match_id", "participant_id"},
		},
	}, c.handlePauseMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resume_match",
		Description: "Resume a paused match.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleResumeMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "complete_match",
		Description: "Complete an active match with an explicit result: 1-0 (white wins), 0-1 (black wins), or 1/2-1/2 (draw).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"result": map[string]interface{}{
					"type":        "string",
					"description": "Result token",
					"enum":        []string{"1-0", "0-1", "1/2-1/2"},
				},
			},
			Required: []string{"match_id", "result"},
		},
	}, c.handleCompleteMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the move history of a match. Formats: plain (SAN list), verbose (numbered), with_position (numbered plus FEN), detailed (plus draw counters and PGN).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "History format (default: plain)",
					"enum":        []string{"plain", "verbose", "with_position", "detailed"},
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "export_pgn",
		Description: "Export a match as a PGN document.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match identifier",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleExportPGN)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List the available time-control presets.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func (c *Client) handleCreateMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	white := stringArg(args, "white")
	black := stringArg(args, "black")
	if white == "" || black == "" {
		return mcp.NewToolResultError("white and black are required"), nil
	}

	body := map[string]string{"white": white, "black": black}
	if preset := stringArg(args, "preset"); preset != "" {
		body["preset"] = preset
	}

	var state match.State
	if err := c.apiCall(ctx, http.MethodPost, "/api/matches", body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Match created.\n\n" + formatState(&state)), nil
}

func (c *Client) handleGetMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	var state match.State
	if err := c.apiCall(ctx, http.MethodGet, "/api/matches/"+matchID, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(&state)), nil
}

func (c *Client) handleListMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	path := "/api/matches"
	var params []string
	if status := stringArg(args, "status"); status != "" {
		params = append(params, "status="+status)
	}
	if participant := stringArg(args, "participant"); participant != "" {
		params = append(params, "participant="+participant)
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var listing struct {
		Count   int            `json:"count"`
		Matches []*match.State `json:"matches"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &listing); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMatchList(listing.Matches)), nil
}

func (c *Client) handlePlayMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	move := stringArg(args, "move")
	if matchID == "" || move == "" {
		return mcp.NewToolResultError("match_id and move are required"), nil
	}

	var result service.MoveResult
	err := c.apiCall(ctx, http.MethodPost, "/api/matches/"+matchID+"/move",
		map[string]string{"move": move}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleValidateMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	move := stringArg(args, "move")
	if matchID == "" || move == "" {
		return mcp.NewToolResultError("match_id and move are required"), nil
	}

	var v match.Validation
	err := c.apiCall(ctx, http.MethodPost, "/api/matches/"+matchID+"/validate-move",
		map[string]string{"move": move}, &v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if v.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("%s is legal.", move)), nil
	}
	text := fmt.Sprintf("%s is not legal: %s", move, v.Reason)
	if v.Suggestion != "" {
		text += fmt.Sprintf(" (did you mean %s?)", v.Suggestion)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	path := "/api/matches/" + matchID + "/legal-moves"
	from := stringArg(args, "from")
	if from != "" {
		path += "?from=" + from
	}

	var listing struct {
		Count int      `json:"count"`
		Moves []string `json:"moves"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &listing); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if listing.Count == 0 {
		if from != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No legal moves from %s.", from)), nil
		}
		return mcp.NewToolResultText("No legal moves; the game is over."), nil
	}
	header := fmt.Sprintf("%d legal moves", listing.Count)
	if from != "" {
		header += " from " + from
	}
	return mcp.NewToolResultText(header + ": " + strings.Join(listing.Moves, " ")), nil
}

func (c *Client) handleDrawStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	var report service.DrawReport
	if err := c.apiCall(ctx, http.MethodGet, "/api/matches/"+matchID+"/draw-status", nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatDrawReport(&report)), nil
}

// participantAction covers the tools whose REST call is a participant_id
// body against one match endpoint.
func (c *Client) participantAction(ctx context.Context, request mcp.CallToolRequest, endpoint, verb string) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	participantID := stringArg(args, "participant_id")
	if matchID == "" || participantID == "" {
		return mcp.NewToolResultError("match_id and participant_id are required"), nil
	}

	var state match.State
	err := c.apiCall(ctx, http.MethodPost, "/api/matches/"+matchID+"/"+endpoint,
		map[string]string{"participant_id": participantID}, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s.\n\n%s", participantID, verb, formatState(&state))), nil
}

func (c *Client) handleResign(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.participantAction(ctx, request, "resign", "resigned")
}

func (c *Client) handleOfferDraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.participantAction(ctx, request, "draw/offer", "offered a draw")
}

func (c *Client) handleAcceptDraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.participantAction(ctx, request, "draw/accept", "accepted the draw")
}

func (c *Client) handlePauseMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.participantAction(ctx, request, "pause", "paused the match")
}

// matchAction covers the tools whose REST call takes only the match id.
func (c *Client) matchAction(ctx context.Context, request mcp.CallToolRequest, endpoint string, body interface{}, verb string) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	var state match.State
	err := c.apiCall(ctx, http.MethodPost, "/api/matches/"+matchID+"/"+endpoint, body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(verb + ".\n\n" + formatState(&state)), nil
}

func (c *Client) handleDeclineDraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.matchAction(ctx, request, "draw/decline", nil, "Draw offer declined")
}

func (c *Client) handleResumeMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.matchAction(ctx, request, "resume", nil, "Match resumed")
}

func (c *Client) handleCompleteMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	result := stringArg(args, "result")
	if result == "" {
		return mcp.NewToolResultError("result is required (1-0, 0-1, or 1/2-1/2)"), nil
	}
	return c.matchAction(ctx, request, "complete", map[string]string{"result": result}, "Match completed")
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	path := "/api/matches/" + matchID + "/history"
	if format := stringArg(args, "format"); format != "" {
		path += "?format=" + format
	}

	var history service.HistoryResult
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleExportPGN(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	matchID := stringArg(args, "match_id")
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	pgn, err := c.apiCallText(ctx, "/api/matches/"+matchID+"/pgn")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(pgn), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []*config.Preset
	if err := c.apiCall(ctx, http.MethodGet, "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPresets(presets)), nil
}

// formatState renders a match as text with an ASCII board.
func formatState(st *match.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match %s: %s (white) vs %s (black)\n", st.ID, st.White, st.Black)
	fmt.Fprintf(&b, "Status: %s", st.Status)
	if st.Result != "" {
		fmt.Fprintf(&b, " | Result: %s", st.Result)
		if st.ResultDetail != "" {
			fmt.Fprintf(&b, " (%s)", st.ResultDetail)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Moves played: %d", st.MoveCount)
	if st.LastMove != "" {
		fmt.Fprintf(&b, " | Last move: %s", st.LastMove)
	}
	b.WriteString("\n")
	if st.Status != match.StatusCompleted {
		fmt.Fprintf(&b, "To move: %s (%s)\n", st.Turn, st.SideToMove)
	}
	if st.DrawOfferFrom != nil {
		fmt.Fprintf(&b, "Draw offered by %s\n", *st.DrawOfferFrom)
	}
	if st.PauseRequestedBy != nil {
		fmt.Fprintf(&b, "Paused by %s\n", *st.PauseRequestedBy)
	}
	if st.Clock != nil {
		fmt.Fprintf(&b, "Clock: white %s, black %s\n",
			st.Clock.WhiteRemaining.Round(time.Second),
			st.Clock.BlackRemaining.Round(time.Second))
	}
	b.WriteString("\n")
	b.WriteString(renderBoard(st.Position))
	fmt.Fprintf(&b, "\nFEN: %s\n", st.Position)
	return b.String()
}

// renderBoard draws the piece-placement field of a FEN position as an
// 8x8 grid from white's perspective.
func renderBoard(fen string) string {
	placement := fen
	if i := strings.IndexByte(fen, ' '); i >= 0 {
		placement = fen[:i]
	}
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return "(position unavailable)\n"
	}

	var b strings.Builder
	b.WriteString("  +-----------------+\n")
	for i, rank := range ranks {
		fmt.Fprintf(&b, "%d | ", 8-i)
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				b.WriteString(strings.Repeat(". ", int(r-'0')))
			} else {
				fmt.Fprintf(&b, "%c ", r)
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString("  +-----------------+\n")
	b.WriteString("    a b c d e f g h\n")
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Played %s.\n", result.San)
	if result.GameOver && result.State != nil {
		fmt.Fprintf(&b, "Game over: %s", result.State.Result)
		if result.State.ResultDetail != "" {
			fmt.Fprintf(&b, " (%s)", result.State.ResultDetail)
		}
		b.WriteString("\n")
	}
	if result.DrawStatus != nil {
		if result.DrawStatus.ApproachingFiftyMove {
			fmt.Fprintf(&b, "Note: %d moves until the fifty-move rule can be claimed.\n",
				result.DrawStatus.MovesUntilFiftyMoveRule)
		}
		if result.DrawStatus.ApproachingRepetition {
			fmt.Fprintf(&b, "Note: this position has occurred %d times; a third occurrence allows a repetition claim.\n",
				result.DrawStatus.RepetitionCount)
		}
	}
	if result.State != nil {
		b.WriteString("\n")
		b.WriteString(formatState(result.State))
	}
	return b.String()
}

func formatMatchList(states []*match.State) string {
	if len(states) == 0 {
		return "No matches."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es):\n", len(states))
	for _, st := range states {
		fmt.Fprintf(&b, "- %s: %s vs %s | %s | %d moves", st.ID, st.White, st.Black, st.Status, st.MoveCount)
		if st.Result != "" {
			fmt.Fprintf(&b, " | %s", st.Result)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatDrawReport(report *service.DrawReport) string {
	if report.Draw == nil {
		return fmt.Sprintf("Match %s is %s; draw counters only apply to active matches.",
			report.MatchID, report.Status)
	}
	d := report.Draw
	var b strings.Builder
	fmt.Fprintf(&b, "Draw status for match %s:\n", report.MatchID)
	fmt.Fprintf(&b, "- Halfmove clock: %d\n", d.HalfmoveClock)
	fmt.Fprintf(&b, "- Moves until fifty-move rule: %d\n", d.MovesUntilFiftyMoveRule)
	fmt.Fprintf(&b, "- Current position seen %d time(s)\n", d.RepetitionCount)
	if d.ApproachingFiftyMove {
		b.WriteString("- A fifty-move claim is getting close.\n")
	}
	if d.ApproachingRepetition {
		b.WriteString("- A repetition claim is getting close.\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move history for match %s (%d moves, %s):\n",
		history.MatchID, history.TotalMoves, history.Format)

	switch history.Format {
	case service.FormatVerbose:
		for _, mv := range history.Verbose {
			fmt.Fprintf(&b, "%d. %s: %s\n", mv.Number, mv.Side, mv.San)
		}
	case service.FormatWithPosition:
		for _, mv := range history.WithPosition {
			fmt.Fprintf(&b, "%d. %s: %s -> %s\n", mv.Number, mv.Side, mv.San, mv.Position)
		}
	case service.FormatDetailed:
		if history.Detailed != nil {
			for _, mv := range history.Detailed.Moves {
				fmt.Fprintf(&b, "%d. %s: %s (halfmove clock %d, position seen %d time(s))\n",
					mv.Number, mv.Side, mv.San, mv.HalfmoveClock, mv.RepetitionCount)
			}
			b.WriteString("\nPGN:\n")
			b.WriteString(history.Detailed.PGN)
			b.WriteString("\n")
		}
	default:
		b.WriteString(strings.Join(history.Plain, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func formatPresets(presets []*config.Preset) string {
	if len(presets) == 0 {
		return "No presets available."
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })

	var b strings.Builder
	b.WriteString("Time-control presets:\n")
	for _, p := range presets {
		fmt.Fprintf(&b, "- %s: ", p.Name)
		if p.InitialSeconds == 0 {
			b.WriteString("untimed")
		} else {
			fmt.Fprintf(&b, "%s initial", (time.Duration(p.InitialSeconds) * time.Second).String())
			if p.IncrementSeconds > 0 {
				fmt.Fprintf(&b, " + %ds increment", p.IncrementSeconds)
			}
		}
		if p.Description != "" {
			fmt.Fprintf(&b, " (%s)", p.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
