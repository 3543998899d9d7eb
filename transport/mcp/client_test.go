package mcp

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/mcp-arcade/chess-match-server/api"
	"github.com/mcp-arcade/chess-match-server/game/config"
	"github.com/mcp-arcade/chess-match-server/game/match"
	"github.com/mcp-arcade/chess-match-server/game/rules"
	"github.com/mcp-arcade/chess-match-server/game/service"
	"github.com/mcp-arcade/chess-match-server/game/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	presets, err := config.NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	svc := service.NewMatchService(store.NewMemoryStore())
	srv := httptest.NewServer(api.NewServer(svc, presets, nil))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func callTool(args map[string]interface{}) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := res.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func createMatchID(t *testing.T, c *Client) string {
	t.Helper()
	res, err := c.handleCreateMatch(context.Background(), callTool(map[string]interface{}{
		"white": "alice",
		"black": "bob",
	}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("create returned tool error: %s", resultText(t, res))
	}
	text := resultText(t, res)
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Match ") && strings.Contains(line, ":") {
			return strings.TrimSuffix(strings.Fields(line)[1], ":")
		}
	}
	t.Fatalf("match id not found in output:\n%s", text)
	return ""
}

func TestCreateAndGetMatch(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)

	res, err := c.handleGetMatch(context.Background(), callTool(map[string]interface{}{
		"match_id": id,
	}))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "alice (white) vs bob (black)") {
		t.Errorf("participants missing from output:\n%s", text)
	}
	if !strings.Contains(text, "To move: alice") {
		t.Errorf("turn missing from output:\n%s", text)
	}
	if !strings.Contains(text, "a b c d e f g h") {
		t.Errorf("board missing from output:\n%s", text)
	}
}

func TestCreateMatchRequiresParticipants(t *testing.T) {
	c := newTestClient(t)
	res, err := c.handleCreateMatch(context.Background(), callTool(map[string]interface{}{
		"white": "alice",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if !res.IsError {
		t.Error("expected a tool error for missing black participant")
	}
}

func TestPlayMoveAndHistory(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)
	ctx := context.Background()

	res, err := c.handlePlayMove(ctx, callTool(map[string]interface{}{
		"match_id": id,
		"move":     "e4",
	}))
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("play returned tool error: %s", resultText(t, res))
	}
	if text := resultText(t, res); !strings.Contains(text, "Played e4.") {
		t.Errorf("SAN missing from output:\n%s", text)
	}

	res, err = c.handlePlayMove(ctx, callTool(map[string]interface{}{
		"match_id": id,
		"move":     "e5",
	}))
	if err != nil || res.IsError {
		t.Fatalf("second move failed: %v / %+v", err, res)
	}

	res, err = c.handleMoveHistory(ctx, callTool(map[string]interface{}{
		"match_id": id,
		"format":   "verbose",
	}))
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "1. white: e4") || !strings.Contains(text, "1. black: e5") {
		t.Errorf("verbose history wrong:\n%s", text)
	}
}

func TestPlayIllegalMoveReportsError(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)

	res, err := c.handlePlayMove(context.Background(), callTool(map[string]interface{}{
		"match_id": id,
		"move":     "e5",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if !res.IsError {
		t.Error("expected a tool error for an illegal move")
	}
}

func TestValidateMove(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)
	ctx := context.Background()

	res, err := c.handleValidateMove(ctx, callTool(map[string]interface{}{
		"match_id": id,
		"move":     "e4",
	}))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "e4 is legal") {
		t.Errorf("unexpected output: %s", text)
	}

	res, err = c.handleValidateMove(ctx, callTool(map[string]interface{}{
		"match_id": id,
		"move":     "e5",
	}))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "e5 is not legal") {
		t.Errorf("unexpected output: %s", text)
	}
}

func TestLegalMovesFromSquare(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)

	res, err := c.handleLegalMoves(context.Background(), callTool(map[string]interface{}{
		"match_id": id,
		"from":     "e2",
	}))
	if err != nil {
		t.Fatalf("legal moves failed: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "2 legal moves from e2") {
		t.Errorf("unexpected output: %s", text)
	}
}

func TestDrawFlow(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)
	ctx := context.Background()

	res, err := c.handleOfferDraw(ctx, callTool(map[string]interface{}{
		"match_id":       id,
		"participant_id": "alice",
	}))
	if err != nil || res.IsError {
		t.Fatalf("offer failed: %v / %+v", err, res)
	}
	if text := resultText(t, res); !strings.Contains(text, "Draw offered by alice") {
		t.Errorf("offer not reflected in state:\n%s", text)
	}

	res, err = c.handleAcceptDraw(ctx, callTool(map[string]interface{}{
		"match_id":       id,
		"participant_id": "bob",
	}))
	if err != nil || res.IsError {
		t.Fatalf("accept failed: %v / %+v", err, res)
	}
	if text := resultText(t, res); !strings.Contains(text, "1/2-1/2") {
		t.Errorf("draw result missing:\n%s", text)
	}
}

func TestResign(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)

	res, err := c.handleResign(context.Background(), callTool(map[string]interface{}{
		"match_id":       id,
		"participant_id": "bob",
	}))
	if err != nil || res.IsError {
		t.Fatalf("resign failed: %v / %+v", err, res)
	}
	if text := resultText(t, res); !strings.Contains(text, "1-0") {
		t.Errorf("white win missing after black resigned:\n%s", text)
	}
}

func TestExportPGN(t *testing.T) {
	c := newTestClient(t)
	id := createMatchID(t, c)
	ctx := context.Background()

	for _, mv := range []string{"d4", "d5"} {
		res, err := c.handlePlayMove(ctx, callTool(map[string]interface{}{
			"match_id": id,
			"move":     mv,
		}))
		if err != nil || res.IsError {
			t.Fatalf("move %s failed: %v / %+v", mv, err, res)
		}
	}

	res, err := c.handleExportPGN(ctx, callTool(map[string]interface{}{
		"match_id": id,
	}))
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "1. d4 d5") {
		t.Errorf("movetext missing from PGN:\n%s", text)
	}
}

func TestListPresets(t *testing.T) {
	c := newTestClient(t)
	res, err := c.handleListPresets(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("list presets failed: %v", err)
	}
	text := resultText(t, res)
	for _, name := range []string{"untimed", "bullet", "blitz", "rapid", "classical"} {
		if !strings.Contains(text, name) {
			t.Errorf("preset %s missing:\n%s", name, text)
		}
	}
}

func TestUnknownMatchIsToolError(t *testing.T) {
	c := newTestClient(t)
	res, err := c.handleGetMatch(context.Background(), callTool(map[string]interface{}{
		"match_id": "no-such-match",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if !res.IsError {
		t.Error("expected a tool error for an unknown match")
	}
	if text := resultText(t, res); !strings.Contains(text, "not found") {
		t.Errorf("unexpected error text: %s", text)
	}
}

func TestRenderBoardStartingPosition(t *testing.T) {
	board := renderBoard(rules.StartingFEN)
	if !strings.Contains(board, "8 | r n b q k b n r |") {
		t.Errorf("black back rank wrong:\n%s", board)
	}
	if !strings.Contains(board, "4 | . . . . . . . . |") {
		t.Errorf("empty rank wrong:\n%s", board)
	}
	if !strings.Contains(board, "1 | R N B Q K B N R |") {
		t.Errorf("white back rank wrong:\n%s", board)
	}
}

func TestRenderBoardRejectsGarbage(t *testing.T) {
	if out := renderBoard("not a fen"); !strings.Contains(out, "unavailable") {
		t.Errorf("expected placeholder for bad FEN, got %q", out)
	}
}

func TestFormatDrawReportInactive(t *testing.T) {
	out := formatDrawReport(&service.DrawReport{MatchID: "m1", Status: match.StatusCompleted})
	if !strings.Contains(out, "completed") {
		t.Errorf("unexpected output: %s", out)
	}
}
