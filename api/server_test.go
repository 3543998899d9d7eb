package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcp-arcade/chess-match-server/game/config"
	"github.com/mcp-arcade/chess-match-server/game/match"
	"github.com/mcp-arcade/chess-match-server/game/service"
	"github.com/mcp-arcade/chess-match-server/game/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	presets, err := config.NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	svc := service.NewMatchServiceWithLimit(store.NewMemoryStore(), 3)
	return NewServer(svc, presets, nil)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response failed: %v\nbody: %s", err, rec.Body.String())
	}
}

func createTestMatch(t *testing.T, s *Server) match.State {
	t.Helper()
	rec := doRequest(t, s, "POST", "/api/matches", map[string]string{
		"white": "alice",
		"black": "bob",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var state match.State
	decodeJSON(t, rec, &state)
	return state
}

func TestCreateMatchEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("created", func(t *testing.T) {
		state := createTestMatch(t, s)
		if state.ID == "" || state.Status != match.StatusActive {
			t.Errorf("unexpected state %+v", state)
		}
	})

	t.Run("missing participants", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches", map[string]string{"white": "alice"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("with preset", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches", map[string]string{
			"white": "carol", "black": "dave", "preset": "blitz",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var state match.State
		decodeJSON(t, rec, &state)
		if state.TimeControl == nil || state.Clock == nil {
			t.Errorf("expected clocks from the blitz preset, got %+v", state)
		}
	})

	t.Run("unknown preset", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches", map[string]string{
			"white": "x", "black": "y", "preset": "warp-speed",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		// Limit is 3; two creates above are still active.
		rec := doRequest(t, s, "POST", "/api/matches", map[string]string{"white": "p1", "black": "p2"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 for third match, got %d", rec.Code)
		}
		rec = doRequest(t, s, "POST", "/api/matches", map[string]string{"white": "p3", "black": "p4"})
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp map[string]string
		decodeJSON(t, rec, &resp)
		if resp["error"] == "" {
			t.Error("expected an error envelope")
		}
	})
}

func TestMoveEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)

	t.Run("accepted", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/move", map[string]string{"move": "e4"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var result service.MoveResult
		decodeJSON(t, rec, &result)
		if result.San != "e4" {
			t.Errorf("expected e4, got %s", result.San)
		}
	})

	t.Run("illegal move is 422", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/move", map[string]string{"move": "Ke4"})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown match is 404", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches/missing/move", map[string]string{"move": "e4"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("move while paused is 409", func(t *testing.T) {
		rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/pause", map[string]string{"participant_id": "alice"})
		if rec.Code != http.StatusOK {
			t.Fatalf("pause failed: %d %s", rec.Code, rec.Body.String())
		}
		rec = doRequest(t, s, "POST", "/api/matches/"+state.ID+"/move", map[string]string{"move": "e5"})
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestValidateMoveEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)

	rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/validate-move", map[string]string{"move": "Qh5"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var v match.Validation
	decodeJSON(t, rec, &v)
	if v.Valid {
		t.Error("Qh5 should not be valid in the opening position")
	}

	// Probing must not have played anything.
	rec = doRequest(t, s, "GET", "/api/matches/"+state.ID, nil)
	var after match.State
	decodeJSON(t, rec, &after)
	if after.MoveCount != 0 {
		t.Errorf("validation mutated the match: %+v", after)
	}
}

func TestLegalMovesEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)

	rec := doRequest(t, s, "GET", "/api/matches/"+state.ID+"/legal-moves?from=e2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Count int      `json:"count"`
		Moves []string `json:"moves"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Count != 2 {
		t.Errorf("expected 2 moves from e2, got %v", resp.Moves)
	}
}

func TestDrawFlowEndpoints(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)
	base := "/api/matches/" + state.ID

	rec := doRequest(t, s, "POST", base+"/draw/offer", map[string]string{"participant_id": "alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("offer failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, "POST", base+"/draw/accept", map[string]string{"participant_id": "alice"})
	if rec.Code != http.StatusConflict {
		t.Errorf("accepting own offer should be 409, got %d", rec.Code)
	}

	rec = doRequest(t, s, "POST", base+"/draw/accept", map[string]string{"participant_id": "bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept failed: %d %s", rec.Code, rec.Body.String())
	}
	var final match.State
	decodeJSON(t, rec, &final)
	if final.Result != match.ResultDraw {
		t.Errorf("expected 1/2-1/2, got %s", final.Result)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)
	for _, mv := range []string{"e4", "e5"} {
		rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/move", map[string]string{"move": mv})
		if rec.Code != http.StatusOK {
			t.Fatalf("move %s failed: %d", mv, rec.Code)
		}
	}

	rec := doRequest(t, s, "GET", "/api/matches/"+state.ID+"/history?format=verbose", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var h service.HistoryResult
	decodeJSON(t, rec, &h)
	if h.Format != service.FormatVerbose || len(h.Verbose) != 2 {
		t.Errorf("unexpected history %+v", h)
	}

	rec = doRequest(t, s, "GET", "/api/matches/"+state.ID+"/history?format=nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestPGNEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)
	doRequest(t, s, "POST", "/api/matches/"+state.ID+"/move", map[string]string{"move": "d4"})

	rec := doRequest(t, s, "GET", "/api/matches/"+state.ID+"/pgn", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-chess-pgn" {
		t.Errorf("unexpected content type %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "1. d4") {
		t.Errorf("PGN missing moves:\n%s", rec.Body.String())
	}
}

func TestDrawStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)

	rec := doRequest(t, s, "GET", "/api/matches/"+state.ID+"/draw-status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var report service.DrawReport
	decodeJSON(t, rec, &report)
	if report.Draw == nil || report.Draw.MovesUntilFiftyMoveRule != 50 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestListAndDeleteEndpoints(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)
	createTestMatch(t, s)

	rec := doRequest(t, s, "GET", "/api/matches", nil)
	var list struct {
		Count   int            `json:"count"`
		Matches []*match.State `json:"matches"`
	}
	decodeJSON(t, rec, &list)
	if list.Count != 2 {
		t.Errorf("expected 2 matches, got %d", list.Count)
	}

	rec = doRequest(t, s, "GET", "/api/matches?participant=alice", nil)
	decodeJSON(t, rec, &list)
	if list.Count != 2 {
		t.Errorf("expected 2 matches for alice, got %d", list.Count)
	}

	rec = doRequest(t, s, "DELETE", "/api/matches/"+state.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rec.Code)
	}
	rec = doRequest(t, s, "DELETE", "/api/matches/"+state.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestPresetEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, "GET", "/api/presets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var presets []*config.Preset
	decodeJSON(t, rec, &presets)
	if len(presets) != 5 {
		t.Errorf("expected 5 presets, got %d", len(presets))
	}

	rec = doRequest(t, s, "GET", "/api/presets/rapid", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, "GET", "/api/presets/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("unexpected health response %v", resp)
	}
}

func TestCompleteEndpoint(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)

	rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/complete", map[string]string{"result": "2-0"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad result token, got %d", rec.Code)
	}

	rec = doRequest(t, s, "POST", "/api/matches/"+state.ID+"/complete", map[string]string{"result": "1-0"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, "POST", "/api/matches/"+state.ID+"/complete", map[string]string{"result": "0-1"})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 completing twice, got %d", rec.Code)
	}
}

func TestResignBroadcastsAndCompletes(t *testing.T) {
	s := newTestServer(t)
	state := createTestMatch(t, s)

	rec := doRequest(t, s, "POST", "/api/matches/"+state.ID+"/resign", map[string]string{"participant_id": "bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("resign failed: %d %s", rec.Code, rec.Body.String())
	}
	var final match.State
	decodeJSON(t, rec, &final)
	if final.Result != match.ResultWhiteWins || final.ResultDetail != match.DetailResignation {
		t.Errorf("unexpected final state %+v", final)
	}
}
