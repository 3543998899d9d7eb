package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcp-arcade/chess-match-server/game/config"
	"github.com/mcp-arcade/chess-match-server/game/match"
	"github.com/mcp-arcade/chess-match-server/game/service"
	"github.com/mcp-arcade/chess-match-server/game/store"
	"github.com/mcp-arcade/chess-match-server/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.MatchService
	presets *config.Manager
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(matchService service.MatchService, presets *config.Manager, hub *websocket.Hub) *Server {
	s := &Server{
		service: matchService,
		presets: presets,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Match lifecycle
	api.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleDeleteMatch).Methods("DELETE")

	// Play
	api.HandleFunc("/matches/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/matches/{id}/validate-move", s.handleValidateMove).Methods("POST")
	api.HandleFunc("/matches/{id}/legal-moves", s.handleLegalMoves).Methods("GET")

	// Match control
	api.HandleFunc("/matches/{id}/resign", s.handleResign).Methods("POST")
	api.HandleFunc("/matches/{id}/draw/offer", s.handleOfferDraw).Methods("POST")
	api.HandleFunc("/matches/{id}/draw/accept", s.handleAcceptDraw).Methods("POST")
	api.HandleFunc("/matches/{id}/draw/decline", s.handleDeclineDraw).Methods("POST")
	api.HandleFunc("/matches/{id}/pause", s.handlePause).Methods("POST")
	api.HandleFunc("/matches/{id}/resume", s.handleResume).Methods("POST")
	api.HandleFunc("/matches/{id}/complete", s.handleComplete).Methods("POST")

	// Queries
	api.HandleFunc("/matches/{id}/draw-status", s.handleDrawStatus).Methods("GET")
	api.HandleFunc("/matches/{id}/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/matches/{id}/pgn", s.handlePGN).Methods("GET")

	// Time-control presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets/{name}", s.handleGetPreset).Methods("GET")

	// Operational
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the error taxonomy onto HTTP status codes:
// missing matches are 404, state-machine rejections 409, illegal moves 422,
// admission rejections 429, and anything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		invalidMove  *match.InvalidMoveError
		illegalState *match.IllegalStateError
		capacity     *service.CapacityError
		corrupt      *match.CorruptStateError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &capacity):
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &invalidMove):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &illegalState):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &corrupt):
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) broadcast(matchID string, state *match.State) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastState(matchID, state)
	}
}

// Match Handlers

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		White  string `json:"white"`
		Black  string `json:"black"`
		Preset string `json:"preset,omitempty"`
		TimeControl *struct {
			InitialSeconds   int `json:"initial_seconds"`
			IncrementSeconds int `json:"increment_seconds"`
		} `json:"time_control,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.White == "" || req.Black == "" {
		respondError(w, http.StatusBadRequest, "white and black participants are required")
		return
	}

	tc, err := s.resolveTimeControl(req.Preset, req.TimeControl)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.service.CreateMatch(r.Context(), req.White, req.Black, tc)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[MATCH] created id=%s white=%s black=%s", state.ID, state.White, state.Black)
	respondJSON(w, http.StatusCreated, state)
}

func (s *Server) resolveTimeControl(preset string, explicit *struct {
	InitialSeconds   int `json:"initial_seconds"`
	IncrementSeconds int `json:"increment_seconds"`
}) (*match.TimeControl, error) {
	if explicit != nil {
		p := &config.Preset{
			Name:             "custom",
			InitialSeconds:   explicit.InitialSeconds,
			IncrementSeconds: explicit.IncrementSeconds,
		}
		if err := config.ValidatePreset(p); err != nil {
			return nil, err
		}
		return p.TimeControl(), nil
	}
	if preset == "" {
		return s.presets.GetDefault().TimeControl(), nil
	}
	p, err := s.presets.LoadPreset(preset)
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q; use /api/presets to list available presets", preset)
	}
	return p.TimeControl(), nil
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		states []*match.State
		err    error
	)
	switch {
	case query.Get("status") != "":
		status := match.Status(strings.ToUpper(query.Get("status")))
		states, err = s.service.ListByStatus(r.Context(), status)
	case query.Get("participant") != "":
		states, err = s.service.ListByParticipant(r.Context(), query.Get("participant"))
	default:
		states, err = s.service.ListMatches(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(states),
		"matches": states,
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	if err := s.service.DeleteMatch(r.Context(), matchID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Match %s deleted", matchID),
	})
}

// Play Handlers

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	var req struct {
		Move string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.PlayMove(r.Context(), matchID, req.Move)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(matchID, result.State)
	log.Printf("[MOVE] match=%s san=%s game_over=%t", matchID, result.San, result.GameOver)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidateMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Move string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, err := s.service.ValidateMove(r.Context(), mux.Vars(r)["id"], req.Move)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	moves, err := s.service.LegalMoves(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("from"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(moves),
		"moves": moves,
	})
}

// Control Handlers

func (s *Server) handleResign(w http.ResponseWriter, r *http.Request) {
	s.controlWithParticipant(w, r, s.service.Resign)
}

func (s *Server) handleOfferDraw(w http.ResponseWriter, r *http.Request) {
	s.controlWithParticipant(w, r, s.service.OfferDraw)
}

func (s *Server) handleAcceptDraw(w http.ResponseWriter, r *http.Request) {
	s.controlWithParticipant(w, r, s.service.AcceptDraw)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.controlWithParticipant(w, r, s.service.PauseMatch)
}

func (s *Server) handleDeclineDraw(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	state, err := s.service.DeclineDraw(r.Context(), matchID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.broadcast(matchID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	state, err := s.service.ResumeMatch(r.Context(), matchID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.broadcast(matchID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	var req struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	result := match.Result(req.Result)
	if !result.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid result %q; use 1-0, 0-1, or 1/2-1/2", req.Result))
		return
	}

	state, err := s.service.CompleteMatch(r.Context(), matchID, result)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.broadcast(matchID, state)
	respondJSON(w, http.StatusOK, state)
}

// controlWithParticipant factors the shared shape of resign, draw offer,
// draw accept, and pause: a participant_id body, a service call, a
// broadcast.
func (s *Server) controlWithParticipant(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, matchID, participantID string) (*match.State, error)) {
	matchID := mux.Vars(r)["id"]

	var req struct {
		ParticipantID string `json:"participant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ParticipantID == "" {
		respondError(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	state, err := op(r.Context(), matchID, req.ParticipantID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.broadcast(matchID, state)
	respondJSON(w, http.StatusOK, state)
}

// Query Handlers

func (s *Server) handleDrawStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.DrawReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	format := service.HistoryFormat(r.URL.Query().Get("format"))
	if format != "" && !format.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown history format %q", format))
		return
	}

	history, err := s.service.MoveHistory(r.Context(), mux.Vars(r)["id"], format)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handlePGN(w http.ResponseWriter, r *http.Request) {
	pgn, err := s.service.ExportPGN(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, pgn)
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.ListPresets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, presets)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.presets.LoadPreset(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

// Operational Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.HealthCheck(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		http.Error(w, "match parameter required", http.StatusBadRequest)
		return
	}

	// Verify the match exists before upgrading
	if _, err := s.service.GetMatch(r.Context(), matchID); err != nil {
		http.Error(w, "Invalid match", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, matchID)
}
