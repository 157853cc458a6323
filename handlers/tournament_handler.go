package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boredgamer/platform/middleware"
	"github.com/boredgamer/platform/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	bracketService    services.BracketService
}

func NewTournamentHandler(tournamentService services.TournamentService, bracketService services.BracketService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		bracketService:    bracketService,
	}
}

func (h *TournamentHandler) CreateTournamentHandler(w http.ResponseWriter, r *http.Request) {
	studioID, err := middleware.StudioIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), studioID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListTournamentsHandler(w http.ResponseWriter, r *http.Request) {
	studioID, err := middleware.StudioIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to list tournaments")
		return
	}

	tournaments, err := h.tournamentService.ListByStudio(r.Context(), studioID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetBracketsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GetBrackets(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type recordResultRequest struct {
	MatchID  string          `json:"match_id"`
	WinnerID string          `json:"winner_id"`
	Score    json.RawMessage `json:"score,omitempty"`
}

func (h *TournamentHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req recordResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Request shape is validated before any store access.
	if req.MatchID == "" || req.WinnerID == "" {
		badRequestResponse(w, r, errors.New("match_id and winner_id are required"))
		return
	}

	input := services.RecordResultInput{
		MatchID:  req.MatchID,
		WinnerID: req.WinnerID,
		Score:    req.Score,
	}
	if _, err := h.bracketService.RecordResult(r.Context(), tournamentID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "match result recorded"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
