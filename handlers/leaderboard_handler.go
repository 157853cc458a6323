package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/boredgamer/platform/middleware"
	"github.com/boredgamer/platform/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	studioID, err := middleware.StudioIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a leaderboard")
		return
	}

	var input services.CreateLeaderboardInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.leaderboardService.Create(r.Context(), studioID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeaderboardHandler) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	studioID, err := middleware.StudioIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "api key authentication required")
		return
	}

	leaderboardID, err := getUUIDFromURL(r, "leaderboardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.leaderboardService.SubmitScore(r.Context(), studioID, leaderboardID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score": score}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeaderboardHandler) TopHandler(w http.ResponseWriter, r *http.Request) {
	leaderboardID, err := getUUIDFromURL(r, "leaderboardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequestResponse(w, r, errors.New("limit query parameter must be a non-negative integer"))
			return
		}
	}

	scores, err := h.leaderboardService.Top(r.Context(), leaderboardID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
