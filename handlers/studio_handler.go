package handlers

import (
	"net/http"

	"github.com/boredgamer/platform/middleware"
	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/services"
)

type StudioHandler struct {
	studioService services.StudioService
}

func NewStudioHandler(studioService services.StudioService) *StudioHandler {
	return &StudioHandler{studioService: studioService}
}

func (h *StudioHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterStudioInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	studio, apiKey, err := h.studioService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// The plaintext key is shown once; only its hash is kept.
	response := jsonResponse{
		"studio":  studio,
		"api_key": apiKey,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateTierRequest struct {
	Tier string `json:"tier"`
}

func (h *StudioHandler) UpdateTierHandler(w http.ResponseWriter, r *http.Request) {
	studioID, err := middleware.StudioIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to change tier")
		return
	}

	var req updateTierRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	studio, err := h.studioService.UpdateTier(r.Context(), studioID, models.Tier(req.Tier))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"studio": studio}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
