package handlers

import (
	"net/http"

	"github.com/boredgamer/platform/middleware"
	"github.com/boredgamer/platform/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	studioID, err := middleware.StudioIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "api key authentication required")
		return
	}

	var input services.IngestEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.Ingest(r.Context(), studioID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event_id": event.ID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
