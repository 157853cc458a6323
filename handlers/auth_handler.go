package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/boredgamer/platform/services"
	"github.com/golang-jwt/jwt/v4"
)

type AuthHandler struct {
	studioService services.StudioService
	jwtSecret     []byte
}

func NewAuthHandler(studioService services.StudioService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		studioService: studioService,
		jwtSecret:     []byte(jwtSecret),
	}
}

type loginRequest struct {
	StudioID string `json:"studio_id"`
	APIKey   string `json:"api_key"`
}

// LoginHandler exchanges a studio id + API key for a management JWT.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if req.StudioID == "" || req.APIKey == "" {
		badRequestResponse(w, r, errors.New("studio_id and api_key are required"))
		return
	}

	studio, err := h.studioService.Authenticate(r.Context(), req.StudioID, req.APIKey)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	claims := jwt.MapClaims{
		"studio_id": studio.ID,
		"tier":      string(studio.Tier),
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
		"iat":       time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
