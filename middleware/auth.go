package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/boredgamer/platform/services"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const studioContextKey contextKey = "studio_id"

const jwtClaimStudioID = "studio_id"

// Middleware carries the dependencies of the auth middlewares; the JWT
// secret and studio service are injected by the process entry point.
type Middleware struct {
	jwtSecret     []byte
	studioService services.StudioService
}

func New(jwtSecret string, studioService services.StudioService) *Middleware {
	return &Middleware{
		jwtSecret:     []byte(jwtSecret),
		studioService: studioService,
	}
}

// Authenticate verifies a Bearer token on the management surface and puts
// the studio id into the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		studioID, ok := claims[jwtClaimStudioID].(string)
		if !ok || studioID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), studioContextKey, studioID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateAPIKey guards the telemetry surface: games authenticate with
// X-Studio-ID and X-API-Key headers instead of a JWT.
func (m *Middleware) AuthenticateAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		studioID := r.Header.Get("X-Studio-ID")
		apiKey := r.Header.Get("X-API-Key")
		if studioID == "" || apiKey == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		studio, err := m.studioService.Authenticate(r.Context(), studioID, apiKey)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), studioContextKey, studio.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StudioIDFromContext returns the authenticated studio id set by either
// auth middleware.
func StudioIDFromContext(ctx context.Context) (string, error) {
	studioID, ok := ctx.Value(studioContextKey).(string)
	if !ok || studioID == "" {
		return "", errors.New("studio id not found in context")
	}
	return studioID, nil
}
