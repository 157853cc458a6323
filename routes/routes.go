package routes

import (
	"github.com/boredgamer/platform/handlers"
	"github.com/boredgamer/platform/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	mw *middleware.Middleware,
	authHandler *handlers.AuthHandler,
	studioHandler *handlers.StudioHandler,
	tournamentHandler *handlers.TournamentHandler,
	eventHandler *handlers.EventHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Studio-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/studios", studioHandler.RegisterHandler)
	router.Post("/auth/login", authHandler.LoginHandler)

	router.Route("/tournaments", func(r chi.Router) {
		// Bracket reads and result reports come from game servers that
		// hold no management token; shape errors and lookups guard them.
		r.Get("/{tournamentID}/brackets", tournamentHandler.GetBracketsHandler)
		r.Post("/{tournamentID}/brackets", tournamentHandler.RecordResultHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate)
			r.Post("/", tournamentHandler.CreateTournamentHandler)
			r.Get("/", tournamentHandler.ListTournamentsHandler)
		})
	})

	router.Route("/leaderboards", func(r chi.Router) {
		r.Get("/{leaderboardID}/top", leaderboardHandler.TopHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate)
			r.Post("/", leaderboardHandler.CreateHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthenticateAPIKey)
			r.Post("/{leaderboardID}/scores", leaderboardHandler.SubmitScoreHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(mw.AuthenticateAPIKey)
		r.Post("/events", eventHandler.IngestHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Patch("/studios/tier", studioHandler.UpdateTierHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
