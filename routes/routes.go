package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/deekshith06/lc-rating-system/handlers"
	"github.com/deekshith06/lc-rating-system/middleware"
)

// SetupRoutes собирает весь HTTP-роутер приложения.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	authenticator *middleware.Authenticator,
	predictionHandler *handlers.PredictionHandler,
	cacheHandler *handlers.CacheHandler,
	channelHandler *handlers.ChannelHandler,
	authHandler *handlers.AuthHandler,
	liveHandler *handlers.LiveHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/", healthHandler.IndexHandler)
	router.Get("/health", healthHandler.HealthHandler)

	router.Get("/lc", predictionHandler.PredictHandler)
	router.Get("/obtained", predictionHandler.ObtainedHandler)
	router.Get("/reconcile", predictionHandler.ReconcileHandler)
	router.Get("/contests", predictionHandler.ContestsHandler)

	router.Post("/auth/login", authHandler.LoginHandler)

	router.Get("/ws/contests/{contestName}", liveHandler.ServeWs)

	router.Route("/channels", func(r chi.Router) {
		r.Get("/{channelID}", channelHandler.GetHandler)

		// Мутации ростеров и сброс кэша только для админа.
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Get("/", channelHandler.ListHandler)
			r.Post("/", channelHandler.CreateHandler)
			r.Post("/{channelID}/users", channelHandler.AddUsersHandler)
			r.Delete("/{channelID}", channelHandler.DeleteHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Post("/cache/clear", cacheHandler.ClearHandler)
	})
}
