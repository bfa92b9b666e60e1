package router

import (
	"log"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/handlers"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/queries"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"github.com/labstack/echo/v4"
)

// SetupRoutes configures all application routes on top of the query client
func SetupRoutes(e *echo.Echo, q *queries.Client, signer *tokens.Signer, metrics http.Handler) {
	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck(q.Cache()))
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	// --- Public media, referenced from image tags ---
	public := e.Group("/api/v1")
	handlers.NewMediaHandler(q).RegisterMediaRoutes(public)
	log.Println("Media routes configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(q)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require a live session) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(signer, q))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	authHandler.RegisterSessionRoutes(api)

	handlers.NewUserHandler(q).RegisterUserRoutes(api)
	log.Println("User routes configured.")

	handlers.NewFeedHandler(q).RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	handlers.NewPostHandler(q).RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	handlers.NewLikeHandler(q).RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	handlers.NewSavedPostHandler(q).RegisterSavedPostRoutes(api)
	log.Println("Saved post routes configured.")

	log.Println("All routes configured.")
}
