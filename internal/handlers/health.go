package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/cache"
	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness and the size of the query cache.
func HealthCheck(c *cache.Cache) echo.HandlerFunc {
	return func(e echo.Context) error {
		return e.JSON(http.StatusOK, map[string]any{
			"status":        "healthy",
			"service":       "snapgram-api",
			"cache_entries": c.Len(),
		})
	}
}
