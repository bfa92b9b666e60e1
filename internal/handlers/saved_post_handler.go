package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// SaveService is the part of the query client the save routes use.
type SaveService interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	SavePost(ctx context.Context, in models.SavePost) (*models.Save, error)
	DeleteSavedPost(ctx context.Context, saveID string) error
}

// SavedPostHandler handles HTTP requests related to saved posts
type SavedPostHandler struct {
	saves SaveService
}

func NewSavedPostHandler(saves SaveService) *SavedPostHandler {
	return &SavedPostHandler{saves: saves}
}

func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/saves/:id", h.DeleteSave)
}

// SavePost bookmarks a post for the caller
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	ctx := c.Request().Context()
	me, err := h.saves.CurrentUser(ctx, middleware.SessionID(c))
	if err != nil {
		return httpError(err)
	}

	save, err := h.saves.SavePost(ctx, models.SavePost{
		PostID: c.Param("id"),
		UserID: me.ID.Hex(),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, save)
}

// DeleteSave removes one of the caller's bookmarks by its save record id
func (h *SavedPostHandler) DeleteSave(c echo.Context) error {
	ctx := c.Request().Context()
	me, err := h.saves.CurrentUser(ctx, middleware.SessionID(c))
	if err != nil {
		return httpError(err)
	}

	saveID := c.Param("id")
	owned := false
	for _, s := range me.Saves {
		if s.ID.Hex() == saveID {
			owned = true
			break
		}
	}
	if !owned {
		return echo.NewHTTPError(http.StatusNotFound, "Saved post not found")
	}

	if err := h.saves.DeleteSavedPost(ctx, saveID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
