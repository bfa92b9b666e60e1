package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// LikeService is the part of the query client the like routes use.
type LikeService interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	PostByID(ctx context.Context, postID string) (*models.Post, error)
	LikePost(ctx context.Context, in models.LikePost) (*models.Post, error)
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/posts/:id/likes", h.LikePost)
}

type likesRequest struct {
	Likes []string `json:"likes"`
}

// LikePost replaces the like list of a post with the ids in the body. The
// new list may differ from the stored one only by the caller's own id.
func (h *LikeHandler) LikePost(c echo.Context) error {
	var req likesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Likes == nil {
		req.Likes = []string{}
	}

	ctx := c.Request().Context()
	me, err := h.likes.CurrentUser(ctx, middleware.SessionID(c))
	if err != nil {
		return httpError(err)
	}
	current, err := h.likes.PostByID(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !onlyChanges(current.Likes, req.Likes, me.ID.Hex()) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only add or remove your own like")
	}

	post, err := h.likes.LikePost(ctx, models.LikePost{
		PostID: c.Param("id"),
		Likes:  req.Likes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// onlyChanges reports whether before and after hold the same ids apart
// from id.
func onlyChanges(before, after []string, id string) bool {
	set := make(map[string]bool, len(before))
	for _, v := range before {
		set[v] = true
	}
	seen := make(map[string]bool, len(after))
	for _, v := range after {
		if v != id && !set[v] {
			return false
		}
		seen[v] = true
	}
	for v := range set {
		if v != id && !seen[v] {
			return false
		}
	}
	return true
}
