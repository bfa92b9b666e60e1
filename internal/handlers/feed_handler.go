package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// FeedService is the part of the query client the feed routes use.
type FeedService interface {
	RecentPosts(ctx context.Context) ([]models.Post, error)
	PostsPage(ctx context.Context, cursor string) (page []models.Post, next string, hasNext bool, err error)
	SearchPosts(ctx context.Context, term string) ([]models.Post, error)
}

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts/recent", h.GetRecentPosts)
	g.GET("/posts/search", h.SearchPosts)
	g.GET("/posts", h.GetPosts)
}

// GetRecentPosts returns the newest posts
func (h *FeedHandler) GetRecentPosts(c echo.Context) error {
	posts, err := h.feed.RecentPosts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPosts returns one page of the infinite feed. The cursor is the id of
// the last post of the previous page.
func (h *FeedHandler) GetPosts(c echo.Context) error {
	page, next, hasNext, err := h.feed.PostsPage(c.Request().Context(), c.QueryParam("cursor"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": page,
		},
		"meta": echo.Map{
			"nextCursor":  next,
			"hasNextPage": hasNext,
		},
	})
}

// SearchPosts finds posts by caption
func (h *FeedHandler) SearchPosts(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search term")
	}
	posts, err := h.feed.SearchPosts(c.Request().Context(), term)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
