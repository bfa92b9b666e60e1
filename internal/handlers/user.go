package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// UserService is the part of the query client the user routes use.
type UserService interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	Users(ctx context.Context, limit int) ([]models.User, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
	UserPosts(ctx context.Context, userID string) ([]models.Post, error)
	UpdateUser(ctx context.Context, in models.UpdateUser) (*models.User, error)
}

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetCurrentUser)
	g.GET("/users", h.GetUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateUser)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// GetCurrentUser returns the signed-in user with their saved posts
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	user, err := h.users.CurrentUser(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUsers lists the newest users; limit is optional
func (h *UserHandler) GetUsers(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = n
	}

	users, err := h.users.Users(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.UserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.users.UserPosts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdateUser edits the caller's own profile from a multipart form. The
// optional "file" part replaces the avatar.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	me, err := h.users.CurrentUser(ctx, middleware.SessionID(c))
	if err != nil {
		return httpError(err)
	}
	userID := c.Param("id")
	if me.ID.Hex() != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own profile")
	}

	file, closeFile, err := formImage(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	updated, err := h.users.UpdateUser(ctx, models.UpdateUser{
		UserID:   userID,
		Name:     c.FormValue("name"),
		Bio:      c.FormValue("bio"),
		ImageID:  me.ImageID,
		ImageURL: me.ImageURL,
		File:     file,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}
