package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// PostService is the part of the query client the post routes use.
type PostService interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	PostByID(ctx context.Context, postID string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, in models.UpdatePost) (*models.Post, error)
	DeletePost(ctx context.Context, in models.DeletePost) error
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// currentUserID returns the user document id of the caller
func (h *PostHandler) currentUserID(c echo.Context) (string, error) {
	me, err := h.posts.CurrentUser(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return "", httpError(err)
	}
	return me.ID.Hex(), nil
}

// ownPost loads a post and checks that the caller created it
func (h *PostHandler) ownPost(c echo.Context) (*models.Post, error) {
	userID, err := h.currentUserID(c)
	if err != nil {
		return nil, err
	}
	post, err := h.posts.PostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, httpError(err)
	}
	if post.Creator != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not the creator of this post")
	}
	return post, nil
}

// CreatePost creates a post from a multipart form with a required "file"
// part and caption, location and tags fields
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	file, closeFile, err := formImage(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	post, err := h.posts.CreatePost(c.Request().Context(), models.NewPost{
		UserID:   userID,
		Caption:  c.FormValue("caption"),
		File:     file,
		Location: c.FormValue("location"),
		Tags:     c.FormValue("tags"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.PostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost edits a post from a multipart form; the optional "file" part
// replaces the image
func (h *PostHandler) UpdatePost(c echo.Context) error {
	post, err := h.ownPost(c)
	if err != nil {
		return err
	}

	file, closeFile, err := formImage(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	updated, err := h.posts.UpdatePost(c.Request().Context(), models.UpdatePost{
		PostID:   post.ID.Hex(),
		Caption:  c.FormValue("caption"),
		ImageID:  post.ImageID,
		ImageURL: post.ImageURL,
		File:     file,
		Location: c.FormValue("location"),
		Tags:     c.FormValue("tags"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePost deletes a post and its image
func (h *PostHandler) DeletePost(c echo.Context) error {
	post, err := h.ownPost(c)
	if err != nil {
		return err
	}

	err = h.posts.DeletePost(c.Request().Context(), models.DeletePost{
		PostID:  post.ID.Hex(),
		ImageID: post.ImageID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
