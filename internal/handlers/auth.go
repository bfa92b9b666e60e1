package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// AuthService is the part of the query client the auth routes use.
type AuthService interface {
	CreateUserAccount(ctx context.Context, in models.NewUser) (*models.User, error)
	SignIn(ctx context.Context, in models.SignIn) (*models.Session, error)
	SignInWithFirebase(ctx context.Context, in models.FirebaseSignIn) (*models.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// RegisterSessionRoutes registers the routes that need a session
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/auth/signout", h.SignOut)
}

// sessionResponse is returned by every sign-in route
type sessionResponse struct {
	Token   string          `json:"token"`
	Session *models.Session `json:"session"`
}

// Signup creates an account and its profile, then signs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.NewUser
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	user, err := h.auth.CreateUserAccount(ctx, req)
	if err != nil {
		return httpError(err)
	}
	session, err := h.auth.SignIn(ctx, models.SignIn{Email: req.Email, Password: req.Password})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":    user,
		"token":   session.Token,
		"session": session,
	})
}

// SignIn opens a session for email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignIn
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	session, err := h.auth.SignIn(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: session.Token, Session: session})
}

// FirebaseLogin exchanges a Firebase ID token for a session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseSignIn
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	session, err := h.auth.SignInWithFirebase(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: session.Token, Session: session})
}

// SignOut ends the current session
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
