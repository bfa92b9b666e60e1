package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/remote"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"github.com/labstack/echo/v4"
)

const (
	sessionIDKey = "sessionID"
	accountKey   = "account"
)

// SessionResolver resolves a session id to its account.
type SessionResolver interface {
	Account(ctx context.Context, sessionID string) (*models.Account, error)
	// HoldSession pins the cached session data while a request runs.
	HoldSession(sessionID string) (release func())
}

// JWTAuthMiddleware checks the bearer session token and that its session is
// still alive. The session id and account are stored in the echo context.
func JWTAuthMiddleware(signer *tokens.Signer, sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := signer.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			account, err := sessions.Account(c.Request().Context(), claims.ID)
			if err != nil {
				if remote.KindOf(err) == remote.KindAuth {
					return echo.NewHTTPError(http.StatusUnauthorized, "Session expired or signed out")
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Session lookup failed")
			}
			if account.ID != claims.AccountID {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			release := sessions.HoldSession(claims.ID)
			defer release()

			c.Set(sessionIDKey, claims.ID)
			c.Set(accountKey, account)
			return next(c)
		}
	}
}

// SessionID returns the session of an authenticated request.
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

// Account returns the account of an authenticated request.
func Account(c echo.Context) *models.Account {
	a, _ := c.Get(accountKey).(*models.Account)
	return a
}
