package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/remote"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	accounts map[string]*models.Account
	err      error

	held     int
	released int
}

func (s *stubSessions) HoldSession(string) func() {
	s.held++
	return func() { s.released++ }
}

func (s *stubSessions) Account(_ context.Context, sessionID string) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.accounts[sessionID]
	if !ok {
		return nil, &remote.Error{Op: "getAccount", Kind: remote.KindAuth, Err: errors.New("session not found")}
	}
	return a, nil
}

func newProtected(signer *tokens.Signer, sessions SessionResolver) *echo.Echo {
	e := echo.New()
	g := e.Group("/api", JWTAuthMiddleware(signer, sessions))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"session": SessionID(c), "account": Account(c).ID})
	})
	return e
}

func request(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	signer := tokens.NewSigner("middleware-secret")
	sessions := &stubSessions{accounts: map[string]*models.Account{"s1": {ID: "a1"}}}

	issue := func(sessionID, accountID string) string {
		token, err := signer.Issue(tokens.NewSession(sessionID, accountID, time.Now(), time.Hour))
		require.NoError(t, err)
		return token
	}

	t.Run("live session passes", func(t *testing.T) {
		rec := request(newProtected(signer, sessions), "Bearer "+issue("s1", "a1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"session":"s1","account":"a1"}`, rec.Body.String())
		assert.Equal(t, 1, sessions.held)
		assert.Equal(t, 1, sessions.released)
	})

	t.Run("expired session token", func(t *testing.T) {
		token, err := signer.Issue(tokens.NewSession("s1", "a1", time.Now().Add(-2*time.Hour), time.Hour))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, request(newProtected(signer, sessions), "Bearer "+token).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(newProtected(signer, sessions), "").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(newProtected(signer, sessions), "Token abc").Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := tokens.NewSigner("someone-else")
		token, err := other.Issue(tokens.NewSession("s1", "a1", time.Now(), time.Hour))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, request(newProtected(signer, sessions), "Bearer "+token).Code)
	})

	t.Run("signed out session", func(t *testing.T) {
		rec := request(newProtected(signer, sessions), "Bearer "+issue("s2", "a1"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session of another account", func(t *testing.T) {
		rec := request(newProtected(signer, sessions), "Bearer "+issue("s1", "a2"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session store unavailable", func(t *testing.T) {
		down := &stubSessions{err: &remote.Error{Op: "getAccount", Kind: remote.KindRequest, Err: errors.New("connection refused")}}
		rec := request(newProtected(signer, down), "Bearer "+issue("s1", "a1"))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
